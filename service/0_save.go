package service

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fulldump/apitest"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/fulldump/labgrid/logger"
)

// examples collects the API examples recorded by the acceptance suite. There
// is one markdown file per resource, with one section per endpoint.
var examples = &exampleBook{
	resources: map[string]*exampleResource{},
}

type exampleBook struct {
	mutex     sync.Mutex
	resources map[string]*exampleResource
}

type exampleResource struct {
	titles   []string
	sections map[string]string
}

// Save records response as an example titled title. Nothing is written unless
// API_EXAMPLES_PATH is set.
func Save(response *apitest.Response, title string) {
	dir := os.Getenv("API_EXAMPLES_PATH")
	if dir == "" {
		return
	}

	name := exampleResourceName(response.Request.URL.Path)
	content := examples.add(name, title, renderExample(response, title))

	filename := filepath.Join(dir, name+".md")
	log := logger.Get()
	log.Debug("saving api example", "path", filename, "title", title)
	if err := os.WriteFile(filename, []byte(content), 0666); err != nil {
		log.Error("saving api example", "path", filename, "err", err)
	}
}

// add stores section and returns the whole document of the resource. A title
// seen before keeps its place.
func (b *exampleBook) add(name, title, section string) string {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	resource, ok := b.resources[name]
	if !ok {
		resource = &exampleResource{sections: map[string]string{}}
		b.resources[name] = resource
	}
	if _, seen := resource.sections[title]; !seen {
		resource.titles = append(resource.titles, title)
	}
	resource.sections[title] = section

	document := "# " + strings.ToUpper(name[:1]) + name[1:] + "\n\n"
	for _, t := range resource.titles {
		document += resource.sections[t]
	}
	return document
}

// exampleResourceName returns the last collection named in path, so
// /v1/experiments/{id}/samples:find belongs to samples.
func exampleResourceName(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && segments[0] == "v1" {
		segments = segments[1:]
	}
	name := "api"
	for i := 0; i < len(segments); i += 2 {
		collection, _, _ := strings.Cut(segments[i], ":")
		if collection != "" {
			name = collection
		}
	}
	return name
}

func renderExample(response *apitest.Response, title string) string {
	request := response.Request

	target := request.URL.Path
	if request.URL.RawQuery != "" {
		target += "?" + request.URL.RawQuery
	}

	var b strings.Builder
	b.WriteString("## " + title + "\n\n")
	b.WriteString("`" + request.Method + " " + target + "`\n\n")

	b.WriteString("```http\n")
	b.WriteString(request.Method + " " + target + " " + request.Proto + "\n")
	writeHeaders(&b, request.Header)
	if body := indentJSON(response.BodyRequestString()); body != "" {
		b.WriteString("\n" + body + "\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("Response `" + response.Status + "`:\n\n")
	b.WriteString("```http\n")
	b.WriteString(response.Proto + " " + response.Status + "\n")
	writeHeaders(&b, response.Header)
	if body := indentJSON(response.BodyString()); body != "" {
		b.WriteString("\n" + body + "\n")
	}
	b.WriteString("```\n\n")

	return b.String()
}

// writeHeaders writes headers sorted by name. Date changes on every run and is
// left out.
func writeHeaders(b *strings.Builder, headers map[string][]string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		if name != "Date" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		for _, value := range headers[name] {
			b.WriteString(name + ": " + value + "\n")
		}
	}
}

func indentJSON(body string) string {
	if !gjson.Valid(body) {
		return strings.TrimSpace(body)
	}
	indented := pretty.PrettyOptions([]byte(body), &pretty.Options{
		Width:  80,
		Prefix: "",
		Indent: "    ",
	})
	return strings.TrimSpace(string(indented))
}
