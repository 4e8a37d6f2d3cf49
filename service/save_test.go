package service

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulldump/apitest"
	. "github.com/fulldump/biff"
)

func TestExampleResourceName(t *testing.T) {
	AssertEqual(exampleResourceName("/v1/projects"), "projects")
	AssertEqual(exampleResourceName("/v1/projects/p1:openView"), "projects")
	AssertEqual(exampleResourceName("/v1/projects/p1/experiments"), "experiments")
	AssertEqual(exampleResourceName("/v1/experiments/e1/samples:find"), "samples")
	AssertEqual(exampleResourceName("/v1/views/v1/tabs/Samples:search"), "tabs")
	AssertEqual(exampleResourceName("/release"), "release")
	AssertEqual(exampleResourceName("/"), "api")
}

func TestSave(t *testing.T) {

	dir := t.TempDir()
	t.Setenv("API_EXAMPLES_PATH", dir)

	a := apitest.NewWithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"p1","code":"Q2SAVE"}`))
	}))
	defer a.Destroy()

	resp := a.Request("POST", "/v1/projects").
		WithBodyJson(map[string]any{"code": "Q2SAVE"}).
		Do()
	Save(resp, "Register project")
	Save(resp, "Register project again")
	Save(resp, "Register project")

	content, err := os.ReadFile(filepath.Join(dir, "projects.md"))
	AssertNil(err)
	document := string(content)

	AssertTrue(strings.HasPrefix(document, "# Projects\n\n## Register project\n\n`POST /v1/projects`\n"))
	AssertEqual(strings.Count(document, "## Register project\n"), 1)
	AssertTrue(strings.Index(document, "## Register project\n") < strings.Index(document, "## Register project again\n"))
	AssertTrue(strings.Contains(document, "Response `201 Created`:"))
	AssertTrue(strings.Contains(document, "    \"code\": \"Q2SAVE\""))
	AssertFalse(strings.Contains(document, "Date:"))
}
