package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fulldump/labgrid/bootstrap"
	"github.com/fulldump/labgrid/configuration"
)

type JSON = map[string]any

var client = &http.Client{
	Transport: &http.Transport{
		MaxConnsPerHost:     256,
		MaxIdleConnsPerHost: 256,
		MaxIdleConns:        256,
	},
}

func Parallel(workers int, f func()) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "labgrid_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// Do sends input as JSON and decodes the response into output, if given.
func Do(method, url string, input, output any) error {

	var body io.Reader
	if input != nil {
		payload, err := json.Marshal(input)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		message, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, message)
	}
	if output == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(output)
}

// CreateExperiment registers a project with one experiment and returns the
// experiment id.
func CreateExperiment(base string) string {

	project := JSON{}
	err := Do("POST", base+"/v1/projects", JSON{
		"title":     "Bench " + time.Now().Format(time.RFC3339),
		"objective": "Measure registration and search",
	}, &project)
	if err != nil {
		panic(err)
	}

	experiment := JSON{}
	err = Do("POST", base+"/v1/projects/"+project["id"].(string)+"/experiments", JSON{
		"name":      "bench",
		"species":   species,
		"specimens": specimens,
		"analytes":  analytes,
	}, &experiment)
	if err != nil {
		panic(err)
	}

	return experiment["id"].(string)
}

var (
	species   = []string{"Homo sapiens", "Mus musculus"}
	specimens = []string{"Blood", "Liver", "Kidney"}
	analytes  = []string{"DNA", "RNA", "Protein"}
)

func fakeSample(n int64) JSON {
	return JSON{
		"label":     fmt.Sprintf("S-%d", n),
		"condition": []string{"control", "treated"}[n%2],
		"species":   species[n%int64(len(species))],
		"specimen":  specimens[n%int64(len(specimens))],
		"analyte":   analytes[n%int64(len(analytes))],
	}
}

func CreateServer(c *Config) (start, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dir = dir
	conf.LogLevel = "warn"
	c.Base = "http://" + conf.HttpAddr

	start, stop, err := bootstrap.Bootstrap(&conf)
	if err != nil {
		panic(err)
	}
	return start, stop
}

func WithServer(c *Config) func() {
	if c.Base != "" {
		return func() {}
	}
	start, stop := CreateServer(c)
	go start()
	return stop
}
