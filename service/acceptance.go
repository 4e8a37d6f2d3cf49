package service

import (
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// Acceptance walks the public HTTP API. apiRequest builds a request relative
// to the API root.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Register project", func(a *biff.A) {
		resp := apiRequest("POST", "/projects").
			WithBodyJson(JSON{
				"code":      "q2test",
				"title":     "Liver study",
				"objective": "Compare treated and control livers",
			}).Do()
		Save(resp, "Register project")

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		project := resp.BodyJsonMap()
		biff.AssertEqual(project["code"], "Q2TEST")
		biff.AssertEqual(project["title"], "Liver study")
		projectId := project["id"].(string)

		a.Alternative("List projects", func(a *biff.A) {
			resp := apiRequest("GET", "/projects").Do()
			Save(resp, "List projects")

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{project})
		})

		a.Alternative("Get project", func(a *biff.A) {
			resp := apiRequest("GET", "/projects/"+projectId).Do()
			Save(resp, "Get project")

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), project)
		})

		a.Alternative("Get project - not found", func(a *biff.A) {
			resp := apiRequest("GET", "/projects/unknown").Do()
			Save(resp, "Get project - not found")

			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})

		a.Alternative("Register project - duplicated code", func(a *biff.A) {
			resp := apiRequest("POST", "/projects").
				WithBodyJson(JSON{
					"code":      "Q2TEST",
					"title":     "Another",
					"objective": "Another",
				}).Do()
			Save(resp, "Register project - duplicated code")

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Register experiment - project not found", func(a *biff.A) {
			resp := apiRequest("POST", "/projects/unknown/experiments").
				WithBodyJson(JSON{
					"name":      "Nothing",
					"species":   []string{"Homo sapiens"},
					"specimens": []string{"Blood"},
					"analytes":  []string{"DNA"},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})

		a.Alternative("Register experiment", func(a *biff.A) {
			resp := apiRequest("POST", "/projects/"+projectId+"/experiments").
				WithBodyJson(JSON{
					"name":      "Mouse vs human",
					"species":   []string{"Homo sapiens", "Mus musculus"},
					"specimens": []string{"Blood", "Liver"},
					"analytes":  []string{"DNA", "RNA"},
				}).Do()
			Save(resp, "Register experiment")

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			experiment := resp.BodyJsonMap()
			biff.AssertEqual(experiment["projectId"], projectId)
			experimentId := experiment["id"].(string)

			a.Alternative("List experiments", func(a *biff.A) {
				resp := apiRequest("GET", "/projects/"+projectId+"/experiments").Do()
				Save(resp, "List experiments")

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), []JSON{experiment})
			})

			a.Alternative("Open project view", func(a *biff.A) {
				resp := apiRequest("POST", "/projects/"+projectId+":openView").
					WithBodyJson(JSON{}).Do()
				Save(resp, "Open project view")

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				view := resp.BodyJsonMap()
				biff.AssertEqual(view["kind"], ViewKindProject)
				biff.AssertEqualJson(view["tabs"].([]interface{})[0].(JSON)["badge"], 1)
			})

			a.Alternative("Register samples - invalid", func(a *biff.A) {
				resp := apiRequest("POST", "/experiments/"+experimentId+"/samples").
					WithBodyJson([]JSON{
						{"label": "S-a", "species": "Danio rerio", "specimen": "Blood", "analyte": "DNA"},
					}).Do()
				Save(resp, "Register samples - invalid")

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				message := resp.BodyJsonMap()["error"].(JSON)["message"].(string)
				biff.AssertTrue(strings.Contains(message, "Danio rerio"))
			})

			a.Alternative("Register samples", func(a *biff.A) {
				resp := apiRequest("POST", "/experiments/"+experimentId+"/samples").
					WithBodyJson([]JSON{
						{"label": "S-a", "batchLabel": "B1", "condition": "control", "species": "Homo sapiens", "specimen": "Blood", "analyte": "DNA"},
						{"label": "S-b", "batchLabel": "B1", "condition": "treated", "species": "Mus musculus", "specimen": "Liver", "analyte": "RNA"},
						{"label": "S-c", "batchLabel": "B2", "condition": "treated", "species": "Homo sapiens", "specimen": "Liver", "analyte": "RNA"},
					}).Do()
				Save(resp, "Register samples")

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				samples := resp.BodyJson().([]interface{})
				biff.AssertEqual(len(samples), 3)
				biff.AssertEqual(samples[0].(JSON)["code"], "Q2TEST001")
				biff.AssertEqual(samples[2].(JSON)["code"], "Q2TEST003")
				firstId := samples[0].(JSON)["id"].(string)
				secondId := samples[1].(JSON)["id"].(string)

				a.Alternative("Find samples", func(a *biff.A) {
					resp := apiRequest("POST", "/experiments/"+experimentId+"/samples:find").
						WithBodyJson(JSON{
							"term":  "treated",
							"limit": 10,
						}).Do()
					Save(resp, "Find samples")

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					body := resp.BodyJsonMap()
					biff.AssertEqualJson(body["total"], 2)
					biff.AssertEqual(len(body["items"].([]interface{})), 2)
				})

				a.Alternative("List samples", func(a *biff.A) {
					resp := apiRequest("GET", "/experiments/"+experimentId+"/samples").
						WithQuery("limit", "1").
						WithQuery("sort", "-code").
						Do()
					Save(resp, "List samples")

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					body := resp.BodyJsonMap()
					biff.AssertEqualJson(body["total"], 3)
					items := body["items"].([]interface{})
					biff.AssertEqual(len(items), 1)
					biff.AssertEqual(items[0].(JSON)["code"], "Q2TEST003")
				})

				a.Alternative("List samples - bad offset", func(a *biff.A) {
					resp := apiRequest("GET", "/experiments/"+experimentId+"/samples").
						WithQuery("offset", "many").
						Do()

					biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				})

				a.Alternative("Register measurement", func(a *biff.A) {
					resp := apiRequest("POST", "/experiments/"+experimentId+"/measurements").
						WithBodyJson(JSON{
							"sampleIds":  []string{firstId},
							"technology": TechnologyGenomics,
							"facility":   "Genome center",
							"instrument": "NovaSeq",
						}).Do()
					Save(resp, "Register measurement")

					biff.AssertEqual(resp.StatusCode, http.StatusCreated)
					biff.AssertEqual(resp.BodyJsonMap()["code"], "NGS-Q2TEST-001")

					a.Alternative("Find measurements", func(a *biff.A) {
						resp := apiRequest("POST", "/experiments/"+experimentId+"/measurements:find").
							WithBodyJson(JSON{"term": "novaseq"}).Do()
						Save(resp, "Find measurements")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						biff.AssertEqualJson(resp.BodyJsonMap()["total"], 1)
					})

					a.Alternative("Delete measured sample", func(a *biff.A) {
						resp := apiRequest("POST", "/experiments/"+experimentId+"/samples:delete").
							WithBodyJson(JSON{"ids": []string{firstId}}).Do()
						Save(resp, "Delete samples - measured")

						biff.AssertEqual(resp.StatusCode, http.StatusConflict)
					})
				})

				a.Alternative("Delete samples", func(a *biff.A) {
					resp := apiRequest("POST", "/experiments/"+experimentId+"/samples:delete").
						WithBodyJson(JSON{"ids": []string{secondId}}).Do()
					Save(resp, "Delete samples")

					biff.AssertEqual(resp.StatusCode, http.StatusNoContent)
				})

				a.Alternative("Open experiment view", func(a *biff.A) {
					resp := apiRequest("POST", "/experiments/"+experimentId+":openView").
						WithBodyJson(JSON{}).Do()
					Save(resp, "Open experiment view")

					biff.AssertEqual(resp.StatusCode, http.StatusCreated)
					view := resp.BodyJsonMap()
					biff.AssertEqual(view["kind"], ViewKindExperiment)
					biff.AssertEqual(view["subject"], experimentId)
					tabs := view["tabs"].([]interface{})
					biff.AssertEqual(tabs[0].(JSON)["label"], TabSamples)
					biff.AssertEqualJson(tabs[0].(JSON)["badge"], 3)
					biff.AssertEqual(tabs[1].(JSON)["label"], TabMeasurements)
					biff.AssertEqualJson(tabs[1].(JSON)["badge"], 0)
					viewPath := "/views/" + view["id"].(string)
					samplesPath := viewPath + "/tabs/" + TabSamples

					a.Alternative("Get view", func(a *biff.A) {
						resp := apiRequest("GET", viewPath).Do()
						Save(resp, "Get view")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						biff.AssertEqualJson(resp.BodyJson(), view)
					})

					a.Alternative("Search tab", func(a *biff.A) {
						resp := apiRequest("POST", samplesPath+":search").
							WithBodyJson(JSON{"text": "treated"}).Do()
						Save(resp, "Search tab")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						state := resp.BodyJsonMap()
						biff.AssertEqual(state["search_text"], "treated")
						biff.AssertEqualJson(state["item_count"], JSON{"count": 2, "estimated": false})

						a.Alternative("Page tab", func(a *biff.A) {
							resp := apiRequest("POST", samplesPath+":page").
								WithBodyJson(JSON{"offset": 1, "limit": 10}).Do()
							Save(resp, "Page tab")

							biff.AssertEqual(resp.StatusCode, http.StatusOK)
							rows := resp.BodyJsonMap()["rows"].([]interface{})
							biff.AssertEqual(len(rows), 1)
							biff.AssertEqual(rows[0].(JSON)["code"], "Q2TEST003")
						})
					})

					a.Alternative("Select and export", func(a *biff.A) {
						resp := apiRequest("POST", samplesPath+":select").
							WithBodyJson(JSON{"keys": []string{secondId}}).Do()
						Save(resp, "Select rows")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						biff.AssertEqualJson(resp.BodyJsonMap()["selection"], JSON{"visible": true, "text": "1 sample is selected"})

						resp = apiRequest("POST", samplesPath+":columns").
							WithBodyJson(JSON{"visible": []string{"code", "label"}}).Do()
						biff.AssertEqual(resp.StatusCode, http.StatusOK)

						resp = apiRequest("POST", samplesPath+":action").
							WithBodyJson(JSON{"name": "export"}).Do()
						Save(resp, "Run grid action")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						exports := resp.BodyJsonMap()["exports"].(JSON)
						biff.AssertEqual(exports[TabSamples], "Sample ID,Sample Label\nQ2TEST002,S-b\n")
					})

					a.Alternative("Unknown action", func(a *biff.A) {
						resp := apiRequest("POST", samplesPath+":action").
							WithBodyJson(JSON{"name": "explode"}).Do()

						biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
					})

					a.Alternative("Sort by unknown column", func(a *biff.A) {
						resp := apiRequest("POST", samplesPath+":sort").
							WithBodyJson(JSON{"sort": []JSON{{"column": "nope", "direction": "asc"}}}).Do()

						biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
					})

					a.Alternative("Feature button", func(a *biff.A) {
						resp := apiRequest("POST", viewPath+":feature").Do()
						Save(resp, "Feature button")

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						exports := resp.BodyJsonMap()["exports"].(JSON)
						biff.AssertTrue(strings.HasPrefix(exports[TabSamples].(string), "Sample ID,"))
					})

					a.Alternative("Unknown tab", func(a *biff.A) {
						resp := apiRequest("GET", viewPath+"/tabs/Nope").Do()

						biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
					})

					a.Alternative("Close view", func(a *biff.A) {
						resp := apiRequest("POST", viewPath+":close").Do()
						Save(resp, "Close view")

						biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

						resp = apiRequest("GET", viewPath).Do()
						biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
					})
				})
			})
		})
	})

	a.Alternative("Register project - invalid", func(a *biff.A) {
		resp := apiRequest("POST", "/projects").
			WithBodyJson(JSON{}).Do()
		Save(resp, "Register project - invalid")

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"error": JSON{
				"message":     "invalid input: title is required; objective is required",
				"description": "Invalid input",
			},
		})
	})

	a.Alternative("Malformed JSON", func(a *biff.A) {
		resp := apiRequest("POST", "/projects").
			WithBodyString(`{"title":`).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("View not found", func(a *biff.A) {
		resp := apiRequest("GET", "/views/unknown").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})
}
