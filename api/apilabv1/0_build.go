package apilabv1

import (
	"github.com/fulldump/box"
)

func BuildV1Lab(v1 *box.R) *box.R {

	projects := v1.Resource("/projects").
		WithActions(
			box.Get(listProjects),
			box.Post(registerProject),
		)

	v1.Resource("/projects/{projectId}").
		WithActions(
			box.Get(getProject),
			box.ActionPost(openProjectView).WithName("openView"),
		)

	v1.Resource("/projects/{projectId}/experiments").
		WithActions(
			box.Get(listExperiments),
			box.Post(registerExperiment),
		)

	v1.Resource("/experiments/{experimentId}").
		WithActions(
			box.Get(getExperiment),
			box.ActionPost(openExperimentView).WithName("openView"),
		)

	v1.Resource("/experiments/{experimentId}/samples").
		WithActions(
			box.Get(listSamples),
			box.Post(registerSamples),
			box.ActionPost(findSamples).WithName("find"),
			box.ActionPost(deleteSamples).WithName("delete"),
		)

	v1.Resource("/experiments/{experimentId}/measurements").
		WithActions(
			box.Get(listMeasurements),
			box.Post(registerMeasurement),
			box.ActionPost(findMeasurements).WithName("find"),
		)

	return projects
}
