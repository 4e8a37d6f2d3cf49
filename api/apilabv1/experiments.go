package apilabv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/service"
)

func listExperiments(ctx context.Context) ([]*service.Experiment, error) {
	projectId := box.GetUrlParameter(ctx, "projectId")
	return GetServicer(ctx).ListExperiments(projectId)
}

func registerExperiment(ctx context.Context, w http.ResponseWriter, input *service.RegisterExperiment) (*service.Experiment, error) {

	projectId := box.GetUrlParameter(ctx, "projectId")

	experiment, err := GetServicer(ctx).RegisterExperiment(projectId, input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return experiment, nil
}

func getExperiment(ctx context.Context) (*service.Experiment, error) {
	experimentId := box.GetUrlParameter(ctx, "experimentId")
	return GetServicer(ctx).GetExperiment(experimentId)
}
