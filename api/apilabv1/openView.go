package apilabv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/service"
)

type openViewRequest struct {
	Where map[string]any `json:"where"`
}

func openProjectView(ctx context.Context, w http.ResponseWriter, input *openViewRequest) (*service.ViewState, error) {

	projectId := box.GetUrlParameter(ctx, "projectId")

	view, err := GetServicer(ctx).OpenProjectView(projectId, input.Where)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	state := view.State()
	return &state, nil
}

func openExperimentView(ctx context.Context, w http.ResponseWriter, input *openViewRequest) (*service.ViewState, error) {

	experimentId := box.GetUrlParameter(ctx, "experimentId")

	view, err := GetServicer(ctx).OpenExperimentView(experimentId, input.Where)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	state := view.State()
	return &state, nil
}
