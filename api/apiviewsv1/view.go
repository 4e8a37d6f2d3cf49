package apiviewsv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/service"
)

func getViewFromPath(ctx context.Context) (*service.View, error) {
	viewId := box.GetUrlParameter(ctx, "viewId")
	return GetServicer(ctx).GetView(viewId)
}

func getView(ctx context.Context) (*service.ViewState, error) {

	view, err := getViewFromPath(ctx)
	if err != nil {
		return nil, err
	}

	state := view.State()
	return &state, nil
}

type selectTabRequest struct {
	Tab string `json:"tab"`
}

func selectTab(ctx context.Context, input *selectTabRequest) (*service.ViewState, error) {

	view, err := getViewFromPath(ctx)
	if err != nil {
		return nil, err
	}

	tab, err := view.Tab(input.Tab)
	if err != nil {
		return nil, err
	}
	err = view.Sheet.SelectTab(view.Sheet.IndexOf(tab))
	if err != nil {
		return nil, err
	}

	state := view.State()
	return &state, nil
}

type clickResponse struct {
	service.ViewState
	Exports map[string]string `json:"exports,omitempty"`
}

func clickPrimary(ctx context.Context) (*clickResponse, error) {
	return click(ctx, (*grid.TabSheet).ClickPrimary)
}

func clickFeature(ctx context.Context) (*clickResponse, error) {
	return click(ctx, (*grid.TabSheet).ClickFeature)
}

func click(ctx context.Context, f func(*grid.TabSheet) error) (*clickResponse, error) {

	view, err := getViewFromPath(ctx)
	if err != nil {
		return nil, err
	}

	err = f(view.Sheet)
	if err != nil {
		return nil, err
	}

	return &clickResponse{
		ViewState: view.State(),
		Exports:   view.TakeExports(),
	}, nil
}

func closeView(ctx context.Context, w http.ResponseWriter) error {

	viewId := box.GetUrlParameter(ctx, "viewId")

	err := GetServicer(ctx).CloseView(viewId)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
