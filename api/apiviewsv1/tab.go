package apiviewsv1

import (
	"context"
	"errors"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/logger"
	"github.com/fulldump/labgrid/service"
)

func getTabFromPath(ctx context.Context) (*service.View, grid.Controller, error) {

	view, err := getViewFromPath(ctx)
	if err != nil {
		return nil, nil, err
	}

	tab, err := view.Tab(box.GetUrlParameter(ctx, "tab"))
	if err != nil {
		return nil, nil, err
	}

	return view, tab.Controller(), nil
}

// withTab runs f over the grid of the tab in the path and returns the grid
// state afterwards.
func withTab(ctx context.Context, f func(g grid.Controller) error) (*grid.State, error) {

	_, g, err := getTabFromPath(ctx)
	if err != nil {
		return nil, err
	}

	err = f(g)
	if err != nil {
		return nil, err
	}

	state := g.State()
	return &state, nil
}

func getTab(ctx context.Context) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return nil
	})
}

type textRequest struct {
	Text string `json:"text"`
}

func search(ctx context.Context, input *textRequest) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return g.Search(input.Text)
	})
}

// typeText feeds keystrokes to the search box; the filter is applied once
// typing settles, so the state returned may not reflect it yet.
func typeText(ctx context.Context, w http.ResponseWriter, input *textRequest) (*grid.State, error) {
	state, err := withTab(ctx, func(g grid.Controller) error {
		return g.Type(input.Text)
	})
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusAccepted)
	return state, nil
}

type pageRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type pageResponse struct {
	Rows      []any          `json:"rows"`
	ItemCount grid.ItemCount `json:"item_count"`
}

func page(ctx context.Context, input *pageRequest) (*pageResponse, error) {

	_, g, err := getTabFromPath(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := g.Rows(input.Offset, input.Limit)
	if err != nil {
		return nil, err
	}
	count, err := g.ItemCount()
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []any{}
	}

	return &pageResponse{
		Rows:      rows,
		ItemCount: count,
	}, nil
}

type keysRequest struct {
	Keys []string `json:"keys"`
}

func selectKeys(ctx context.Context, input *keysRequest) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return g.SelectKeys(input.Keys...)
	})
}

func deselectKeys(ctx context.Context, input *keysRequest) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		g.DeselectKeys(input.Keys...)
		return nil
	})
}

func selectAll(ctx context.Context) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return g.SelectAll()
	})
}

func deselectAll(ctx context.Context) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		g.DeselectAll()
		return nil
	})
}

type columnsRequest struct {
	Visible []string `json:"visible"`
}

func setColumns(ctx context.Context, input *columnsRequest) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return g.SetVisibleColumns(input.Visible...)
	})
}

type sortRequest struct {
	Sort []grid.SortOrder `json:"sort"`
}

func setSort(ctx context.Context, input *sortRequest) (*grid.State, error) {
	return withTab(ctx, func(g grid.Controller) error {
		return g.SetSort(input.Sort...)
	})
}

type actionRequest struct {
	Name string `json:"name"`
}

type actionResponse struct {
	grid.State
	Exports map[string]string `json:"exports,omitempty"`
}

func runAction(ctx context.Context, input *actionRequest) (*actionResponse, error) {

	view, g, err := getTabFromPath(ctx)
	if err != nil {
		return nil, err
	}

	err = g.RunAction(input.Name)
	if errors.Is(err, grid.ErrActionNotFound) {
		logger.Get().Debug("unknown grid action", "view", view.Id, "grid", g.ID(), "action", input.Name)
	}
	if err != nil {
		return nil, err
	}

	return &actionResponse{
		State:   g.State(),
		Exports: view.TakeExports(),
	}, nil
}
