package service

import (
	"maps"
	"slices"
	"strings"

	"github.com/SierraSoftworks/connor"

	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/logger"
	"github.com/fulldump/labgrid/utils"
)

type ExperimentFilter struct {
	Term  string         `json:"term"`
	Where map[string]any `json:"where,omitempty"`
}

func matchExperiment(experiment *Experiment, filter ExperimentFilter) bool {
	term := strings.ToLower(strings.TrimSpace(filter.Term))
	if term != "" {
		texts := append([]string{experiment.Name}, experiment.Species...)
		texts = append(texts, experiment.Specimens...)
		texts = append(texts, experiment.Analytes...)
		found := slices.ContainsFunc(texts, func(text string) bool {
			return strings.Contains(strings.ToLower(text), term)
		})
		if !found {
			return false
		}
	}

	if len(filter.Where) == 0 {
		return true
	}
	data := map[string]any{}
	if err := utils.Remarshal(experiment, &data); err != nil {
		return false
	}
	ok, err := connor.Match(filter.Where, data)
	if err != nil {
		logger.Get().Debug("match experiment", "experiment", experiment.Id, "err", err)
		return false
	}
	return ok
}

// OpenProjectView opens a view with the experiments of a project, held in
// memory. where, when given, narrows the experiments.
func (s *Service) OpenProjectView(projectId string, where map[string]any) (*View, error) {

	experiments, err := s.ListExperiments(projectId)
	if err != nil {
		return nil, err
	}

	view := newView(ViewKindProject, projectId)

	g, err := grid.NewInMemory(grid.Config[*Experiment, ExperimentFilter]{
		Key: func(e *Experiment) string { return e.Id },
		Filter: func() ExperimentFilter {
			return ExperimentFilter{Where: maps.Clone(where)}
		},
		Combine: func(text string, filter ExperimentFilter) ExperimentFilter {
			filter.Term = text
			return filter
		},
		Columns:  experimentColumns(),
		Debounce: s.options.Debounce,
	}, experiments, matchExperiment)
	if err != nil {
		return nil, err
	}
	g.SetItemLabel("experiment")
	g.SetPlaceholder("Search experiments")

	err = g.SetSecondaryActions(grid.Action[*Experiment]{
		Name:    "export",
		Caption: "Export selected",
		Run: func(selected []*Experiment) error {
			content, err := exportCSV(g.VisibleColumns(), selected)
			if err != nil {
				return err
			}
			view.addExport(TabExperiments, content)
			return nil
		},
	})
	if err != nil {
		g.Dispose()
		return nil, err
	}

	tab := grid.NewTab(TabExperiments, g)
	err = view.Sheet.AddTab(tab)
	if err == nil {
		_, err = view.Sheet.AddPrimaryAction(tab, func(*grid.Tab) error {
			experiments, err := s.ListExperiments(projectId)
			if err != nil {
				return err
			}
			return g.SetItems(experiments)
		})
	}
	if err == nil {
		_, err = view.Sheet.AddFeatureAction(tab, func(tab *grid.Tab) error {
			content, err := exportGrid(g)
			if err != nil {
				return err
			}
			view.addExport(tab.Label(), content)
			return nil
		})
	}
	if err != nil {
		view.close()
		g.Dispose()
		return nil, err
	}
	view.Sheet.SetPrimaryCaption("Reload")
	view.Sheet.SetFeatureCaption("Export")

	s.views.add(view)

	return view, nil
}
