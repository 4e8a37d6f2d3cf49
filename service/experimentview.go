package service

import (
	"errors"
	"maps"

	"github.com/fulldump/labgrid/grid"
)

const (
	TabSamples      = "Samples"
	TabMeasurements = "Measurements"
	TabExperiments  = "Experiments"
)

// OpenExperimentView opens a view with the samples and the measurements of an
// experiment, both paged. where, when given, narrows every tab.
func (s *Service) OpenExperimentView(experimentId string, where map[string]any) (*View, error) {

	if _, err := s.GetExperiment(experimentId); err != nil {
		return nil, err
	}

	view := newView(ViewKindExperiment, experimentId)

	samples, err := s.newSamplesGrid(view, experimentId, where)
	if err != nil {
		return nil, err
	}
	measurements, err := s.newMeasurementsGrid(view, experimentId, where)
	if err != nil {
		samples.Dispose()
		return nil, err
	}

	samplesTab := grid.NewTab(TabSamples, samples)
	measurementsTab := grid.NewTab(TabMeasurements, measurements)

	err = errors.Join(
		view.Sheet.AddTab(samplesTab),
		view.Sheet.AddTab(measurementsTab),
	)
	if err == nil {
		err = wireTabActions(view, samplesTab, func() (string, error) { return exportGrid(samples) })
	}
	if err == nil {
		err = wireTabActions(view, measurementsTab, func() (string, error) { return exportGrid(measurements) })
	}
	if err != nil {
		view.close()
		return nil, err
	}
	view.Sheet.SetPrimaryCaption("Refresh")
	view.Sheet.SetFeatureCaption("Export")

	s.views.add(view)

	return view, nil
}

// wireTabActions makes the primary button refresh the tab and the feature
// button export it.
func wireTabActions(view *View, tab *grid.Tab, export func() (string, error)) error {
	_, err := view.Sheet.AddPrimaryAction(tab, func(tab *grid.Tab) error {
		return tab.Controller().Refresh()
	})
	if err != nil {
		return err
	}
	_, err = view.Sheet.AddFeatureAction(tab, func(tab *grid.Tab) error {
		content, err := export()
		if err != nil {
			return err
		}
		view.addExport(tab.Label(), content)
		return nil
	})
	return err
}

func (s *Service) newSamplesGrid(view *View, experimentId string, where map[string]any) (*grid.Grid[*Sample, SampleFilter], error) {

	g, err := grid.NewPaged(grid.Config[*Sample, SampleFilter]{
		Key: func(sample *Sample) string { return sample.Id },
		Filter: func() SampleFilter {
			return SampleFilter{Where: maps.Clone(where)}
		},
		Combine: func(text string, filter SampleFilter) SampleFilter {
			filter.Term = text
			return filter
		},
		Columns:  sampleColumns(),
		Debounce: s.options.Debounce,
		PageSize: s.options.PageSize,
	}, func(query grid.Query[SampleFilter]) ([]*Sample, error) {
		return s.SamplePreviews(experimentId, query.Offset, query.Limit, query.Filter, query.Sort)
	}, func(query grid.Query[SampleFilter]) (int, error) {
		return s.CountSamples(experimentId, query.Filter)
	})
	if err != nil {
		return nil, err
	}

	g.SetItemLabel("sample")
	g.SetPlaceholder("Search samples")

	err = g.SetSecondaryActions(
		grid.Action[*Sample]{
			Name:    "export",
			Caption: "Export selected",
			Run: func(selected []*Sample) error {
				content, err := exportCSV(g.VisibleColumns(), selected)
				if err != nil {
					return err
				}
				view.addExport(TabSamples, content)
				return nil
			},
		},
		grid.Action[*Sample]{
			Name:    "delete",
			Caption: "Delete selected",
			Run: func(selected []*Sample) error {
				ids := make([]string, len(selected))
				for i, sample := range selected {
					ids[i] = sample.Id
				}
				if err := s.DeleteSamples(ids...); err != nil {
					return err
				}
				g.DeselectKeys(ids...)
				return g.Refresh()
			},
		},
	)
	if err != nil {
		g.Dispose()
		return nil, err
	}

	return g, nil
}

func (s *Service) newMeasurementsGrid(view *View, experimentId string, where map[string]any) (*grid.Grid[*Measurement, MeasurementFilter], error) {

	g, err := grid.NewPaged(grid.Config[*Measurement, MeasurementFilter]{
		Key: func(m *Measurement) string { return m.Id },
		Filter: func() MeasurementFilter {
			return MeasurementFilter{Where: maps.Clone(where)}
		},
		Combine: func(text string, filter MeasurementFilter) MeasurementFilter {
			filter.Term = text
			return filter
		},
		Columns:  measurementColumns(),
		Debounce: s.options.Debounce,
		PageSize: s.options.PageSize,
	}, func(query grid.Query[MeasurementFilter]) ([]*Measurement, error) {
		return s.MeasurementPreviews(experimentId, query.Offset, query.Limit, query.Filter, query.Sort)
	}, func(query grid.Query[MeasurementFilter]) (int, error) {
		return s.CountMeasurements(experimentId, query.Filter)
	})
	if err != nil {
		return nil, err
	}

	g.SetItemLabel("measurement")
	g.SetPlaceholder("Search measurements")

	err = g.SetSecondaryActions(grid.Action[*Measurement]{
		Name:    "export",
		Caption: "Export selected",
		Run: func(selected []*Measurement) error {
			content, err := exportCSV(g.VisibleColumns(), selected)
			if err != nil {
				return err
			}
			view.addExport(TabMeasurements, content)
			return nil
		},
	})
	if err != nil {
		g.Dispose()
		return nil, err
	}

	return g, nil
}
