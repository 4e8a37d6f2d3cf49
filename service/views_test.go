package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/fulldump/biff"

	"github.com/fulldump/labgrid/grid"
)

func badges(view *View) map[string]int {
	result := map[string]int{}
	for _, tab := range view.State().Tabs {
		result[tab.Label] = tab.Badge
	}
	return result
}

func TestExperimentView(t *testing.T) {

	Alternative("Experiment view", func(a *A) {
		s := newTestService(t)
		_, experiment, samples := registerFixture(s)
		_, err := s.RegisterMeasurement(experiment.Id, &RegisterMeasurement{
			SampleIds:  []string{samples[0].Id},
			Technology: TechnologyGenomics,
			Facility:   "Genome center",
			Instrument: "NovaSeq",
		})
		AssertNil(err)

		view, err := s.OpenExperimentView(experiment.Id, nil)
		AssertNil(err)

		state := view.State()
		AssertEqual(state.Kind, ViewKindExperiment)
		AssertEqual(state.Subject, experiment.Id)
		AssertEqual(state.Selected, 0)
		AssertEqual(state.Primary, grid.Button{Caption: "Refresh", Visible: true})
		AssertEqual(state.Feature, grid.Button{Caption: "Export", Visible: true})
		AssertEqual(badges(view), map[string]int{TabSamples: 3, TabMeasurements: 1})

		samplesTab, err := view.Tab(TabSamples)
		AssertNil(err)
		samplesGrid := samplesTab.Controller()

		a.Alternative("Search updates the badge", func(a *A) {
			AssertNil(samplesGrid.Search("liver"))
			AssertEqual(badges(view)[TabSamples], 2)

			rows, err := samplesGrid.Rows(0, 0)
			AssertNil(err)
			AssertEqual(len(rows), 2)
			AssertEqual(rows[0].(*Sample).Label, "S-b")

			AssertEqual(samplesGrid.State().Placeholder, "Search samples")
		})

		a.Alternative("Export selected", func(a *A) {
			AssertNil(samplesGrid.SelectKeys(samples[1].Id))
			AssertEqual(samplesGrid.State().Selection, grid.SelectionIndicator{Visible: true, Text: "1 sample is selected"})

			AssertNil(samplesGrid.SetVisibleColumns("code", "label"))
			AssertNil(samplesGrid.RunAction("export"))

			exports := view.TakeExports()
			AssertEqual(exports[TabSamples], "Sample ID,Sample Label\nQ2ABCD002,S-b\n")
			AssertEqual(len(view.TakeExports()), 0)
		})

		a.Alternative("Feature button exports every tab", func(a *A) {
			AssertNil(samplesGrid.Search("treated"))
			AssertNil(view.Sheet.ClickFeature())

			exports := view.TakeExports()
			lines := strings.Split(strings.TrimSpace(exports[TabSamples]), "\n")
			AssertEqual(len(lines), 3)
			AssertTrue(strings.HasPrefix(lines[1], "Q2ABCD002,S-b,"))
			AssertTrue(strings.Contains(exports[TabMeasurements], "NGS-Q2ABCD-001"))
		})

		a.Alternative("Primary button refreshes", func(a *A) {
			_, err := s.RegisterSamples(experiment.Id, []*RegisterSample{
				{Label: "S-d", Species: "Mus musculus", Specimen: "Blood", Analyte: "DNA"},
			})
			AssertNil(err)
			AssertEqual(badges(view)[TabSamples], 3)

			AssertNil(view.Sheet.ClickPrimary())
			AssertEqual(badges(view)[TabSamples], 4)
		})

		a.Alternative("Delete action", func(a *A) {
			AssertNil(samplesGrid.SelectKeys(samples[2].Id))
			AssertNil(samplesGrid.RunAction("delete"))
			AssertEqual(badges(view)[TabSamples], 2)
			AssertEqual(len(samplesGrid.State().Selected), 0)

			AssertNil(samplesGrid.SelectKeys(samples[0].Id))
			err := samplesGrid.RunAction("delete")
			AssertTrue(errors.Is(err, ErrorConflict))
		})

		a.Alternative("Sort", func(a *A) {
			AssertNil(samplesGrid.SetSort(grid.SortOrder{Column: "label", Direction: grid.Descending}))
			rows, err := samplesGrid.Rows(0, 2)
			AssertNil(err)
			AssertEqual(rows[0].(*Sample).Label, "S-c")
			AssertEqual(rows[1].(*Sample).Label, "S-b")
		})

		a.Alternative("Close", func(a *A) {
			AssertNil(s.CloseView(view.Id))
			AssertEqual(view.Sheet.Len(), 0)

			_, err := s.GetView(view.Id)
			AssertTrue(errors.Is(err, ErrorViewNotFound))

			err = samplesGrid.Search("x")
			AssertTrue(errors.Is(err, grid.ErrDisposed))

			err = s.CloseView(view.Id)
			AssertTrue(errors.Is(err, ErrorViewNotFound))
		})

		a.Alternative("Expire", func(a *A) {
			AssertEqual(s.ExpireViews(time.Now()), 0)

			_, err := s.GetView(view.Id)
			AssertNil(err)

			AssertEqual(s.ExpireViews(time.Now().Add(2*time.Minute)), 1)
			_, err = s.GetView(view.Id)
			AssertTrue(errors.Is(err, ErrorViewNotFound))
		})

		a.Alternative("Unknown tab", func(a *A) {
			_, err := view.Tab("nope")
			AssertTrue(errors.Is(err, ErrorTabNotFound))
		})
	})
}

func TestExperimentView_Where(t *testing.T) {

	Alternative("Experiment view with where", func(a *A) {
		s := newTestService(t)
		_, experiment, samples := registerFixture(s)
		_, err := s.RegisterMeasurement(experiment.Id, &RegisterMeasurement{
			SampleIds:  []string{samples[1].Id},
			Technology: TechnologyGenomics,
			Facility:   "Genome center",
			Instrument: "NovaSeq",
		})
		AssertNil(err)

		a.Alternative("Sample fields", func(a *A) {
			view, err := s.OpenExperimentView(experiment.Id, map[string]any{"species": "Mus musculus"})
			AssertNil(err)
			defer s.CloseView(view.Id)

			AssertEqual(badges(view), map[string]int{TabSamples: 1, TabMeasurements: 0})
		})

		a.Alternative("Measurement fields", func(a *A) {
			view, err := s.OpenExperimentView(experiment.Id, map[string]any{"facility": "Genome center"})
			AssertNil(err)
			defer s.CloseView(view.Id)

			AssertEqual(badges(view), map[string]int{TabSamples: 0, TabMeasurements: 1})

			tab, err := view.Tab(TabMeasurements)
			AssertNil(err)
			AssertNil(tab.Controller().Search("novaseq"))
			AssertEqual(badges(view)[TabMeasurements], 1)
			AssertNil(tab.Controller().Search("hiseq"))
			AssertEqual(badges(view)[TabMeasurements], 0)
		})

		a.Alternative("Unknown experiment", func(a *A) {
			_, err := s.OpenExperimentView("nope", nil)
			AssertTrue(errors.Is(err, ErrorExperimentNotFound))
		})
	})
}

func TestProjectView(t *testing.T) {

	Alternative("Project view", func(a *A) {
		s := newTestService(t)
		project, _, _ := registerFixture(s)
		_, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
			Name:      "Second",
			Species:   []string{"Mus musculus"},
			Specimens: []string{"Blood"},
			Analytes:  []string{"RNA"},
		})
		AssertNil(err)

		a.Alternative("All experiments", func(a *A) {
			view, err := s.OpenProjectView(project.Id, nil)
			AssertNil(err)
			AssertEqual(badges(view), map[string]int{TabExperiments: 2})

			tab, _ := view.Tab(TabExperiments)
			AssertEqual(tab.Controller().Kind(), grid.InMemory)

			AssertNil(tab.Controller().Search("SECOND"))
			AssertEqual(badges(view)[TabExperiments], 1)

			AssertNil(view.Sheet.ClickFeature())
			AssertEqual(view.TakeExports()[TabExperiments], "Name,Species,Specimens,Analytes\nSecond,Mus musculus,Blood,RNA\n")

			a.Alternative("Reload", func(a *A) {
				_, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
					Name:      "Second again",
					Species:   []string{"Mus musculus"},
					Specimens: []string{"Blood"},
					Analytes:  []string{"DNA"},
				})
				AssertNil(err)
				AssertEqual(badges(view)[TabExperiments], 1)

				AssertNil(view.Sheet.ClickPrimary())
				AssertEqual(badges(view)[TabExperiments], 2)
			})
		})

		a.Alternative("Structured filter", func(a *A) {
			view, err := s.OpenProjectView(project.Id, map[string]any{"name": "Second"})
			AssertNil(err)
			AssertEqual(badges(view)[TabExperiments], 1)

			tab, _ := view.Tab(TabExperiments)
			AssertNil(tab.Controller().Search("mouse"))
			AssertEqual(badges(view)[TabExperiments], 0)
		})

		a.Alternative("Unknown project", func(a *A) {
			_, err := s.OpenProjectView("nope", nil)
			AssertTrue(errors.Is(err, ErrorProjectNotFound))
		})
	})
}
