package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/fulldump/biff"

	"github.com/fulldump/labgrid/database"
	"github.com/fulldump/labgrid/grid"
)

func newTestService(t *testing.T) *Service {
	db := database.NewDatabase(&database.Config{Dir: t.TempDir()})
	AssertNil(db.Load())

	s, err := NewService(db, Options{Debounce: -1, ViewTTL: time.Minute})
	AssertNil(err)
	return s
}

func registerFixture(s *Service) (*Project, *Experiment, []*Sample) {
	project, err := s.RegisterProject(&RegisterProject{
		Code:      "Q2ABCD",
		Title:     "Liver study",
		Objective: "Compare treated and control livers",
	})
	AssertNil(err)

	experiment, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
		Name:      "Mouse vs human",
		Species:   []string{"Homo sapiens", "Mus musculus"},
		Specimens: []string{"Blood", "Liver"},
		Analytes:  []string{"DNA", "RNA"},
	})
	AssertNil(err)

	samples, err := s.RegisterSamples(experiment.Id, []*RegisterSample{
		{Label: "S-a", BatchLabel: "B1", Condition: "control", Species: "Homo sapiens", Specimen: "Blood", Analyte: "DNA"},
		{Label: "S-b", BatchLabel: "B1", Condition: "treated", Species: "Mus musculus", Specimen: "Liver", Analyte: "RNA"},
		{Label: "S-c", BatchLabel: "B2", Condition: "treated", Species: "Homo sapiens", Specimen: "Liver", Analyte: "RNA", Comment: "late"},
	})
	AssertNil(err)

	return project, experiment, samples
}

func sampleLabels(samples []*Sample) []string {
	labels := []string{}
	for _, sample := range samples {
		labels = append(labels, sample.Label)
	}
	return labels
}

func TestRegisterProject(t *testing.T) {

	Alternative("Register project", func(a *A) {
		s := newTestService(t)

		a.Alternative("Random code", func(a *A) {
			project, err := s.RegisterProject(&RegisterProject{Title: "t", Objective: "o"})
			AssertNil(err)
			AssertTrue(strings.HasPrefix(project.Code, "Q2"))
			AssertEqual(len(project.Code), 6)
			AssertTrue(project.Id != "")
			AssertFalse(project.CreatedAt.IsZero())

			found, err := s.GetProject(project.Id)
			AssertNil(err)
			AssertEqual(found.Code, project.Code)
		})

		a.Alternative("Given code is normalized", func(a *A) {
			project, err := s.RegisterProject(&RegisterProject{Code: "q2abcd", Title: "t", Objective: "o"})
			AssertNil(err)
			AssertEqual(project.Code, "Q2ABCD")

			_, err = s.RegisterProject(&RegisterProject{Code: "Q2ABCD", Title: "t2", Objective: "o2"})
			AssertTrue(errors.Is(err, ErrorConflict))

			projects, err := s.ListProjects()
			AssertNil(err)
			AssertEqual(len(projects), 1)
		})

		a.Alternative("Validation", func(a *A) {
			_, err := s.RegisterProject(&RegisterProject{Code: "Q2FUCK"})

			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
			AssertEqual(validation.Problems, []string{
				"title is required",
				"objective is required",
				"Q2FUCK contains a blacklisted expression",
			})
		})

		a.Alternative("Unknown project", func(a *A) {
			_, err := s.GetProject("nope")
			AssertTrue(errors.Is(err, ErrorProjectNotFound))
		})
	})
}

func TestParseProjectCode(t *testing.T) {
	code, err := ParseProjectCode(" q2x0y1 ")
	AssertNil(err)
	AssertEqual(code, "Q2X0Y1")

	for _, invalid := range []string{"Q2ABC", "Q3ABCD", "Q2ABCZ", "Q2SHIT", ""} {
		_, err := ParseProjectCode(invalid)
		AssertNotNil(err)
	}

	for i := 0; i < 100; i++ {
		_, err := ParseProjectCode(RandomProjectCode())
		AssertNil(err)
	}
}

func TestRegisterExperiment(t *testing.T) {

	Alternative("Register experiment", func(a *A) {
		s := newTestService(t)
		project, experiment, _ := registerFixture(s)

		a.Alternative("List", func(a *A) {
			second, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
				Name:      "A first name",
				Species:   []string{"Mus musculus"},
				Specimens: []string{"Blood"},
				Analytes:  []string{"DNA"},
			})
			AssertNil(err)

			experiments, err := s.ListExperiments(project.Id)
			AssertNil(err)
			AssertEqual(len(experiments), 2)
			AssertEqual(experiments[0].Id, second.Id)
			AssertEqual(experiments[1].Id, experiment.Id)
		})

		a.Alternative("Repeated name", func(a *A) {
			_, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
				Name:      experiment.Name,
				Species:   []string{"Mus musculus"},
				Specimens: []string{"Blood"},
				Analytes:  []string{"DNA"},
			})
			AssertTrue(errors.Is(err, ErrorConflict))
		})

		a.Alternative("Validation", func(a *A) {
			_, err := s.RegisterExperiment(project.Id, &RegisterExperiment{})
			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
			AssertEqual(len(validation.Problems), 4)
		})

		a.Alternative("Unknown project", func(a *A) {
			_, err := s.RegisterExperiment("nope", &RegisterExperiment{})
			AssertTrue(errors.Is(err, ErrorProjectNotFound))

			_, err = s.ListExperiments("nope")
			AssertTrue(errors.Is(err, ErrorProjectNotFound))
		})
	})
}

func TestRegisterSamples(t *testing.T) {

	Alternative("Register samples", func(a *A) {
		s := newTestService(t)
		_, experiment, samples := registerFixture(s)

		AssertEqual(samples[0].Code, "Q2ABCD001")
		AssertEqual(samples[2].Code, "Q2ABCD003")
		AssertEqual(samples[2].ExperimentId, experiment.Id)

		a.Alternative("Codes continue", func(a *A) {
			more, err := s.RegisterSamples(experiment.Id, []*RegisterSample{
				{Label: "S-d", Species: "Homo sapiens", Specimen: "Blood", Analyte: "DNA"},
			})
			AssertNil(err)
			AssertEqual(more[0].Code, "Q2ABCD004")
		})

		a.Alternative("All or nothing", func(a *A) {
			_, err := s.RegisterSamples(experiment.Id, []*RegisterSample{
				{Label: "S-d", Species: "Homo sapiens", Specimen: "Blood", Analyte: "DNA"},
				{Label: "S-d", Species: "Rattus", Specimen: "Blood", Analyte: "DNA"},
			})
			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
			AssertEqual(validation.Problems, []string{
				"sample 2: label 'S-d' is repeated",
				"sample 2: species 'Rattus' is not one of Homo sapiens, Mus musculus",
			})

			n, err := s.CountSamples(experiment.Id, SampleFilter{})
			AssertNil(err)
			AssertEqual(n, 3)
		})

		a.Alternative("Empty batch", func(a *A) {
			_, err := s.RegisterSamples(experiment.Id, nil)
			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
		})

		a.Alternative("Delete", func(a *A) {
			AssertNil(s.DeleteSamples(samples[0].Id))

			_, err := s.GetSample(samples[0].Id)
			AssertTrue(errors.Is(err, ErrorSampleNotFound))

			err = s.DeleteSamples("nope")
			AssertTrue(errors.Is(err, ErrorSampleNotFound))
		})

		a.Alternative("Delete measured sample", func(a *A) {
			_, err := s.RegisterMeasurement(experiment.Id, &RegisterMeasurement{
				SampleIds:  []string{samples[1].Id},
				Technology: TechnologyGenomics,
				Facility:   "Genome center",
				Instrument: "NovaSeq",
			})
			AssertNil(err)

			err = s.DeleteSamples(samples[0].Id, samples[1].Id)
			AssertTrue(errors.Is(err, ErrorConflict))

			n, _ := s.CountSamples(experiment.Id, SampleFilter{})
			AssertEqual(n, 3)
		})
	})
}

func TestRegisterMeasurement(t *testing.T) {

	Alternative("Register measurement", func(a *A) {
		s := newTestService(t)
		project, experiment, samples := registerFixture(s)

		register := func(technology string, sampleIds ...string) (*Measurement, error) {
			return s.RegisterMeasurement(experiment.Id, &RegisterMeasurement{
				SampleIds:  sampleIds,
				Technology: technology,
				Facility:   "Core facility",
				Instrument: "Instrument 1",
			})
		}

		a.Alternative("Codes", func(a *A) {
			first, err := register(TechnologyGenomics, samples[0].Id)
			AssertNil(err)
			AssertEqual(first.Code, "NGS-Q2ABCD-001")
			AssertEqual(first.SampleIds, []string{samples[0].Id})

			second, err := register(TechnologyProteomics, samples[0].Id, samples[1].Id)
			AssertNil(err)
			AssertEqual(second.Code, "MS-Q2ABCD-001")

			third, err := register(TechnologyGenomics, samples[2].Id)
			AssertNil(err)
			AssertEqual(third.Code, "NGS-Q2ABCD-002")
		})

		a.Alternative("Sample of another experiment", func(a *A) {
			other, err := s.RegisterExperiment(project.Id, &RegisterExperiment{
				Name:      "Other",
				Species:   []string{"Mus musculus"},
				Specimens: []string{"Blood"},
				Analytes:  []string{"DNA"},
			})
			AssertNil(err)

			_, err = s.RegisterMeasurement(other.Id, &RegisterMeasurement{
				SampleIds:  []string{samples[0].Id, "nope"},
				Technology: "imaging",
				Facility:   "f",
				Instrument: "i",
			})
			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
			AssertEqual(validation.Problems, []string{
				"technology 'imaging' is not one of genomics, proteomics",
				"sample 'Q2ABCD001' belongs to another experiment",
				"sample 'nope' not found",
			})
		})
	})
}

func TestSamplePreviews(t *testing.T) {

	Alternative("Sample previews", func(a *A) {
		s := newTestService(t)
		_, experiment, _ := registerFixture(s)

		previews := func(offset, limit int, filter SampleFilter, sort ...grid.SortOrder) []string {
			samples, err := s.SamplePreviews(experiment.Id, offset, limit, filter, sort)
			AssertNil(err)
			return sampleLabels(samples)
		}

		a.Alternative("Everything in code order", func(a *A) {
			AssertEqual(previews(0, 10, SampleFilter{}), []string{"S-a", "S-b", "S-c"})
			AssertEqual(previews(1, 1, SampleFilter{}), []string{"S-b"})
			AssertEqual(previews(0, 10, SampleFilter{}, grid.SortOrder{Column: "code", Direction: grid.Descending}), []string{"S-c", "S-b", "S-a"})
		})

		a.Alternative("Term", func(a *A) {
			filter := SampleFilter{Term: "LIVER"}
			AssertEqual(previews(0, 10, filter), []string{"S-b", "S-c"})

			n, err := s.CountSamples(experiment.Id, filter)
			AssertNil(err)
			AssertEqual(n, 2)

			AssertEqual(previews(0, 10, SampleFilter{Term: "late"}), []string{"S-c"})
			AssertEqual(previews(0, 10, SampleFilter{Term: "q2abcd002"}), []string{"S-b"})
		})

		a.Alternative("Term and where", func(a *A) {
			filter := SampleFilter{
				Term:  "treated",
				Where: map[string]any{"species": "Homo sapiens"},
			}
			AssertEqual(previews(0, 10, filter), []string{"S-c"})
		})

		a.Alternative("Sort by other columns", func(a *A) {
			byBatch := []grid.SortOrder{
				{Column: "batchLabel", Direction: grid.Descending},
				{Column: "label", Direction: grid.Ascending},
			}
			AssertEqual(previews(0, 10, SampleFilter{}, byBatch...), []string{"S-c", "S-a", "S-b"})
			AssertEqual(previews(1, 10, SampleFilter{}, byBatch...), []string{"S-a", "S-b"})
			AssertEqual(previews(5, 10, SampleFilter{}, byBatch...), []string{})
		})

		a.Alternative("Unknown sort column", func(a *A) {
			_, err := s.SamplePreviews(experiment.Id, 0, 10, SampleFilter{}, []grid.SortOrder{{Column: "volume"}})
			validation := &ValidationError{}
			AssertTrue(errors.As(err, &validation))
		})

		a.Alternative("Other experiment is empty", func(a *A) {
			AssertEqual(previews(0, 10, SampleFilter{}), []string{"S-a", "S-b", "S-c"})
			samples, err := s.SamplePreviews("other", 0, 10, SampleFilter{}, nil)
			AssertNil(err)
			AssertEqual(len(samples), 0)
		})
	})
}
