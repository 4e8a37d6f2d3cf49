package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fulldump/labgrid/collection"
)

var technologies = []string{TechnologyGenomics, TechnologyProteomics}

func (s *Service) RegisterMeasurement(experimentId string, input *RegisterMeasurement) (*Measurement, error) {

	experiment, err := s.GetExperiment(experimentId)
	if err != nil {
		return nil, err
	}
	project, err := s.GetProject(experiment.ProjectId)
	if err != nil {
		return nil, err
	}

	v := &validator{}
	v.oneOf("technology", input.Technology, technologies)
	v.required("facility", input.Facility)
	v.required("instrument", input.Instrument)
	v.notEmpty("sample", input.SampleIds)
	for _, id := range input.SampleIds {
		sample, err := s.GetSample(id)
		if err != nil {
			v.addf("sample '%s' not found", id)
			continue
		}
		if sample.ExperimentId != experimentId {
			v.addf("sample '%s' belongs to another experiment", sample.Code)
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	prefix := measurementCodePrefix(input.Technology, project.Code)
	seq, err := nextSequence(s.measurements, prefix)
	if err != nil {
		return nil, err
	}

	row, err := s.measurements.Insert(&Measurement{
		ExperimentId: experimentId,
		Code:         formatCode(prefix, seq),
		SampleIds:    input.SampleIds,
		Technology:   input.Technology,
		Facility:     input.Facility,
		Instrument:   input.Instrument,
		RegisteredAt: time.Now().UTC(),
	})
	if errors.Is(err, collection.ErrIndexConflict) {
		return nil, fmt.Errorf("%w: %s", ErrorConflict, err.Error())
	}
	if err != nil {
		return nil, err
	}

	return decodeRow[Measurement](row)
}
