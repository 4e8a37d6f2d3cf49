package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fulldump/labgrid/collection"
	"github.com/fulldump/labgrid/logger"
)

// RegisterSamples registers a batch of samples. Either all of them are stored
// or none.
func (s *Service) RegisterSamples(experimentId string, input []*RegisterSample) ([]*Sample, error) {

	experiment, err := s.GetExperiment(experimentId)
	if err != nil {
		return nil, err
	}
	project, err := s.GetProject(experiment.ProjectId)
	if err != nil {
		return nil, err
	}

	v := &validator{}
	if len(input) == 0 {
		v.addf("at least one sample is required")
	}
	labels := map[string]bool{}
	for i, sample := range input {
		v.prefix = fmt.Sprintf("sample %d: ", i+1)
		if sample == nil {
			v.addf("is empty")
			continue
		}
		v.required("label", sample.Label)
		if labels[sample.Label] {
			v.addf("label '%s' is repeated", sample.Label)
		}
		labels[sample.Label] = true
		v.oneOf("species", sample.Species, experiment.Species)
		v.oneOf("specimen", sample.Specimen, experiment.Specimens)
		v.oneOf("analyte", sample.Analyte, experiment.Analytes)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	seq, err := nextSequence(s.samples, project.Code)
	if err != nil {
		return nil, err
	}

	rows := make([]*collection.Row, 0, len(input))
	for i, sample := range input {
		row, err := s.samples.Insert(&Sample{
			ExperimentId:      experimentId,
			Code:              formatCode(project.Code, seq+i),
			Label:             sample.Label,
			BatchLabel:        sample.BatchLabel,
			BioReplicateLabel: sample.BioReplicateLabel,
			Condition:         sample.Condition,
			Species:           sample.Species,
			Specimen:          sample.Specimen,
			Analyte:           sample.Analyte,
			Comment:           sample.Comment,
		})
		if err != nil {
			s.rollback(s.samples, rows)
			if errors.Is(err, collection.ErrIndexConflict) {
				return nil, fmt.Errorf("%w: %s", ErrorConflict, err.Error())
			}
			return nil, err
		}
		rows = append(rows, row)
	}

	return decodeRows[Sample](rows)
}

func (s *Service) rollback(col *collection.Collection, rows []*collection.Row) {
	for _, row := range rows {
		if err := col.Remove(row); err != nil {
			logger.Get().Error("rollback", "collection", col.Filename, "row", row.I, "err", err)
		}
	}
}

func (s *Service) GetSample(id string) (*Sample, error) {
	sample, _, err := findById[Sample](s.samples, id, ErrorSampleNotFound)
	return sample, err
}

// DeleteSamples removes samples no measurement refers to.
func (s *Service) DeleteSamples(ids ...string) error {

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows := make([]*collection.Row, 0, len(ids))
	for _, id := range ids {
		row, err := s.samples.FindBy(indexById, id)
		if err != nil {
			return fmt.Errorf("%w: '%s'", ErrorSampleNotFound, id)
		}
		rows = append(rows, row)
	}

	used := []string{}
	err := s.measurements.Find(collection.FindOptions{}, func(row *collection.Row) bool {
		sampleIds, _ := row.Data["sampleIds"].([]any)
		for _, id := range ids {
			if slices.Contains(sampleIds, any(id)) {
				used = append(used, id)
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	if len(used) > 0 {
		slices.Sort(used)
		used = slices.Compact(used)
		return fmt.Errorf("%w: samples %v are measured", ErrorConflict, used)
	}

	for _, row := range rows {
		if err := s.samples.Remove(row); err != nil {
			return err
		}
	}
	return nil
}
