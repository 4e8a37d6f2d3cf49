package service

import (
	"errors"
	"fmt"

	"github.com/fulldump/labgrid/collection"
)

func (s *Service) RegisterExperiment(projectId string, input *RegisterExperiment) (*Experiment, error) {

	if _, err := s.GetProject(projectId); err != nil {
		return nil, err
	}

	v := &validator{}
	v.required("name", input.Name)
	v.notEmpty("species", input.Species)
	v.notEmpty("specimen", input.Specimens)
	v.notEmpty("analyte", input.Analytes)
	if err := v.err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	row, err := s.experiments.Insert(&Experiment{
		ProjectId: projectId,
		Name:      input.Name,
		Species:   input.Species,
		Specimens: input.Specimens,
		Analytes:  input.Analytes,
	})
	if errors.Is(err, collection.ErrIndexConflict) {
		return nil, fmt.Errorf("%w: experiment '%s' already exists in project", ErrorConflict, input.Name)
	}
	if err != nil {
		return nil, err
	}

	return decodeRow[Experiment](row)
}

func (s *Service) GetExperiment(id string) (*Experiment, error) {
	experiment, _, err := findById[Experiment](s.experiments, id, ErrorExperimentNotFound)
	return experiment, err
}

// ListExperiments returns the experiments of a project sorted by name.
func (s *Service) ListExperiments(projectId string) ([]*Experiment, error) {
	if _, err := s.GetProject(projectId); err != nil {
		return nil, err
	}

	rows, err := findRows(s.experiments, collection.FindOptions{
		Index:    indexByProject,
		Traverse: keyRange("projectId", projectId),
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[Experiment](rows)
}
