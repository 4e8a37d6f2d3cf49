package service

import (
	"errors"
	"time"

	"github.com/fulldump/labgrid/grid"
)

var (
	ErrorProjectNotFound     = errors.New("project not found")
	ErrorExperimentNotFound  = errors.New("experiment not found")
	ErrorSampleNotFound      = errors.New("sample not found")
	ErrorMeasurementNotFound = errors.New("measurement not found")
	ErrorViewNotFound        = errors.New("view not found")
	ErrorTabNotFound         = errors.New("tab not found")
	ErrorConflict            = errors.New("conflict")
)

type Servicer interface {
	RegisterProject(input *RegisterProject) (*Project, error)
	GetProject(id string) (*Project, error)
	ListProjects() ([]*Project, error)

	RegisterExperiment(projectId string, input *RegisterExperiment) (*Experiment, error)
	GetExperiment(id string) (*Experiment, error)
	ListExperiments(projectId string) ([]*Experiment, error)

	RegisterSamples(experimentId string, input []*RegisterSample) ([]*Sample, error)
	DeleteSamples(ids ...string) error
	SamplePreviews(experimentId string, offset, limit int, filter SampleFilter, sort []grid.SortOrder) ([]*Sample, error)
	CountSamples(experimentId string, filter SampleFilter) (int, error)

	RegisterMeasurement(experimentId string, input *RegisterMeasurement) (*Measurement, error)
	MeasurementPreviews(experimentId string, offset, limit int, filter MeasurementFilter, sort []grid.SortOrder) ([]*Measurement, error)
	CountMeasurements(experimentId string, filter MeasurementFilter) (int, error)

	OpenExperimentView(experimentId string, where map[string]any) (*View, error)
	OpenProjectView(projectId string, where map[string]any) (*View, error)
	GetView(id string) (*View, error)
	CloseView(id string) error
	ExpireViews(now time.Time) int
}
