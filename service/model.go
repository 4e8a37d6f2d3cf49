package service

import "time"

type Project struct {
	Id        string    `json:"id,omitempty"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Objective string    `json:"objective"`
	CreatedAt time.Time `json:"createdAt"`
}

type Experiment struct {
	Id        string   `json:"id,omitempty"`
	ProjectId string   `json:"projectId"`
	Name      string   `json:"name"`
	Species   []string `json:"species"`
	Specimens []string `json:"specimens"`
	Analytes  []string `json:"analytes"`
}

type Sample struct {
	Id                string `json:"id,omitempty"`
	ExperimentId      string `json:"experimentId"`
	Code              string `json:"code"`
	Label             string `json:"label"`
	BatchLabel        string `json:"batchLabel"`
	BioReplicateLabel string `json:"bioReplicateLabel"`
	Condition         string `json:"condition"`
	Species           string `json:"species"`
	Specimen          string `json:"specimen"`
	Analyte           string `json:"analyte"`
	Comment           string `json:"comment"`
}

const (
	TechnologyGenomics   = "genomics"
	TechnologyProteomics = "proteomics"
)

type Measurement struct {
	Id           string    `json:"id,omitempty"`
	ExperimentId string    `json:"experimentId"`
	Code         string    `json:"code"`
	SampleIds    []string  `json:"sampleIds"`
	Technology   string    `json:"technology"`
	Facility     string    `json:"facility"`
	Instrument   string    `json:"instrument"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type RegisterProject struct {
	Code      string `json:"code"` // optional, generated when empty
	Title     string `json:"title"`
	Objective string `json:"objective"`
}

type RegisterExperiment struct {
	Name      string   `json:"name"`
	Species   []string `json:"species"`
	Specimens []string `json:"specimens"`
	Analytes  []string `json:"analytes"`
}

type RegisterSample struct {
	Label             string `json:"label"`
	BatchLabel        string `json:"batchLabel"`
	BioReplicateLabel string `json:"bioReplicateLabel"`
	Condition         string `json:"condition"`
	Species           string `json:"species"`
	Specimen          string `json:"specimen"`
	Analyte           string `json:"analyte"`
	Comment           string `json:"comment"`
}

type RegisterMeasurement struct {
	SampleIds  []string `json:"sampleIds"`
	Technology string   `json:"technology"`
	Facility   string   `json:"facility"`
	Instrument string   `json:"instrument"`
}
