package service

import (
	"strings"
	"time"

	"github.com/fulldump/labgrid/grid"
)

// Column ids are the json field names, paged grids forward them as sort keys.

func textColumn[T any](id, header string, value func(item T) string) grid.Column[T] {
	return grid.Column[T]{
		ID:     id,
		Header: header,
		Value:  value,
		Compare: func(a, b T) int {
			return strings.Compare(value(a), value(b))
		},
	}
}

func sampleColumns() []grid.Column[*Sample] {
	return []grid.Column[*Sample]{
		textColumn("code", "Sample ID", func(s *Sample) string { return s.Code }),
		textColumn("label", "Sample Label", func(s *Sample) string { return s.Label }),
		textColumn("batchLabel", "Batch", func(s *Sample) string { return s.BatchLabel }),
		textColumn("bioReplicateLabel", "Biological Replicate", func(s *Sample) string { return s.BioReplicateLabel }),
		textColumn("condition", "Condition", func(s *Sample) string { return s.Condition }),
		textColumn("species", "Species", func(s *Sample) string { return s.Species }),
		textColumn("specimen", "Specimen", func(s *Sample) string { return s.Specimen }),
		textColumn("analyte", "Analyte", func(s *Sample) string { return s.Analyte }),
		textColumn("comment", "Comment", func(s *Sample) string { return s.Comment }),
	}
}

func measurementColumns() []grid.Column[*Measurement] {
	return []grid.Column[*Measurement]{
		textColumn("code", "Measurement ID", func(m *Measurement) string { return m.Code }),
		textColumn("technology", "Technology", func(m *Measurement) string { return m.Technology }),
		textColumn("facility", "Facility", func(m *Measurement) string { return m.Facility }),
		textColumn("instrument", "Instrument", func(m *Measurement) string { return m.Instrument }),
		{
			ID:     "samples",
			Header: "", // not sortable
			Value: func(m *Measurement) string {
				return strings.Join(m.SampleIds, " ")
			},
		},
		textColumn("registeredAt", "Registration Date", func(m *Measurement) string {
			return m.RegisteredAt.Format(time.RFC3339)
		}),
	}
}

func experimentColumns() []grid.Column[*Experiment] {
	return []grid.Column[*Experiment]{
		textColumn("name", "Name", func(e *Experiment) string { return e.Name }),
		textColumn("species", "Species", func(e *Experiment) string { return strings.Join(e.Species, ", ") }),
		textColumn("specimens", "Specimens", func(e *Experiment) string { return strings.Join(e.Specimens, ", ") }),
		textColumn("analytes", "Analytes", func(e *Experiment) string { return strings.Join(e.Analytes, ", ") }),
	}
}
