package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fulldump/labgrid/collection"
	"github.com/fulldump/labgrid/grid"
)

// SampleFilter narrows the samples of an experiment. Term is matched, case
// insensitive, as a substring of any text field. Where is a structured
// filter, e.g. {"species": "Homo sapiens"}.
type SampleFilter struct {
	Term  string         `json:"term"`
	Where map[string]any `json:"where,omitempty"`
}

type MeasurementFilter struct {
	Term  string         `json:"term"`
	Where map[string]any `json:"where,omitempty"`
}

var sampleSearchFields = []string{
	"code", "label", "batchLabel", "bioReplicateLabel", "condition",
	"species", "specimen", "analyte", "comment",
}

var measurementSearchFields = []string{
	"code", "technology", "facility", "instrument",
}

func (s *Service) SamplePreviews(experimentId string, offset, limit int, filter SampleFilter, sort []grid.SortOrder) ([]*Sample, error) {
	rows, err := preview(s.samples, experimentId, sampleSearchFields, filter.Term, filter.Where, offset, limit, sort)
	if err != nil {
		return nil, err
	}
	return decodeRows[Sample](rows)
}

func (s *Service) CountSamples(experimentId string, filter SampleFilter) (int, error) {
	return s.samples.Count(previewOptions(experimentId, sampleSearchFields, filter.Term, filter.Where))
}

func (s *Service) MeasurementPreviews(experimentId string, offset, limit int, filter MeasurementFilter, sort []grid.SortOrder) ([]*Measurement, error) {
	rows, err := preview(s.measurements, experimentId, measurementSearchFields, filter.Term, filter.Where, offset, limit, sort)
	if err != nil {
		return nil, err
	}
	return decodeRows[Measurement](rows)
}

func (s *Service) CountMeasurements(experimentId string, filter MeasurementFilter) (int, error) {
	return s.measurements.Count(previewOptions(experimentId, measurementSearchFields, filter.Term, filter.Where))
}

func previewOptions(experimentId string, fields []string, term string, where map[string]any) collection.FindOptions {
	term = strings.ToLower(strings.TrimSpace(term))
	options := collection.FindOptions{
		Index:    indexByExperiment,
		Traverse: keyRange("experimentId", experimentId),
		Filter:   where,
	}
	if term != "" {
		options.Where = func(row *collection.Row) bool {
			return containsTerm(row.Payload, fields, term)
		}
	}
	return options
}

// containsTerm reads the text fields straight from the stored JSON.
func containsTerm(payload []byte, fields []string, term string) bool {
	for _, value := range gjson.GetManyBytes(payload, fields...) {
		if value.Type == gjson.String && strings.Contains(strings.ToLower(value.Str), term) {
			return true
		}
	}
	return false
}

// preview returns one window of the matching rows. Rows come in code order
// straight from the index; any other sort loads every match first.
func preview(col *collection.Collection, experimentId string, fields []string, term string, where map[string]any, offset, limit int, sort []grid.SortOrder) ([]*collection.Row, error) {

	if offset < 0 || limit < 0 {
		return nil, &ValidationError{Problems: []string{"offset and limit must not be negative"}}
	}
	for _, order := range sort {
		if order.Column != "code" && !slices.Contains(fields, order.Column) && !slices.Contains(extraSortFields, order.Column) {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("cannot sort by '%s'", order.Column)}}
		}
	}

	options := previewOptions(experimentId, fields, term, where)

	if len(sort) == 0 || (len(sort) == 1 && sort[0].Column == "code") {
		if len(sort) == 1 {
			options.Traverse.Reverse = sort[0].Descending()
		}
		options.Skip = offset
		options.Limit = limit
		if limit == 0 {
			return []*collection.Row{}, nil
		}
		return findRows(col, options)
	}

	rows, err := findRows(col, options)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b *collection.Row) int {
		for _, order := range sort {
			va, _ := a.Data[order.Column].(string)
			vb, _ := b.Data[order.Column].(string)
			c := strings.Compare(va, vb)
			if order.Descending() {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	if offset >= len(rows) {
		return []*collection.Row{}, nil
	}
	return rows[offset:min(offset+limit, len(rows))], nil
}

// fields that can be sorted by but are not searched
var extraSortFields = []string{"registeredAt"}
