package service

import (
	"bytes"
	"encoding/csv"

	"github.com/fulldump/labgrid/grid"
)

// exportCSV renders items as CSV, one column per visible grid column.
func exportCSV[T any](columns []grid.Column[T], items []T) (string, error) {
	buffer := &bytes.Buffer{}
	w := csv.NewWriter(buffer)

	header := make([]string, 0, len(columns))
	for _, column := range columns {
		title := column.Header
		if title == "" {
			title = column.ID
		}
		header = append(header, title)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, item := range items {
		record := make([]string, 0, len(columns))
		for _, column := range columns {
			value := ""
			if column.Value != nil {
				value = column.Value(item)
			}
			record = append(record, value)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buffer.String(), w.Error()
}

// exportGrid exports the selection of g, or every matching item when nothing
// is selected.
func exportGrid[T, F any](g *grid.Grid[T, F]) (string, error) {
	items := g.Selected()
	if len(items) == 0 {
		count, err := g.ItemCount()
		if err != nil {
			return "", err
		}
		items, err = g.Page(0, count.Count)
		if err != nil {
			return "", err
		}
	}
	return exportCSV(g.VisibleColumns(), items)
}
