package apilabv1

import (
	"net/http"
	"strconv"

	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/service"
)

const defaultLimit = 100

type findRequest struct {
	Offset int              `json:"offset"`
	Limit  int              `json:"limit"`
	Term   string           `json:"term"`
	Where  map[string]any   `json:"where"`
	Sort   []grid.SortOrder `json:"sort"`
}

func (f *findRequest) limit() int {
	if f.Limit == 0 {
		return defaultLimit
	}
	return f.Limit
}

type findResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// findRequestFromQuery reads offset, limit, term and sort from the query
// string. Sort is a column id, prefixed by '-' for descending.
func findRequestFromQuery(r *http.Request) (*findRequest, error) {
	q := r.URL.Query()
	input := &findRequest{
		Term: q.Get("term"),
	}

	v := &queryValidator{}
	input.Offset = v.int(q.Get("offset"), "offset")
	input.Limit = v.int(q.Get("limit"), "limit")
	if err := v.err(); err != nil {
		return nil, err
	}

	for _, column := range q["sort"] {
		order := grid.SortOrder{Column: column, Direction: grid.Ascending}
		if len(column) > 1 && column[0] == '-' {
			order = grid.SortOrder{Column: column[1:], Direction: grid.Descending}
		}
		input.Sort = append(input.Sort, order)
	}

	return input, nil
}

type queryValidator struct {
	problems []string
}

func (v *queryValidator) int(value, name string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		v.problems = append(v.problems, name+" must be an integer")
	}
	return n
}

func (v *queryValidator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &service.ValidationError{Problems: v.problems}
}
