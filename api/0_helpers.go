package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/database"
	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/service"
)

var ErrUnavailable = errors.New("temporary unavailable")

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening || status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: %s", ErrUnavailable, status))
				return
			}
			next(ctx)
		}
	}
}

// errorStatus maps an error to its HTTP status and a human description.
func errorStatus(ctx context.Context, err error) (int, string) {

	validation := &service.ValidationError{}
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "user is not authenticated"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "the database is not operating, retry later"
	case errors.Is(err, box.ErrResourceNotFound):
		return http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String())
	case errors.Is(err, box.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method)
	case errors.As(err, &syntaxError), errors.As(err, &typeError), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Malformed JSON"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, grid.ErrArgumentRequired),
		errors.Is(err, grid.ErrIncompatibleDataSource),
		errors.Is(err, grid.ErrColumnNotFound),
		errors.Is(err, grid.ErrColumnNotSortable):
		return http.StatusBadRequest, "Bad request"
	case errors.Is(err, service.ErrorProjectNotFound),
		errors.Is(err, service.ErrorExperimentNotFound),
		errors.Is(err, service.ErrorSampleNotFound),
		errors.Is(err, service.ErrorMeasurementNotFound),
		errors.Is(err, service.ErrorViewNotFound),
		errors.Is(err, service.ErrorTabNotFound),
		errors.Is(err, grid.ErrActionNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrorConflict),
		errors.Is(err, grid.ErrDisposed):
		return http.StatusConflict, "Conflict"
	}

	return http.StatusInternalServerError, "Unexpected error"
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}

		status, description := errorStatus(ctx, err)

		w := box.GetResponse(ctx)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message":     err.Error(),
				"description": description,
			},
		})
	}
}
