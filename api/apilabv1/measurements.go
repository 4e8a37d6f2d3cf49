package apilabv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/service"
)

func registerMeasurement(ctx context.Context, w http.ResponseWriter, input *service.RegisterMeasurement) (*service.Measurement, error) {

	experimentId := box.GetUrlParameter(ctx, "experimentId")

	measurement, err := GetServicer(ctx).RegisterMeasurement(experimentId, input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return measurement, nil
}

func listMeasurements(ctx context.Context, r *http.Request) (*findResponse[*service.Measurement], error) {
	input, err := findRequestFromQuery(r)
	if err != nil {
		return nil, err
	}
	return findMeasurements(ctx, input)
}

func findMeasurements(ctx context.Context, input *findRequest) (*findResponse[*service.Measurement], error) {

	s := GetServicer(ctx)
	experimentId := box.GetUrlParameter(ctx, "experimentId")

	if _, err := s.GetExperiment(experimentId); err != nil {
		return nil, err
	}

	filter := service.MeasurementFilter{Term: input.Term, Where: input.Where}
	items, err := s.MeasurementPreviews(experimentId, input.Offset, input.limit(), filter, input.Sort)
	if err != nil {
		return nil, err
	}
	total, err := s.CountMeasurements(experimentId, filter)
	if err != nil {
		return nil, err
	}

	return &findResponse[*service.Measurement]{Items: items, Total: total}, nil
}
