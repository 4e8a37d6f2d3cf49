package apilabv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/service"
)

func registerSamples(ctx context.Context, w http.ResponseWriter, input []*service.RegisterSample) ([]*service.Sample, error) {

	experimentId := box.GetUrlParameter(ctx, "experimentId")

	samples, err := GetServicer(ctx).RegisterSamples(experimentId, input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return samples, nil
}

func listSamples(ctx context.Context, r *http.Request) (*findResponse[*service.Sample], error) {
	input, err := findRequestFromQuery(r)
	if err != nil {
		return nil, err
	}
	return findSamples(ctx, input)
}

func findSamples(ctx context.Context, input *findRequest) (*findResponse[*service.Sample], error) {

	s := GetServicer(ctx)
	experimentId := box.GetUrlParameter(ctx, "experimentId")

	if _, err := s.GetExperiment(experimentId); err != nil {
		return nil, err
	}

	filter := service.SampleFilter{Term: input.Term, Where: input.Where}
	items, err := s.SamplePreviews(experimentId, input.Offset, input.limit(), filter, input.Sort)
	if err != nil {
		return nil, err
	}
	total, err := s.CountSamples(experimentId, filter)
	if err != nil {
		return nil, err
	}

	return &findResponse[*service.Sample]{Items: items, Total: total}, nil
}

type deleteSamplesRequest struct {
	Ids []string `json:"ids"`
}

func deleteSamples(ctx context.Context, w http.ResponseWriter, input *deleteSamplesRequest) error {

	if err := GetServicer(ctx).DeleteSamples(input.Ids...); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
