package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
	"github.com/fulldump/box/boxopenapi"

	"github.com/fulldump/labgrid/api/apilabv1"
	"github.com/fulldump/labgrid/api/apiviewsv1"
	"github.com/fulldump/labgrid/service"
)

func Build(s service.Servicer, version string, apiKey, apiSecret string, enableCompression bool) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		Authenticate(apiKey, apiSecret),
		injectServicer(s),
	)
	if enableCompression {
		v1.WithInterceptors(Compression)
	}

	apilabv1.BuildV1Lab(v1)
	apiviewsv1.BuildV1Views(v1)

	b.Resource("/v1/*").
		WithActions(box.AnyMethod(func(w http.ResponseWriter) interface{} {
			w.WriteHeader(http.StatusNotImplemented)
			return PrettyError{
				Message:     "not implemented",
				Description: "this endpoint does not exist, please check the documentation",
			}
		}))

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	spec := boxopenapi.Spec(b)
	spec.Info.Title = "labgrid"
	spec.Info.Description = "Laboratory projects, experiments, samples and measurements browsed through filterable grids."
	b.Handle("GET", "/openapi.json", func(r *http.Request) any {

		spec.Servers = []boxopenapi.Server{
			{
				Url: "https://" + r.Host,
			},
			{
				Url: "http://" + r.Host,
			},
		}

		return spec
	})

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			ctx = apilabv1.SetServicer(ctx, s)
			ctx = apiviewsv1.SetServicer(ctx, s)
			next(ctx)
		}
	}
}
