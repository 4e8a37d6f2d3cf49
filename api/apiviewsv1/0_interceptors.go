package apiviewsv1

import (
	"context"

	"github.com/fulldump/labgrid/service"
)

const ContextServicerKey = "a3f9c2e8-9a0b-11f0-b2d4-6f1e0c7a9d55"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
