package apilabv1

import (
	"context"

	"github.com/fulldump/labgrid/service"
)

const ContextServicerKey = "7c1d2e64-9a0b-11f0-8e1c-3f4d8a6b2c10"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
