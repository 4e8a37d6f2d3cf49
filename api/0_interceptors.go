package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/logger"
)

func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Get().Error("panic", "err", err, "stack", string(debug.Stack()))
				box.SetError(ctx, fmt.Errorf("panic: %v", err))
			}
		}()
		next(ctx)
	}
}

func AccessLog(l *charmlog.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			now := time.Now()
			defer func() {
				keyvals := []interface{}{
					"remote", formatRemoteAddr(r),
					"method", r.Method,
					"url", r.URL.String(),
					"took", time.Since(now),
				}
				if err := box.GetError(ctx); err != nil {
					keyvals = append(keyvals, "err", err)
				}
				l.Info("access", keyvals...)
			}()

			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}
