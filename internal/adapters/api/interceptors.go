package api

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// NewLoggingInterceptor logs one line per call with its outcome and duration
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				logger.InfoContext(ctx, "Request failed", append(attrs, "code", connect.CodeOf(err).String())...)
				return nil, err
			}
			logger.InfoContext(ctx, "Request handled", attrs...)
			return res, nil
		}
	}
}
