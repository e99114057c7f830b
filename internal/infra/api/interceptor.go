package api

import (
	"context"

	"google.golang.org/grpc"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/errhandling"
)

// ErrorHandler is the subset of errhandling.Handler the interceptor needs.
type ErrorHandler interface {
	HandleError(ctx context.Context, input any, cc domain.CallContext, opts errhandling.Options) domain.HandlingResult
}

// UnaryErrorInterceptor reports every failed unary call to h and re-invokes
// the call while the handler asks for a retry, up to maxRetries extra
// attempts. The last error is returned unchanged.
func UnaryErrorInterceptor(h ErrorHandler, maxRetries int, opts errhandling.Options) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		callOpts ...grpc.CallOption,
	) error {
		for attempt := 0; ; attempt++ {
			err := invoker(ctx, method, req, reply, cc, callOpts...)
			if err == nil {
				return nil
			}

			res := h.HandleError(ctx, err, domain.CallContext{
				RetryCount: attempt,
				MaxRetries: maxRetries,
				Operation:  method,
			}, opts)
			if !res.ShouldRetry || attempt >= maxRetries || ctx.Err() != nil {
				return err
			}
		}
	}
}
