package normalize

import (
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/guardian/internal/core/domain"
)

// grpcStatus maps gRPC codes onto the HTTP status the classifier understands.
// Codes missing from the table (DeadlineExceeded, Canceled) stay at 0 so they
// classify as network failures.
var grpcStatus = map[codes.Code]int{
	codes.Unauthenticated:    401,
	codes.PermissionDenied:   403,
	codes.NotFound:           404,
	codes.AlreadyExists:      409,
	codes.Aborted:            409,
	codes.InvalidArgument:    422,
	codes.FailedPrecondition: 422,
	codes.OutOfRange:         422,
	codes.ResourceExhausted:  429,
	codes.Internal:           500,
	codes.DataLoss:           500,
	codes.Unknown:            500,
	codes.Unimplemented:      501,
	codes.Unavailable:        503,
}

func fromStatus(err error) (domain.ErrorDescriptor, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return domain.ErrorDescriptor{}, false
	}

	d := domain.ErrorDescriptor{
		Message:    st.Message(),
		StatusCode: grpcStatus[st.Code()],
		Code:       st.Code().String(),
		Timestamp:  now(),
		Source:     domain.SourceRPC,
	}
	if d.Message == "" {
		d.Message = UnknownMessage
	}

	for _, detail := range st.Details() {
		switch info := detail.(type) {
		case *errdetails.RetryInfo:
			if delay := info.GetRetryDelay(); delay != nil {
				setDetail(&d, "retry_after", delay.AsDuration().Seconds())
			}
		case *errdetails.BadRequest:
			for _, v := range info.GetFieldViolations() {
				if d.FieldErrors == nil {
					d.FieldErrors = make(map[string]string)
				}
				d.FieldErrors[v.GetField()] = v.GetDescription()
			}
		case *errdetails.ErrorInfo:
			if info.GetReason() != "" {
				d.Code = info.GetReason()
			}
			for k, v := range info.GetMetadata() {
				setDetail(&d, k, v)
			}
			d.RecoveryHint = hintFromMetadata(info.GetMetadata())
		}
	}
	return d, true
}

func hintFromMetadata(md map[string]string) *domain.RecoveryHint {
	strategy, ok := md["recovery_strategy"]
	if !ok || strategy == "" {
		return nil
	}
	enabled, _ := strconv.ParseBool(md["retry_enabled"])
	return &domain.RecoveryHint{
		Strategy:     domain.Strategy(strategy),
		UserMessage:  md["user_message"],
		RetryEnabled: enabled,
	}
}

func setDetail(d *domain.ErrorDescriptor, key string, v any) {
	if d.Details == nil {
		d.Details = make(map[string]any)
	}
	d.Details[key] = v
}
