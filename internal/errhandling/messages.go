package errhandling

import "github.com/vietddude/guardian/internal/core/domain"

var defaultMessages = map[domain.ErrorCategory]string{
	domain.CategoryAuthentication:     "Your session has expired. Please sign in again.",
	domain.CategoryValidation:         "Please check your input and try again.",
	domain.CategoryRateLimit:          "Too many requests. Please wait a moment and try again.",
	domain.CategoryNetwork:            "Unable to reach the server. Please check your connection.",
	domain.CategoryServiceUnavailable: "The service is temporarily unavailable. Please try again later.",
	domain.CategoryServer:             "Something went wrong on our side. Please try again later.",
	domain.CategoryUnknown:            "An unexpected error occurred.",
}

// UserMessage picks the message shown to the user: the server's hint when it
// has one, otherwise a per-category default. It is never empty.
func UserMessage(category domain.ErrorCategory, d domain.ErrorDescriptor) string {
	if d.RecoveryHint != nil && d.RecoveryHint.UserMessage != "" {
		return d.RecoveryHint.UserMessage
	}
	if msg, ok := defaultMessages[category]; ok {
		return msg
	}
	return defaultMessages[domain.CategoryUnknown]
}

func shouldRetry(
	category domain.ErrorCategory,
	d domain.ErrorDescriptor,
	outcome *domain.RecoveryOutcome,
) bool {
	if category == domain.CategoryValidation {
		return false
	}
	if outcome != nil {
		if !outcome.Success {
			return false
		}
		switch outcome.Action {
		case domain.ActionRetry, domain.ActionRetryAfterDelay, domain.ActionTokenRefreshed:
			return true
		default:
			return false
		}
	}
	if d.RecoveryHint != nil {
		return d.RecoveryHint.RetryEnabled
	}
	switch category {
	case domain.CategoryNetwork, domain.CategoryRateLimit,
		domain.CategoryServiceUnavailable, domain.CategoryServer:
		return true
	default:
		return false
	}
}

func serviceName(cc domain.CallContext, d domain.ErrorDescriptor) string {
	if cc.Service != "" {
		return cc.Service
	}
	if s, ok := d.Details["service"].(string); ok {
		return s
	}
	return ""
}
