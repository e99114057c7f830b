package domain

// ErrorCategory is the fixed taxonomy every failure maps into.
type ErrorCategory string

const (
	CategoryAuthentication     ErrorCategory = "authentication"
	CategoryValidation         ErrorCategory = "validation"
	CategoryRateLimit          ErrorCategory = "rate_limit"
	CategoryNetwork            ErrorCategory = "network"
	CategoryServiceUnavailable ErrorCategory = "service_unavailable"
	CategoryServer             ErrorCategory = "server"
	CategoryUnknown            ErrorCategory = "unknown"
)

// Categories lists every category in declaration order.
var Categories = []ErrorCategory{
	CategoryAuthentication,
	CategoryValidation,
	CategoryRateLimit,
	CategoryNetwork,
	CategoryServiceUnavailable,
	CategoryServer,
	CategoryUnknown,
}

// ParseCategory returns the category named by s. Unknown names report false.
func ParseCategory(s string) (ErrorCategory, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ErrorSeverity weights how prominently an error is presented.
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)
