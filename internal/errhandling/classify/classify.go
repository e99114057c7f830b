// Package classify maps descriptors onto the error taxonomy.
package classify

import "github.com/vietddude/guardian/internal/core/domain"

// Classify returns the category and severity for d. It is total: every
// descriptor yields both.
func Classify(d domain.ErrorDescriptor) (domain.ErrorCategory, domain.ErrorSeverity) {
	category := Category(d)
	return category, Severity(category, d)
}

// Category trusts a server-provided category and otherwise derives one from
// the status code.
func Category(d domain.ErrorDescriptor) domain.ErrorCategory {
	if _, ok := domain.ParseCategory(string(d.Category)); ok {
		return d.Category
	}

	switch code := d.StatusCode; {
	case code == 0:
		return domain.CategoryNetwork
	case code == 401 || code == 403:
		return domain.CategoryAuthentication
	case code == 422:
		return domain.CategoryValidation
	case code == 429:
		return domain.CategoryRateLimit
	case code == 503:
		return domain.CategoryServiceUnavailable
	case code >= 500 && code < 600:
		return domain.CategoryServer
	default:
		return domain.CategoryUnknown
	}
}

// Severity weights a category for presentation.
func Severity(category domain.ErrorCategory, d domain.ErrorDescriptor) domain.ErrorSeverity {
	switch category {
	case domain.CategoryAuthentication, domain.CategoryServer:
		if d.StatusCode >= 500 && d.RecoveryHint == nil {
			return domain.SeverityCritical
		}
		return domain.SeverityHigh
	case domain.CategoryValidation:
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}
