package notify

import (
	"sort"
	"strings"

	"github.com/vietddude/guardian/internal/core/domain"
)

// Notification titles.
const (
	TitleAuthentication     = "Authentication Required"
	TitleValidation         = "Invalid Input"
	TitleRateLimit          = "Rate Limited"
	TitleServiceIssue       = "Service Issue"
	TitleGeneric            = "Error"
	TitleConnectionLost     = "Connection Lost"
	TitleConnectionRestored = "Connection Restored"
)

// Connectivity notification bodies.
const (
	BodyConnectionLost     = "You are offline. Some features may be unavailable."
	BodyConnectionRestored = "You are back online."
)

// Compose builds the notification for a classified error. service names the
// failing service for service_unavailable errors and may be empty.
func Compose(
	category domain.ErrorCategory,
	d domain.ErrorDescriptor,
	userMessage string,
	service string,
) Notification {
	switch category {
	case domain.CategoryAuthentication:
		return Notification{Level: LevelError, Title: TitleAuthentication, Body: userMessage}
	case domain.CategoryValidation:
		body := formatFieldErrors(d.FieldErrors)
		if body == "" {
			body = userMessage
		}
		return Notification{Level: LevelError, Title: TitleValidation, Body: body}
	case domain.CategoryRateLimit:
		return Notification{Level: LevelWarning, Title: TitleRateLimit, Body: userMessage}
	case domain.CategoryServiceUnavailable:
		title := TitleServiceIssue
		if service != "" {
			title = service + " " + TitleServiceIssue
		}
		return Notification{Level: LevelWarning, Title: title, Body: userMessage}
	default:
		body := d.Message
		if body == "" {
			body = userMessage
		}
		return Notification{Level: LevelError, Title: TitleGeneric, Body: body}
	}
}

// formatFieldErrors renders "field: message" pairs sorted by field name.
func formatFieldErrors(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	return strings.Join(parts, ", ")
}
