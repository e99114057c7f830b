package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
)

// HTTPFailure is implemented by transport errors that carry a response.
type HTTPFailure interface {
	error
	HTTPStatus() int
	HTTPBody() []byte
}

// ResponseError is returned by API clients for non-2xx responses.
type ResponseError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Error, HTTPStatus and HTTPBody accept a nil receiver.
func (e *ResponseError) Error() string {
	if e == nil {
		return "http: <nil response>"
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// HTTPStatus returns the response status code.
func (e *ResponseError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// HTTPBody returns the raw response body.
func (e *ResponseError) HTTPBody() []byte {
	if e == nil {
		return nil
	}
	return e.Body
}

// retryAfterHeader reports the Retry-After header in seconds, if present.
func (e *ResponseError) retryAfterHeader() (float64, bool) {
	if e == nil || e.Header == nil {
		return 0, false
	}
	v := e.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return secs, true
}

func fromHTTP(hf HTTPFailure) domain.ErrorDescriptor {
	d := domain.ErrorDescriptor{
		StatusCode: hf.HTTPStatus(),
		Timestamp:  now(),
		Source:     domain.SourceHTTP,
	}
	if d.StatusCode < 0 {
		d.StatusCode = 0
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(hf.HTTPBody(), &top); err == nil {
		if raw, ok := top["error"]; ok {
			applyEnvelope(&d, raw)
		}
		if d.Message == "" {
			d.Message = stringField(top, "message")
		}
	}

	if d.Message == "" {
		d.Message = fmt.Sprintf("Request failed with status %d", d.StatusCode)
	}

	if re, ok := hf.(*ResponseError); ok {
		if _, set := d.Details["retry_after"]; !set {
			if secs, ok := re.retryAfterHeader(); ok {
				if d.Details == nil {
					d.Details = make(map[string]any)
				}
				d.Details["retry_after"] = secs
			}
		}
	}
	return d
}

// applyEnvelope copies the nested error object into d. Fields with the wrong
// shape are skipped individually.
func applyEnvelope(d *domain.ErrorDescriptor, raw json.RawMessage) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		// {"error": "message"}
		var msg string
		if json.Unmarshal(raw, &msg) == nil {
			d.Message = msg
		}
		return
	}

	d.Message = stringField(env, "message")
	d.Code = stringField(env, "code")
	if c, ok := domain.ParseCategory(stringField(env, "category")); ok {
		d.Category = c
	}
	if ts, err := time.Parse(time.RFC3339, stringField(env, "timestamp")); err == nil {
		d.Timestamp = ts
	}

	if rawDetails, ok := env["details"]; ok {
		var details map[string]any
		if err := json.Unmarshal(rawDetails, &details); err == nil && len(details) > 0 {
			d.Details = details
		}
	}

	if rawFields, ok := env["field_errors"]; ok {
		d.FieldErrors = fieldErrors(rawFields)
	}

	if rawHint, ok := env["recovery"]; ok {
		d.RecoveryHint = recoveryHint(rawHint)
	}
}

func recoveryHint(raw json.RawMessage) *domain.RecoveryHint {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	hint := &domain.RecoveryHint{
		Strategy:    domain.Strategy(stringField(fields, "strategy")),
		UserMessage: stringField(fields, "user_message"),
	}
	if hint.Strategy == "" {
		hint.Strategy = domain.StrategyNone
	}
	if rawActions, ok := fields["actions"]; ok {
		var actions []string
		if err := json.Unmarshal(rawActions, &actions); err == nil {
			hint.Actions = actions
		}
	}
	if rawRetry, ok := fields["retry_enabled"]; ok {
		var enabled bool
		if err := json.Unmarshal(rawRetry, &enabled); err == nil {
			hint.RetryEnabled = enabled
		}
	}
	return hint
}

// fieldErrors accepts {"field": "msg"} and {"field": ["msg", ...]}.
func fieldErrors(raw json.RawMessage) map[string]string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	out := make(map[string]string, len(fields))
	for name, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[name] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
			out[name] = strings.Join(list, "; ")
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
