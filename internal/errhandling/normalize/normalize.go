// Package normalize converts arbitrary failures into a domain.ErrorDescriptor.
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
)

// UnknownMessage is used when the input carries no usable message.
const UnknownMessage = "An unknown error occurred"

// now is swapped in tests.
var now = time.Now

// Normalize builds a descriptor from any value. It never fails: malformed or
// missing fields are treated as absent, and a typed nil pointer is treated
// like nil.
func Normalize(input any) (d domain.ErrorDescriptor) {
	defer func() {
		if r := recover(); r != nil {
			d = fromValue(nil)
		}
	}()

	err, ok := input.(error)
	if !ok || err == nil || isNilPointer(err) {
		if isNilPointer(input) {
			input = nil
		}
		return fromValue(input)
	}

	var hf HTTPFailure
	if errors.As(err, &hf) && !isNilPointer(hf) {
		return fromHTTP(hf)
	}

	if d, ok := fromStatus(err); ok {
		return d
	}

	msg := err.Error()
	if msg == "" {
		msg = UnknownMessage
	}
	return domain.ErrorDescriptor{
		Message:   msg,
		Timestamp: now(),
		Source:    domain.SourceError,
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func fromValue(v any) domain.ErrorDescriptor {
	d := domain.ErrorDescriptor{
		Message:   UnknownMessage,
		Timestamp: now(),
		Source:    domain.SourceValue,
	}
	if v != nil {
		d.Details = map[string]any{"value": fmt.Sprintf("%v", v)}
	}
	return d
}
