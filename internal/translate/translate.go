// Package translate translates recognized text before it is spoken.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when the service answered without any
// translated text.
var ErrEmptyResponse = errors.New("translation service returned no text")

// Translator translates text from one language to another. Codes are the
// ones lang.Language.Code uses; an empty or "auto" source lets the service
// detect it.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Error is a non-200 answer from a translation service.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("translation request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether retrying later may succeed.
func (e *Error) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Passthrough returns text unchanged. It backs --no-translate.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// sameLanguage reports whether translating from -> to is a no-op.
func sameLanguage(from, to string) bool {
	from, to = strings.ToLower(from), strings.ToLower(to)
	return from != "" && from != "auto" && from == to
}

var _ Translator = Passthrough{}
