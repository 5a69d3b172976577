// Package translate turns recognized Japanese text into Chinese.
//
// The only backend scrapes the Youdao mobile page, which has no stable API,
// so every failure (network, status, timeout, page shape) is folded into a
// plain "no translation" answer instead of an error.
package translate

import (
	"context"
	"errors"

	"github.com/light4/christina/internal/resilience"
	"github.com/light4/christina/internal/trace"
)

// Translator returns the translation of text, or false when none is available.
type Translator interface {
	Translate(ctx context.Context, text string) (string, bool)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text string) (string, bool)

func (f Func) Translate(ctx context.Context, text string) (string, bool) { return f(ctx, text) }

var errNoTranslation = errors.New("no translation")

// Guarded puts a circuit breaker in front of a Translator. While the breaker
// is open calls return false without touching the backend.
type Guarded struct {
	next    Translator
	breaker *resilience.Breaker
}

// NewGuarded wraps next with breaker.
func NewGuarded(next Translator, breaker *resilience.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Translate(ctx context.Context, text string) (string, bool) {
	out, err := resilience.ExecuteWithResult(g.breaker, func() (string, error) {
		s, ok := g.next.Translate(ctx, text)
		if !ok {
			return "", errNoTranslation
		}
		return s, nil
	})
	if errors.Is(err, resilience.ErrOpen) {
		trace.Logger(ctx).Debug("translation skipped, breaker open")
	}
	return out, err == nil
}
