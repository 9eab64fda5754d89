package render

import (
	"context"
	"errors"

	"github.com/eazisol/podoc/observability"
)

// errAbsent signals a step that completed but produced nothing; the chain
// moves on without logging it as a failure.
var errAbsent = errors.New("absent")

// Step is one fallible source in an ordered fallback chain.
type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// first runs steps in order and returns the first successful result. Step
// failures are logged and swallowed; exhausting the chain reports ok =
// false. Keeping the resolution order as data keeps it auditable and
// testable in isolation.
func first[T any](ctx context.Context, log observability.Logger, steps []Step[T]) (T, bool) {
	var zero T
	for _, step := range steps {
		v, err := step.Run(ctx)
		if err == nil {
			return v, true
		}
		if !errors.Is(err, errAbsent) {
			log.Debug("fallback step failed",
				observability.String("step", step.Name),
				observability.Error("err", err))
		}
	}
	return zero, false
}
