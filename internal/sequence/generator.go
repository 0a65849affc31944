// Package sequence mints gapless per-key document numbers.
//
// The generator holds no counter state of its own. Every Next call is one
// atomic increment of all requested keys in the backing Store (Postgres
// upserts inside the caller's transaction, or one Redis MULTI), so any number
// of processes can share a key and a failed call consumes nothing.
package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	InvoicePrefix = "INV"
	OrderPrefix   = "ORD"
)

// Store increments every key by one, creating missing keys at 1, and returns
// the new values in key order. Either all keys advance or none do. A store
// backed by the order database joins tx when it is non-nil, so the values
// commit or roll back together with the caller's writes.
type Store interface {
	Increment(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error)
}

// Breaker guards calls to the store. infra.CircuitBreaker satisfies it.
type Breaker interface {
	Execute(fn func() error) error
}

type Generator struct {
	store   Store
	breaker Breaker
}

// NewGenerator wires a store behind an optional breaker.
func NewGenerator(store Store, breaker Breaker) *Generator {
	return &Generator{store: store, breaker: breaker}
}

// Next returns the next value of each key, in key order. Any store failure,
// including a tripped breaker, is reported as model.ErrSequenceUnavailable.
func (g *Generator) Next(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: sequence key is required", model.ErrValidation)
	}
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: sequence key is required", model.ErrValidation)
		}
	}

	var out []int64
	call := func() error {
		vs, err := g.store.Increment(ctx, tx, keys...)
		if err != nil {
			return err
		}
		if len(vs) != len(keys) {
			return fmt.Errorf("store returned %d values for %d keys", len(vs), len(keys))
		}
		for i, v := range vs {
			if v < 1 {
				return fmt.Errorf("store returned non-positive value %d for %s", v, keys[i])
			}
		}
		out = vs
		return nil
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("sequence: increment failed")
		return nil, fmt.Errorf("%w: keys %s: %w", model.ErrSequenceUnavailable, strings.Join(keys, ","), err)
	}
	return out, nil
}

// Key is the counter key for prefix on day, e.g. "INV-20250828".
func Key(prefix string, day calendar.Day) string {
	return prefix + "-" + day.Stamp()
}

// Format renders a document number, e.g. "INV-20250828-000042".
func Format(prefix string, day calendar.Day, n int64) string {
	return fmt.Sprintf("%s-%06d", Key(prefix, day), n)
}
