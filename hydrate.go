/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flagstore

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/suparena/flagstore/datastore"
)

// hydrate starts one fetch per source. Sources are independent: a slow or
// failing source only delays its own values.
func (r *Resolver) hydrate(ctx context.Context) {
	for _, src := range r.sources {
		if src == nil {
			continue
		}
		r.mu.Lock()
		r.pending++
		r.mu.Unlock()

		go func(src datastore.ReadOnlyStore) {
			err := r.hydrateFrom(ctx, src)
			if err != nil {
				r.logger.Error("hydration failed", "source", src.Name(), "error", err)
			}
			r.finish(err)
		}(src)
	}
}

// hydrateFrom applies everything src holds as one batch through the write
// path, so values equal to their default are pruned rather than stored.
func (r *Resolver) hydrateFrom(ctx context.Context, src datastore.ReadOnlyStore) error {
	values, err := src.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", src.Name(), err)
	}
	r.logger.Debug("hydrating", "source", src.Name(), "values", len(values))

	if err := r.SetMany(ctx, values); err != nil {
		return fmt.Errorf("failed to apply values from %s: %w", src.Name(), err)
	}
	return nil
}

func (r *Resolver) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, err)
	}
	r.pending--
	if r.pending == 0 {
		r.idle.Broadcast()
	}
}

// Wait blocks until no hydration is in flight and returns the failures
// collected since the previous Wait. It is safe to call concurrently with
// SetDefinitions; hydration started while waiting is waited for too.
func (r *Resolver) Wait() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pending > 0 {
		r.idle.Wait()
	}
	err := stderrors.Join(r.errs...)
	r.errs = nil
	return err
}
