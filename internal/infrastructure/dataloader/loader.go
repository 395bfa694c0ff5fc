// Package dataloader coalesces point reads issued while serving one request.
//
// A Loader is a dataloadgen.Loader with the repository conventions layered on top:
// keys missing from a fetch resolve to a cached NotFound, a failed fetch is not
// cached, and every fetch is traced. Loaders are created per request and never shared.
//
// # Basic Usage
//
//	users := dataloader.New(
//	    func(ctx context.Context, ids []user.ID) ([]user.User, error) {
//	        return repo.GetMulti(ctx, h, ids)
//	    },
//	    user.User.GetID,
//	    dataloader.WithName("user"),
//	)
//	u, err := users.Load(ctx, userID)
package dataloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vikstrous/dataloadgen"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orderdesk/internal/core/apperror"
	"orderdesk/pkg/logger"
)

var tracer = otel.Tracer("orderdesk/dataloader")

// DefaultWait is the batch window used when WithWait is not given.
const DefaultWait = time.Millisecond

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads the entities that exist among keys, in any order.
// Missing keys are simply absent from the result.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// resolveFunc returns one value per key, a per-key error slice (nil or len(keys)),
// or an error that fails the whole batch.
type resolveFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error, error)

// Option configures a Loader.
type Option func(*options)

type options struct {
	wait     time.Duration
	maxBatch int
	name     string
	log      *logger.Logger
}

// WithWait sets the batch window.
func WithWait(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.wait = d
		}
	}
}

// WithMaxBatch fetches a window early once it holds n keys. Zero means unbounded.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxBatch = n
		}
	}
}

// WithName sets the entity name used in NotFound errors, logs and spans.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// outcome is what the underlying loader caches per key. A per-key error such as
// NotFound travels as data so it is cached like a value.
type outcome[V any] struct {
	value V
	err   error
}

// batchError marks a failure of the whole fetch; keys that saw it are evicted.
type batchError struct {
	err error
}

func (e *batchError) Error() string { return e.err.Error() }
func (e *batchError) Unwrap() error { return e.err }

// Loader batches and caches lookups of V by K.
type Loader[K comparable, V any] struct {
	dl   *dataloadgen.Loader[K, outcome[V]]
	name string
	log  *logger.Logger
}

// New creates a Loader for point reads. Keys missing from fetch's result
// resolve to a NotFound error, which is cached like any value.
func New[K comparable, V any](fetch BatchFunc[K, V], key KeyFunc[K, V], opts ...Option) *Loader[K, V] {
	var l *Loader[K, V]
	l = newLoader(opts, func(ctx context.Context, keys []K) ([]V, []error, error) {
		values, err := fetch(ctx, keys)
		if err != nil {
			return nil, nil, err
		}
		ordered, errs := OrderByKeys(keys, values, key, l.notFound)
		return ordered, errs, nil
	})
	return l
}

// NewGrouped creates a Loader for one-to-many reads: each key resolves to every
// fetched value whose key matches, or to an empty slice.
func NewGrouped[K comparable, V any](fetch BatchFunc[K, V], key KeyFunc[K, V], opts ...Option) *Loader[K, []V] {
	return newLoader(opts, func(ctx context.Context, keys []K) ([][]V, []error, error) {
		values, err := fetch(ctx, keys)
		if err != nil {
			return nil, nil, err
		}
		return OrderGroupsByKeys(keys, GroupByKey(values, key)), nil, nil
	})
}

func newLoader[K comparable, V any](opts []Option, resolve resolveFunc[K, V]) *Loader[K, V] {
	o := options{wait: DefaultWait, name: "entity"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Default()
	}

	l := &Loader[K, V]{
		name: o.name,
		log:  o.log.WithComponent("dataloader"),
	}

	dlOpts := []dataloadgen.Option{dataloadgen.WithWait(o.wait)}
	if o.maxBatch > 0 {
		dlOpts = append(dlOpts, dataloadgen.WithBatchCapacity(o.maxBatch))
	}
	l.dl = dataloadgen.NewLoader(l.fetchWith(resolve), dlOpts...)
	return l
}

func (l *Loader[K, V]) notFound(key K) error {
	return apperror.NewNotFound(l.name, fmt.Sprint(key))
}

// Load returns the value for key, waiting for its window to be fetched.
// A cancelled ctx returns ctx.Err() for this caller only; the fetch still runs
// for everyone else waiting on the same window.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	thunk := l.dl.LoadThunk(ctx, key)

	done := make(chan outcome[V], 1)
	go func() {
		done <- l.settle(key, thunk)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// settle waits for key's outcome and evicts it when the whole fetch failed,
// so a later Load retries.
func (l *Loader[K, V]) settle(key K, thunk func() (outcome[V], error)) outcome[V] {
	r, err := thunk()
	if err == nil {
		return r
	}
	var be *batchError
	if errors.As(err, &be) {
		l.dl.Clear(key)
		return outcome[V]{err: be.err}
	}
	return outcome[V]{err: err}
}

// Prime stores value for key unless key is already cached or pending.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.dl.Prime(key, outcome[V]{value: value})
}

// Clear drops key from the cache so the next Load fetches it again.
// Callers already waiting on the key are unaffected.
func (l *Loader[K, V]) Clear(key K) {
	l.dl.Clear(key)
}

// fetchWith adapts resolve to the fetch signature of dataloadgen. Outcomes are
// returned for every key; only a failed fetch fills the error slice.
func (l *Loader[K, V]) fetchWith(resolve resolveFunc[K, V]) func(context.Context, []K) ([]outcome[V], []error) {
	return func(ctx context.Context, keys []K) ([]outcome[V], []error) {
		ctx, span := tracer.Start(context.WithoutCancel(ctx), "dataloader.fetch",
			trace.WithAttributes(
				attribute.String("dataloader.entity", l.name),
				attribute.Int("dataloader.keys", len(keys)),
			))
		defer span.End()

		values, errs, err := safeResolve(ctx, resolve, keys)
		if err == nil && (len(values) != len(keys) || (errs != nil && len(errs) != len(keys))) {
			err = apperror.NewInternal(fmt.Errorf("dataloader: %d results for %d keys", len(values), len(keys)))
		}

		outcomes := make([]outcome[V], len(keys))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch")
			l.log.WithContext(ctx).Errorw("batch fetch failed",
				"entity", l.name, "keys", len(keys), "error", err)

			failed := make([]error, len(keys))
			for i := range failed {
				failed[i] = &batchError{err: err}
			}
			return outcomes, failed
		}

		l.log.WithContext(ctx).Debugw("batch fetched", "entity", l.name, "keys", len(keys))
		for i := range keys {
			outcomes[i].value = values[i]
			if errs != nil {
				outcomes[i].err = errs[i]
			}
		}
		return outcomes, nil
	}
}

func safeResolve[K comparable, V any](ctx context.Context, resolve resolveFunc[K, V], keys []K) (values []V, errs []error, err error) {
	defer func() {
		if r := recover(); r != nil {
			values, errs = nil, nil
			err = apperror.NewInternal(fmt.Errorf("dataloader: fetch panicked: %v", r))
		}
	}()
	return resolve(ctx, keys)
}
