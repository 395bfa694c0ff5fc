package dataloader

import "context"

// OrderByKeys reorders values to match keys. A key with no value gets a zero
// value and the error built by missing.
//
//	users, _ := repo.GetMulti(ctx, h, ids)
//	ordered, errs := OrderByKeys(ids, users, user.User.GetID, notFound)
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V], missing func(K) error) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}

	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = missing(key)
		}
	}
	return result, errs
}

// GroupByKey groups values by a key function.
// Useful for one-to-many relationships where many values share a foreign key.
//
//	details, _ := repo.FindByOrders(ctx, h, orderIDs)
//	grouped := GroupByKey(details, func(d order.Detail) order.ID { return d.OrderID })
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns groups[keys[i]] at position i, or an empty slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		if g, ok := groups[key]; ok {
			result[i] = g
		} else {
			result[i] = []V{}
		}
	}
	return result
}

// PrimeMany primes every value under its key.
func PrimeMany[K comparable, V any](l *Loader[K, V], values []V, keyFn KeyFunc[K, V]) {
	for _, v := range values {
		l.Prime(keyFn(v), v)
	}
}

// ctxKey is the context key for storing loaders.
type ctxKey struct{}

// WithLoaders injects a per-request loader set into the context.
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For extracts the loader set from context; the zero T if none was injected.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
