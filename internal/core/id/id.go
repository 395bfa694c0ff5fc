// Package id provides identifiers bound to exactly one entity kind.
//
// ID[E] wraps an opaque string; the type parameter E never appears in the value, it only
// stops an order id from being passed where a user id is expected. Equality and hashing
// are those of the underlying string, so IDs are valid map keys.
package id

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies an entity of kind E.
type ID[E any] struct {
	value string
}

// New generates a fresh identifier.
// UUIDv7 text is time-ordered, which keeps B-tree inserts local in PostgreSQL.
func New[E any]() ID[E] {
	u, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		u = uuid.New()
	}
	return ID[E]{value: u.String()}
}

// From wraps an existing string. No format is imposed: ids created elsewhere are kept verbatim.
func From[E any](s string) ID[E] {
	return ID[E]{value: s}
}

// String returns the underlying value.
func (i ID[E]) String() string {
	return i.value
}

// IsZero reports whether the id is empty.
func (i ID[E]) IsZero() bool {
	return i.value == ""
}

// MarshalJSON encodes the id as a plain JSON string.
func (i ID[E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

// UnmarshalJSON decodes a JSON string.
func (i *ID[E]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &i.value)
}

// Value implements driver.Valuer so ids can be bound as query arguments.
func (i ID[E]) Value() (driver.Value, error) {
	return i.value, nil
}

// Scan implements sql.Scanner.
func (i *ID[E]) Scan(src any) error {
	switch v := src.(type) {
	case string:
		i.value = v
	case []byte:
		i.value = string(v)
	case nil:
		i.value = ""
	default:
		return fmt.Errorf("id: cannot scan %T", src)
	}
	return nil
}

// Strings converts ids to their raw values, preserving order.
func Strings[E any](ids []ID[E]) []string {
	out := make([]string, len(ids))
	for n, v := range ids {
		out[n] = v.value
	}
	return out
}

// Unique returns ids without duplicates, keeping first occurrence order.
func Unique[E any](ids []ID[E]) []ID[E] {
	seen := make(map[ID[E]]struct{}, len(ids))
	out := make([]ID[E], 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
