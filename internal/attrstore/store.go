// Package attrstore persists arbitrary per-item attribute records keyed by an
// opaque id. The item layer stores its whole record as one named attribute;
// the store itself never interprets attribute payloads.
package attrstore

import (
	"context"
	"encoding/json"
)

// Attrs is one record: named attributes with JSON payloads.
type Attrs map[string]json.RawMessage

// Store is the attribute store contract. Get returns (nil, nil) for an id
// that has no record. Put fully overwrites the record at id and registers the
// id for enumeration. Remove is idempotent.
type Store interface {
	Get(ctx context.Context, id string) (Attrs, error)
	Put(ctx context.Context, id string, attrs Attrs) error
	ListIDs(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, id string) error
}
