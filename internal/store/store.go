// Package store provides the key-value/document store access layer.
//
// The Store interface is the full contract the repositories depend on:
// single-item reads and writes, unconditional deletes, partial-field
// updates, secondary-index queries, and filtered full-table scans.
// Scans carry no ordering guarantee. Any transport or store-side error
// propagates unchanged to the caller; no retries happen at this layer.
package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrTableNotFound indicates an operation referenced an unknown table.
var ErrTableNotFound = errors.New("store: table not found")

// Item is a single record as stored, keyed by attribute name.
type Item map[string]types.AttributeValue

// Key identifies a single item by its primary key attribute(s).
type Key map[string]types.AttributeValue

// Index describes a secondary index: an equality key attribute and an
// optional sort attribute. The DynamoDB backend resolves indexes by
// name server-side; the in-memory backend evaluates them from this
// description.
type Index struct {
	Name     string
	KeyAttr  string
	SortAttr string
}

// Store is the abstract store contract.
//
// Query returns items matching an exact secondary-index key, ordered
// by the index sort attribute. Scan returns items matching the given
// equality filters with no ordering guarantee; a zero limit means the
// entire table is retrieved, which is O(table size) per call.
type Store interface {
	// GetItem returns the item with the given key, or nil if absent.
	// Absence is not an error.
	GetItem(ctx context.Context, table string, key Key) (Item, error)

	// PutItem writes the full item, replacing any existing item with
	// the same key.
	PutItem(ctx context.Context, table string, item Item) error

	// UpdateItem sets only the given attributes on an existing item
	// and returns the post-update image. Updating an absent key never
	// creates an item; it returns nil, nil and the caller detects the
	// miss by re-reading.
	UpdateItem(ctx context.Context, table string, key Key, set Item) (Item, error)

	// DeleteItem removes the item with the given key. Deleting an
	// absent key is not an error.
	DeleteItem(ctx context.Context, table string, key Key) error

	// Query returns items whose index key attribute equals keyValue,
	// ordered by the index sort attribute. A zero limit retrieves the
	// full matching set.
	Query(ctx context.Context, table, index, keyAttr string, keyValue types.AttributeValue, descending bool, limit int32) ([]Item, error)

	// Scan returns items matching all equality filters. A zero limit
	// retrieves the full table.
	Scan(ctx context.Context, table string, filters Item, limit int32) ([]Item, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error
}

// StringKey builds a single-attribute string key.
func StringKey(attr, value string) Key {
	return Key{attr: &types.AttributeValueMemberS{Value: value}}
}

// StringValue extracts the string from a string attribute, or "" for
// any other member type.
func StringValue(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
