// Package repository provides the record access and query layer.
//
// Each entity type gets its own repository wrapping the abstract store:
// single-item CRUD, secondary-index lookups, and list/filter/paginate
// translation into store calls. Store failures propagate unchanged to
// the caller; the repositories never retry.
package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/metrichub/metrichub/internal/store"
)

// List bounds shared by both entity types.
const (
	MinListLimit = 1
	MaxListLimit = 100
)

// pageWindow slices the full result set to the [offset, offset+limit)
// window. Callers that reach this already paid for retrieving the
// entire filtered set, so a nonzero offset is O(table size) per call.
// An offset past the end yields an empty page.
func pageWindow[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// marshalItem converts a stored-form struct into a store item.
func marshalItem(v any) (store.Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return item, nil
}
