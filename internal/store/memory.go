package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore implements Store in process memory. It backs unit tests
// and local development without a DynamoDB endpoint. Tables and their
// secondary indexes must be registered with CreateTable before use.
//
// Scan returns items in insertion order; callers must not rely on it,
// matching the contract's lack of an ordering guarantee.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	keyAttr string
	indexes map[string]Index
	order   []string
	items   map[string]Item
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memTable)}
}

// CreateTable registers a table with its primary key attribute and
// secondary indexes.
func (m *MemoryStore) CreateTable(name, keyAttr string, indexes ...Index) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &memTable{
		keyAttr: keyAttr,
		indexes: make(map[string]Index, len(indexes)),
		items:   make(map[string]Item),
	}
	for _, idx := range indexes {
		t.indexes[idx.Name] = idx
	}
	m.tables[name] = t
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// GetItem returns the item with the given key, or nil if absent.
func (m *MemoryStore) GetItem(ctx context.Context, table string, key Key) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[t.keyValue(key)]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

// PutItem writes the full item, replacing any existing item with the
// same key.
func (m *MemoryStore) PutItem(ctx context.Context, table string, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return err
	}
	id := StringValue(item[t.keyAttr])
	if id == "" {
		return fmt.Errorf("store: item missing key attribute %q", t.keyAttr)
	}
	if _, exists := t.items[id]; !exists {
		t.order = append(t.order, id)
	}
	t.items[id] = cloneItem(item)
	return nil
}

// UpdateItem sets the given attributes on an existing item. Updating
// an absent key is a no-op returning nil, nil; it never creates an
// item.
func (m *MemoryStore) UpdateItem(ctx context.Context, table string, key Key, set Item) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[t.keyValue(key)]
	if !ok {
		return nil, nil
	}
	for name, value := range set {
		item[name] = value
	}
	return cloneItem(item), nil
}

// DeleteItem removes the item with the given key, succeeding even if
// the key was never present.
func (m *MemoryStore) DeleteItem(ctx context.Context, table string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return err
	}
	id := t.keyValue(key)
	if _, ok := t.items[id]; !ok {
		return nil
	}
	delete(t.items, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Query returns items whose index key equals keyValue, ordered by the
// index sort attribute.
func (m *MemoryStore) Query(ctx context.Context, table, index, keyAttr string, keyValue types.AttributeValue, descending bool, limit int32) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	idx, ok := t.indexes[index]
	if !ok {
		return nil, fmt.Errorf("store: unknown index %q on table %q", index, table)
	}

	var matched []Item
	for _, id := range t.order {
		item := t.items[id]
		if avEqual(item[idx.KeyAttr], keyValue) {
			matched = append(matched, cloneItem(item))
		}
	}

	if idx.SortAttr != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a := StringValue(matched[i][idx.SortAttr])
			b := StringValue(matched[j][idx.SortAttr])
			if descending {
				return a > b
			}
			return a < b
		})
	}

	if limit > 0 && int32(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Scan returns items matching all equality filters, in insertion
// order, limited to the first limit matches when limit is nonzero.
func (m *MemoryStore) Scan(ctx context.Context, table string, filters Item, limit int32) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}

	var matched []Item
	for _, id := range t.order {
		item := t.items[id]
		if !matchesFilters(item, filters) {
			continue
		}
		matched = append(matched, cloneItem(item))
		if limit > 0 && int32(len(matched)) == limit {
			break
		}
	}
	return matched, nil
}

// table must be called with the mutex held.
func (m *MemoryStore) table(name string) (*memTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return t, nil
}

func (t *memTable) keyValue(key Key) string {
	return StringValue(key[t.keyAttr])
}

func matchesFilters(item Item, filters Item) bool {
	for name, want := range filters {
		if !avEqual(item[name], want) {
			return false
		}
	}
	return true
}

// avEqual compares the attribute value member types the repositories
// actually store: strings, numbers, and booleans.
func avEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}

func cloneItem(item Item) Item {
	clone := make(Item, len(item))
	for name, value := range item {
		clone[name] = value
	}
	return clone
}
