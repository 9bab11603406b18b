package store

import (
	"sync"

	"github.com/showkit/catalog-api/internal/models"
)

// ItemStore is an in-memory item collection. Ids are assigned from a
// monotonic counter and never reused after deletion. Listing follows
// insertion order. Fiber runs handlers on parallel goroutines, so all
// access goes through a RWMutex.
type ItemStore struct {
	mu     sync.RWMutex
	items  map[int]models.Item
	order  []int
	nextID int
}

// NewItemStore creates an empty item store
func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[int]models.Item),
	}
}

// Create adds a new item and assigns its id
func (s *ItemStore) Create(payload models.ItemPayload) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := payload.ToItem(s.nextID)
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item
}

// Get returns the item with the given id
func (s *ItemStore) Get(id int) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, ErrItemNotFound
	}
	return item, nil
}

// List returns the slice [skip, skip+limit) of the store in insertion
// order. Out-of-range bounds yield fewer or zero items, never an error.
func (s *ItemStore) List(skip, limit int) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if skip > len(s.order) {
		skip = len(s.order)
	}
	end := skip + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	result := make([]models.Item, 0, end-skip)
	for _, id := range s.order[skip:end] {
		result = append(result, s.items[id])
	}
	return result
}

// Replace swaps out all fields of an existing item except its id.
// There is no upsert: a missing id is an error.
func (s *ItemStore) Replace(id int, payload models.ItemPayload) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return models.Item{}, ErrItemNotFound
	}
	item := payload.ToItem(id)
	s.items[id] = item
	return item, nil
}

// Patch merges only the fields supplied by the caller into an existing
// item. Omitted fields keep their current values.
func (s *ItemStore) Patch(id int, patch models.ItemPatch) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, ErrItemNotFound
	}
	patch.Apply(&item)
	s.items[id] = item
	return item, nil
}

// Delete removes an item by id
func (s *ItemStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of items currently in the store
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
