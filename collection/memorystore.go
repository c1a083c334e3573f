// Copyright 2024 The DLite-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package collection

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a reference TripleStore kept entirely in process
// memory, provided only to exercise and test the Collection/TripleStore
// contract; it is not a production triple-store driver.
type MemoryStore struct {
	mu      sync.Mutex
	triples []Triple
	byID    map[string]int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// Add appends a new triple and returns its id.
func (m *MemoryStore) Add(subject, predicate, object string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.byID[id] = len(m.triples)
	m.triples = append(m.triples, Triple{ID: id, Subject: subject, Predicate: predicate, Object: object})
	return id, nil
}

func matches(pattern, value string) bool {
	return pattern == Wildcard || pattern == value
}

// Remove deletes every triple matching the (possibly wildcarded)
// pattern and returns how many were removed.
func (m *MemoryStore) Remove(subject, predicate, object string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.triples[:0]
	n := 0
	for _, t := range m.triples {
		if matches(subject, t.Subject) && matches(predicate, t.Predicate) && matches(object, t.Object) {
			n++
			delete(m.byID, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	m.triples = kept
	m.reindex()
	return n, nil
}

// RemoveByID deletes the triple with the given id, if present.
func (m *MemoryStore) RemoveByID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return nil
	}
	m.triples = append(m.triples[:i], m.triples[i+1:]...)
	delete(m.byID, id)
	m.reindex()
	return nil
}

func (m *MemoryStore) reindex() {
	m.byID = make(map[string]int, len(m.triples))
	for i, t := range m.triples {
		m.byID[t.ID] = i
	}
}

// FindFirst returns the first triple matching the pattern.
func (m *MemoryStore) FindFirst(subject, predicate, object string) (Triple, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.triples {
		if matches(subject, t.Subject) && matches(predicate, t.Predicate) && matches(object, t.Object) {
			return t, true, nil
		}
	}
	return Triple{}, false, nil
}

// InitState returns a cursor positioned before the first triple.
func (m *MemoryStore) InitState() *IterState {
	return &IterState{pos: 0}
}

// Find advances state past the next triple matching the pattern.
func (m *MemoryStore) Find(state *IterState, subject, predicate, object string) (Triple, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for state.pos < len(m.triples) {
		t := m.triples[state.pos]
		state.pos++
		if matches(subject, t.Subject) && matches(predicate, t.Predicate) && matches(object, t.Object) {
			return t, true, nil
		}
	}
	return Triple{}, false, nil
}

