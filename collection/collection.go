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

// Package collection holds Collection, a labelled bag of instance
// references backed by an RDF-like triple store, and the TripleStore
// interface a storage driver (or, for tests, the bundled in-memory
// implementation) must satisfy.
package collection

import (
	"fmt"

	"github.com/cubefs/cubefs/blobstore/util/log"

	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/instance"
)

// Well-known predicates Collection uses to record an instance's
// membership.
const (
	PredicateIsA      = "_is-a"
	PredicateHasUUID  = "_has-uuid"
	PredicateHasMeta  = "_has-meta"
	PredicateDimMap   = "_has-dimmap"
)

// Wildcard matches any subject, predicate or object in Find.
const Wildcard = ""

// Triple is one subject-predicate-object fact, identified by ID for
// removal by reference.
type Triple struct {
	ID        string
	Subject   string
	Predicate string
	Object    string
}

// IterState is the opaque cursor Find advances across successive calls.
// Callers must not mutate the collection while an IterState from it is
// in use.
type IterState struct {
	pos int
}

// TripleStore is the fact-storage primitive a Collection delegates to.
// The triple-store primitive itself is out of scope for this module;
// only the interface and a reference in-memory implementation
// (MemoryStore) are provided.
type TripleStore interface {
	Add(subject, predicate, object string) (id string, err error)
	Remove(subject, predicate, object string) (count int, err error)
	RemoveByID(id string) error
	FindFirst(subject, predicate, object string) (Triple, bool, error)
	InitState() *IterState
	Find(state *IterState, subject, predicate, object string) (Triple, bool, error)
}

// Collection is a named set of instance references plus the relations
// that have been recorded against them.
type Collection struct {
	Label string
	Store TripleStore
}

// New returns a Collection with label backed by store.
func New(label string, store TripleStore) *Collection {
	return &Collection{Label: label, Store: store}
}

// Add records inst as a member of the collection under name, adding the
// _is-a/_has-uuid/_has-meta triples. It fails if inst has no meta.
func (c *Collection) Add(name string, inst *instance.Instance) error {
	if inst.Meta == nil {
		return fmt.Errorf("%w: instance %s has no meta", dliteerrors.ErrSchemaViolation, inst.UUID)
	}
	if _, err := c.Store.Add(name, PredicateIsA, "Instance"); err != nil {
		return err
	}
	if _, err := c.Store.Add(name, PredicateHasUUID, inst.UUID); err != nil {
		return err
	}
	if _, err := c.Store.Add(name, PredicateHasMeta, inst.Meta.URI); err != nil {
		return err
	}
	log.Infof("collection %s: added %s as %s", c.Label, inst.UUID, name)
	return nil
}

// Remove drops name's _is-a marker and, if that removed anything, its
// uuid/meta/dimmap triples and every triple a _has-dimmap relation
// pointed at.
func (c *Collection) Remove(name string) error {
	n, err := c.Store.Remove(name, PredicateIsA, Wildcard)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	state := c.Store.InitState()
	for {
		t, ok, err := c.Store.Find(state, name, PredicateDimMap, Wildcard)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := c.Store.RemoveByID(t.Object); err != nil {
			return err
		}
	}

	if _, err := c.Store.Remove(name, PredicateHasUUID, Wildcard); err != nil {
		return err
	}
	if _, err := c.Store.Remove(name, PredicateHasMeta, Wildcard); err != nil {
		return err
	}
	if _, err := c.Store.Remove(name, PredicateDimMap, Wildcard); err != nil {
		return err
	}
	log.Infof("collection %s: removed %s", c.Label, name)
	return nil
}

// AddRelation is a direct passthrough to the triple store.
func (c *Collection) AddRelation(subject, predicate, object string) (string, error) {
	return c.Store.Add(subject, predicate, object)
}

// RemoveRelations is a direct passthrough to the triple store.
func (c *Collection) RemoveRelations(subject, predicate, object string) (int, error) {
	return c.Store.Remove(subject, predicate, object)
}

// Find returns the next triple matching the (possibly wildcarded)
// pattern, advancing state. The second result is false once iteration
// is exhausted.
func (c *Collection) Find(state *IterState, subject, predicate, object string) (Triple, bool, error) {
	return c.Store.Find(state, subject, predicate, object)
}

// InitState returns a fresh iteration cursor for Find.
func (c *Collection) InitState() *IterState {
	return c.Store.InitState()
}

// Has reports whether name is a member of the collection.
func (c *Collection) Has(name string) (bool, error) {
	_, ok, err := c.Store.FindFirst(name, PredicateIsA, Wildcard)
	return ok, err
}
