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

// Package metadata holds the Entity type (a schema: dimensions,
// properties, relations and the byte layout derived from them) and the
// single pinned meta-entity every ordinary entity is an instance of.
package metadata

import (
	"fmt"

	"github.com/cubefs/cubefs/blobstore/util/log"

	"github.com/sintef/dlite-go/dtype"
	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/metrics"
	dliteuuid "github.com/sintef/dlite-go/uuid"
)

// Dimension names one axis of a property's shape. Its Name is looked up
// by index from Property.Dims.
type Dimension struct {
	Name        string
	Description string
}

// Property describes one named, typed member of an entity.
type Property struct {
	Name        string
	Type        dtype.Tag
	Size        int // element width in bytes; ignored for Bool.
	Dims        []int // indices into the owning Entity's Dimensions; empty for a scalar.
	Unit        string
	Description string
}

// headerSize is the fixed width, in bytes, reserved at the front of
// every instance block for its uuid, uri and meta-entity reference.
// dlite-go does not memory-map those fields into the block itself (they
// live as ordinary Go fields on Instance), but the reservation is kept
// so offset and size arithmetic matches what a byte-exact encoder would
// produce.
const headerSize = 3 * dtype.PointerSize

// dimSize is the width, in bytes, of one dimension-size slot.
const dimSize = 8

// Entity is a schema: a named, versioned set of dimensions and
// properties, together with the byte layout derived from them. Every
// ordinary Entity is itself an instance of the single meta-entity
// (Root), whose own Meta field is nil.
type Entity struct {
	UUID        string
	URI         string
	Description string

	Dimensions []Dimension
	Properties []Property

	// Meta is the entity this entity is an instance of. Nil only for
	// Root itself.
	Meta *Entity

	refcount int
	pinned   bool

	// Derived layout, computed once by postinit.
	Size        int
	DimOffset   int
	PropOffsets []int
	RelOffset   int
}

// Root is the singleton meta-entity describing every ordinary Entity.
// It is permanently pinned: Decref never frees it.
var Root = newRoot()

func newRoot() *Entity {
	e := &Entity{
		URI:         "http://www.sintef.no/meta/dlite/0.1/EntitySchema",
		Description: "Meta-entity describing the schema of an ordinary entity.",
		pinned:      true,
		refcount:    1,
	}
	e.UUID, _ = dliteuuid.MustGet(e.URI)
	return e
}

// EntityCreate builds a new Entity from uri, a human-readable
// description, and its dimensions and properties, derives its uuid from
// uri, links it to Root, and computes its byte layout.
func EntityCreate(uri, description string, dims []Dimension, props []Property) (*Entity, error) {
	for pi, p := range props {
		for _, di := range p.Dims {
			if di < 0 || di >= len(dims) {
				return nil, fmt.Errorf("%w: property %q dimension index %d out of range", dliteerrors.ErrSchemaViolation, p.Name, di)
			}
		}
		if p.Type != dtype.Bool && p.Size <= 0 {
			return nil, fmt.Errorf("%w: property %q has non-positive size", dliteerrors.ErrSchemaViolation, props[pi].Name)
		}
	}

	id, _, err := dliteuuid.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrIdentity, err)
	}

	e := &Entity{
		UUID:        id,
		URI:         uri,
		Description: description,
		Dimensions:  append([]Dimension(nil), dims...),
		Properties:  append([]Property(nil), props...),
		Meta:        Root,
		refcount:    1,
	}
	Root.Incref()
	e.postinit()

	metrics.EntityRefcount.WithLabelValues(e.URI).Set(float64(e.refcount))
	log.Infof("metadata: created entity %s (uuid %s, size %d)", e.URI, e.UUID, e.Size)
	return e, nil
}

// postinit sweeps dimensions, then properties, then a single relations
// slot, computing every member's offset with the same alignment rule
// dtype.MemberOffset applies, and records the entity's total size
// rounded up to the widest alignment it observed.
func (e *Entity) postinit() {
	offset, size := 0, headerSize
	maxAlign := dtype.PointerAlignment

	if n := len(e.Dimensions); n > 0 {
		off := dtype.MemberOffset(offset, size, dtype.Uint, dimSize)
		e.DimOffset = off
		offset, size = off, dimSize
		for i := 1; i < n; i++ {
			offset = dtype.MemberOffset(offset, size, dtype.Uint, dimSize)
		}
		if a := dtype.Alignment(dtype.Uint, dimSize); a > maxAlign {
			maxAlign = a
		}
	} else {
		e.DimOffset = dtype.MemberOffset(offset, size, dtype.Uint, dimSize)
	}

	e.PropOffsets = make([]int, len(e.Properties))
	for i, p := range e.Properties {
		storageTag, storageSize := p.Type, p.Size
		if len(p.Dims) > 0 || p.Type == dtype.StringPtr {
			storageTag, storageSize = dtype.StringPtr, dtype.PointerSize
		}
		if p.Type == dtype.Bool && len(p.Dims) == 0 {
			storageSize = 1
		}
		off := dtype.MemberOffset(offset, size, storageTag, storageSize)
		e.PropOffsets[i] = off
		offset, size = off, storageSize
		if a := dtype.Alignment(storageTag, storageSize); a > maxAlign {
			maxAlign = a
		}
	}

	relOff := dtype.MemberOffset(offset, size, dtype.StringPtr, dtype.PointerSize)
	e.RelOffset = relOff
	offset, size = relOff, dtype.PointerSize

	e.Size = dtype.AlignUp(offset+size, maxAlign)
}

// Incref increments the entity's reference count.
func (e *Entity) Incref() {
	e.refcount++
	metrics.EntityRefcount.WithLabelValues(e.URI).Set(float64(e.refcount))
}

// Decref decrements the entity's reference count and, on reaching zero,
// decrements its own meta's refcount in turn. Root is pinned: a direct
// Decref on it is a no-op, its count drops only when an entity that
// holds a reference to it is released, and it is never freed.
func (e *Entity) Decref() {
	if e.pinned {
		return
	}
	e.refcount--
	metrics.EntityRefcount.WithLabelValues(e.URI).Set(float64(e.refcount))
	if e.refcount <= 0 {
		if m := e.Meta; m != nil && m.pinned {
			m.refcount--
			metrics.EntityRefcount.WithLabelValues(m.URI).Set(float64(m.refcount))
		} else if m != nil {
			m.Decref()
		}
		log.Infof("metadata: freed entity %s", e.URI)
	}
}

// Refcount reports the entity's current reference count.
func (e *Entity) Refcount() int { return e.refcount }

// DimensionIndex returns the index of the dimension named name.
func (e *Entity) DimensionIndex(name string) (int, error) {
	for i, d := range e.Dimensions {
		if d.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no dimension named %q in %s", dliteerrors.ErrAbsentMember, name, e.URI)
}

// PropertyIndex returns the index of the property named name.
func (e *Entity) PropertyIndex(name string) (int, error) {
	for i, p := range e.Properties {
		if p.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no property named %q in %s", dliteerrors.ErrAbsentMember, name, e.URI)
}

// NDimensions returns the number of ndims-slots a property spans; 0 for
// a scalar property.
func (p Property) NDimensions() int { return len(p.Dims) }

// IsPointer reports whether p's storage slot is pointer-form: every
// array property, and every scalar string-pointer property.
func (p Property) IsPointer() bool {
	return len(p.Dims) > 0 || p.Type == dtype.StringPtr
}
