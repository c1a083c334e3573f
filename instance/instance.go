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

// Package instance holds Instance, a self-describing memory block
// conforming to a metadata.Entity: a fixed header, a dimension-size
// array, one slot per property (inline scalar or pointer-form), and a
// relations slot, plus the Go-native side tables that own pointer-form
// payloads so the garbage collector, not manual bookkeeping, reclaims
// them.
package instance

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubefs/cubefs/blobstore/util/log"

	"github.com/sintef/dlite-go/dtype"
	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/internal/bufpool"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/metrics"
	dliteuuid "github.com/sintef/dlite-go/uuid"
)

// Relation is one subject-predicate-object triplet an instance may
// carry in its (singular) relations slot.
type Relation struct {
	Subject   string
	Predicate string
	Object    string
}

// Instance is a typed, self-describing memory block: its Meta entity
// names the properties and their layout, Dims gives this instance's
// concrete dimension sizes, and block/arrays/refs hold the values.
type Instance struct {
	UUID string
	URI  string
	Meta *metadata.Entity
	Dims []int

	block  []byte
	arrays [][]byte
	refs   [][]string

	relations []Relation
}

// Create allocates a new instance conforming to meta, with the given
// concrete dimension sizes, and increments meta's reference count on
// the new instance's behalf. id follows the same rule as metadata's
// own uuid derivation: empty mints a fresh random identity, an
// already-canonical uuid is copied verbatim, and anything else is
// hashed into a deterministic v5 uuid, in which case id itself is kept
// as the instance's canonical uri.
func Create(meta *metadata.Entity, dimSizes []int, id string) (*Instance, error) {
	if len(dimSizes) != len(meta.Dimensions) {
		return nil, fmt.Errorf("%w: %s expects %d dimensions, got %d",
			dliteerrors.ErrSchemaViolation, meta.URI, len(meta.Dimensions), len(dimSizes))
	}
	for i, n := range dimSizes {
		if n < 0 {
			return nil, fmt.Errorf("%w: dimension %q has negative size %d",
				dliteerrors.ErrSchemaViolation, meta.Dimensions[i].Name, n)
		}
	}

	uuid, ver, err := dliteuuid.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrIdentity, err)
	}

	inst := &Instance{
		UUID:   uuid,
		Meta:   meta,
		Dims:   append([]int(nil), dimSizes...),
		block:  bufpool.Get(meta.Size),
		arrays: make([][]byte, len(meta.Properties)),
		refs:   make([][]string, len(meta.Properties)),
	}
	if ver == dliteuuid.V5 {
		inst.URI = id
	}
	inst.writeDims()

	for i, p := range meta.Properties {
		n := inst.arrayLength(p)
		switch {
		case p.Type == dtype.StringPtr:
			inst.refs[i] = make([]string, n)
		case len(p.Dims) > 0:
			inst.arrays[i] = make([]byte, n*elementSize(p))
		}
	}

	meta.Incref()
	metrics.InstancesLive.WithLabelValues(meta.URI).Inc()
	log.Infof("instance: created %s of %s", inst.UUID, meta.URI)
	return inst, nil
}

// Free decrements the instance's meta reference count and returns its
// block to the shared pool. Its owned strings and arrays are released
// by the garbage collector once Free's caller drops the last reference
// to inst; the block itself must not be used again after Free.
func (inst *Instance) Free() {
	inst.Meta.Decref()
	metrics.InstancesLive.WithLabelValues(inst.Meta.URI).Dec()
	bufpool.Put(inst.block)
	inst.block = nil
	log.Infof("instance: freed %s", inst.UUID)
}

// DimensionSize returns the concrete size of the named dimension.
func (inst *Instance) DimensionSize(name string) (int, error) {
	i, err := inst.Meta.DimensionIndex(name)
	if err != nil {
		return 0, err
	}
	return inst.Dims[i], nil
}

// Block returns the instance's raw header+dims+scalars+relation-slot
// byte block, as a driver that wants a byte-exact encoding would see
// it. Pointer-form property payloads are not inlined; fetch them with
// GetProperty.
func (inst *Instance) Block() []byte { return inst.block }

// Relations returns the instance's relation triples.
func (inst *Instance) Relations() []Relation { return inst.relations }

// AddRelation appends a relation triple to the instance.
func (inst *Instance) AddRelation(r Relation) {
	inst.relations = append(inst.relations, r)
}

func (inst *Instance) writeDims() {
	for i, n := range inst.Dims {
		off := inst.Meta.DimOffset + i*8
		binary.LittleEndian.PutUint64(inst.block[off:off+8], uint64(n))
	}
}

// arrayLength returns the number of elements a pointer-form property
// holds for this instance: the product of the sizes of its referenced
// dimensions, or 1 for a scalar string-pointer property.
func (inst *Instance) arrayLength(p metadata.Property) int {
	if len(p.Dims) == 0 {
		return 1
	}
	n := 1
	for _, di := range p.Dims {
		n *= inst.Dims[di]
	}
	return n
}

// elementSize returns the per-element storage width for a pointer-form
// property's array side table; irrelevant for StringPtr, which uses
// refs instead.
func elementSize(p metadata.Property) int {
	if p.Type == dtype.Bool {
		return 1
	}
	return p.Size
}

// GetProperty returns the current value of the named property: a Go
// scalar for an inline property, or a slice for a pointer-form one.
func (inst *Instance) GetProperty(name string) (interface{}, error) {
	i, err := inst.Meta.PropertyIndex(name)
	if err != nil {
		return nil, err
	}
	p := inst.Meta.Properties[i]

	if p.Type == dtype.StringPtr {
		if len(p.Dims) == 0 {
			return inst.refs[i][0], nil
		}
		return append([]string(nil), inst.refs[i]...), nil
	}

	if len(p.Dims) > 0 {
		return decodeArray(p, inst.arrays[i], inst.arrayLength(p))
	}

	return decodeScalar(p, inst.block[inst.Meta.PropOffsets[i]:])
}

// SetProperty overwrites the named property with value, which must
// match the property's Go representation as returned by GetProperty.
func (inst *Instance) SetProperty(name string, value interface{}) error {
	i, err := inst.Meta.PropertyIndex(name)
	if err != nil {
		return err
	}
	p := inst.Meta.Properties[i]

	if p.Type == dtype.StringPtr {
		if len(p.Dims) == 0 {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: property %q wants a string", dliteerrors.ErrSchemaViolation, name)
			}
			inst.refs[i][0] = s
			return nil
		}
		ss, ok := value.([]string)
		if !ok || len(ss) != inst.arrayLength(p) {
			return fmt.Errorf("%w: property %q wants %d strings", dliteerrors.ErrSchemaViolation, name, inst.arrayLength(p))
		}
		copy(inst.refs[i], ss)
		return nil
	}

	if len(p.Dims) > 0 {
		return encodeArray(p, inst.arrays[i], inst.arrayLength(p), value)
	}

	return encodeScalar(p, inst.block[inst.Meta.PropOffsets[i]:], value)
}

func decodeScalar(p metadata.Property, buf []byte) (interface{}, error) {
	switch p.Type {
	case dtype.Bool:
		return buf[0] != 0, nil
	case dtype.Int:
		return int64(readUint(buf, p.Size)), nil
	case dtype.Uint:
		return readUint(buf, p.Size), nil
	case dtype.Float:
		return readFloat(buf, p.Size), nil
	case dtype.Blob:
		return append([]byte(nil), buf[:p.Size]...), nil
	case dtype.String:
		return trimNUL(buf[:p.Size]), nil
	default:
		return nil, fmt.Errorf("%w: unsupported scalar type %d", dliteerrors.ErrSchemaViolation, p.Type)
	}
}

func encodeScalar(p metadata.Property, buf []byte, value interface{}) error {
	switch p.Type {
	case dtype.Bool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: property %q wants a bool", dliteerrors.ErrSchemaViolation, p.Name)
		}
		if v {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
	case dtype.Int:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("%w: property %q wants an int64", dliteerrors.ErrSchemaViolation, p.Name)
		}
		writeUint(buf, p.Size, uint64(v))
	case dtype.Uint:
		v, ok := value.(uint64)
		if !ok {
			return fmt.Errorf("%w: property %q wants a uint64", dliteerrors.ErrSchemaViolation, p.Name)
		}
		writeUint(buf, p.Size, v)
	case dtype.Float:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%w: property %q wants a float64", dliteerrors.ErrSchemaViolation, p.Name)
		}
		writeFloat(buf, p.Size, v)
	case dtype.Blob:
		v, ok := value.([]byte)
		if !ok || len(v) != p.Size {
			return fmt.Errorf("%w: property %q wants a %d-byte blob", dliteerrors.ErrSchemaViolation, p.Name, p.Size)
		}
		copy(buf, v)
	case dtype.String:
		v, ok := value.(string)
		if !ok || len(v) >= p.Size {
			return fmt.Errorf("%w: property %q wants a string shorter than %d bytes", dliteerrors.ErrSchemaViolation, p.Name, p.Size)
		}
		for i := range buf[:p.Size] {
			buf[i] = 0
		}
		copy(buf, v)
	default:
		return fmt.Errorf("%w: unsupported scalar type %d", dliteerrors.ErrSchemaViolation, p.Type)
	}
	return nil
}

func decodeArray(p metadata.Property, buf []byte, n int) (interface{}, error) {
	switch p.Type {
	case dtype.Bool:
		out := make([]bool, n)
		for i := range out {
			out[i] = buf[i] != 0
		}
		return out, nil
	case dtype.Int:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(readUint(buf[i*p.Size:], p.Size))
		}
		return out, nil
	case dtype.Uint:
		out := make([]uint64, n)
		for i := range out {
			out[i] = readUint(buf[i*p.Size:], p.Size)
		}
		return out, nil
	case dtype.Float:
		out := make([]float64, n)
		for i := range out {
			out[i] = readFloat(buf[i*p.Size:], p.Size)
		}
		return out, nil
	case dtype.Blob:
		out := make([][]byte, n)
		for i := range out {
			out[i] = append([]byte(nil), buf[i*p.Size:(i+1)*p.Size]...)
		}
		return out, nil
	case dtype.String:
		out := make([]string, n)
		for i := range out {
			out[i] = trimNUL(buf[i*p.Size : (i+1)*p.Size])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported array type %d", dliteerrors.ErrSchemaViolation, p.Type)
	}
}

func encodeArray(p metadata.Property, buf []byte, n int, value interface{}) error {
	bad := func() error {
		return fmt.Errorf("%w: property %q wants %d elements of the right type", dliteerrors.ErrSchemaViolation, p.Name, n)
	}
	switch p.Type {
	case dtype.Bool:
		v, ok := value.([]bool)
		if !ok || len(v) != n {
			return bad()
		}
		for i, b := range v {
			if b {
				buf[i] = 1
			} else {
				buf[i] = 0
			}
		}
	case dtype.Int:
		v, ok := value.([]int64)
		if !ok || len(v) != n {
			return bad()
		}
		for i, x := range v {
			writeUint(buf[i*p.Size:], p.Size, uint64(x))
		}
	case dtype.Uint:
		v, ok := value.([]uint64)
		if !ok || len(v) != n {
			return bad()
		}
		for i, x := range v {
			writeUint(buf[i*p.Size:], p.Size, x)
		}
	case dtype.Float:
		v, ok := value.([]float64)
		if !ok || len(v) != n {
			return bad()
		}
		for i, x := range v {
			writeFloat(buf[i*p.Size:], p.Size, x)
		}
	case dtype.Blob:
		v, ok := value.([][]byte)
		if !ok || len(v) != n {
			return bad()
		}
		for i, x := range v {
			if len(x) != p.Size {
				return bad()
			}
			copy(buf[i*p.Size:(i+1)*p.Size], x)
		}
	case dtype.String:
		v, ok := value.([]string)
		if !ok || len(v) != n {
			return bad()
		}
		for i, x := range v {
			if len(x) >= p.Size {
				return bad()
			}
			slot := buf[i*p.Size : (i+1)*p.Size]
			for j := range slot {
				slot[j] = 0
			}
			copy(slot, x)
		}
	default:
		return fmt.Errorf("%w: unsupported array type %d", dliteerrors.ErrSchemaViolation, p.Type)
	}
	return nil
}

func readUint(buf []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	default:
		return binary.LittleEndian.Uint64(buf)
	}
}

func writeUint(buf []byte, size int, v uint64) {
	switch size {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, v)
	}
}

func readFloat(buf []byte, size int) float64 {
	if size == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

func writeFloat(buf []byte, size int, v float64) {
	if size == 4 {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		return
	}
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
