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

// Package dtype is the pure function library over (TypeTag, size) that
// every layout computation in dlite-go sweeps through: alignment,
// member offsets, and the closed set of primitive type names.
package dtype

import (
	"fmt"

	dliteerrors "github.com/sintef/dlite-go/errors"
)

// Tag is the closed enumeration of primitive kinds a property or a
// side-table element can hold.
type Tag int

const (
	Blob Tag = iota
	Bool
	Int
	Uint
	Float
	// String is a fixed-width, inline NUL-terminated character array.
	String
	// StringPtr is an owned, variable-length string stored by
	// reference (side table, not inline).
	StringPtr
)

var names = [...]string{
	Blob:      "blob",
	Bool:      "bool",
	Int:       "int",
	Uint:      "uint",
	Float:     "float",
	String:    "string",
	StringPtr: "string-pointer",
}

// PointerSize is the width, in bytes, reserved in an instance block for
// any pointer-form property slot: every array property regardless of
// element type, and every scalar string-pointer property.
const PointerSize = 8

// TypeName returns the stable, human-readable name of tag, or an error
// if tag is not one of the recognised values.
func TypeName(tag Tag) (string, error) {
	if tag < 0 || int(tag) >= len(names) {
		return "", fmt.Errorf("%w: unknown type tag %d", dliteerrors.ErrSchemaViolation, tag)
	}
	return names[tag], nil
}

// ParseTypeName maps a persisted schema's type string back to a Tag.
func ParseTypeName(name string) (Tag, error) {
	for i, n := range names {
		if n == name {
			return Tag(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognised type name %q", dliteerrors.ErrSchemaViolation, name)
}

// Alignment returns the natural alignment, in bytes, of a value of kind
// tag stored with the given element size. For the numeric kinds the
// alignment is size rounded up to a power of two (at most 8); Bool,
// Blob and String are byte-aligned whatever their size, and StringPtr
// is pointer-aligned.
func Alignment(tag Tag, size int) int {
	switch tag {
	case Bool:
		return 1
	case Int, Uint, Float:
		return pow2Ceil(size)
	case Blob, String:
		return 1
	case StringPtr:
		return PointerSize
	default:
		return 1
	}
}

// PointerAlignment is the alignment of any pointer-form property slot
// (arrays of any element type), independent of the element's own
// alignment.
const PointerAlignment = PointerSize

// AlignUp rounds offset up to the next multiple of align. align must be
// a power of two; 0 or 1 are no-ops.
func AlignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// MemberOffset returns the byte offset of the member that follows the
// one occupying [prevOffset, prevOffset+prevSize), aligned to the
// natural alignment of (tag, size).
func MemberOffset(prevOffset, prevSize int, tag Tag, size int) int {
	return AlignUp(prevOffset+prevSize, Alignment(tag, size))
}

// pow2Ceil returns the smallest power of two >= n, capped at 8 (the
// widest natural scalar width this module stores inline), and at least
// 1.
func pow2Ceil(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n && p < 8 {
		p <<= 1
	}
	return p
}
