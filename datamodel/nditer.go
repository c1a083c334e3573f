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

package datamodel

import (
	"fmt"

	dliteerrors "github.com/sintef/dlite-go/errors"
)

// ndIter visits every C-order (last dimension fastest) index vector
// into an array shaped by dims exactly once, calling fn with the index
// vector and its corresponding flat offset. It is the single shared
// helper CopyToFlat and CopyToNested both walk through, so neither
// re-derives per-dimension index arithmetic on its own.
func ndIter(dims []int, fn func(idx []int, flat int)) {
	total := 1
	for _, d := range dims {
		total *= d
	}
	idx := make([]int, len(dims))
	for flat := 0; flat < total; flat++ {
		rem := flat
		for d := len(dims) - 1; d >= 0; d-- {
			if dims[d] == 0 {
				idx[d] = 0
				continue
			}
			idx[d] = rem % dims[d]
			rem /= dims[d]
		}
		cp := append([]int(nil), idx...)
		fn(cp, flat)
	}
}

// CopyToFlat translates a ragged, pointer-to-pointer-style nested array
// (each non-leaf level a []interface{} of length dims[depth], each leaf
// an elemSize-byte []byte) into a contiguous C-order buffer.
func CopyToFlat(nested interface{}, dims []int, elemSize int) ([]byte, error) {
	total := 1
	for _, d := range dims {
		total *= d
	}
	flat := make([]byte, total*elemSize)

	var walkErr error
	ndIter(dims, func(idx []int, pos int) {
		if walkErr != nil {
			return
		}
		v := nested
		for _, i := range idx {
			s, ok := v.([]interface{})
			if !ok || i < 0 || i >= len(s) {
				walkErr = fmt.Errorf("%w: nested value does not match dims %v", dliteerrors.ErrSchemaViolation, dims)
				return
			}
			v = s[i]
		}
		b, ok := v.([]byte)
		if !ok || len(b) != elemSize {
			walkErr = fmt.Errorf("%w: leaf value is not a %d-byte blob", dliteerrors.ErrSchemaViolation, elemSize)
			return
		}
		copy(flat[pos*elemSize:(pos+1)*elemSize], b)
	})
	return flat, walkErr
}

// CopyToNested translates a contiguous C-order buffer into a ragged,
// pointer-to-pointer-style nested array shaped by dims.
func CopyToNested(flat []byte, dims []int, elemSize int) (interface{}, error) {
	total := 1
	for _, d := range dims {
		total *= d
	}
	if len(flat) != total*elemSize {
		return nil, fmt.Errorf("%w: buffer length %d does not match dims %v at element size %d",
			dliteerrors.ErrSchemaViolation, len(flat), dims, elemSize)
	}

	nested := buildRaggedTree(dims)
	ndIter(dims, func(idx []int, pos int) {
		v := nested
		for d, i := range idx {
			s := v.([]interface{})
			if d == len(idx)-1 {
				s[i] = append([]byte(nil), flat[pos*elemSize:(pos+1)*elemSize]...)
			} else {
				v = s[i]
			}
		}
	})
	return nested, nil
}

// buildRaggedTree allocates the ragged-array shape CopyToNested fills:
// len(dims) levels of []interface{}, the innermost sized dims[last].
func buildRaggedTree(dims []int) interface{} {
	if len(dims) == 0 {
		return []byte(nil)
	}
	level := make([]interface{}, dims[0])
	if len(dims) == 1 {
		for i := range level {
			level[i] = []byte(nil)
		}
		return level
	}
	for i := range level {
		level[i] = buildRaggedTree(dims[1:])
	}
	return level
}
