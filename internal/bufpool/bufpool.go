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

// Package bufpool pools the byte blocks instance.Create allocates,
// sized by an entity's layout, so repeatedly creating and freeing
// instances of the same entity does not churn the garbage collector.
package bufpool

import "github.com/sintef/dlite-go/util"

// Get returns a zeroed byte slice of exactly size bytes, either freshly
// allocated or reused from the pool.
func Get(size int) []byte {
	b := util.GetBuffer(size)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Put zeroes b and returns it to the pool. b must have come from Get
// and must not be used by the caller afterwards.
func Put(b []byte) {
	for i := range b {
		b[i] = 0
	}
	util.PutBuffer(b)
}
