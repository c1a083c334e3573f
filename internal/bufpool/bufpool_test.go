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

package bufpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetReturnsZeroedBlockOfRequestedSize(t *testing.T) {
	b := Get(64)
	require.Len(t, b, 64)
	for _, c := range b {
		require.Zero(t, c)
	}
}

func TestPutThenGetIsZeroed(t *testing.T) {
	b := Get(32)
	for i := range b {
		b[i] = 0xFF
	}
	Put(b)

	b2 := Get(32)
	for _, c := range b2 {
		require.Zero(t, c)
	}
}
