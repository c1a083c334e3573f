// Copyright 2023 The Cuber Authors.
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

package limiter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountLimitAcquireFailsPastLimit(t *testing.T) {
	l := NewCountLimit(1)
	require.NoError(t, l.Acquire())
	require.Error(t, l.Acquire())
	require.Equal(t, 1, l.Running())
}

func TestCountLimitReleaseFreesASlot(t *testing.T) {
	l := NewCountLimit(1)
	require.NoError(t, l.Acquire())
	l.Release()
	require.Equal(t, 0, l.Running())
	require.NoError(t, l.Acquire())
}

func TestCountLimitSetLimitRaisesCeiling(t *testing.T) {
	l := NewCountLimit(1)
	require.NoError(t, l.Acquire())
	require.Error(t, l.Acquire())

	l.SetLimit(2)
	require.NoError(t, l.Acquire())
	require.Equal(t, 2, l.Running())
}
