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

package uuid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEmptyIsV4(t *testing.T) {
	s, v, err := Get("")
	require.NoError(t, err)
	require.Equal(t, V4, v)
	require.Len(t, s, Length)
	require.Equal(t, strings.ToLower(s), s)
}

func TestGetCanonicalIsCopied(t *testing.T) {
	s1, _, err := Get("")
	require.NoError(t, err)

	s2, v, err := Get(strings.ToUpper(s1))
	require.NoError(t, err)
	require.Equal(t, Copied, v)
	require.Equal(t, s1, s2)
}

func TestGetNameIsV5Deterministic(t *testing.T) {
	s1, v1, err := Get("myinst")
	require.NoError(t, err)
	require.Equal(t, V5, v1)

	s2, v2, err := Get("myinst")
	require.NoError(t, err)
	require.Equal(t, V5, v2)

	require.Equal(t, s1, s2)
}

func TestGetNameDiffersByInput(t *testing.T) {
	s1, _, _ := Get("alpha")
	s2, _, _ := Get("beta")
	require.NotEqual(t, s1, s2)
}

func TestIsCanonical(t *testing.T) {
	s, _, _ := Get("")
	require.True(t, IsCanonical(s))
	require.False(t, IsCanonical("not-a-uuid"))
}

func TestJoinSplitRoundTrip(t *testing.T) {
	uri, err := Join("Chemistry", "0.1", "http://www.sintef.no/calm")
	require.NoError(t, err)
	require.Equal(t, "http://www.sintef.no/calm/0.1/Chemistry", uri)

	name, version, namespace, err := Split(uri)
	require.NoError(t, err)
	require.Equal(t, "Chemistry", name)
	require.Equal(t, "0.1", version)
	require.Equal(t, "http://www.sintef.no/calm", namespace)
}

func TestSplitRequiresTwoSeparators(t *testing.T) {
	_, _, _, err := Split("onlyone/part")
	require.Error(t, err)

	_, _, _, err = Split("nopartshere")
	require.Error(t, err)

	_, _, _, err = Split("ns/version/name")
	require.NoError(t, err)
}

func TestJoinRejectsEmptyParts(t *testing.T) {
	_, err := Join("", "0.1", "ns")
	require.Error(t, err)
}
