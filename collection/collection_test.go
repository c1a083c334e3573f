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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sintef/dlite-go/dtype"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/metadata"
)

func waterEntity(t *testing.T) *metadata.Entity {
	e, err := metadata.EntityCreate("http://x/0.1/Water", "", nil,
		[]metadata.Property{{Name: "density", Type: dtype.Float, Size: 8}})
	require.NoError(t, err)
	return e
}

func TestAddRejectsInstanceWithoutMeta(t *testing.T) {
	c := New("mycoll", NewMemoryStore())
	err := c.Add("w1", &instance.Instance{})
	require.Error(t, err)
}

func TestAddThenHas(t *testing.T) {
	meta := waterEntity(t)
	inst, err := instance.Create(meta, nil, "")
	require.NoError(t, err)

	c := New("mycoll", NewMemoryStore())
	require.NoError(t, c.Add("w1", inst))

	ok, err := c.Has("w1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Has("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveClearsMembership(t *testing.T) {
	meta := waterEntity(t)
	inst, err := instance.Create(meta, nil, "")
	require.NoError(t, err)

	c := New("mycoll", NewMemoryStore())
	require.NoError(t, c.Add("w1", inst))
	require.NoError(t, c.Remove("w1"))

	ok, err := c.Has("w1")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.Store.FindFirst("w1", PredicateHasUUID, Wildcard)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveOnAbsentMemberIsNoop(t *testing.T) {
	c := New("mycoll", NewMemoryStore())
	require.NoError(t, c.Remove("nothere"))
}

func TestAddRelationAndFindWildcard(t *testing.T) {
	c := New("mycoll", NewMemoryStore())
	_, err := c.AddRelation("alice", "knows", "bob")
	require.NoError(t, err)
	_, err = c.AddRelation("alice", "knows", "carol")
	require.NoError(t, err)

	state := c.InitState()
	seen := map[string]bool{}
	for {
		t2, ok, err := c.Find(state, "alice", "knows", Wildcard)
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[t2.Object] = true
	}
	require.True(t, seen["bob"])
	require.True(t, seen["carol"])
}

func TestRemoveRelationsReturnsCount(t *testing.T) {
	c := New("mycoll", NewMemoryStore())
	_, _ = c.AddRelation("alice", "knows", "bob")
	_, _ = c.AddRelation("alice", "knows", "carol")

	n, err := c.RemoveRelations("alice", "knows", Wildcard)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
