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

package dlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sintef/dlite-go/collection"
	"github.com/sintef/dlite-go/dtype"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/internal/testdriver"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/storage"
)

func openTestStorage(t *testing.T) *storage.Storage {
	r := storage.NewRegistry()
	r.Register("mem", testdriver.New)
	s, err := storage.Open(context.Background(), r, "mem", "mem://", "", "w")
	require.NoError(t, err)
	return s
}

func chemistryEntity(t *testing.T) *metadata.Entity {
	e, err := metadata.EntityCreate(
		"http://www.sintef.no/calm/0.1/Chemistry",
		"A simple chemistry entity.",
		[]metadata.Dimension{{Name: "nelements", Description: "number of elements"}},
		[]metadata.Property{
			{Name: "nsteps", Type: dtype.Int, Size: 8},
			{Name: "elements", Type: dtype.StringPtr, Size: dtype.PointerSize, Dims: []int{0}},
		},
	)
	require.NoError(t, err)
	return e
}

func TestEntitySaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStorage(t)
	e := chemistryEntity(t)

	require.NoError(t, SaveEntity(context.Background(), s, e))

	got, err := LoadEntity(context.Background(), s, e.URI)
	require.NoError(t, err)
	require.Equal(t, e.UUID, got.UUID)
	require.Equal(t, e.Size, got.Size)
}

func TestLoadEntityRejectsUnresolvableID(t *testing.T) {
	s := openTestStorage(t)
	_, err := LoadEntity(context.Background(), s, "")
	require.Error(t, err)
}

func TestInstanceCreateSaveLoadRoundTrip(t *testing.T) {
	s := openTestStorage(t)
	meta := chemistryEntity(t)

	inst, err := instance.Create(meta, []int{2}, "")
	require.NoError(t, err)
	require.NoError(t, inst.SetProperty("nsteps", int64(7)))
	require.NoError(t, inst.SetProperty("elements", []string{"Fe", "O"}))

	require.NoError(t, SaveInstance(context.Background(), s, inst))

	loaded, err := LoadInstance(context.Background(), s, inst.UUID)
	require.NoError(t, err)

	v, err := loaded.GetProperty("nsteps")
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	v, err = loaded.GetProperty("elements")
	require.NoError(t, err)
	require.Equal(t, []string{"Fe", "O"}, v)
}

func TestSaveInstanceWithNamePersistsDataName(t *testing.T) {
	s := openTestStorage(t)
	meta := chemistryEntity(t)

	inst, err := instance.Create(meta, []int{1}, "my-chemistry-sample")
	require.NoError(t, err)
	require.NoError(t, inst.SetProperty("nsteps", int64(3)))
	require.NoError(t, inst.SetProperty("elements", []string{"H"}))

	require.NoError(t, SaveInstance(context.Background(), s, inst))

	name, err := s.Driver.(storage.DataNamer).GetDataName(context.Background(), inst.UUID)
	require.NoError(t, err)
	require.Equal(t, "my-chemistry-sample", name)

	loaded, err := LoadInstance(context.Background(), s, "my-chemistry-sample")
	require.NoError(t, err)
	require.Equal(t, inst.UUID, loaded.UUID)
}

func TestPluginResolutionFailureDiagnostic(t *testing.T) {
	r := storage.NewRegistry()
	_, err := storage.Open(context.Background(), r, "nonexistent-driver", "uri", "", "r")
	require.Error(t, err)
	require.ErrorContains(t, err, "nonexistent-driver")
}

func TestCollectionLifecycleWithLoadedInstance(t *testing.T) {
	s := openTestStorage(t)
	meta := chemistryEntity(t)

	inst, err := instance.Create(meta, []int{1}, "")
	require.NoError(t, err)
	require.NoError(t, inst.SetProperty("nsteps", int64(1)))
	require.NoError(t, inst.SetProperty("elements", []string{"H"}))
	require.NoError(t, SaveInstance(context.Background(), s, inst))

	loaded, err := LoadInstance(context.Background(), s, inst.UUID)
	require.NoError(t, err)

	coll := collection.New("experiment-1", collection.NewMemoryStore())
	require.NoError(t, coll.Add("sample", loaded))

	ok, err := coll.Has("sample")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, coll.Remove("sample"))
	ok, err = coll.Has("sample")
	require.NoError(t, err)
	require.False(t, ok)
}
