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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sintef/dlite-go/dtype"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/storage"
)

type fakeDriver struct {
	meta  *metadata.Entity
	insts map[string]*instance.Instance
	names map[string]string
}

func newFakeDriver(meta *metadata.Entity) *fakeDriver {
	return &fakeDriver{meta: meta, insts: map[string]*instance.Instance{}, names: map[string]string{}}
}

func (d *fakeDriver) Open(ctx context.Context, uri, options, mode string) error { return nil }
func (d *fakeDriver) Close(ctx context.Context) error                          { return nil }
func (d *fakeDriver) InstanceIDs(ctx context.Context, pattern string) ([]string, error) {
	return nil, nil
}
func (d *fakeDriver) GetEntity(ctx context.Context, uuid string) (*metadata.Entity, error) {
	return d.meta, nil
}
func (d *fakeDriver) GetInstance(ctx context.Context, uuid string) (*instance.Instance, error) {
	inst, ok := d.insts[uuid]
	if !ok {
		inst, _ = instance.Create(d.meta, nil, "")
		d.insts[uuid] = inst
	}
	return inst, nil
}
func (d *fakeDriver) SetInstance(ctx context.Context, inst *instance.Instance) error {
	d.insts[inst.UUID] = inst
	return nil
}
func (d *fakeDriver) SetDataName(ctx context.Context, uuid, name string) error {
	d.names[uuid] = name
	return nil
}
func (d *fakeDriver) GetDataName(ctx context.Context, uuid string) (string, error) {
	return d.names[uuid], nil
}

func openStorage(t *testing.T, drv storage.StoragePlugin, writable bool) *storage.Storage {
	r := storage.NewRegistry()
	r.Register("fake", func() storage.StoragePlugin { return drv })
	mode := "r"
	if writable {
		mode = "w"
	}
	s, err := storage.Open(context.Background(), r, "fake", "mem://", "", mode)
	require.NoError(t, err)
	return s
}

func waterEntity(t *testing.T) *metadata.Entity {
	e, err := metadata.EntityCreate("http://x/0.1/Water", "", nil,
		[]metadata.Property{{Name: "density", Type: dtype.Float, Size: 8}})
	require.NoError(t, err)
	return e
}

func TestNewPersistsNameForReadableIDOnWritableStorage(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, true)

	dm, err := New(context.Background(), s, "my-water-sample")
	require.NoError(t, err)

	name, err := dm.GetDataName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "my-water-sample", name)
}

func TestNewDoesNotPersistNameOnReadOnlyStorage(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, false)

	_, err := New(context.Background(), s, "my-water-sample")
	require.NoError(t, err)
	require.Empty(t, drv.names)
}

func TestGetSetPropertyRoundTrip(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, true)

	dm, err := New(context.Background(), s, "sample-1")
	require.NoError(t, err)

	require.NoError(t, dm.SetProperty(context.Background(), "density", 1.0))
	v, err := dm.GetProperty(context.Background(), "density")
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}

func TestSetPropertyFailsOnReadOnlyStorage(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, false)

	dm, err := New(context.Background(), s, "sample-1")
	require.NoError(t, err)

	err = dm.SetProperty(context.Background(), "density", 1.0)
	require.Error(t, err)
}

func TestGetMetadataReturnsLoadedInstanceMeta(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, true)

	dm, err := New(context.Background(), s, "sample-1")
	require.NoError(t, err)

	got, err := dm.GetMetadata(context.Background())
	require.NoError(t, err)
	require.Same(t, meta, got)
}

func TestHasPropertyReflectsSchema(t *testing.T) {
	meta := waterEntity(t)
	drv := newFakeDriver(meta)
	s := openStorage(t, drv, true)

	dm, err := New(context.Background(), s, "sample-1")
	require.NoError(t, err)

	ok, err := dm.HasProperty(context.Background(), "density")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = dm.HasProperty(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
