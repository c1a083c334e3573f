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

// Package datamodel is the per-instance façade between a caller and a
// storage driver: it generates the instance's canonical uuid, lazily
// loads its backing instance.Instance through the driver, and exposes
// thin typed wrappers around it, guarding every driver-optional
// operation with a clear capability error.
package datamodel

import (
	"context"
	"fmt"

	"github.com/cubefs/cubefs/blobstore/util/errors"
	"github.com/cubefs/cubefs/blobstore/util/log"

	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/storage"
	dliteuuid "github.com/sintef/dlite-go/uuid"
)

// DataModel is the opened handle to one instance's data, bound to a
// storage and a uuid.
type DataModel struct {
	Storage *storage.Storage
	UUID    string

	inst *instance.Instance
}

// New derives id's canonical uuid, records storage and the uuid, and —
// if id was a readable name (hashed into a v5 uuid), storage is
// writable, and the driver supports it — persists the original name via
// SetDataName.
func New(ctx context.Context, s *storage.Storage, id string) (*DataModel, error) {
	uuid, ver, err := dliteuuid.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrIdentity, err)
	}
	dm := &DataModel{Storage: s, UUID: uuid}

	if ver == dliteuuid.V5 && s.Writable {
		if namer, ok := s.Driver.(storage.DataNamer); ok {
			err := s.Call(ctx, "SetDataName", func() error { return namer.SetDataName(ctx, uuid, id) })
			if err != nil {
				return nil, fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "set data name failed"))
			}
		}
	}
	log.Infof("datamodel: opened %s (from %q)", uuid, id)
	return dm, nil
}

// Bind primes dm's cache with an instance already in hand, so that
// subsequent GetProperty/SetProperty calls operate on it directly
// instead of requiring the driver to already have something to load —
// the case when dm is being used to save an instance for the first
// time.
func (dm *DataModel) Bind(inst *instance.Instance) {
	dm.inst = inst
}

// Free dispatches to the driver's optional deinit, if it has one.
func (dm *DataModel) Free(ctx context.Context) error {
	if d, ok := dm.Storage.Driver.(storage.Deinitializer); ok {
		err := dm.Storage.Call(ctx, "DeinitDataModel", func() error { return d.DeinitDataModel(ctx, dm.UUID) })
		if err != nil {
			return fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "deinit data model failed"))
		}
	}
	return nil
}

// load lazily fetches dm's backing instance through the driver's
// InstanceLoader capability, caching it for subsequent calls.
func (dm *DataModel) load(ctx context.Context) (*instance.Instance, error) {
	if dm.inst != nil {
		return dm.inst, nil
	}
	loader, ok := dm.Storage.Driver.(storage.InstanceLoader)
	if !ok {
		return nil, storage.RequireCapability(false, dm.Storage.Name, "GetInstance")
	}
	var inst *instance.Instance
	err := dm.Storage.Call(ctx, "GetInstance", func() error {
		var err error
		inst, err = loader.GetInstance(ctx, dm.UUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "get instance failed"))
	}
	dm.inst = inst
	return inst, nil
}

// GetMetadata resolves the entity this datamodel's data conforms to.
// If the driver can load dm's uuid as an ordinary instance, its Meta is
// returned directly; otherwise dm.UUID is assumed to itself name an
// entity (the case when DataModel wraps an Entity, which — being
// itself an instance of the meta-entity — flows through the same
// load/save machinery), and the driver's EntityLoader capability is
// used instead.
func (dm *DataModel) GetMetadata(ctx context.Context) (*metadata.Entity, error) {
	if inst, err := dm.load(ctx); err == nil {
		return inst.Meta, nil
	}
	loader, ok := dm.Storage.Driver.(storage.EntityLoader)
	if !ok {
		return nil, storage.RequireCapability(false, dm.Storage.Name, "GetEntity")
	}
	var e *metadata.Entity
	err := dm.Storage.Call(ctx, "GetEntity", func() error {
		var err error
		e, err = loader.GetEntity(ctx, dm.UUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "get entity failed"))
	}
	return e, nil
}

// GetDimensionSize returns the concrete size of the named dimension.
func (dm *DataModel) GetDimensionSize(ctx context.Context, name string) (int, error) {
	inst, err := dm.load(ctx)
	if err != nil {
		return 0, err
	}
	return inst.DimensionSize(name)
}

// GetProperty returns the current value of the named property.
func (dm *DataModel) GetProperty(ctx context.Context, name string) (interface{}, error) {
	inst, err := dm.load(ctx)
	if err != nil {
		return nil, err
	}
	return inst.GetProperty(name)
}

// SetProperty overwrites the named property, requiring the driver's
// InstanceSaver capability to persist the change.
func (dm *DataModel) SetProperty(ctx context.Context, name string, value interface{}) error {
	if !dm.Storage.Writable {
		return fmt.Errorf("%w: storage %s is read-only", dliteerrors.ErrDriverMissingCapability, dm.Storage.Name)
	}
	inst, err := dm.load(ctx)
	if err != nil {
		return err
	}
	if err := inst.SetProperty(name, value); err != nil {
		return err
	}
	saver, ok := dm.Storage.Driver.(storage.InstanceSaver)
	if !ok {
		return storage.RequireCapability(false, dm.Storage.Name, "SetInstance")
	}
	err = dm.Storage.Call(ctx, "SetInstance", func() error { return saver.SetInstance(ctx, inst) })
	if err != nil {
		return fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "set instance failed"))
	}
	return nil
}

// HasProperty reports whether the loaded instance's entity declares a
// property named name.
func (dm *DataModel) HasProperty(ctx context.Context, name string) (bool, error) {
	inst, err := dm.load(ctx)
	if err != nil {
		return false, err
	}
	_, err = inst.Meta.PropertyIndex(name)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// GetDataName recovers the human-readable name dm's uuid was derived
// from, if the driver remembers it.
func (dm *DataModel) GetDataName(ctx context.Context) (string, error) {
	namer, ok := dm.Storage.Driver.(storage.DataNamer)
	if !ok {
		return "", storage.RequireCapability(false, dm.Storage.Name, "GetDataName")
	}
	var name string
	err := dm.Storage.Call(ctx, "GetDataName", func() error {
		var err error
		name, err = namer.GetDataName(ctx, dm.UUID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "get data name failed"))
	}
	return name, nil
}
