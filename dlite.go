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
	"fmt"

	"github.com/cubefs/cubefs/blobstore/util/errors"

	"github.com/sintef/dlite-go/datamodel"
	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/storage"
	dliteuuid "github.com/sintef/dlite-go/uuid"
)

// LoadEntity resolves id to a canonical uuid and asks the driver for
// the entity directly through its EntityLoader capability, letting the
// driver honour a format-native representation.
//
// id must already identify something: either a canonical uuid, or a
// name a v5 uuid can be deterministically derived from. A freshly
// generated v4 (the empty-id case) cannot name an existing entity, so
// it is rejected rather than silently looked up under a fabricated id.
func LoadEntity(ctx context.Context, s *storage.Storage, id string) (*metadata.Entity, error) {
	uuid, ver, err := dliteuuid.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrIdentity, err)
	}
	if ver != dliteuuid.Copied && ver != dliteuuid.V5 {
		return nil, fmt.Errorf("%w: %q names neither an existing uuid nor a derivable entity name", dliteerrors.ErrIdentity, id)
	}

	loader, ok := s.Driver.(storage.EntityLoader)
	if !ok {
		return nil, storage.RequireCapability(false, s.Name, "GetEntity")
	}
	var e *metadata.Entity
	err = s.Call(ctx, "GetEntity", func() error {
		var err error
		e, err = loader.GetEntity(ctx, uuid)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "get entity failed"))
	}
	return e, nil
}

// SaveEntity persists e through the driver's EntitySaver capability.
func SaveEntity(ctx context.Context, s *storage.Storage, e *metadata.Entity) error {
	if !s.Writable {
		return fmt.Errorf("%w: storage %s is read-only", dliteerrors.ErrDriverMissingCapability, s.Name)
	}
	saver, ok := s.Driver.(storage.EntitySaver)
	if !ok {
		return storage.RequireCapability(false, s.Name, "SetEntity")
	}
	err := s.Call(ctx, "SetEntity", func() error { return saver.SetEntity(ctx, e) })
	if err != nil {
		return fmt.Errorf("%w: %s", dliteerrors.ErrDriverIO, errors.Info(err, "set entity failed"))
	}
	return nil
}

// LoadInstance loads the instance named by id through a DataModel: its
// entity through the DataModel's GetMetadata, then its dimension sizes
// and every property one by one. The DataModel reads these from the
// instance the driver returns through its InstanceLoader capability,
// so a driver without that capability cannot be loaded from this way.
func LoadInstance(ctx context.Context, s *storage.Storage, id string) (*instance.Instance, error) {
	dm, err := datamodel.New(ctx, s, id)
	if err != nil {
		return nil, err
	}
	meta, err := dm.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}

	dims := make([]int, len(meta.Dimensions))
	for i, d := range meta.Dimensions {
		dims[i], err = dm.GetDimensionSize(ctx, d.Name)
		if err != nil {
			return nil, err
		}
	}

	inst, err := instance.Create(meta, dims, id)
	if err != nil {
		return nil, err
	}
	inst.UUID = dm.UUID
	for _, p := range meta.Properties {
		v, err := dm.GetProperty(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if err := inst.SetProperty(p.Name, v); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// SaveInstance persists inst property by property through a DataModel.
// If inst carries a readable uri (set by instance.Create when it was
// given a name rather than a canonical uuid), that name is what's
// passed to datamodel.New, so a writable driver gets the chance to
// persist it via SetDataName; otherwise inst's own uuid is used.
func SaveInstance(ctx context.Context, s *storage.Storage, inst *instance.Instance) error {
	id := inst.UUID
	if inst.URI != "" {
		id = inst.URI
	}
	dm, err := datamodel.New(ctx, s, id)
	if err != nil {
		return err
	}
	dm.Bind(inst)
	for _, p := range inst.Meta.Properties {
		v, err := inst.GetProperty(p.Name)
		if err != nil {
			return err
		}
		if err := dm.SetProperty(ctx, p.Name, v); err != nil {
			return err
		}
	}
	return nil
}
