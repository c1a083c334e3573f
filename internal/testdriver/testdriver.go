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

// Package testdriver is an in-memory StoragePlugin implementing every
// optional capability, used to exercise the storage/datamodel/instance
// stack end to end without a concrete format driver. It is test
// infrastructure, not a production storage driver.
package testdriver

import (
	"context"
	"fmt"
	"sync"

	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/storage"
)

// Driver is the in-memory StoragePlugin.
type Driver struct {
	mu        sync.Mutex
	opened    bool
	entities  map[string]*metadata.Entity
	instances map[string]*instance.Instance
	names     map[string]string
}

// New returns an unopened Driver. It satisfies storage.DriverFactory.
func New() storage.StoragePlugin {
	return &Driver{
		entities:  map[string]*metadata.Entity{},
		instances: map[string]*instance.Instance{},
		names:     map[string]string{},
	}
}

func (d *Driver) Open(ctx context.Context, uri, options, mode string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = true
	return nil
}

func (d *Driver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = false
	return nil
}

func (d *Driver) InstanceIDs(ctx context.Context, pattern string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.instances))
	for id := range d.instances {
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *Driver) GetEntity(ctx context.Context, uuid string) (*metadata.Entity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entities[uuid]
	if !ok {
		return nil, fmt.Errorf("testdriver: no entity %s", uuid)
	}
	return e, nil
}

func (d *Driver) SetEntity(ctx context.Context, e *metadata.Entity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entities[e.UUID] = e
	return nil
}

func (d *Driver) GetInstance(ctx context.Context, uuid string) (*instance.Instance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	inst, ok := d.instances[uuid]
	if !ok {
		return nil, fmt.Errorf("testdriver: no instance %s", uuid)
	}
	return inst, nil
}

func (d *Driver) SetInstance(ctx context.Context, inst *instance.Instance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instances[inst.UUID] = inst
	return nil
}

func (d *Driver) SetDataName(ctx context.Context, uuid, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[uuid] = name
	return nil
}

func (d *Driver) GetDataName(ctx context.Context, uuid string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.names[uuid], nil
}

// Seed registers inst directly, as if an earlier SetInstance call had
// persisted it, so tests can set up fixtures without a full save round
// trip.
func (d *Driver) Seed(inst *instance.Instance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instances[inst.UUID] = inst
}
