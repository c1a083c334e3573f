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

// Package storage defines the StoragePlugin driver contract, the
// process-wide plugin registry that resolves a driver name to an
// implementation via a search path, and Storage, the opaque handle an
// application opens against one driver instance.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cubefs/cubefs/blobstore/util/log"
	"golang.org/x/sync/errgroup"

	dliteerrors "github.com/sintef/dlite-go/errors"
	"github.com/sintef/dlite-go/instance"
	"github.com/sintef/dlite-go/iolimit"
	"github.com/sintef/dlite-go/metadata"
	"github.com/sintef/dlite-go/metrics"
)

// StoragePlugin is the contract every storage driver must implement.
// Instances are created by a DriverFactory registered under the
// driver's name.
type StoragePlugin interface {
	// Open connects to the backing location described by uri and
	// options, in the given mode ("r", "w" or "a").
	Open(ctx context.Context, uri, options, mode string) error
	// Close releases any resource Open acquired.
	Close(ctx context.Context) error
	// InstanceIDs lists the uuids the driver currently holds, or nil
	// if the driver cannot enumerate without a pattern.
	InstanceIDs(ctx context.Context, pattern string) ([]string, error)
}

// EntityLoader is an optional StoragePlugin capability: a driver that
// implements it can resolve a metadata entity by uuid directly,
// without the caller first loading it as an ordinary instance.
type EntityLoader interface {
	GetEntity(ctx context.Context, uuid string) (*metadata.Entity, error)
}

// EntitySaver is an optional StoragePlugin capability: a driver that
// implements it can persist a metadata entity directly.
type EntitySaver interface {
	SetEntity(ctx context.Context, e *metadata.Entity) error
}

// InstanceLoader is an optional StoragePlugin capability for loading a
// plain data instance's block and side tables by uuid.
type InstanceLoader interface {
	GetInstance(ctx context.Context, uuid string) (*instance.Instance, error)
}

// InstanceSaver is an optional StoragePlugin capability for persisting
// a plain data instance.
type InstanceSaver interface {
	SetInstance(ctx context.Context, inst *instance.Instance) error
}

// Queryable is an optional StoragePlugin capability: a driver that can
// iterate its instances matching a metadata uri.
type Queryable interface {
	FindInstances(ctx context.Context, metaURI string) ([]string, error)
}

// DataNamer is an optional StoragePlugin capability: a driver that
// remembers the human-readable name a datamodel's uuid was derived
// from, so it can be recovered later.
type DataNamer interface {
	SetDataName(ctx context.Context, uuid, name string) error
	GetDataName(ctx context.Context, uuid string) (string, error)
}

// Deinitializer is an optional StoragePlugin capability: a driver whose
// per-datamodel handle needs explicit teardown beyond garbage
// collection.
type Deinitializer interface {
	DeinitDataModel(ctx context.Context, uuid string) error
}

// DriverFactory constructs a new, unopened StoragePlugin instance.
type DriverFactory func() StoragePlugin

// outcome labels used for the PluginResolutions metric.
const (
	outcomeRegistered = "registered"
	outcomeByName      = "loaded-by-name"
	outcomeScanned     = "loaded-by-scan"
	outcomeNotFound    = "not-found"
)

// Registry resolves a driver name to a DriverFactory, either because it
// was registered in-process or because a module matching the name (or
// any module, as a last resort) was found on the search path.
type Registry struct {
	mu         sync.RWMutex
	drivers    map[string]DriverFactory
	searchPath []string

	// loadFn, when set, is the module-loading step: given a module path
	// and a driver name it returns that driver's factory. The registry
	// has no loader of its own; while loadFn is unset no module found
	// on the search path is ever loaded. Tests set it with SetLoadFunc.
	loadFn func(path, name string) (DriverFactory, bool)

	limiter *iolimit.Limiter
}

// NewRegistry returns an empty Registry with no search path.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]DriverFactory)}
}

// Register records factory under name, for in-process drivers that
// don't need search-path discovery.
func (r *Registry) Register(name string, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = factory
}

// SetSearchPath replaces the list of directories scanned for plugin
// modules. Negative indices in Insert/Remove address from the end of
// the current path, following the original C API's convention.
func (r *Registry) SetSearchPath(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchPath = append([]string(nil), paths...)
}

// SearchPath returns a copy of the current search path.
func (r *Registry) SearchPath() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.searchPath...)
}

// InsertPath inserts dir into the search path at index. A negative
// index counts back from the end of the path; -1 appends.
func (r *Registry) InsertPath(index int, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := resolveIndex(index, len(r.searchPath)+1)
	r.searchPath = append(r.searchPath[:i:i], append([]string{dir}, r.searchPath[i:]...)...)
}

// RemovePath removes the entry at index from the search path. A
// negative index counts back from the end.
func (r *Registry) RemovePath(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.searchPath) == 0 {
		return
	}
	i := resolveIndex(index, len(r.searchPath))
	r.searchPath = append(r.searchPath[:i], r.searchPath[i+1:]...)
}

func resolveIndex(index, length int) int {
	if index < 0 {
		index += length
	}
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// pluginSuffix is the file extension this registry scans for on the
// search path: a Go plugin built with `go build -buildmode=plugin`.
const pluginSuffix = ".so"

// Resolve returns a factory for name: one already registered, one
// found by an exact filename match on the search path, or — failing
// that — a module on the search path that loads as name, found by
// scanning the directories concurrently (when several directories hold
// one, which of them is used is not defined). A factory found on the
// search path is registered under name before it is returned. If
// nothing is found, the error wraps ErrPluginResolution and names the
// driver and the search path.
func (r *Registry) Resolve(ctx context.Context, name string) (DriverFactory, error) {
	r.mu.RLock()
	if f, ok := r.drivers[name]; ok {
		r.mu.RUnlock()
		metrics.PluginResolutions.WithLabelValues(name, outcomeRegistered).Inc()
		return f, nil
	}
	paths := append([]string(nil), r.searchPath...)
	r.mu.RUnlock()

	if f, err := r.scanExact(paths, name); err == nil {
		r.Register(name, f)
		metrics.PluginResolutions.WithLabelValues(name, outcomeByName).Inc()
		return f, nil
	}

	f, err := r.scanAny(ctx, paths, name)
	if err != nil {
		metrics.PluginResolutions.WithLabelValues(name, outcomeNotFound).Inc()
		return nil, fmt.Errorf("%w: storage driver %q not found on search path %q", err, name, paths)
	}
	r.Register(name, f)
	metrics.PluginResolutions.WithLabelValues(name, outcomeScanned).Inc()
	return f, nil
}

func (r *Registry) scanExact(paths []string, name string) (DriverFactory, error) {
	for _, dir := range paths {
		candidate := filepath.Join(dir, name+pluginSuffix)
		if _, err := os.Stat(candidate); err == nil {
			if f, ok := r.loadModule(candidate, name); ok {
				return f, nil
			}
		}
	}
	return nil, dliteerrors.ErrPluginResolution
}

// scanAny scans every directory on the search path concurrently,
// looking for any module (regardless of filename) that exports a
// driver registered under name. The first hit wins; scanning of the
// other directories is abandoned once it does.
func (r *Registry) scanAny(ctx context.Context, paths []string, name string) (DriverFactory, error) {
	var (
		mu     sync.Mutex
		found  DriverFactory
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	for _, dir := range paths {
		dir := dir
		g.Go(func() error {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil
			}
			for _, e := range entries {
				if ctx.Err() != nil {
					return nil
				}
				if e.IsDir() || !strings.HasSuffix(e.Name(), pluginSuffix) {
					continue
				}
				if f, ok := r.loadModule(filepath.Join(dir, e.Name()), name); ok {
					mu.Lock()
					if found == nil {
						found = f
					}
					mu.Unlock()
					cancel()
					return nil
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, dliteerrors.ErrPluginResolution
	}
	return found, nil
}

// loadModule loads the module at path through Registry.loadFn. With no
// loadFn installed it loads nothing and reports false; see
// Registry.loadFn.
func (r *Registry) loadModule(path, name string) (DriverFactory, bool) {
	if r.loadFn != nil {
		return r.loadFn(path, name)
	}
	return nil, false
}

// SetLoadFunc installs the module-loading seam used by tests.
func (r *Registry) SetLoadFunc(fn func(path, name string) (DriverFactory, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadFn = fn
}

// SetLimiter bounds how many driver calls may be in flight at once:
// the driver Open inside Storage.Open, and every later call made
// through Storage.Call on a Storage opened from this registry. A nil
// or zero-concurrency limiter leaves calls unbounded.
func (r *Registry) SetLimiter(l *iolimit.Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter = l
}

// LoadAll scans every directory on the search path concurrently and
// registers every plugin module its loader accepts under the module's
// file name without the .so suffix, returning the names registered. Unlike Resolve, it does not
// stop at the first match: this is the bulk-discovery counterpart used
// at startup to warm the registry, and mutates r.drivers serially on
// the calling goroutine once every directory's scan has completed.
func (r *Registry) LoadAll(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	paths := append([]string(nil), r.searchPath...)
	r.mu.RUnlock()

	type found struct {
		name    string
		factory DriverFactory
	}
	var (
		mu      sync.Mutex
		results []found
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, dir := range paths {
		dir := dir
		g.Go(func() error {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil
			}
			for _, e := range entries {
				if ctx.Err() != nil {
					return nil
				}
				if e.IsDir() || !strings.HasSuffix(e.Name(), pluginSuffix) {
					continue
				}
				name := strings.TrimSuffix(e.Name(), pluginSuffix)
				if f, ok := r.loadModule(filepath.Join(dir, e.Name()), name); ok {
					mu.Lock()
					results = append(results, found{name: name, factory: f})
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	names := make([]string, 0, len(results))
	for _, f := range results {
		r.drivers[f.name] = f.factory
		names = append(names, f.name)
	}
	r.mu.Unlock()

	log.Infof("storage: loaded %d plugin(s) from search path", len(names))
	return names, nil
}

// Storage is an opened handle to a StoragePlugin driver instance.
type Storage struct {
	Driver   StoragePlugin
	Name     string
	Writable bool

	limiter  *iolimit.Limiter
	openedAt time.Time
}

// Open resolves name via registry, constructs a driver instance and
// opens it against uri/options in mode. If the registry has a limiter
// configured, the underlying driver call is dispatched through it.
func Open(ctx context.Context, registry *Registry, name, uri, options, mode string) (*Storage, error) {
	factory, err := registry.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	driver := factory()

	registry.mu.RLock()
	lim := registry.limiter
	registry.mu.RUnlock()

	call := func() error {
		timer := timeDriverCall(name, "Open")
		defer timer()
		return driver.Open(ctx, uri, options, mode)
	}
	if lim != nil {
		err = lim.Call(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, err
	}
	log.Infof("storage: opened %s driver against %s (mode %s)", name, uri, mode)
	return &Storage{Driver: driver, Name: name, Writable: mode != "r", limiter: lim, openedAt: time.Now()}, nil
}

// Close closes the underlying driver.
func (s *Storage) Close(ctx context.Context) error {
	return s.Call(ctx, "Close", func() error { return s.Driver.Close(ctx) })
}

// Call dispatches fn, which performs one driver operation named op,
// through s's limiter (if one was configured on the registry that
// opened s) and times it into the DriverDuration histogram. Every
// call datamodel makes against s.Driver goes through this, the same
// way Open and Close already do.
func (s *Storage) Call(ctx context.Context, op string, fn func() error) error {
	timer := timeDriverCall(s.Name, op)
	defer timer()
	if s.limiter != nil {
		return s.limiter.Call(ctx, fn)
	}
	return fn()
}

// timeDriverCall starts a DriverDuration observation for the named
// driver/operation pair; call the returned func when the call returns.
func timeDriverCall(driver, op string) func() {
	start := time.Now()
	return func() {
		metrics.DriverDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
	}
}

// RequireCapability returns a typed error unless the driver implements
// the capability named by op (used before dispatching to an optional
// interface such as EntityLoader).
func RequireCapability(ok bool, driverName, op string) error {
	if ok {
		return nil
	}
	return &CapabilityError{Driver: driverName, Operation: op}
}

// CapabilityError reports that a driver lacks an optional capability.
type CapabilityError struct {
	Driver    string
	Operation string
}

func (e *CapabilityError) Error() string {
	return "storage: driver " + e.Driver + " does not support " + e.Operation
}

func (e *CapabilityError) Unwrap() error { return dliteerrors.ErrDriverMissingCapability }
