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

// Package errors defines the sentinel error kinds shared across the
// dlite-go packages. Operations wrap one of these with a specific
// diagnostic via github.com/cubefs/cubefs/blobstore/util/errors and
// callers match on kind with errors.Is.
package errors

import "errors"

var (
	// ErrAllocation is returned when a buffer or instance block could
	// not be allocated.
	ErrAllocation = errors.New("allocation failure")

	// ErrIdentity is returned when an id can neither be parsed as a
	// canonical UUID nor hashed into a v5 UUID.
	ErrIdentity = errors.New("identity failure")

	// ErrSchemaViolation covers unknown type names, dimension names a
	// property references but the entity never declared, and
	// shape/size mismatches discovered on load.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrAbsentMember is returned by name/index lookups that find
	// nothing.
	ErrAbsentMember = errors.New("absent member")

	// ErrDriverMissingCapability is returned when an optional driver
	// method is invoked but the driver does not implement it.
	ErrDriverMissingCapability = errors.New("driver missing capability")

	// ErrDriverIO wraps an opaque error surfaced by a storage driver.
	ErrDriverIO = errors.New("driver I/O error")

	// ErrPluginResolution is returned when a named storage driver
	// cannot be found anywhere in the plugin search path.
	ErrPluginResolution = errors.New("plugin resolution failure")
)
