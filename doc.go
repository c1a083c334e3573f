/*
 *
 * Copyright 2024 DLite-Go authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

/*

# dlite-go: a typed instance/metadata runtime

## Data model

* Entity, the schema of a class of instances: named dimensions, typed and
  possibly multi-dimensional properties, and a derived byte layout.

* Meta-entity, the singleton schema describing entities themselves.

* Instance, a single value conforming to an entity: a fixed header block
  plus a side table holding the heap payload of every array or
  string-reference property.

* Collection, a labelled bag of instance references backed by a triple
  store.

## Architecture

A caller opens a Storage through a named driver resolved from a
process-wide plugin registry. For every instance they read or write they
obtain a DataModel bound to that storage and an id. The instance package
walks an entity's dimensions and properties and transfers typed values
through the DataModel. Entities are themselves instances of the singleton
meta-entity and flow through the same load/save machinery.

### Identity

UUIDs are derived from a caller-supplied id: already a UUID is copied
verbatim, empty generates a random v4, anything else is hashed
deterministically into a v5 name-based UUID under the DNS namespace.

### Storage

A storage driver is a capability record: a required core (open, close,
list instance ids) plus optional capabilities (instance load/save,
entity load/save, query by metadata, data naming, datamodel teardown).
Loading an instance's metadata, dimensions and properties is one of the
optional capabilities, not part of the required core. Concrete drivers - JSON,
HDF5 or otherwise - are external to this module; it only defines and
dispatches the contract.

## Building blocks

* google/uuid
* prometheus/client_golang
* golang.org/x/sync
* github.com/cubefs/cubefs/blobstore/util (log, errors, bytespool)

*/

package dlite
