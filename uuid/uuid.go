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

// Package uuid derives canonical instance and metadata identity from a
// caller-supplied id, and joins/splits the namespace/version/name form
// of a metadata uri.
package uuid

import (
	"strings"

	"github.com/google/uuid"

	dliteerrors "github.com/sintef/dlite-go/errors"
)

// Length is the number of characters in a canonical, hyphenated,
// lowercase UUID string (excluding any NUL terminator).
const Length = 36

// Version reports how the UUID returned by Get was produced.
type Version int

const (
	// Copied means id was already a canonical UUID and was copied
	// verbatim (lower-cased).
	Copied Version = 0
	// V5 means id was hashed into a name-based v5 UUID under the DNS
	// namespace.
	V5 Version = 5
	// V4 means id was empty and a random v4 UUID was generated.
	V4 Version = 4
)

// Get writes the canonical UUID derived from id and reports which rule
// produced it.
//
//   - id empty: a random v4 UUID is generated.
//   - id already a canonical UUID string: it is copied verbatim.
//   - otherwise: a v5 SHA-1 UUID is generated from id under the DNS
//     namespace, deterministically.
//
// The result is always lower-cased for reproducibility. An error is
// returned only if id is non-empty, not a valid UUID, and somehow still
// fails to hash (which in practice never happens; SHA-1 v5 generation
// cannot fail for any input to this package).
func Get(id string) (string, Version, error) {
	if id == "" {
		return strings.ToLower(uuid.New().String()), V4, nil
	}
	if u, err := uuid.Parse(id); err == nil {
		return strings.ToLower(u.String()), Copied, nil
	}
	u := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(id))
	return strings.ToLower(u.String()), V5, nil
}

// MustGet is like Get but panics on error. Callers that already know id
// cannot fail (e.g. the empty string) may use it to avoid a dead error
// branch.
func MustGet(id string) (string, Version) {
	s, v, err := Get(id)
	if err != nil {
		panic(err)
	}
	return s, v
}

// IsCanonical reports whether s is already a valid canonical UUID
// string.
func IsCanonical(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Join builds the canonical namespace/version/name metadata uri.
func Join(name, version, namespace string) (string, error) {
	if name == "" || version == "" || namespace == "" {
		return "", dliteerrors.ErrSchemaViolation
	}
	return namespace + "/" + version + "/" + name, nil
}

// Split decomposes a metadata uri into name, version and namespace,
// using the last two '/' characters as separators. It fails if uri
// contains fewer than two slashes.
func Split(uri string) (name, version, namespace string, err error) {
	lastSlash := strings.LastIndexByte(uri, '/')
	if lastSlash < 0 {
		return "", "", "", dliteerrors.ErrSchemaViolation
	}
	secondSlash := strings.LastIndexByte(uri[:lastSlash], '/')
	if secondSlash < 0 {
		return "", "", "", dliteerrors.ErrSchemaViolation
	}
	name = uri[lastSlash+1:]
	version = uri[secondSlash+1 : lastSlash]
	namespace = uri[:secondSlash]
	if name == "" || version == "" || namespace == "" {
		return "", "", "", dliteerrors.ErrSchemaViolation
	}
	return name, version, namespace, nil
}
