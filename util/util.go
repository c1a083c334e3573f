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

package util

import (
	"os"
	"reflect"
	"unsafe"

	"github.com/cubefs/cubefs/blobstore/util/bytespool"
	"github.com/google/uuid"
)

// GenTmpPath creates and returns a fresh temporary directory. Used by
// storage plugin tests that need a throwaway search-path entry.
func GenTmpPath() (string, error) {
	id := uuid.NewString()
	path := os.TempDir() + "/" + id
	if err := os.RemoveAll(path); err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// StringsToBytes reinterprets s as a []byte without copying. The result
// must not be mutated.
func StringsToBytes(s string) []byte {
	sh := (*reflect.StringHeader)(unsafe.Pointer(&s))
	bh := reflect.SliceHeader{
		Data: sh.Data,
		Len:  sh.Len,
		Cap:  sh.Len,
	}
	return *(*[]byte)(unsafe.Pointer(&bh)) //nolint: govet
}

// BytesToString reinterprets b as a string without copying. b must not
// be mutated afterwards.
func BytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// GetBuffer returns a pooled byte slice of the requested length, used
// for instance block allocation.
func GetBuffer(size int) []byte {
	return bytespool.Alloc(size)
}

// PutBuffer returns b, obtained from GetBuffer, to the pool.
func PutBuffer(b []byte) {
	bytespool.Free(b)
}
