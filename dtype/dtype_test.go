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

package dtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeNameKnown(t *testing.T) {
	for tag, want := range names {
		got, err := TypeName(Tag(tag))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTypeNameUnknown(t *testing.T) {
	_, err := TypeName(Tag(999))
	require.Error(t, err)
}

func TestParseTypeNameRoundTrip(t *testing.T) {
	for tag := range names {
		name, err := TypeName(Tag(tag))
		require.NoError(t, err)
		parsed, err := ParseTypeName(name)
		require.NoError(t, err)
		require.Equal(t, Tag(tag), parsed)
	}
}

func TestParseTypeNameUnknown(t *testing.T) {
	_, err := ParseTypeName("not-a-type")
	require.Error(t, err)
}

func TestAlignmentStringPointerIsPointerWidth(t *testing.T) {
	require.Equal(t, PointerSize, Alignment(StringPtr, PointerSize))
}

func TestAlignmentNumericIsSizeCapped(t *testing.T) {
	require.Equal(t, 4, Alignment(Float, 4))
	require.Equal(t, 8, Alignment(Float, 8))
	require.Equal(t, 8, Alignment(Int, 8))
}

func TestAlignmentBlobAndStringAreByteAligned(t *testing.T) {
	require.Equal(t, 1, Alignment(Blob, 37))
	require.Equal(t, 1, Alignment(String, 12))
}

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, AlignUp(0, 8))
	require.Equal(t, 8, AlignUp(1, 8))
	require.Equal(t, 16, AlignUp(9, 8))
	require.Equal(t, 5, AlignUp(5, 1))
}

func TestMemberOffsetSweep(t *testing.T) {
	// header: 1 pointer, then a bool, then a float64 array (pointer slot).
	off := 0
	off = MemberOffset(off, 0, StringPtr, PointerSize) // header uuid ptr-ish slot
	require.Equal(t, 0, off)

	off2 := MemberOffset(off, PointerSize, Bool, 1)
	require.Equal(t, PointerSize, off2)

	off3 := MemberOffset(off2, 1, StringPtr, PointerSize)
	require.Equal(t, 16, off3)
}
