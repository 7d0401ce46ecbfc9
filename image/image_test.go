// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"testing"

	"github.com/saferwall/clrcore/internal/clrtest"
	"github.com/saferwall/clrcore/log"
)

func testHelper() *log.Helper {
	return log.NewHelper(log.NewFilter(log.NewStdLogger(bytes.NewBuffer(nil)), log.FilterLevel(log.LevelError)))
}

func TestFromBytesTooSmall(t *testing.T) {
	_, err := FromBytes([]byte{0x4d, 0x5a}, testHelper())
	if err != ErrTooSmall {
		t.Fatalf("got %v, want ErrTooSmall", err)
	}
}

func TestFromBytesBadDOSSignature(t *testing.T) {
	data := make([]byte, 128)
	_, err := FromBytes(data, testHelper())
	if err != ErrBadDOSSignature {
		t.Fatalf("got %v, want ErrBadDOSSignature", err)
	}
}

func TestFromBytesLocatesCLRDirectory(t *testing.T) {
	cor20 := clrtest.COR20Header(clrtest.SectionRVA+0x10, 0x40)
	section := make([]byte, 0x100)
	copy(section, cor20)

	img, err := FromBytes(clrtest.BuildPE(section, clrtest.SectionRVA, uint32(len(cor20))), testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	rva, size, err := img.CLRDirectory()
	if err != nil {
		t.Fatalf("CLRDirectory: %v", err)
	}
	if rva != clrtest.SectionRVA || size != uint32(len(cor20)) {
		t.Fatalf("got rva=%#x size=%d, want rva=%#x size=%d", rva, size, clrtest.SectionRVA, len(cor20))
	}

	data, err := img.DataByRVA(rva)
	if err != nil {
		t.Fatalf("DataByRVA: %v", err)
	}
	if !bytes.Equal(data[:size], cor20) {
		t.Fatalf("DataByRVA returned unexpected bytes")
	}
}

func TestFromBytesNoCLRDirectory(t *testing.T) {
	section := make([]byte, 0x40)
	img, err := FromBytes(clrtest.BuildPE(section, 0, 0), testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	if _, _, err := img.CLRDirectory(); err != ErrNoCLRDirectory {
		t.Fatalf("got %v, want ErrNoCLRDirectory", err)
	}
}

func TestOffsetByRVAOutOfRange(t *testing.T) {
	section := make([]byte, 0x40)
	img, err := FromBytes(clrtest.BuildPE(section, 0, 0), testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	if _, err := img.OffsetByRVA(0xffffffff); err != ErrRVAOutOfRange {
		t.Fatalf("got %v, want ErrRVAOutOfRange", err)
	}
}
