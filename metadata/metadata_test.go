// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

import (
	"bytes"
	"testing"

	"github.com/saferwall/clrcore/image"
	"github.com/saferwall/clrcore/internal/clrtest"
	"github.com/saferwall/clrcore/log"
)

// stringHeap incrementally builds a #Strings heap and hands back each
// entry's offset, the same relationship ModuleRow.Name etc. expect.
type stringHeap struct {
	data []byte
}

func newStringHeap() *stringHeap { return &stringHeap{data: []byte{0}} }

func (h *stringHeap) add(s string) uint32 {
	off := uint32(len(h.data))
	h.data = append(h.data, clrtest.NullTerminated(s)...)
	return off
}

func testHelper() *log.Helper {
	return log.NewHelper(log.NewFilter(log.NewStdLogger(bytes.NewBuffer(nil)), log.FilterLevel(log.LevelError)))
}

// buildAssembly assembles a minimal synthetic image carrying a Module,
// TypeDef, Field, MethodDef and Param table with one row each, enough to
// exercise Load end to end the way a one-class, one-field, one-method
// assembly would.
func buildAssembly(t *testing.T) *Metadata {
	t.Helper()

	strs := newStringHeap()
	moduleName := strs.add("TestModule")
	typeName := strs.add("TestClass")
	typeNamespace := strs.add("Test")
	fieldName := strs.add("count")
	methodName := strs.add("Run")
	paramName := strs.add("value")

	guidHeap := make([]byte, 16)
	guidHeap[0] = 0xAA

	blobHeap := append(clrtest.Blob([]byte{0x06, 0x08}), clrtest.Blob([]byte{0x00, 0x00, 0x01})...)
	fieldSigOff := uint32(0)
	methodSigOff := uint32(len(clrtest.Blob([]byte{0x06, 0x08})))

	u16 := clrtest.U16
	u32 := clrtest.U32

	var moduleRow []byte
	moduleRow = u16(moduleRow, 0) // Generation
	moduleRow = u16(moduleRow, uint16(moduleName))
	moduleRow = u16(moduleRow, 1) // Mvid -> GUID index 1
	moduleRow = u16(moduleRow, 0) // EncID
	moduleRow = u16(moduleRow, 0) // EncBaseID

	var typeDefRow []byte
	typeDefRow = u32(typeDefRow, 0) // Flags
	typeDefRow = u16(typeDefRow, uint16(typeName))
	typeDefRow = u16(typeDefRow, uint16(typeNamespace))
	typeDefRow = u16(typeDefRow, 0) // Extends
	typeDefRow = u16(typeDefRow, 1) // FieldList -> Field rid 1
	typeDefRow = u16(typeDefRow, 1) // MethodList -> MethodDef rid 1

	var fieldRow []byte
	fieldRow = u16(fieldRow, 0x0006) // Flags
	fieldRow = u16(fieldRow, uint16(fieldName))
	fieldRow = u16(fieldRow, uint16(fieldSigOff))

	var methodDefRow []byte
	methodDefRow = u32(methodDefRow, clrtest.SectionRVA+0x300) // RVA of method body (unused by this test)
	methodDefRow = u16(methodDefRow, 0)                        // ImplFlags
	methodDefRow = u16(methodDefRow, 0x0006)                   // Flags
	methodDefRow = u16(methodDefRow, uint16(methodName))
	methodDefRow = u16(methodDefRow, uint16(methodSigOff))
	methodDefRow = u16(methodDefRow, 1) // ParamList -> Param rid 1

	var paramRow []byte
	paramRow = u16(paramRow, 0) // Flags
	paramRow = u16(paramRow, 1) // Sequence
	paramRow = u16(paramRow, uint16(paramName))

	valid := uint64(1<<Module | 1<<TypeDef | 1<<Field | 1<<MethodDef | 1<<Param)
	rowCounts := map[int]uint32{Module: 1, TypeDef: 1, Field: 1, MethodDef: 1, Param: 1}

	tilde := clrtest.TildeStreamHeader(0, valid, rowCounts)
	tilde = append(tilde, moduleRow...)
	tilde = append(tilde, typeDefRow...)
	tilde = append(tilde, fieldRow...)
	tilde = append(tilde, methodDefRow...)
	tilde = append(tilde, paramRow...)

	root := clrtest.MetadataRoot([]clrtest.Stream{
		{Name: "#~", Data: tilde},
		{Name: "#Strings", Data: strs.data},
		{Name: "#GUID", Data: guidHeap},
		{Name: "#Blob", Data: blobHeap},
	})

	section := make([]byte, 0x400)
	cor20 := clrtest.COR20Header(clrtest.SectionRVA+0x10+72, uint32(len(root))) // root follows the 72-byte COR20 header
	copy(section[0x10:], cor20)
	copy(section[0x10+len(cor20):], root)

	peBytes := clrtest.BuildPE(section, clrtest.SectionRVA+0x10, uint32(len(cor20)))

	img, err := image.FromBytes(peBytes, testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	md, err := Load(img, testHelper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return md
}

func TestLoadParsesModuleTable(t *testing.T) {
	md := buildAssembly(t)

	if got := md.RowCount(Module); got != 1 {
		t.Fatalf("RowCount(Module) = %d, want 1", got)
	}
	row, err := md.Module(1)
	if err != nil {
		t.Fatalf("Module(1): %v", err)
	}
	name, err := md.String(row.Name)
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if name != "TestModule" {
		t.Fatalf("module name = %q, want TestModule", name)
	}
}

func TestLoadParsesTypeDefFieldAndMethod(t *testing.T) {
	md := buildAssembly(t)

	td, err := md.TypeDef(1)
	if err != nil {
		t.Fatalf("TypeDef(1): %v", err)
	}
	if name, _ := md.String(td.TypeName); name != "TestClass" {
		t.Fatalf("type name = %q, want TestClass", name)
	}
	if td.FieldList != 1 || td.MethodList != 1 {
		t.Fatalf("FieldList/MethodList = %d/%d, want 1/1", td.FieldList, td.MethodList)
	}

	f, err := md.Field(td.FieldList)
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if name, _ := md.String(f.Name); name != "count" {
		t.Fatalf("field name = %q, want count", name)
	}

	meth, err := md.MethodDef(td.MethodList)
	if err != nil {
		t.Fatalf("MethodDef: %v", err)
	}
	if name, _ := md.String(meth.Name); name != "Run" {
		t.Fatalf("method name = %q, want Run", name)
	}

	p, err := md.Param(meth.ParamList)
	if err != nil {
		t.Fatalf("Param: %v", err)
	}
	if name, _ := md.String(p.Name); name != "value" {
		t.Fatalf("param name = %q, want value", name)
	}
}

func TestLoadNoCLRData(t *testing.T) {
	section := make([]byte, 0x40)
	img, err := image.FromBytes(clrtest.BuildPE(section, 0, 0), testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if _, err := Load(img, testHelper()); err != ErrNoCLRData {
		t.Fatalf("got %v, want ErrNoCLRData", err)
	}
}
