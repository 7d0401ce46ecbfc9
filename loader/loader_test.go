// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package loader

import (
	"bytes"
	"testing"

	"github.com/saferwall/clrcore/image"
	"github.com/saferwall/clrcore/internal/clrtest"
	"github.com/saferwall/clrcore/log"
	"github.com/saferwall/clrcore/metadata"
)

func testHelper() *log.Helper {
	return log.NewHelper(log.NewFilter(log.NewStdLogger(bytes.NewBuffer(nil)), log.FilterLevel(log.LevelError)))
}

// stringHeap incrementally builds a #Strings heap, mirroring the helper in
// metadata's own test suite.
type stringHeap struct{ data []byte }

func newStringHeap() *stringHeap { return &stringHeap{data: []byte{0}} }

func (h *stringHeap) add(s string) uint32 {
	off := uint32(len(h.data))
	h.data = append(h.data, clrtest.NullTerminated(s)...)
	return off
}

// buildAssembly assembles one TypeDef owning one Field and two MethodDefs:
// a regular method with a tiny-format body, and an InternalCall method with
// no body to interpret.
func buildAssembly(t *testing.T) (*metadata.Metadata, *image.Image) {
	t.Helper()

	strs := newStringHeap()
	typeName := strs.add("Counter")
	typeNamespace := strs.add("Acme")
	fieldName := strs.add("count")
	tinyMethodName := strs.add("Increment")
	ecallMethodName := strs.add("Reset")

	u16 := clrtest.U16
	u32 := clrtest.U32

	blobHeap := clrtest.Blob([]byte{0x06, 0x08}) // FIELD, I4
	fieldSigOff := uint32(0)

	var typeDefRow []byte
	typeDefRow = u32(typeDefRow, 0) // Flags
	typeDefRow = u16(typeDefRow, uint16(typeName))
	typeDefRow = u16(typeDefRow, uint16(typeNamespace))
	typeDefRow = u16(typeDefRow, 0) // Extends
	typeDefRow = u16(typeDefRow, 1) // FieldList -> Field rid 1
	typeDefRow = u16(typeDefRow, 1) // MethodList -> MethodDef rid 1

	var fieldRow []byte
	fieldRow = u16(fieldRow, 0x0006)
	fieldRow = u16(fieldRow, uint16(fieldName))
	fieldRow = u16(fieldRow, uint16(fieldSigOff))

	tinyBodyRVA := clrtest.SectionRVA + 0x300

	var tinyMethodRow []byte
	tinyMethodRow = u32(tinyMethodRow, tinyBodyRVA)
	tinyMethodRow = u16(tinyMethodRow, 0) // ImplFlags
	tinyMethodRow = u16(tinyMethodRow, 0x0006)
	tinyMethodRow = u16(tinyMethodRow, uint16(tinyMethodName))
	tinyMethodRow = u16(tinyMethodRow, 0) // Signature (unused by loader)
	tinyMethodRow = u16(tinyMethodRow, 1) // ParamList

	var ecallMethodRow []byte
	ecallMethodRow = u32(ecallMethodRow, 0) // RVA: unused, InternalCall has no body
	ecallMethodRow = u16(ecallMethodRow, 0x1000) // ImplFlags: InternalCall
	ecallMethodRow = u16(ecallMethodRow, 0x0006)
	ecallMethodRow = u16(ecallMethodRow, uint16(ecallMethodName))
	ecallMethodRow = u16(ecallMethodRow, 0)
	ecallMethodRow = u16(ecallMethodRow, 1)

	valid := uint64(1<<metadata.TypeDef | 1<<metadata.Field | 1<<metadata.MethodDef)
	rowCounts := map[int]uint32{metadata.TypeDef: 1, metadata.Field: 1, metadata.MethodDef: 2}

	tilde := clrtest.TildeStreamHeader(0, valid, rowCounts)
	tilde = append(tilde, typeDefRow...)
	tilde = append(tilde, fieldRow...)
	tilde = append(tilde, tinyMethodRow...)
	tilde = append(tilde, ecallMethodRow...)

	root := clrtest.MetadataRoot([]clrtest.Stream{
		{Name: "#~", Data: tilde},
		{Name: "#Strings", Data: strs.data},
		{Name: "#Blob", Data: blobHeap},
	})

	section := make([]byte, 0x400)
	cor20 := clrtest.COR20Header(clrtest.SectionRVA+0x10+72, uint32(len(root))) // root follows the 72-byte COR20 header
	copy(section[0x10:], cor20)
	copy(section[0x10+len(cor20):], root)

	// Tiny-format method body at section-relative offset 0x300: header
	// byte (low 2 bits 0b10, body length 4 in the upper 6 bits), then 4
	// bytes of IL (never interpreted by this test).
	section[0x300] = (4 << 2) | 0x2
	copy(section[0x301:], []byte{0x00, 0x00, 0x00, 0x2a})

	peBytes := clrtest.BuildPE(section, clrtest.SectionRVA+0x10, uint32(len(cor20)))

	img, err := image.FromBytes(peBytes, testHelper())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	md, err := metadata.Load(img, testHelper())
	if err != nil {
		t.Fatalf("metadata.Load: %v", err)
	}
	return md, img
}

func TestLoadBuildsClassAndMemberRanges(t *testing.T) {
	md, img := buildAssembly(t)
	registry := NewStaticECallRegistry()
	registry.Register("Acme.Counter::Reset", ECall{Name: "Reset", ParamsCount: 0})

	a, err := Load(md, img, registry, testHelper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(a.Classes) != 1 {
		t.Fatalf("len(Classes) = %d, want 1", len(a.Classes))
	}
	class := a.Classes[0]
	if class.TypeName != "Counter" || class.TypeNamespace != "Acme" {
		t.Fatalf("class = %s.%s, want Acme.Counter", class.TypeNamespace, class.TypeName)
	}

	methods := class.Methods(a)
	if len(methods) != 2 {
		t.Fatalf("len(Methods) = %d, want 2", len(methods))
	}
	for _, m := range methods {
		if m.Class != class {
			t.Fatalf("method %s not back-linked to its class", m.Name)
		}
	}

	fields := class.Fields(a)
	if len(fields) != 1 || fields[0].Name != "count" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields[0].Type.Elem != metadata.ElemI4 {
		t.Fatalf("field type = %v, want ElemI4", fields[0].Type.Elem)
	}
}

func TestLoadParsesTinyMethodHeader(t *testing.T) {
	md, img := buildAssembly(t)
	registry := NewStaticECallRegistry()
	registry.Register("Acme.Counter::Reset", ECall{Name: "Reset", ParamsCount: 0})

	a, err := Load(md, img, registry, testHelper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, err := a.Method(1)
	if err != nil {
		t.Fatalf("Method(1): %v", err)
	}
	if m.Name != "Increment" {
		t.Fatalf("method name = %q, want Increment", m.Name)
	}
	if m.IsECall {
		t.Fatalf("Increment should not be an ECall")
	}
	if m.MaxStack != 8 {
		t.Fatalf("MaxStack = %d, want 8", m.MaxStack)
	}
	if got := m.BodyEnd - m.BodyBegin; got != 4 {
		t.Fatalf("body size = %d, want 4", got)
	}
}

func TestLoadResolvesInternalCall(t *testing.T) {
	md, img := buildAssembly(t)
	registry := NewStaticECallRegistry()
	registry.Register("Acme.Counter::Reset", ECall{Name: "Reset", ParamsCount: 0})

	a, err := Load(md, img, registry, testHelper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, err := a.Method(2)
	if err != nil {
		t.Fatalf("Method(2): %v", err)
	}
	if !m.IsECall || m.ECall.Name != "Reset" {
		t.Fatalf("Reset not resolved as ECall: %+v", m)
	}
}

func TestLoadFailsOnUnresolvedInternalCall(t *testing.T) {
	md, img := buildAssembly(t)
	registry := NewStaticECallRegistry() // Reset left unregistered

	if _, err := Load(md, img, registry, testHelper()); err != ErrECallNotFound {
		t.Fatalf("got %v, want ErrECallNotFound", err)
	}
}
