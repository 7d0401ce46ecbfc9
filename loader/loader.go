// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package loader builds the runtime's type/method/field descriptor arrays
// from a parsed metadata.Metadata, the same three-pass walk the teacher's
// dotnet.go does once for its Module row, generalized here to the full
// TypeDef/MethodDef/Field table set and grounded on natsu-clr's
// AssemblyLoader::Load.
package loader

import (
	"errors"
	"fmt"

	"github.com/saferwall/clrcore/log"
	"github.com/saferwall/clrcore/metadata"
)

// Errors raised while resolving an assembly's descriptor arrays. All of
// them are fatal to Load: per spec.md §4.G, a malformed image or a missing
// internal call must not leave partial descriptors visible to the caller.
var (
	ErrBadMethodHeader = errors.New("loader: unrecognized method body header format")
	ErrECallNotFound    = errors.New("loader: internal call has no registry entry")
)

// EEClass describes one TypeDef: its name and the contiguous slices of the
// Assembly's Methods/Fields arrays it owns. The ranges are computed once at
// load time from each row's FieldList/MethodList against the next row's,
// per the table's documented "next row, or array end" rule.
type EEClass struct {
	TypeDefRID    uint32
	TypeName      string
	TypeNamespace string
	Flags         uint32
	Extends       uint32 // coded TypeDefOrRef index, 0 if none

	methodStart, methodEnd int // [start, end) into Assembly.Methods
	fieldStart, fieldEnd   int // [start, end) into Assembly.Fields
}

// Methods returns the class's owned method descriptors.
func (c *EEClass) Methods(a *Assembly) []*MethodDesc {
	return a.Methods[c.methodStart:c.methodEnd]
}

// Fields returns the class's owned field descriptors.
func (c *EEClass) Fields(a *Assembly) []*FieldDesc {
	return a.Fields[c.fieldStart:c.fieldEnd]
}

// MethodDesc describes one MethodDef: either a body to interpret, or an
// internal call resolved against an ECallRegistry.
type MethodDesc struct {
	MethodDefRID uint32
	Name         string
	Class        *EEClass

	ImplFlags uint16
	Flags     uint16

	IsECall bool
	ECall   ECall // valid only if IsECall

	// MaxStack, BodyBegin and BodyEnd describe the IL body when !IsECall.
	// BodyBegin/BodyEnd are file offsets of the first and one-past-last
	// code byte, resolved through the image's RVA map at load time.
	MaxStack   uint16
	BodyBegin  uint32
	BodyEnd    uint32
}

// FieldDesc describes one Field row: its name and decoded signature type.
type FieldDesc struct {
	FieldRID uint32
	Name     string
	Class    *EEClass
	Type     metadata.Type
}

// Assembly is the loaded descriptor set for one managed module: parallel
// arrays of EEClass/MethodDesc/FieldDesc, index-addressable by 1-based
// metadata row id through the Type/Method/Field accessors.
type Assembly struct {
	MD *metadata.Metadata

	Classes []*EEClass
	Methods []*MethodDesc
	Fields  []*FieldDesc
}

// Type returns the EEClass loaded from TypeDef row rid.
func (a *Assembly) Type(rid uint32) (*EEClass, error) {
	if rid == 0 || int(rid) > len(a.Classes) {
		return nil, fmt.Errorf("loader: TypeDef rid %d out of range", rid)
	}
	return a.Classes[rid-1], nil
}

// Method returns the MethodDesc loaded from MethodDef row rid, the Go
// equivalent of AssemblyLoader::GetMethod(Ridx<mdt_MethodDef>).
func (a *Assembly) Method(rid uint32) (*MethodDesc, error) {
	if rid == 0 || int(rid) > len(a.Methods) {
		return nil, fmt.Errorf("loader: MethodDef rid %d out of range", rid)
	}
	return a.Methods[rid-1], nil
}

// Field returns the FieldDesc loaded from Field row rid.
func (a *Assembly) Field(rid uint32) (*FieldDesc, error) {
	if rid == 0 || int(rid) > len(a.Fields) {
		return nil, fmt.Errorf("loader: Field rid %d out of range", rid)
	}
	return a.Fields[rid-1], nil
}

// rvaResolver maps a method body's RVA to a file offset, satisfied by
// *image.Image (which this package's tests also use). Header parsing
// additionally needs the byteReader surface below.
type rvaResolver interface {
	OffsetByRVA(rva uint32) (uint32, error)
}

// Load runs the three TypeDef/MethodDef/Field passes over md and returns
// the resulting Assembly. img resolves MethodDef RVAs to file offsets;
// registry resolves InternalCall methods to native entry points.
func Load(md *metadata.Metadata, img rvaResolver, registry ECallRegistry, logger *log.Helper) (*Assembly, error) {
	a := &Assembly{MD: md}

	typeCount := md.RowCount(metadata.TypeDef)
	methodCount := md.RowCount(metadata.MethodDef)
	fieldCount := md.RowCount(metadata.Field)

	a.Classes = make([]*EEClass, typeCount)
	a.Methods = make([]*MethodDesc, methodCount)
	a.Fields = make([]*FieldDesc, fieldCount)
	for i := range a.Methods {
		a.Methods[i] = &MethodDesc{}
	}
	for i := range a.Fields {
		a.Fields[i] = &FieldDesc{}
	}

	if err := loadTypeDefs(a, md); err != nil {
		return nil, err
	}
	if err := loadMethodDefs(a, md, img, registry, logger); err != nil {
		return nil, err
	}
	if err := loadFields(a, md); err != nil {
		return nil, err
	}
	return a, nil
}

// loadTypeDefs is the first pass: resolve each TypeDef's name and the
// contiguous Method/Field ranges it owns, then back-link every member in
// those ranges to its owning class.
func loadTypeDefs(a *Assembly, md *metadata.Metadata) error {
	n := len(a.Classes)
	for i := 0; i < n; i++ {
		rid := uint32(i + 1)
		row, err := md.TypeDef(rid)
		if err != nil {
			return err
		}
		name, err := md.String(row.TypeName)
		if err != nil {
			return err
		}
		namespace, err := md.String(row.TypeNamespace)
		if err != nil {
			return err
		}

		class := &EEClass{
			TypeDefRID:    rid,
			TypeName:      name,
			TypeNamespace: namespace,
			Flags:         row.Flags,
			Extends:       row.Extends,
			methodStart:   rowIndex(row.MethodList),
			fieldStart:    rowIndex(row.FieldList),
		}

		if i+1 < n {
			next, err := md.TypeDef(rid + 1)
			if err != nil {
				return err
			}
			class.methodEnd = rowIndex(next.MethodList)
			class.fieldEnd = rowIndex(next.FieldList)
		} else {
			class.methodEnd = len(a.Methods)
			class.fieldEnd = len(a.Fields)
		}
		a.Classes[i] = class

		for _, m := range class.Methods(a) {
			m.Class = class
		}
		for _, f := range class.Fields(a) {
			f.Class = class
		}
	}
	return nil
}

// rowIndex converts a 1-based metadata rid (0 meaning "no rows") to a
// 0-based slice index into the descriptor array.
func rowIndex(rid uint32) int {
	if rid == 0 {
		return 0
	}
	return int(rid - 1)
}

// internalCallFlag is MethodImplAttributes.InternalCall (ECMA-335
// §II.23.1.11), 0x1000.
const internalCallFlag = 0x1000

// loadMethodDefs is the second pass: resolve each MethodDef's name, and
// either bind it to a registered internal call or parse its tiny/fat IL
// header into a BodyBegin/BodyEnd/MaxStack triple.
func loadMethodDefs(a *Assembly, md *metadata.Metadata, img rvaResolver, registry ECallRegistry, logger *log.Helper) error {
	for i := range a.Methods {
		rid := uint32(i + 1)
		row, err := md.MethodDef(rid)
		if err != nil {
			return err
		}
		name, err := md.String(row.Name)
		if err != nil {
			return err
		}

		desc := a.Methods[i]
		desc.MethodDefRID = rid
		desc.Name = name
		desc.ImplFlags = row.ImplFlags
		desc.Flags = row.Flags

		if row.ImplFlags&internalCallFlag == internalCallFlag {
			qualified := qualifiedName(desc)
			ecall, ok := registry.Lookup(qualified)
			if !ok {
				logger.Errorf("loader: no internal call registered for %s", qualified)
				return ErrECallNotFound
			}
			desc.IsECall = true
			desc.ECall = ecall
			continue
		}

		if err := parseMethodHeader(desc, row.RVA, img); err != nil {
			return err
		}
	}
	return nil
}

// qualifiedName builds the Namespace.Type::Method identifier an
// InternalCall method is looked up by.
func qualifiedName(m *MethodDesc) string {
	if m.Class == nil {
		return "::" + m.Name
	}
	if m.Class.TypeNamespace == "" {
		return m.Class.TypeName + "::" + m.Name
	}
	return m.Class.TypeNamespace + "." + m.Class.TypeName + "::" + m.Name
}

const (
	corILMethodFormatMask = 0x3
	corILMethodTinyFormat = 0x2
	corILMethodFatFormat  = 0x3

	tinyHeaderSize = 1
)

// parseMethodHeader decodes the CorILMethod tiny or fat header at RVA, per
// ECMA-335 §II.25.4, and records the method body's file-offset span.
func parseMethodHeader(desc *MethodDesc, rva uint32, img rvaResolver) error {
	headerOff, err := img.OffsetByRVA(rva)
	if err != nil {
		return err
	}

	first, err := readByteAt(img, headerOff)
	if err != nil {
		return err
	}

	switch first & corILMethodFormatMask {
	case corILMethodTinyFormat:
		bodySize := uint32(first >> 2)
		desc.MaxStack = 8
		desc.BodyBegin = headerOff + tinyHeaderSize
		desc.BodyEnd = desc.BodyBegin + bodySize

	case corILMethodFatFormat:
		second, err := readByteAt(img, headerOff+1)
		if err != nil {
			return err
		}
		headerSizeDwords := second >> 4
		headerSize := uint32(headerSizeDwords) * 4

		maxStackLo, err := readByteAt(img, headerOff+2)
		if err != nil {
			return err
		}
		maxStackHi, err := readByteAt(img, headerOff+3)
		if err != nil {
			return err
		}
		desc.MaxStack = uint16(maxStackLo) | uint16(maxStackHi)<<8

		var codeSize uint32
		for i := 0; i < 4; i++ {
			b, err := readByteAt(img, headerOff+4+uint32(i))
			if err != nil {
				return err
			}
			codeSize |= uint32(b) << (8 * i)
		}

		desc.BodyBegin = headerOff + headerSize
		desc.BodyEnd = desc.BodyBegin + codeSize

	default:
		return ErrBadMethodHeader
	}
	return nil
}

// byteReader is the minimal surface parseMethodHeader needs beyond
// rvaResolver: a single byte at an already-resolved file offset. image.Image
// satisfies it via Data()[offset].
type byteReader interface {
	Data() []byte
}

func readByteAt(img rvaResolver, offset uint32) (byte, error) {
	br, ok := img.(byteReader)
	if !ok {
		return 0, fmt.Errorf("loader: resolver does not expose raw data")
	}
	data := br.Data()
	if uint32(len(data)) <= offset {
		return 0, ErrBadMethodHeader
	}
	return data[offset], nil
}

// loadFields is the third pass: resolve each Field's name and decoded
// signature type.
func loadFields(a *Assembly, md *metadata.Metadata) error {
	for i := range a.Fields {
		rid := uint32(i + 1)
		row, err := md.Field(rid)
		if err != nil {
			return err
		}
		name, err := md.String(row.Name)
		if err != nil {
			return err
		}
		blob, err := md.Blob(row.Signature)
		if err != nil {
			return err
		}
		sig, err := metadata.DecodeFieldSignature(blob)
		if err != nil {
			return err
		}

		desc := a.Fields[i]
		desc.FieldRID = rid
		desc.Name = name
		desc.Type = sig.Type
	}
	return nil
}
