// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

import "github.com/saferwall/clrcore/reader"

// ModuleRow is the single record of the Module table, identifying the
// current module.
type ModuleRow struct {
	Generation uint16
	Name       uint32 // #Strings offset
	Mvid       uint32 // #GUID index
	EncID      uint32 // #GUID index
	EncBaseID  uint32 // #GUID index
}

// TypeRefRow is one record of the TypeRef table: a reference to a type
// defined outside this module.
type TypeRefRow struct {
	ResolutionScope uint32 // coded ResolutionScope index
	TypeName        uint32 // #Strings offset
	TypeNamespace   uint32 // #Strings offset
}

// TypeDefRow is one record of the TypeDef table: a class or interface
// definition, with the contiguous Field/MethodDef ranges it owns computed
// relative to the following row by the loader, not stored here.
type TypeDefRow struct {
	Flags         uint32
	TypeName      uint32 // #Strings offset
	TypeNamespace uint32 // #Strings offset
	Extends       uint32 // coded TypeDefOrRef index
	FieldList     uint32 // 1-based Field rid
	MethodList    uint32 // 1-based MethodDef rid
}

// FieldRow is one record of the Field table.
type FieldRow struct {
	Flags     uint16
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
}

// MethodDefRow is one record of the MethodDef table.
type MethodDefRow struct {
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
	ParamList uint32 // 1-based Param rid
}

// ParamRow is one record of the Param table.
type ParamRow struct {
	Flags    uint16
	Sequence uint16
	Name     uint32 // #Strings offset
}

// InterfaceImplRow is one record of the InterfaceImpl table.
type InterfaceImplRow struct {
	Class     uint32 // TypeDef rid
	Interface uint32 // coded TypeDefOrRef index
}

// MemberRefRow is one record of the MemberRef table: a reference to a
// member (field or method) defined outside this module, or to a member of
// a generic type instantiation.
type MemberRefRow struct {
	Class     uint32 // coded MemberRefParent index
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
}

// ConstantRow is one record of the Constant table, giving the compiled
// default value of a field, parameter, or property.
type ConstantRow struct {
	Type   uint8
	Parent uint32 // coded HasConstant index
	Value  uint32 // #Blob offset
}

// CustomAttributeRow is one record of the CustomAttribute table.
type CustomAttributeRow struct {
	Parent uint32 // coded HasCustomAttribute index
	Type   uint32 // coded CustomAttributeType index
	Value  uint32 // #Blob offset
}

// StandAloneSigRow is one record of the StandAloneSig table: a signature
// used by the calli instruction or by a method body's local variables.
type StandAloneSigRow struct {
	Signature uint32 // #Blob offset
}

// AssemblyRow is the single record of the Assembly table, identifying the
// current assembly.
type AssemblyRow struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32 // #Blob offset
	Name           uint32 // #Strings offset
	Culture        uint32 // #Strings offset
}

// AssemblyRefRow is one record of the AssemblyRef table: a reference to an
// external assembly this module depends on.
type AssemblyRefRow struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken uint32 // #Blob offset
	Name             uint32 // #Strings offset
	Culture          uint32 // #Strings offset
	HashValue        uint32 // #Blob offset
}

// TypeSpecRow is one record of the TypeSpec table: a signature describing
// a constructed type (array, pointer, generic instantiation, ...).
type TypeSpecRow struct {
	Signature uint32 // #Blob offset
}

// NestedClassRow is one record of the NestedClass table.
type NestedClassRow struct {
	NestedClass    uint32 // TypeDef rid
	EnclosingClass uint32 // TypeDef rid
}

func col16(c *reader.Cursor) (uint16, error) { return c.ReadUint16() }
func col8(c *reader.Cursor) (uint8, error)   { return c.ReadUint8() }

func (m *Metadata) readIndex(c *reader.Cursor, ci codedIndex) (uint32, error) {
	if ci.width(m) == 4 {
		return c.ReadUint32()
	}
	v, err := c.ReadUint16()
	return uint32(v), err
}

// Module decodes row rid of the Module table.
func (m *Metadata) Module(rid uint32) (ModuleRow, error) {
	t, ok := m.Table(Module)
	if !ok {
		return ModuleRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return ModuleRow{}, err
	}
	c := reader.New(raw)

	var row ModuleRow
	if row.Generation, err = col16(c); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	if row.Mvid, err = m.readIndex(c, simpleGUID); err != nil {
		return row, err
	}
	if row.EncID, err = m.readIndex(c, simpleGUID); err != nil {
		return row, err
	}
	row.EncBaseID, err = m.readIndex(c, simpleGUID)
	return row, err
}

// TypeRef decodes row rid of the TypeRef table.
func (m *Metadata) TypeRef(rid uint32) (TypeRefRow, error) {
	t, ok := m.Table(TypeRef)
	if !ok {
		return TypeRefRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return TypeRefRow{}, err
	}
	c := reader.New(raw)

	var row TypeRefRow
	if row.ResolutionScope, err = m.readIndex(c, resolutionScope); err != nil {
		return row, err
	}
	if row.TypeName, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	row.TypeNamespace, err = m.readIndex(c, simpleString)
	return row, err
}

// TypeDef decodes row rid of the TypeDef table.
func (m *Metadata) TypeDef(rid uint32) (TypeDefRow, error) {
	t, ok := m.Table(TypeDef)
	if !ok {
		return TypeDefRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return TypeDefRow{}, err
	}
	c := reader.New(raw)

	var row TypeDefRow
	if row.Flags, err = c.ReadUint32(); err != nil {
		return row, err
	}
	if row.TypeName, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	if row.TypeNamespace, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	if row.Extends, err = m.readIndex(c, typeDefOrRef); err != nil {
		return row, err
	}
	if row.FieldList, err = m.readIndex(c, simpleField); err != nil {
		return row, err
	}
	row.MethodList, err = m.readIndex(c, simpleMethodDef)
	return row, err
}

// Field decodes row rid of the Field table.
func (m *Metadata) Field(rid uint32) (FieldRow, error) {
	t, ok := m.Table(Field)
	if !ok {
		return FieldRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return FieldRow{}, err
	}
	c := reader.New(raw)

	var row FieldRow
	if row.Flags, err = col16(c); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	row.Signature, err = m.readIndex(c, simpleBlob)
	return row, err
}

// MethodDef decodes row rid of the MethodDef table.
func (m *Metadata) MethodDef(rid uint32) (MethodDefRow, error) {
	t, ok := m.Table(MethodDef)
	if !ok {
		return MethodDefRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return MethodDefRow{}, err
	}
	c := reader.New(raw)

	var row MethodDefRow
	if row.RVA, err = c.ReadUint32(); err != nil {
		return row, err
	}
	if row.ImplFlags, err = col16(c); err != nil {
		return row, err
	}
	if row.Flags, err = col16(c); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	if row.Signature, err = m.readIndex(c, simpleBlob); err != nil {
		return row, err
	}
	row.ParamList, err = m.readIndex(c, simpleParam)
	return row, err
}

// Param decodes row rid of the Param table.
func (m *Metadata) Param(rid uint32) (ParamRow, error) {
	t, ok := m.Table(Param)
	if !ok {
		return ParamRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return ParamRow{}, err
	}
	c := reader.New(raw)

	var row ParamRow
	if row.Flags, err = col16(c); err != nil {
		return row, err
	}
	if row.Sequence, err = col16(c); err != nil {
		return row, err
	}
	row.Name, err = m.readIndex(c, simpleString)
	return row, err
}

// InterfaceImpl decodes row rid of the InterfaceImpl table.
func (m *Metadata) InterfaceImpl(rid uint32) (InterfaceImplRow, error) {
	t, ok := m.Table(InterfaceImpl)
	if !ok {
		return InterfaceImplRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return InterfaceImplRow{}, err
	}
	c := reader.New(raw)

	var row InterfaceImplRow
	if row.Class, err = m.readIndex(c, simpleTypeDef); err != nil {
		return row, err
	}
	row.Interface, err = m.readIndex(c, typeDefOrRef)
	return row, err
}

// MemberRef decodes row rid of the MemberRef table.
func (m *Metadata) MemberRef(rid uint32) (MemberRefRow, error) {
	t, ok := m.Table(MemberRef)
	if !ok {
		return MemberRefRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return MemberRefRow{}, err
	}
	c := reader.New(raw)

	var row MemberRefRow
	if row.Class, err = m.readIndex(c, memberRefParent); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	row.Signature, err = m.readIndex(c, simpleBlob)
	return row, err
}

// Constant decodes row rid of the Constant table.
func (m *Metadata) Constant(rid uint32) (ConstantRow, error) {
	t, ok := m.Table(Constant)
	if !ok {
		return ConstantRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return ConstantRow{}, err
	}
	c := reader.New(raw)

	var row ConstantRow
	if row.Type, err = col8(c); err != nil {
		return row, err
	}
	if err := c.Skip(1); err != nil { // padding
		return row, err
	}
	if row.Parent, err = m.readIndex(c, hasConstant); err != nil {
		return row, err
	}
	row.Value, err = m.readIndex(c, simpleBlob)
	return row, err
}

// CustomAttribute decodes row rid of the CustomAttribute table.
func (m *Metadata) CustomAttribute(rid uint32) (CustomAttributeRow, error) {
	t, ok := m.Table(CustomAttribute)
	if !ok {
		return CustomAttributeRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return CustomAttributeRow{}, err
	}
	c := reader.New(raw)

	var row CustomAttributeRow
	if row.Parent, err = m.readIndex(c, hasCustomAttribute); err != nil {
		return row, err
	}
	if row.Type, err = m.readIndex(c, customAttributeType); err != nil {
		return row, err
	}
	row.Value, err = m.readIndex(c, simpleBlob)
	return row, err
}

// StandAloneSig decodes row rid of the StandAloneSig table.
func (m *Metadata) StandAloneSig(rid uint32) (StandAloneSigRow, error) {
	t, ok := m.Table(StandAloneSig)
	if !ok {
		return StandAloneSigRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return StandAloneSigRow{}, err
	}
	c := reader.New(raw)

	var row StandAloneSigRow
	row.Signature, err = m.readIndex(c, simpleBlob)
	return row, err
}

// Assembly decodes the single row of the Assembly table.
func (m *Metadata) Assembly() (AssemblyRow, error) {
	t, ok := m.Table(Assembly)
	if !ok {
		return AssemblyRow{}, ErrUnknownTable
	}
	raw, err := t.Row(1)
	if err != nil {
		return AssemblyRow{}, err
	}
	c := reader.New(raw)

	var row AssemblyRow
	if row.HashAlgID, err = c.ReadUint32(); err != nil {
		return row, err
	}
	if row.MajorVersion, err = col16(c); err != nil {
		return row, err
	}
	if row.MinorVersion, err = col16(c); err != nil {
		return row, err
	}
	if row.BuildNumber, err = col16(c); err != nil {
		return row, err
	}
	if row.RevisionNumber, err = col16(c); err != nil {
		return row, err
	}
	if row.Flags, err = c.ReadUint32(); err != nil {
		return row, err
	}
	if row.PublicKey, err = m.readIndex(c, simpleBlob); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	row.Culture, err = m.readIndex(c, simpleString)
	return row, err
}

// AssemblyRef decodes row rid of the AssemblyRef table.
func (m *Metadata) AssemblyRef(rid uint32) (AssemblyRefRow, error) {
	t, ok := m.Table(AssemblyRef)
	if !ok {
		return AssemblyRefRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return AssemblyRefRow{}, err
	}
	c := reader.New(raw)

	var row AssemblyRefRow
	if row.MajorVersion, err = col16(c); err != nil {
		return row, err
	}
	if row.MinorVersion, err = col16(c); err != nil {
		return row, err
	}
	if row.BuildNumber, err = col16(c); err != nil {
		return row, err
	}
	if row.RevisionNumber, err = col16(c); err != nil {
		return row, err
	}
	if row.Flags, err = c.ReadUint32(); err != nil {
		return row, err
	}
	if row.PublicKeyOrToken, err = m.readIndex(c, simpleBlob); err != nil {
		return row, err
	}
	if row.Name, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	if row.Culture, err = m.readIndex(c, simpleString); err != nil {
		return row, err
	}
	row.HashValue, err = m.readIndex(c, simpleBlob)
	return row, err
}

// TypeSpec decodes row rid of the TypeSpec table.
func (m *Metadata) TypeSpec(rid uint32) (TypeSpecRow, error) {
	t, ok := m.Table(TypeSpec)
	if !ok {
		return TypeSpecRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return TypeSpecRow{}, err
	}
	c := reader.New(raw)

	var row TypeSpecRow
	row.Signature, err = m.readIndex(c, simpleBlob)
	return row, err
}

// NestedClass decodes row rid of the NestedClass table.
func (m *Metadata) NestedClass(rid uint32) (NestedClassRow, error) {
	t, ok := m.Table(NestedClass)
	if !ok {
		return NestedClassRow{}, ErrUnknownTable
	}
	raw, err := t.Row(rid)
	if err != nil {
		return NestedClassRow{}, err
	}
	c := reader.New(raw)

	var row NestedClassRow
	if row.NestedClass, err = m.readIndex(c, simpleTypeDef); err != nil {
		return row, err
	}
	row.EnclosingClass, err = m.readIndex(c, simpleTypeDef)
	return row, err
}
