// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

// column describes one field of a table row: either a fixed-width integer
// or an index whose width depends on the sizes of the tables/heaps it can
// point into.
type column struct {
	width uint32
	coded codedIndex
}

func fixedCol(w uint32) column      { return column{width: w} }
func codedCol(ci codedIndex) column { return column{coded: ci} }

func (c column) size(m *Metadata) uint32 {
	if c.width != 0 {
		return c.width
	}
	return c.coded.width(m)
}

// tableSchema lists the column layout of every ECMA-335 §II.22 table, in
// column order. It is what lets rowSize compute a table's row width purely
// from the row counts and heap sizes already known from the table stream
// header, before a single row is decoded — the same dependency the
// teacher's getCodedIndexSize resolves per-column, just precomputed once
// per table here instead of once per field read.
var tableSchema = map[int][]column{
	Module:          {fixedCol(2), codedCol(simpleString), codedCol(simpleGUID), codedCol(simpleGUID), codedCol(simpleGUID)},
	TypeRef:         {codedCol(resolutionScope), codedCol(simpleString), codedCol(simpleString)},
	TypeDef:         {fixedCol(4), codedCol(simpleString), codedCol(simpleString), codedCol(typeDefOrRef), codedCol(simpleField), codedCol(simpleMethodDef)},
	FieldPtr:        {codedCol(simpleField)},
	Field:           {fixedCol(2), codedCol(simpleString), codedCol(simpleBlob)},
	MethodPtr:       {codedCol(simpleMethodDef)},
	MethodDef:       {fixedCol(4), fixedCol(2), fixedCol(2), codedCol(simpleString), codedCol(simpleBlob), codedCol(simpleParam)},
	ParamPtr:        {codedCol(simpleParam)},
	Param:           {fixedCol(2), fixedCol(2), codedCol(simpleString)},
	InterfaceImpl:   {codedCol(simpleTypeDef), codedCol(typeDefOrRef)},
	MemberRef:       {codedCol(memberRefParent), codedCol(simpleString), codedCol(simpleBlob)},
	Constant:        {fixedCol(2), codedCol(hasConstant), codedCol(simpleBlob)},
	CustomAttribute: {codedCol(hasCustomAttribute), codedCol(customAttributeType), codedCol(simpleBlob)},
	FieldMarshal:    {codedCol(hasFieldMarshal), codedCol(simpleBlob)},
	DeclSecurity:    {fixedCol(2), codedCol(hasDeclSecurity), codedCol(simpleBlob)},
	ClassLayout:     {fixedCol(2), fixedCol(4), codedCol(simpleTypeDef)},
	FieldLayout:     {fixedCol(4), codedCol(simpleField)},
	StandAloneSig:   {codedCol(simpleBlob)},
	EventMap:        {codedCol(simpleTypeDef), codedCol(simpleEvent)},
	EventPtr:        {codedCol(simpleEvent)},
	Event:           {fixedCol(2), codedCol(simpleString), codedCol(typeDefOrRef)},
	PropertyMap:     {codedCol(simpleTypeDef), codedCol(simpleProperty)},
	PropertyPtr:     {codedCol(simpleProperty)},
	Property:        {fixedCol(2), codedCol(simpleString), codedCol(simpleBlob)},
	MethodSemantics: {fixedCol(2), codedCol(simpleMethodDef), codedCol(hasSemantics)},
	MethodImpl:      {codedCol(simpleTypeDef), codedCol(methodDefOrRef), codedCol(methodDefOrRef)},
	ModuleRef:       {codedCol(simpleString)},
	TypeSpec:        {codedCol(simpleBlob)},
	ImplMap:         {fixedCol(2), codedCol(memberForwarded), codedCol(simpleString), codedCol(simpleModuleRef)},
	FieldRVA:        {fixedCol(4), codedCol(simpleField)},
	ENCLog:          {fixedCol(4), fixedCol(4)},
	ENCMap:          {fixedCol(4)},
	Assembly: {
		fixedCol(4), fixedCol(2), fixedCol(2), fixedCol(2), fixedCol(2), fixedCol(4),
		codedCol(simpleBlob), codedCol(simpleString), codedCol(simpleString),
	},
	AssemblyProcessor: {fixedCol(4)},
	AssemblyOS:        {fixedCol(4), fixedCol(4), fixedCol(4)},
	AssemblyRef: {
		fixedCol(2), fixedCol(2), fixedCol(2), fixedCol(2), fixedCol(4),
		codedCol(simpleBlob), codedCol(simpleString), codedCol(simpleString), codedCol(simpleBlob),
	},
	AssemblyRefProcessor:   {fixedCol(4), codedCol(simpleAssemblyRef)},
	AssemblyRefOS:          {fixedCol(4), fixedCol(4), fixedCol(4), codedCol(simpleAssemblyRef)},
	File:                   {fixedCol(4), codedCol(simpleString), codedCol(simpleBlob)},
	ExportedType:           {fixedCol(4), fixedCol(4), codedCol(simpleString), codedCol(simpleString), codedCol(implementation)},
	ManifestResource:       {fixedCol(4), fixedCol(4), codedCol(simpleString), codedCol(implementation)},
	NestedClass:            {codedCol(simpleTypeDef), codedCol(simpleTypeDef)},
	GenericParam:           {fixedCol(2), fixedCol(2), codedCol(typeOrMethodDef), codedCol(simpleString)},
	MethodSpec:             {codedCol(methodDefOrRef), codedCol(simpleBlob)},
	GenericParamConstraint: {codedCol(simpleGenericParam), codedCol(typeDefOrRef)},
}

// rowSize returns the byte width of one row of table, or 0 if table names
// no known ECMA-335 table.
func (m *Metadata) rowSize(table int) uint32 {
	cols, ok := tableSchema[table]
	if !ok {
		return 0
	}
	var size uint32
	for _, c := range cols {
		size += c.size(m)
	}
	return size
}
