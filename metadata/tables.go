// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

// Table indices, as assigned by ECMA-335 §II.22. Values double as the bit
// position of the table within the table stream header's Valid/Sorted
// bitmasks, grounded on the teacher's dotnet.go table constant block.
const (
	Module = iota
	TypeRef
	TypeDef
	FieldPtr
	Field
	MethodPtr
	MethodDef
	ParamPtr
	Param
	InterfaceImpl
	MemberRef
	Constant
	CustomAttribute
	FieldMarshal
	DeclSecurity
	ClassLayout
	FieldLayout
	StandAloneSig
	EventMap
	EventPtr
	Event
	PropertyMap
	PropertyPtr
	Property
	MethodSemantics
	MethodImpl
	ModuleRef
	TypeSpec
	ImplMap
	FieldRVA
	ENCLog
	ENCMap
	Assembly
	AssemblyProcessor
	AssemblyOS
	AssemblyRef
	AssemblyRefProcessor
	AssemblyRefOS
	File
	ExportedType
	ManifestResource
	NestedClass
	GenericParam
	MethodSpec
	GenericParamConstraint
)

// MaxTableIndex is one past the highest table index defined by ECMA-335;
// the Valid bitmask may only set bits below it.
const MaxTableIndex = GenericParamConstraint + 1

var tableNames = map[int]string{
	Module:                  "Module",
	TypeRef:                 "TypeRef",
	TypeDef:                 "TypeDef",
	FieldPtr:                "FieldPtr",
	Field:                   "Field",
	MethodPtr:               "MethodPtr",
	MethodDef:               "MethodDef",
	ParamPtr:                "ParamPtr",
	Param:                   "Param",
	InterfaceImpl:           "InterfaceImpl",
	MemberRef:               "MemberRef",
	Constant:                "Constant",
	CustomAttribute:         "CustomAttribute",
	FieldMarshal:            "FieldMarshal",
	DeclSecurity:            "DeclSecurity",
	ClassLayout:             "ClassLayout",
	FieldLayout:             "FieldLayout",
	StandAloneSig:           "StandAloneSig",
	EventMap:                "EventMap",
	EventPtr:                "EventPtr",
	Event:                   "Event",
	PropertyMap:             "PropertyMap",
	PropertyPtr:             "PropertyPtr",
	Property:                "Property",
	MethodSemantics:         "MethodSemantics",
	MethodImpl:              "MethodImpl",
	ModuleRef:               "ModuleRef",
	TypeSpec:                "TypeSpec",
	ImplMap:                 "ImplMap",
	FieldRVA:                "FieldRVA",
	ENCLog:                  "ENCLog",
	ENCMap:                  "ENCMap",
	Assembly:                "Assembly",
	AssemblyProcessor:       "AssemblyProcessor",
	AssemblyOS:              "AssemblyOS",
	AssemblyRef:             "AssemblyRef",
	AssemblyRefProcessor:    "AssemblyRefProcessor",
	AssemblyRefOS:           "AssemblyRefOS",
	File:                    "File",
	ExportedType:            "ExportedType",
	ManifestResource:        "ManifestResource",
	NestedClass:             "NestedClass",
	GenericParam:            "GenericParam",
	MethodSpec:              "MethodSpec",
	GenericParamConstraint:  "GenericParamConstraint",
}

// TableIndexToString returns the ECMA-335 name of a table index, or "" if k
// does not name a known table.
func TableIndexToString(k int) string {
	return tableNames[k]
}

// Heap bit positions within the table stream header's HeapSizes byte.
const (
	stringHeapBit = 0
	guidHeapBit   = 1
	blobHeapBit   = 2
)
