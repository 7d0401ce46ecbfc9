// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

// codedIndex describes a column that indexes one of several tables (or one
// of the three heaps), tagged in its low bits to say which. Grounded on the
// teacher's dotnet_helper.go codedidx type and coded index table.
type codedIndex struct {
	tagBits uint
	tables  []int
}

// heap pseudo-table indices, kept out of the 0..MaxTableIndex range so they
// can share the codedIndex machinery used for table references.
const (
	heapString = -1
	heapGUID   = -2
	heapBlob   = -3
)

var (
	typeDefOrRef        = codedIndex{tagBits: 2, tables: []int{TypeDef, TypeRef, TypeSpec}}
	resolutionScope     = codedIndex{tagBits: 2, tables: []int{Module, ModuleRef, AssemblyRef, TypeRef}}
	memberRefParent     = codedIndex{tagBits: 3, tables: []int{TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec}}
	hasConstant         = codedIndex{tagBits: 2, tables: []int{Field, Param, Property}}
	hasCustomAttribute  = codedIndex{tagBits: 5, tables: []int{Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef, Module, Property, Event, StandAloneSig, ModuleRef, TypeSpec, Assembly, AssemblyRef, File, ExportedType, ManifestResource}}
	customAttributeType = codedIndex{tagBits: 3, tables: []int{MethodDef, MemberRef}}
	hasFieldMarshal     = codedIndex{tagBits: 1, tables: []int{Field, Param}}
	hasDeclSecurity     = codedIndex{tagBits: 2, tables: []int{TypeDef, MethodDef, Assembly}}
	hasSemantics        = codedIndex{tagBits: 1, tables: []int{Event, Property}}
	methodDefOrRef      = codedIndex{tagBits: 1, tables: []int{MethodDef, MemberRef}}
	memberForwarded     = codedIndex{tagBits: 1, tables: []int{Field, MethodDef}}
	implementation      = codedIndex{tagBits: 2, tables: []int{File, AssemblyRef, ExportedType}}
	typeOrMethodDef     = codedIndex{tagBits: 1, tables: []int{TypeDef, MethodDef}}

	simpleField        = codedIndex{tables: []int{Field}}
	simpleMethodDef    = codedIndex{tables: []int{MethodDef}}
	simpleParam        = codedIndex{tables: []int{Param}}
	simpleTypeDef      = codedIndex{tables: []int{TypeDef}}
	simpleEvent        = codedIndex{tables: []int{Event}}
	simpleProperty     = codedIndex{tables: []int{Property}}
	simpleModuleRef    = codedIndex{tables: []int{ModuleRef}}
	simpleAssemblyRef  = codedIndex{tables: []int{AssemblyRef}}
	simpleGenericParam = codedIndex{tables: []int{GenericParam}}

	simpleString = codedIndex{tables: []int{heapString}}
	simpleGUID   = codedIndex{tables: []int{heapGUID}}
	simpleBlob   = codedIndex{tables: []int{heapBlob}}
)

// width returns the byte width (2 or 4) of this coded index column, given
// the row counts of the tables it may reference and the metadata's heap
// index sizes. A coded index widens to 4 bytes as soon as the largest
// referenced table can no longer fit its row number in the bits left after
// the tag, the same rule ECMA-335 §II.24.2.6 and the teacher's
// getCodedIndexSize use.
func (c codedIndex) width(m *Metadata) uint32 {
	switch c.tables[0] {
	case heapString:
		return m.heapIndexSize(stringHeapBit)
	case heapGUID:
		return m.heapIndexSize(guidHeapBit)
	case heapBlob:
		return m.heapIndexSize(blobHeapBit)
	}

	maxRows16 := uint32(1) << (16 - c.tagBits)
	var maxRows uint32
	for _, t := range c.tables {
		if n := m.RowCount(t); n > maxRows {
			maxRows = n
		}
	}
	if maxRows >= maxRows16 {
		return 4
	}
	return 2
}

func (m *Metadata) heapIndexSize(bit int) uint32 {
	if m.Header.HeapSizes&(1<<uint(bit)) != 0 {
		return 4
	}
	return 2
}
