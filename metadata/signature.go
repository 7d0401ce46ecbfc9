// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

import (
	"errors"

	"github.com/saferwall/clrcore/reader"
)

// ErrBadSignature is returned when a signature blob does not match any
// ECMA-335 §II.23.2 grammar this decoder understands.
var ErrBadSignature = errors.New("metadata: malformed signature blob")

// ElementType is an ECMA-335 §II.23.1.16 type code, the tag that prefixes
// every type in a signature blob.
type ElementType uint8

// The element type codes the decoder knows. decodeType accepts the
// codes it has a case for; any other code makes it return ErrBadSignature.
const (
	ElemEnd         ElementType = 0x00
	ElemVoid        ElementType = 0x01
	ElemBoolean     ElementType = 0x02
	ElemChar        ElementType = 0x03
	ElemI1          ElementType = 0x04
	ElemU1          ElementType = 0x05
	ElemI2          ElementType = 0x06
	ElemU2          ElementType = 0x07
	ElemI4          ElementType = 0x08
	ElemU4          ElementType = 0x09
	ElemI8          ElementType = 0x0a
	ElemU8          ElementType = 0x0b
	ElemR4          ElementType = 0x0c
	ElemR8          ElementType = 0x0d
	ElemString      ElementType = 0x0e
	ElemPtr         ElementType = 0x0f
	ElemByRef       ElementType = 0x10
	ElemValueType   ElementType = 0x11
	ElemClass       ElementType = 0x12
	ElemVar         ElementType = 0x13
	ElemArray       ElementType = 0x14
	ElemGenericInst ElementType = 0x15
	ElemTypedByRef  ElementType = 0x16
	ElemI           ElementType = 0x18
	ElemU           ElementType = 0x19
	ElemFnPtr       ElementType = 0x1b
	ElemObject      ElementType = 0x1c
	ElemSZArray     ElementType = 0x1d
	ElemMVar        ElementType = 0x1e
	ElemCModReqd    ElementType = 0x1f
	ElemCModOpt     ElementType = 0x20
	ElemSentinel    ElementType = 0x41
	ElemPinned      ElementType = 0x45
)

// CallingConvention is the low nibble of a method signature's first byte
// (ECMA-335 §II.23.2.1).
type CallingConvention uint8

const (
	CallDefault  CallingConvention = 0x0
	CallVarArg   CallingConvention = 0x5
	CallField    CallingConvention = 0x6
	CallLocalVar CallingConvention = 0x7
	CallProperty CallingConvention = 0x8
	CallGeneric  CallingConvention = 0x10

	callingConventionMask = 0x0f
	sigHasThis            = 0x20
	sigExplicitThis        = 0x40
	sigGeneric             = 0x10
)

// Type is a decoded signature type: a primitive element, or a compound type
// carrying a token (VALUETYPE/CLASS), an element type recursively
// (SZARRAY/PTR/BYREF), or an array shape.
type Type struct {
	Elem ElementType

	// Token is the coded TypeDefOrRef for ElemValueType/ElemClass.
	Token uint32

	// Element is the pointee/element type for PTR, BYREF, PINNED, SZARRAY
	// and ARRAY. GENERICINST leaves it nil and uses Token and GenericArgs.
	Element *Type

	// Number is the VAR/MVAR generic parameter index.
	Number uint32

	// Rank and shape for ARRAY; SZARRAY leaves them unset (Rank stays 0).
	Rank         uint32
	Sizes        []uint32
	LowerBounds  []int32

	// GenericArgs is the instantiated type list for GENERICINST.
	GenericArgs []Type

	// IsValueType records whether ElemGenericInst instantiates a value
	// type (its own prefix byte distinguishes CLASS vs VALUETYPE).
	IsValueType bool
}

// MethodSignature is a fully decoded method, property, or standalone
// signature (ECMA-335 §II.23.2.1/.2/.3).
type MethodSignature struct {
	Convention     CallingConvention
	HasThis        bool
	ExplicitThis   bool
	GenericArity   uint32
	ParamCount     uint32
	RetType        Type
	Params         []Type
	VarArgStart    int // index into Params where sentinel-separated varargs begin, -1 if none
}

// FieldSignature is a decoded field signature (ECMA-335 §II.23.2.4).
type FieldSignature struct {
	Type Type
}

// LocalVarSignature is a decoded locals signature for a method body's
// StandAloneSig (ECMA-335 §II.23.2.6).
type LocalVarSignature struct {
	Locals []Type
}

// DecodeFieldSignature decodes a FIELD signature blob.
func DecodeFieldSignature(blob []byte) (FieldSignature, error) {
	c := reader.New(blob)
	b, err := c.ReadUint8()
	if err != nil {
		return FieldSignature{}, err
	}
	if CallingConvention(b&callingConventionMask) != CallField {
		return FieldSignature{}, ErrBadSignature
	}
	t, err := decodeType(c)
	if err != nil {
		return FieldSignature{}, err
	}
	return FieldSignature{Type: t}, nil
}

// DecodeMethodSignature decodes a method, property, or standalone-calli
// signature blob.
func DecodeMethodSignature(blob []byte) (MethodSignature, error) {
	return decodeMethodSignature(reader.New(blob))
}

// decodeMethodSignature reads a method signature starting at c's current
// position, letting decodeType's FNPTR case share the cursor instead of
// slicing off a new byte span.
func decodeMethodSignature(c *reader.Cursor) (MethodSignature, error) {
	b, err := c.ReadUint8()
	if err != nil {
		return MethodSignature{}, err
	}

	sig := MethodSignature{
		Convention:   CallingConvention(b & callingConventionMask),
		HasThis:      b&sigHasThis != 0,
		ExplicitThis: b&sigExplicitThis != 0,
		VarArgStart:  -1,
	}

	if b&sigGeneric != 0 {
		arity, err := c.ReadCompressedUint32()
		if err != nil {
			return MethodSignature{}, err
		}
		sig.GenericArity = arity
	}

	paramCount, err := c.ReadCompressedUint32()
	if err != nil {
		return MethodSignature{}, err
	}
	sig.ParamCount = paramCount

	if sig.RetType, err = decodeType(c); err != nil {
		return MethodSignature{}, err
	}

	sig.Params = make([]Type, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		peek, err := peekUint8(c)
		if err != nil {
			return MethodSignature{}, err
		}
		if ElementType(peek) == ElemSentinel {
			c.Skip(1)
			sig.VarArgStart = len(sig.Params)
		}
		t, err := decodeType(c)
		if err != nil {
			return MethodSignature{}, err
		}
		sig.Params = append(sig.Params, t)
	}
	return sig, nil
}

// DecodeLocalVarSignature decodes a LOCAL_SIG signature blob.
func DecodeLocalVarSignature(blob []byte) (LocalVarSignature, error) {
	c := reader.New(blob)
	b, err := c.ReadUint8()
	if err != nil {
		return LocalVarSignature{}, err
	}
	if CallingConvention(b&callingConventionMask) != CallLocalVar {
		return LocalVarSignature{}, ErrBadSignature
	}
	n, err := c.ReadCompressedUint32()
	if err != nil {
		return LocalVarSignature{}, err
	}
	locals := make([]Type, 0, n)
	for i := uint32(0); i < n; i++ {
		t, err := decodeType(c)
		if err != nil {
			return LocalVarSignature{}, err
		}
		locals = append(locals, t)
	}
	return LocalVarSignature{Locals: locals}, nil
}

// peekUint8 reads the next byte without consuming it.
func peekUint8(c *reader.Cursor) (uint8, error) {
	pos := c.Pos()
	b, err := c.ReadUint8()
	c.SeekTo(pos)
	return b, err
}

// decodeType recursively decodes one type per ECMA-335 §II.23.2.12,
// skipping any leading CMOD_REQD/CMOD_OPT custom modifiers since they do
// not change the shape a loader cares about.
func decodeType(c *reader.Cursor) (Type, error) {
	for {
		peek, err := peekUint8(c)
		if err != nil {
			return Type{}, err
		}
		et := ElementType(peek)
		if et != ElemCModReqd && et != ElemCModOpt {
			break
		}
		if err := c.Skip(1); err != nil {
			return Type{}, err
		}
		if _, err := c.ReadCompressedUint32(); err != nil { // coded TypeDefOrRef
			return Type{}, err
		}
	}

	b, err := c.ReadUint8()
	if err != nil {
		return Type{}, err
	}
	et := ElementType(b)

	switch et {
	case ElemBoolean, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2, ElemI4, ElemU4,
		ElemI8, ElemU8, ElemR4, ElemR8, ElemString, ElemObject, ElemVoid,
		ElemI, ElemU, ElemTypedByRef:
		return Type{Elem: et}, nil

	case ElemValueType, ElemClass:
		tok, err := c.ReadCompressedUint32()
		if err != nil {
			return Type{}, err
		}
		return Type{Elem: et, Token: tok}, nil

	case ElemPtr, ElemByRef, ElemSZArray, ElemPinned:
		inner, err := decodeType(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Elem: et, Element: &inner}, nil

	case ElemVar, ElemMVar:
		n, err := c.ReadCompressedUint32()
		if err != nil {
			return Type{}, err
		}
		return Type{Elem: et, Number: n}, nil

	case ElemArray:
		return decodeArray(c)

	case ElemGenericInst:
		return decodeGenericInst(c)

	case ElemFnPtr:
		// A full method signature follows; FNPTR types are not otherwise
		// represented by Type, so decode it just to advance past it.
		if _, err := decodeMethodSignature(c); err != nil {
			return Type{}, err
		}
		return Type{Elem: et}, nil

	default:
		return Type{}, ErrBadSignature
	}
}

// decodeArray decodes ARRAY's element type, rank, and shape per §II.23.2.13.
func decodeArray(c *reader.Cursor) (Type, error) {
	elem, err := decodeType(c)
	if err != nil {
		return Type{}, err
	}
	rank, err := c.ReadCompressedUint32()
	if err != nil {
		return Type{}, err
	}

	numSizes, err := c.ReadCompressedUint32()
	if err != nil {
		return Type{}, err
	}
	sizes := make([]uint32, numSizes)
	for i := range sizes {
		if sizes[i], err = c.ReadCompressedUint32(); err != nil {
			return Type{}, err
		}
	}

	numLoBounds, err := c.ReadCompressedUint32()
	if err != nil {
		return Type{}, err
	}
	loBounds := make([]int32, numLoBounds)
	for i := range loBounds {
		v, err := c.ReadCompressedInt32()
		if err != nil {
			return Type{}, err
		}
		loBounds[i] = v
	}

	return Type{Elem: ElemArray, Element: &elem, Rank: rank, Sizes: sizes, LowerBounds: loBounds}, nil
}

// decodeGenericInst decodes GENERICINST's (CLASS|VALUETYPE) marker, token,
// and argument list per §II.23.2.12.
func decodeGenericInst(c *reader.Cursor) (Type, error) {
	marker, err := c.ReadUint8()
	if err != nil {
		return Type{}, err
	}
	tok, err := c.ReadCompressedUint32()
	if err != nil {
		return Type{}, err
	}
	argCount, err := c.ReadCompressedUint32()
	if err != nil {
		return Type{}, err
	}
	args := make([]Type, argCount)
	for i := range args {
		if args[i], err = decodeType(c); err != nil {
			return Type{}, err
		}
	}
	return Type{
		Elem:        ElemGenericInst,
		Token:       tok,
		GenericArgs: args,
		IsValueType: ElementType(marker) == ElemValueType,
	}, nil
}
