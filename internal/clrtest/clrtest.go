// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package clrtest builds minimal, synthetic PE/COFF images carrying a CLI
// header and metadata root, used across this module's test suites in place
// of the binary fixture files the teacher's tests load from test/. There
// are no managed-assembly fixtures in the retrieval pack, so tests
// construct byte-exact images instead, following the literal byte
// sequences spec.md's end-to-end scenarios already give for tiny/fat
// method headers.
package clrtest

import (
	"encoding/binary"
)

// SectionRVA is the RVA (and, by construction, the matching file offset)
// at which the single section built by BuildPE starts.
const SectionRVA = 0x200

// BuildPE wraps sectionData in a minimal single-section PE32 image whose
// data directory entry 14 (CLR) points at clrDirRVA/clrDirSize within that
// section. RVAs equal file offsets throughout, since the section's
// VirtualAddress and PointerToRawData are both SectionRVA.
func BuildPE(sectionData []byte, clrDirRVA, clrDirSize uint32) []byte {
	const (
		lfanew         = 0x40
		fileHeaderSize = 20
		optHeaderSize  = 224 // 96 + 16*8
		sectionHdrSize = 40
	)
	headerEnd := uint32(lfanew + 4 + fileHeaderSize + optHeaderSize + sectionHdrSize)
	if headerEnd > SectionRVA {
		panic("clrtest: header region does not fit before SectionRVA")
	}

	buf := make([]byte, SectionRVA)
	buf[0], buf[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(buf[0x3c:], lfanew)

	pos := uint32(lfanew)
	binary.LittleEndian.PutUint32(buf[pos:], 0x00004550) // "PE\0\0"
	pos += 4

	// IMAGE_FILE_HEADER
	binary.LittleEndian.PutUint16(buf[pos:], 0x14c)     // Machine: I386
	binary.LittleEndian.PutUint16(buf[pos+2:], 1)       // NumberOfSections
	binary.LittleEndian.PutUint16(buf[pos+16:], optHeaderSize)
	binary.LittleEndian.PutUint16(buf[pos+18:], 0x0102) // ExecutableImage | 32BitMachine
	pos += fileHeaderSize

	// IMAGE_OPTIONAL_HEADER32, up to DataDirectory at +96.
	optStart := pos
	binary.LittleEndian.PutUint16(buf[optStart:], 0x10b)   // PE32 magic
	binary.LittleEndian.PutUint32(buf[optStart+36:], 0x20) // SectionAlignment
	binary.LittleEndian.PutUint32(buf[optStart+40:], 0x20) // FileAlignment
	binary.LittleEndian.PutUint32(buf[optStart+92:], 16)   // NumberOfRvaAndSizes
	dataDirStart := optStart + 96
	// Data directory 14: CLR header.
	binary.LittleEndian.PutUint32(buf[dataDirStart+14*8:], clrDirRVA)
	binary.LittleEndian.PutUint32(buf[dataDirStart+14*8+4:], clrDirSize)
	pos += optHeaderSize

	// Section header.
	name := []byte(".cormeta")
	copy(buf[pos:pos+8], name)
	binary.LittleEndian.PutUint32(buf[pos+8:], uint32(len(sectionData)))  // VirtualSize
	binary.LittleEndian.PutUint32(buf[pos+12:], SectionRVA)               // VirtualAddress
	binary.LittleEndian.PutUint32(buf[pos+16:], uint32(len(sectionData))) // SizeOfRawData
	binary.LittleEndian.PutUint32(buf[pos+20:], SectionRVA) // PointerToRawData

	return append(buf, sectionData...)
}

// COR20Header builds a 72-byte IMAGE_COR20_HEADER pointing at a metadata
// root of size metadataSize starting at RVA metadataRVA.
func COR20Header(metadataRVA, metadataSize uint32) []byte {
	buf := make([]byte, 72)
	binary.LittleEndian.PutUint32(buf[0:], 72) // Cb
	binary.LittleEndian.PutUint16(buf[4:], 2)  // MajorRuntimeVersion
	binary.LittleEndian.PutUint16(buf[6:], 5)  // MinorRuntimeVersion
	binary.LittleEndian.PutUint32(buf[8:], metadataRVA)
	binary.LittleEndian.PutUint32(buf[12:], metadataSize)
	binary.LittleEndian.PutUint32(buf[16:], 1) // Flags: ILOnly
	return buf
}

// Stream is a named metadata stream's contents, laid out into the root by
// MetadataRoot in the order given.
type Stream struct {
	Name string
	Data []byte
}

// MetadataRoot builds the BSJB metadata root: header, version string, and
// stream directory, followed immediately by the concatenated stream
// contents (so stream offsets in the directory are root-relative).
func MetadataRoot(streams []Stream) []byte {
	version := "v4.0.30319"
	verBytes := []byte(version)
	verBytes = append(verBytes, 0)
	for len(verBytes)%4 != 0 {
		verBytes = append(verBytes, 0)
	}

	header := make([]byte, 0, 64)
	header = binary.LittleEndian.AppendUint32(header, 0x424A5342) // BSJB
	header = binary.LittleEndian.AppendUint16(header, 1)          // MajorVersion
	header = binary.LittleEndian.AppendUint16(header, 1)          // MinorVersion
	header = binary.LittleEndian.AppendUint32(header, 0)          // ExtraData/reserved
	header = binary.LittleEndian.AppendUint32(header, uint32(len(verBytes)))
	header = append(header, verBytes...)
	header = append(header, 0) // Flags
	header = append(header, 0) // padding
	header = binary.LittleEndian.AppendUint16(header, uint16(len(streams)))

	dirSize := 0
	for _, s := range streams {
		nameLen := len(s.Name) + 1
		for nameLen%4 != 0 {
			nameLen++
		}
		dirSize += 8 + nameLen
	}

	dir := make([]byte, 0, dirSize)
	data := make([]byte, 0, 256)
	offset := uint32(len(header) + dirSize)
	for _, s := range streams {
		nameLen := len(s.Name) + 1
		for nameLen%4 != 0 {
			nameLen++
		}
		dir = binary.LittleEndian.AppendUint32(dir, offset)
		dir = binary.LittleEndian.AppendUint32(dir, uint32(len(s.Data)))
		nameField := make([]byte, nameLen)
		copy(nameField, s.Name)
		dir = append(dir, nameField...)

		padded := make([]byte, len(s.Data))
		copy(padded, s.Data)
		data = append(data, padded...)
		offset += uint32(len(s.Data))
	}

	root := append(header, dir...)
	root = append(root, data...)
	return root
}

// EncodeCompressedUint32 encodes n as an ECMA-335 §II.23.2 compressed
// unsigned integer, the inverse of reader.Cursor.ReadCompressedUint32.
func EncodeCompressedUint32(n uint32) []byte {
	switch {
	case n <= 0x7F:
		return []byte{byte(n)}
	case n <= 0x3FFF:
		return []byte{byte(n>>8) | 0x80, byte(n)}
	default:
		return []byte{
			byte(n>>24) | 0xC0,
			byte(n >> 16),
			byte(n >> 8),
			byte(n),
		}
	}
}

// Blob returns a #Blob heap entry: a compressed length prefix followed by
// the raw bytes.
func Blob(b []byte) []byte {
	return append(EncodeCompressedUint32(uint32(len(b))), b...)
}

// NullTerminated returns s as a zero-terminated UTF-8 #Strings heap entry.
func NullTerminated(s string) []byte {
	return append([]byte(s), 0)
}

// U16 appends a little-endian uint16 to dst.
func U16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

// U32 appends a little-endian uint32 to dst.
func U32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// TildeStreamHeader builds the 24-byte #~ header (reserved, versions,
// heapSizes, reserved, Valid, Sorted) followed by one uint32 row count per
// set bit of valid, in ascending table-index order.
func TildeStreamHeader(heapSizes uint8, valid uint64, rowCounts map[int]uint32) []byte {
	buf := make([]byte, 0, 24)
	buf = U32(buf, 0) // reserved
	buf = append(buf, 2, 0) // major, minor version
	buf = append(buf, heapSizes)
	buf = append(buf, 0) // reserved (RID byte, unused by clrcore)
	buf = append(buf, u64le(valid)...)
	buf = append(buf, u64le(0)...) // Sorted: irrelevant to parsing
	for i := 0; i < 64; i++ {
		if valid&(1<<uint(i)) != 0 {
			buf = U32(buf, rowCounts[i])
		}
	}
	return buf
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
