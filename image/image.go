// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package image implements the minimal PE/COFF view the metadata importer
// needs: locating the section table and translating an RVA to a file
// offset, then locating the CLI header through data directory entry 14.
// Full PE parsing (imports, exports, resources, relocations, debug
// directories, ...) is an external collaborator per spec and is not
// reimplemented here — this package only carries the slice of the
// teacher's dosheader.go/ntheader.go/section.go needed to resolve RVAs and
// find the CLR header, grounded on those files' structures and
// structUnpack/ReadUint* patterns (reworked here onto reader.Cursor).
package image

import (
	"bytes"
	"encoding/binary"
	"errors"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/clrcore/log"
	"github.com/saferwall/clrcore/reader"
)

// PE/COFF magic constants.
const (
	imageDOSSignature       = 0x5A4D // MZ
	imageNTSignature        = 0x00004550
	imageOptHdr32Magic      = 0x10b
	imageOptHdr64Magic      = 0x20b
	imageNumberOfDataDirs   = 16
	imageDirectoryEntryCLR  = 14
	imageFileHeaderSize     = 20
	optHeader32ToDataDirOff = 96  // bytes from start of ImageOptionalHeader32 to DataDirectory[0]
	optHeader64ToDataDirOff = 112 // bytes from start of ImageOptionalHeader64 to DataDirectory[0]
)

// Errors raised while locating sections and the CLR directory. These map to
// the BadImage category of spec.md §7.
var (
	ErrTooSmall         = errors.New("image: smaller than the minimum PE size")
	ErrBadDOSSignature  = errors.New("image: DOS header magic not found")
	ErrBadNTSignature   = errors.New("image: PE signature not found")
	ErrBadOptionalMagic = errors.New("image: optional header magic not found (PE32/PE32+)")
	ErrNoCLRDirectory   = errors.New("image: no CLR (COM+ 2.0) data directory present")
	ErrRVAOutOfRange    = errors.New("image: RVA out of range")
)

// DataDirectory is one entry of the optional header's data directory array.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// section is the minimal view of a section header needed for RVA mapping.
type section struct {
	virtualAddress uint32
	virtualSize    uint32
	rawOffset      uint32
	rawSize        uint32
}

func (s section) contains(rva uint32) bool {
	size := s.virtualSize
	if size < s.rawSize {
		size = s.rawSize
	}
	return rva >= s.virtualAddress && rva < s.virtualAddress+size
}

func (s section) toOffset(rva uint32) uint32 {
	return rva - s.virtualAddress + s.rawOffset
}

// Image is a minimal PE/COFF view: the section table plus the location of
// the CLR (COM+ 2.0) data directory, backing every RVA the metadata
// importer needs to resolve.
type Image struct {
	data     []byte
	mm       mmap.MMap
	sections []section
	is64     bool
	clrRVA   uint32
	clrSize  uint32
	logger   *log.Helper
}

// Open memory-maps the file at path the way the teacher's pe.New does, and
// parses just enough of the PE headers to build the section table and
// locate the CLR directory.
func Open(path string, logger *log.Helper) (*Image, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.Close()

	img, err := parse(mm, logger)
	if err != nil {
		_ = mm.Unmap()
		return nil, err
	}
	img.mm = mm
	return img, nil
}

// FromBytes parses an already-loaded image buffer. The returned Image
// borrows data; the caller must keep it alive for the Image's lifetime.
func FromBytes(data []byte, logger *log.Helper) (*Image, error) {
	return parse(data, logger)
}

// Close unmaps the underlying file, if Open mapped one.
func (img *Image) Close() error {
	if img.mm != nil {
		return img.mm.Unmap()
	}
	return nil
}

// Data returns the raw span the image is a view over.
func (img *Image) Data() []byte { return img.data }

// CLRDirectory returns the RVA and size of the CLI header, or
// ErrNoCLRDirectory if this image has no managed metadata.
func (img *Image) CLRDirectory() (rva, size uint32, err error) {
	if img.clrRVA == 0 || img.clrSize == 0 {
		return 0, 0, ErrNoCLRDirectory
	}
	return img.clrRVA, img.clrSize, nil
}

// DataByRVA resolves an RVA to the backing byte slice of length at least
// one byte, locating the section it falls in and translating to a file
// offset. Raw offsets below the first section (the header region) are
// served directly from the start of the image, matching common-language
// runtime loaders that read header-relative RVAs before any section exists.
func (img *Image) DataByRVA(rva uint32) ([]byte, error) {
	off, err := img.OffsetByRVA(rva)
	if err != nil {
		return nil, err
	}
	return img.data[off:], nil
}

// OffsetByRVA translates an RVA into a file offset.
func (img *Image) OffsetByRVA(rva uint32) (uint32, error) {
	for _, s := range img.sections {
		if s.contains(rva) {
			off := s.toOffset(rva)
			if off >= uint32(len(img.data)) {
				return 0, ErrRVAOutOfRange
			}
			return off, nil
		}
	}
	if rva < uint32(len(img.data)) {
		return rva, nil
	}
	return 0, ErrRVAOutOfRange
}

func parse(data []byte, logger *log.Helper) (*Image, error) {
	const tinyPESize = 97
	if len(data) < tinyPESize {
		return nil, ErrTooSmall
	}

	img := &Image{data: data, logger: logger}

	c := reader.New(data)
	dosMagic, err := c.ReadUint16()
	if err != nil {
		return nil, err
	}
	if dosMagic != imageDOSSignature {
		return nil, ErrBadDOSSignature
	}

	c.SeekTo(0x3c)
	lfanew, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if lfanew < 4 || lfanew >= uint32(len(data)) {
		return nil, ErrBadNTSignature
	}

	c.SeekTo(lfanew)
	ntSig, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if ntSig != imageNTSignature {
		return nil, ErrBadNTSignature
	}

	fileHeaderOffset := lfanew + 4
	numberOfSections, err := reader.NewAt(data, fileHeaderOffset+2).ReadUint16()
	if err != nil {
		return nil, err
	}
	sizeOfOptionalHeader, err := reader.NewAt(data, fileHeaderOffset+16).ReadUint16()
	if err != nil {
		return nil, err
	}

	optHeaderOffset := fileHeaderOffset + imageFileHeaderSize
	magic, err := reader.NewAt(data, optHeaderOffset).ReadUint16()
	if err != nil {
		return nil, err
	}

	var dataDirOffset uint32
	switch magic {
	case imageOptHdr64Magic:
		img.is64 = true
		dataDirOffset = optHeaderOffset + optHeader64ToDataDirOff
	case imageOptHdr32Magic:
		dataDirOffset = optHeaderOffset + optHeader32ToDataDirOff
	default:
		return nil, ErrBadOptionalMagic
	}

	dirs, err := readDataDirectories(data, dataDirOffset)
	if err != nil {
		return nil, err
	}
	if imageDirectoryEntryCLR < len(dirs) {
		img.clrRVA = dirs[imageDirectoryEntryCLR].VirtualAddress
		img.clrSize = dirs[imageDirectoryEntryCLR].Size
	}

	sectionTableOffset := optHeaderOffset + uint32(sizeOfOptionalHeader)
	sections, err := readSections(data, sectionTableOffset, numberOfSections)
	if err != nil {
		return nil, err
	}
	img.sections = sections

	return img, nil
}

func readDataDirectories(data []byte, offset uint32) ([]DataDirectory, error) {
	if offset+imageNumberOfDataDirs*8 > uint32(len(data)) {
		return nil, ErrRVAOutOfRange
	}
	buf := bytes.NewReader(data[offset : offset+imageNumberOfDataDirs*8])
	dirs := make([]DataDirectory, imageNumberOfDataDirs)
	for i := range dirs {
		if err := binary.Read(buf, binary.LittleEndian, &dirs[i]); err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

func readSections(data []byte, offset uint32, count uint16) ([]section, error) {
	const sectionHeaderSize = 40
	sections := make([]section, 0, count)
	for i := uint16(0); i < count; i++ {
		if offset+sectionHeaderSize > uint32(len(data)) {
			break
		}
		row := data[offset : offset+sectionHeaderSize]
		sections = append(sections, section{
			virtualSize:    binary.LittleEndian.Uint32(row[8:12]),
			virtualAddress: binary.LittleEndian.Uint32(row[12:16]),
			rawSize:        binary.LittleEndian.Uint32(row[16:20]),
			rawOffset:      binary.LittleEndian.Uint32(row[20:24]),
		})
		offset += sectionHeaderSize
	}
	return sections, nil
}
