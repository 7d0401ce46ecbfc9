// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package metadata parses the CLI metadata root embedded in a managed
// image's CLR (COM+ 2.0) data directory: the stream directory, the #~
// table stream header, and the row data of every ECMA-335 metadata table.
// It is grounded on the teacher's dotnet.go/dotnet_helper.go/
// dotnet_metadata_tables.go, generalized from a single hard-coded Module
// table parse into a schema-driven reader that can lay out any of the 45
// standard tables.
package metadata

import (
	"errors"

	"github.com/saferwall/clrcore/image"
	"github.com/saferwall/clrcore/log"
	"github.com/saferwall/clrcore/reader"
)

// Errors raised while parsing the CLI header and metadata root. These are
// the BadImage category of spec.md §7.
var (
	ErrNoCLRData           = errors.New("metadata: module has no CLI header")
	ErrBadMetadataSignature = errors.New("metadata: BSJB signature not found")
	ErrNoTableStream        = errors.New("metadata: neither #~ nor #- stream present")
	ErrUnknownTable         = errors.New("metadata: unknown or unsupported table index")
	ErrRowOutOfRange        = errors.New("metadata: row index out of range")
)

// cor20HeaderSize is the fixed size, in bytes, of IMAGE_COR20_HEADER.
const cor20HeaderSize = 72

// RootHeader is the CLI metadata root's storage signature and header, as
// laid out immediately after the BSJB magic.
type RootHeader struct {
	Signature    uint32
	MajorVersion uint16
	MinorVersion uint16
	Version      string
	Flags        uint8
	StreamCount  uint16
}

// StreamHeader is one entry of the metadata root's stream directory.
type StreamHeader struct {
	Offset uint32
	Size   uint32
	Name   string
}

// TableStreamHeader is the #~/#- stream's own header: schema version, heap
// index widths, and the Valid/Sorted table-presence bitmasks.
type TableStreamHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	HeapSizes    uint8
	Valid        uint64
	Sorted       uint64
}

// Table is one metadata table's row data: a flat byte span sliced into
// fixed-width rows once the table stream header and every table's row
// count are known.
type Table struct {
	Index    int
	Count    uint32
	rowWidth uint32
	data     []byte
}

// Row returns the raw bytes of the 1-based row rid. Row indices in
// metadata tables are 1-based per ECMA-335 §II.22; rid 0 is reserved to
// mean "null".
func (t *Table) Row(rid uint32) ([]byte, error) {
	if rid == 0 || rid > t.Count {
		return nil, ErrRowOutOfRange
	}
	start := (rid - 1) * t.rowWidth
	return t.data[start : start+t.rowWidth], nil
}

// Metadata is a parsed CLI metadata root: the stream directory, heap
// contents, and every present table's row data.
type Metadata struct {
	logger  *log.Helper
	Root    RootHeader
	Streams []StreamHeader
	Header  TableStreamHeader

	streamData map[string][]byte
	rowCounts  [MaxTableIndex]uint32
	tables     map[int]*Table
}

// Load locates the CLI header via img's data directory, then parses the
// metadata root and every table it describes.
func Load(img *image.Image, logger *log.Helper) (*Metadata, error) {
	rva, size, err := img.CLRDirectory()
	if err != nil {
		return nil, ErrNoCLRData
	}

	cor20, err := img.DataByRVA(rva)
	if err != nil {
		return nil, err
	}
	if uint32(len(cor20)) < size || size < cor20HeaderSize {
		return nil, ErrNoCLRData
	}

	c := reader.New(cor20)
	if err := c.Skip(8); err != nil { // Cb, MajorRuntimeVersion, MinorRuntimeVersion
		return nil, err
	}
	metaRVA, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	metaSize, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}

	rootBytes, err := img.DataByRVA(metaRVA)
	if err != nil {
		return nil, err
	}
	if uint32(len(rootBytes)) > metaSize {
		rootBytes = rootBytes[:metaSize]
	}

	m := &Metadata{logger: logger, streamData: make(map[string][]byte), tables: make(map[int]*Table)}
	if err := m.parseRoot(rootBytes, img, metaRVA); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metadata) parseRoot(root []byte, img *image.Image, metaRVA uint32) error {
	c := reader.New(root)

	sig, err := c.ReadUint32()
	if err != nil {
		return err
	}
	if sig != 0x424A5342 {
		return ErrBadMetadataSignature
	}
	m.Root.Signature = sig

	if m.Root.MajorVersion, err = c.ReadUint16(); err != nil {
		return err
	}
	if m.Root.MinorVersion, err = c.ReadUint16(); err != nil {
		return err
	}
	if err := c.Skip(4); err != nil { // reserved
		return err
	}

	verLen, err := c.ReadUint32()
	if err != nil {
		return err
	}
	verBytes, err := c.ReadBytes(verLen)
	if err != nil {
		return err
	}
	m.Root.Version = cString(verBytes)

	if m.Root.Flags, err = c.ReadUint8(); err != nil {
		return err
	}
	if err := c.Skip(1); err != nil { // padding
		return err
	}
	if m.Root.StreamCount, err = c.ReadUint16(); err != nil {
		return err
	}

	var tableStreamOffset, tableStreamSize uint32
	for i := uint16(0); i < m.Root.StreamCount; i++ {
		sh := StreamHeader{}
		if sh.Offset, err = c.ReadUint32(); err != nil {
			return err
		}
		if sh.Size, err = c.ReadUint32(); err != nil {
			return err
		}
		sh.Name, err = readPaddedName(c)
		if err != nil {
			return err
		}

		if sh.Offset+sh.Size > uint32(len(root)) {
			return reader.ErrOutOfBounds
		}
		m.streamData[sh.Name] = root[sh.Offset : sh.Offset+sh.Size]
		m.Streams = append(m.Streams, sh)

		if sh.Name == "#~" || sh.Name == "#-" {
			tableStreamOffset, tableStreamSize = sh.Offset, sh.Size
		}
	}

	if tableStreamSize == 0 {
		return ErrNoTableStream
	}
	return m.parseTableStream(root[tableStreamOffset : tableStreamOffset+tableStreamSize])
}

// readPaddedName reads a zero-terminated stream name, then advances to the
// next 4-byte boundary as the stream directory entry requires. Every field
// preceding the name is itself a multiple of 4 bytes, so aligning on the
// cursor's absolute position is equivalent to aligning relative to the
// entry's own start.
func readPaddedName(c *reader.Cursor) (string, error) {
	var name []byte
	for {
		b, err := c.ReadUint8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		name = append(name, b)
	}
	return string(name), c.Align(4)
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (m *Metadata) parseTableStream(data []byte) error {
	c := reader.New(data)
	if err := c.Skip(4); err != nil { // reserved
		return err
	}
	var err error
	if m.Header.MajorVersion, err = c.ReadUint8(); err != nil {
		return err
	}
	if m.Header.MinorVersion, err = c.ReadUint8(); err != nil {
		return err
	}
	if m.Header.HeapSizes, err = c.ReadUint8(); err != nil {
		return err
	}
	if err := c.Skip(1); err != nil { // reserved (RID)
		return err
	}
	if m.Header.Valid, err = c.ReadUint64(); err != nil {
		return err
	}
	if m.Header.Sorted, err = c.ReadUint64(); err != nil {
		return err
	}

	for i := 0; i < MaxTableIndex; i++ {
		if m.Header.Valid&(1<<uint(i)) == 0 {
			continue
		}
		n, err := c.ReadUint32()
		if err != nil {
			return err
		}
		m.rowCounts[i] = n
	}

	for i := 0; i < MaxTableIndex; i++ {
		if m.Header.Valid&(1<<uint(i)) == 0 {
			continue
		}
		width := m.rowSize(i)
		if width == 0 {
			return ErrUnknownTable
		}
		span := m.rowCounts[i] * width
		rows, err := c.ReadBytes(span)
		if err != nil {
			return err
		}
		m.tables[i] = &Table{Index: i, Count: m.rowCounts[i], rowWidth: width, data: rows}
	}

	return nil
}

// RowCount returns the number of rows in table, or 0 if the table is
// absent from this assembly.
func (m *Metadata) RowCount(table int) uint32 {
	return m.rowCounts[table]
}

// Table returns the parsed row data for table, or false if it is absent.
func (m *Metadata) Table(table int) (*Table, bool) {
	t, ok := m.tables[table]
	return t, ok
}
