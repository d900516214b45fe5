// Package elftest builds synthetic elf images for tests.
package elftest

import (
	"encoding/binary"

	"github.com/pattyshack/elfhdr/elf"
)

type Writer struct {
	binary.ByteOrder

	content []byte
}

func NewWriter(byteOrder binary.ByteOrder) *Writer {
	return &Writer{
		ByteOrder: byteOrder,
	}
}

func (writer *Writer) Len() int {
	return len(writer.content)
}

func (writer *Writer) Content() []byte {
	return writer.content
}

func (writer *Writer) Raw(content ...byte) *Writer {
	writer.content = append(writer.content, content...)
	return writer
}

func (writer *Writer) U8(value uint8) *Writer {
	writer.content = append(writer.content, value)
	return writer
}

func (writer *Writer) U16(value uint16) *Writer {
	buf := make([]byte, 2)
	writer.PutUint16(buf, value)
	return writer.Raw(buf...)
}

func (writer *Writer) U32(value uint32) *Writer {
	buf := make([]byte, 4)
	writer.PutUint32(buf, value)
	return writer.Raw(buf...)
}

func (writer *Writer) U64(value uint64) *Writer {
	buf := make([]byte, 8)
	writer.PutUint64(buf, value)
	return writer.Raw(buf...)
}

// Zero pads the content up to offset.  No-op if the content is already
// longer.
func (writer *Writer) PadTo(offset uint64) *Writer {
	for uint64(len(writer.content)) < offset {
		writer.content = append(writer.content, 0)
	}
	return writer
}

type Image struct {
	elf.FileHeader

	ProgramHeaders []elf.ProgramHeaderEntry
	SectionHeaders []elf.SectionHeaderEntry
}

// Encodes the image.  Entry counts are taken from the header as is (they are
// not derived from the entry slices) so that tests can craft inconsistent
// headers.  Tables are written at their header offsets; the tables must not
// overlap the file header or each other.
func (image Image) Build() []byte {
	header := image.FileHeader

	writer := NewWriter(header.DataEncoding.ByteOrder())
	writer.Raw(elf.IdentifierMagic...)
	writer.U8(uint8(header.Class))
	writer.U8(uint8(header.DataEncoding))
	writer.U8(header.IdentifierVersion)
	writer.U8(uint8(header.OperatingSystemABI))
	writer.U8(header.ABIVersion)
	writer.PadTo(elf.ElfIdentifierSize)

	writer.U16(uint16(header.FileType))
	writer.U16(uint16(header.MachineArchitecture))
	writer.U32(header.FormatVersion)

	// Images of other classes omit the class dependent fields entirely,
	// matching what the lenient decoder consumes.
	switch header.Class {
	case elf.Class32:
		writer.U32(uint32(header.EntryPointAddress))
		writer.U32(uint32(header.ProgramHeaderOffset))
		writer.U32(uint32(header.SectionHeaderOffset))
	case elf.Class64:
		writer.U64(header.EntryPointAddress)
		writer.U64(header.ProgramHeaderOffset)
		writer.U64(header.SectionHeaderOffset)
	}

	writer.U32(header.ArchitectureFlags)
	writer.U16(header.ElfHeaderSize)
	writer.U16(header.ProgramHeaderEntrySize)
	writer.U16(header.NumProgramHeaderEntries)
	writer.U16(header.SectionHeaderEntrySize)
	writer.U16(header.NumSectionHeaderEntries)
	writer.U16(uint16(header.SectionStringTableIndex))

	type table struct {
		offset     uint64
		numEntries int
		write      func()
	}

	programs := table{
		offset:     header.ProgramHeaderOffset,
		numEntries: len(image.ProgramHeaders),
		write: func() {
			for _, entry := range image.ProgramHeaders {
				switch header.Class {
				case elf.Class32:
					writeProgramHeaderEntry32(writer, entry)
				case elf.Class64:
					writeProgramHeaderEntry64(writer, entry)
				default:
					writer.U32(uint32(entry.ProgramType))
				}
			}
		},
	}

	sections := table{
		offset:     header.SectionHeaderOffset,
		numEntries: len(image.SectionHeaders),
		write: func() {
			for _, entry := range image.SectionHeaders {
				switch header.Class {
				case elf.Class32:
					writeSectionHeaderEntry32(writer, entry)
				case elf.Class64:
					writeSectionHeaderEntry64(writer, entry)
				default:
					writer.U32(entry.NameIndex)
					writer.U32(uint32(entry.SectionType))
				}
			}
		},
	}

	tables := []table{programs, sections}
	if sections.offset < programs.offset {
		tables = []table{sections, programs}
	}

	for _, t := range tables {
		if t.numEntries == 0 {
			continue
		}
		writer.PadTo(t.offset)
		t.write()
	}

	return writer.Content()
}

func writeProgramHeaderEntry32(writer *Writer, entry elf.ProgramHeaderEntry) {
	writer.U32(uint32(entry.ProgramType))
	writer.U32(uint32(entry.ContentOffset))
	writer.U32(uint32(entry.VirtualAddress))
	writer.U32(uint32(entry.PhysicalAddress))
	writer.U32(uint32(entry.FileImageSize))
	writer.U32(uint32(entry.MemoryImageSize))
	writer.U32(uint32(entry.ProgramFlags))
	writer.U32(uint32(entry.Alignment))
}

func writeProgramHeaderEntry64(writer *Writer, entry elf.ProgramHeaderEntry) {
	writer.U32(uint32(entry.ProgramType))
	writer.U32(uint32(entry.ProgramFlags))
	writer.U64(entry.ContentOffset)
	writer.U64(entry.VirtualAddress)
	writer.U64(entry.PhysicalAddress)
	writer.U64(entry.FileImageSize)
	writer.U64(entry.MemoryImageSize)
	writer.U64(entry.Alignment)
}

func writeSectionHeaderEntry32(writer *Writer, entry elf.SectionHeaderEntry) {
	writer.U32(entry.NameIndex)
	writer.U32(uint32(entry.SectionType))
	writer.U32(uint32(entry.SectionFlags))
	writer.U32(uint32(entry.Address))
	writer.U32(uint32(entry.Offset))
	writer.U32(uint32(entry.Size))
	writer.U32(entry.Link)
	writer.U32(entry.Info)
	writer.U32(uint32(entry.AddressAlignment))
	writer.U32(uint32(entry.EntrySize))
}

func writeSectionHeaderEntry64(writer *Writer, entry elf.SectionHeaderEntry) {
	writer.U32(entry.NameIndex)
	writer.U32(uint32(entry.SectionType))
	writer.U64(uint64(entry.SectionFlags))
	writer.U64(entry.Address)
	writer.U64(entry.Offset)
	writer.U64(entry.Size)
	writer.U32(entry.Link)
	writer.U32(entry.Info)
	writer.U64(entry.AddressAlignment)
	writer.U64(entry.EntrySize)
}

// A minimal, self consistent header for the given class / encoding with
// program headers at phoff and section headers at shoff.
func NewHeader(
	class elf.Class,
	encoding elf.DataEncoding,
	numPrograms int,
	numSections int,
) elf.FileHeader {
	header := elf.FileHeader{
		Identifier: elf.Identifier{
			Class:              class,
			DataEncoding:       encoding,
			IdentifierVersion:  elf.IdentifierVersion,
			OperatingSystemABI: elf.OperatingSystemABIUnixSystemV,
		},
		FileType:                elf.FileTypeExecutable,
		MachineArchitecture:     elf.MachineArchitectureX86_64,
		FormatVersion:           elf.FormatVersion,
		NumProgramHeaderEntries: uint16(numPrograms),
		NumSectionHeaderEntries: uint16(numSections),
	}

	headerSize := uint64(elf.Elf64HeaderSize)
	programEntrySize := uint64(elf.Elf64ProgramHeaderEntrySize)
	sectionEntrySize := uint64(elf.Elf64SectionHeaderEntrySize)
	if class != elf.Class64 {
		headerSize = elf.Elf32HeaderSize
		programEntrySize = elf.Elf32ProgramHeaderEntrySize
		sectionEntrySize = elf.Elf32SectionHeaderEntrySize
		header.MachineArchitecture = elf.MachineArchitecture386
	}

	header.ElfHeaderSize = uint16(headerSize)
	header.ProgramHeaderEntrySize = uint16(programEntrySize)
	header.SectionHeaderEntrySize = uint16(sectionEntrySize)

	if numPrograms > 0 {
		header.ProgramHeaderOffset = headerSize
	}
	if numSections > 0 {
		header.SectionHeaderOffset = headerSize +
			uint64(numPrograms)*programEntrySize
	}

	return header
}
