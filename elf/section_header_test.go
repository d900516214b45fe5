package elf_test

import (
	"encoding/binary"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/elftest"
)

func decodeSectionHeaders(
	t *testing.T,
	content []byte,
) (
	[]elf.SectionHeaderEntry,
	error,
) {
	cursor := newElfCursor(t, content)

	header, err := elf.ReadFileHeader(cursor, elf.LenientClass)
	expect.Nil(t, err)

	return elf.SectionHeaders(cursor, header)
}

type SectionHeaderSuite struct{}

func TestSectionHeader(t *testing.T) {
	suite.RunTests(t, &SectionHeaderSuite{})
}

func (SectionHeaderSuite) TestClass32(t *testing.T) {
	expected := []elf.SectionHeaderEntry{
		{},
		{
			NameIndex:        0x1b,
			SectionType:      elf.SectionTypeProgramDefinedInfo,
			SectionFlags:     elf.SectionOccupiesMemory | elf.SectionContainsInstructions,
			Address:          0x8048400,
			Offset:           0x400,
			Size:             0x1c4,
			Link:             3,
			Info:             4,
			AddressAlignment: 16,
			EntrySize:        8,
		},
	}

	for _, encoding := range []elf.DataEncoding{
		elf.DataEncodingTwosComplementLittleEndian,
		elf.DataEncodingTwosComplementBigEndian,
	} {
		header := elftest.NewHeader(elf.Class32, encoding, 0, len(expected))
		content := elftest.Image{
			FileHeader:     header,
			SectionHeaders: expected,
		}.Build()
		expect.Equal(
			t,
			elf.Elf32HeaderSize+2*elf.Elf32SectionHeaderEntrySize,
			len(content))

		entries, err := decodeSectionHeaders(t, content)
		expect.Nil(t, err)
		expect.Equal(t, expected, entries)
	}
}

func (SectionHeaderSuite) TestClass64MixedWidths(t *testing.T) {
	header := elftest.NewHeader(elf.Class64, elf.DataEncodingTwosComplementLittleEndian, 0, 1)

	writer := elftest.NewWriter(binary.LittleEndian)
	writer.Raw(elftest.Image{FileHeader: header}.Build()...)
	writer.U32(0x11)               // sh_name
	writer.U32(0x22)               // sh_type
	writer.U64(0x3333333333333333) // sh_flags
	writer.U64(0x4444444444444444) // sh_addr
	writer.U64(0x5555555555555555) // sh_offset
	writer.U64(0x6666666666666666) // sh_size
	writer.U32(0x77777777)         // sh_link
	writer.U32(0x88888888)         // sh_info
	writer.U64(0x9999999999999999) // sh_addralign
	writer.U64(0xaaaaaaaaaaaaaaaa) // sh_entsize
	expect.Equal(
		t,
		elf.Elf64HeaderSize+elf.Elf64SectionHeaderEntrySize,
		writer.Len())

	entries, err := decodeSectionHeaders(t, writer.Content())
	expect.Nil(t, err)
	expect.Equal(
		t,
		[]elf.SectionHeaderEntry{
			{
				NameIndex:        0x11,
				SectionType:      0x22,
				SectionFlags:     0x3333333333333333,
				Address:          0x4444444444444444,
				Offset:           0x5555555555555555,
				Size:             0x6666666666666666,
				Link:             0x77777777,
				Info:             0x88888888,
				AddressAlignment: 0x9999999999999999,
				EntrySize:        0xaaaaaaaaaaaaaaaa,
			},
		},
		entries)
}

func (SectionHeaderSuite) TestSectionTableBeforeProgramTable(t *testing.T) {
	header := elftest.NewHeader(elf.Class64, elf.DataEncodingTwosComplementBigEndian, 1, 1)
	header.SectionHeaderOffset = elf.Elf64HeaderSize
	header.ProgramHeaderOffset = elf.Elf64HeaderSize + elf.Elf64SectionHeaderEntrySize

	programs := []elf.ProgramHeaderEntry{
		{ProgramType: elf.ProgramLoadable, Alignment: 0x200000},
	}
	sections := []elf.SectionHeaderEntry{
		{NameIndex: 1, SectionType: elf.SectionTypeStringTable, Size: 0x50},
	}

	content := elftest.Image{
		FileHeader:     header,
		ProgramHeaders: programs,
		SectionHeaders: sections,
	}.Build()

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			ok, err := elf.IsElf(cursor)
			expect.Nil(t, err)
			expect.True(t, ok)

			decoded, err := elf.ReadFileHeader(cursor, elf.LenientClass)
			expect.Nil(t, err)

			programEntries, err := elf.ProgramHeaders(cursor, decoded)
			expect.Nil(t, err)
			expect.Equal(t, programs, programEntries)

			sectionEntries, err := elf.SectionHeaders(cursor, decoded)
			expect.Nil(t, err)
			expect.Equal(t, sections, sectionEntries)
		})
	}
}

func (SectionHeaderSuite) TestTruncatedTable(t *testing.T) {
	header := elftest.NewHeader(elf.Class32, elf.DataEncodingTwosComplementLittleEndian, 0, 3)
	content := elftest.Image{FileHeader: header}.Build()

	// Table offset points past the end of the input.
	entries, err := decodeSectionHeaders(t, content)
	expect.Nil(t, entries)
	expect.Error(t, err, "failed to read section header entry 0")
}
