package elf

import (
	"fmt"
)

type sectionHeaderEntryReader func(*Cursor, *SectionHeaderEntry) error

var sectionHeaderEntryReaders = map[Class]sectionHeaderEntryReader{
	Class32: readSectionHeaderEntry32,
	Class64: readSectionHeaderEntry64,
}

// Decodes the section header table, calling visit on each entry as soon as
// the entry is decoded.  Like ReadProgramHeaders, the table is located
// relative to the cursor's origin.
//
// Entries of an unsupported class only have sh_name and sh_type populated.
func ReadSectionHeaders(
	cursor *Cursor,
	header *FileHeader,
	visit func(SectionHeaderEntry) error,
) error {
	if header.NumSectionHeaderEntries == 0 {
		return nil
	}

	err := cursor.SeekFromOrigin(header.SectionHeaderOffset)
	if err != nil {
		return fmt.Errorf(
			"failed to seek to section header offset (%d): %w",
			header.SectionHeaderOffset,
			err)
	}

	readRest := sectionHeaderEntryReaders[header.Class]

	for idx := 0; idx < int(header.NumSectionHeaderEntries); idx++ {
		entry := SectionHeaderEntry{}

		err := readSectionNameAndType(cursor, &entry)
		if err == nil && readRest != nil {
			err = readRest(cursor, &entry)
		}
		if err != nil {
			return fmt.Errorf(
				"failed to read section header entry %d: %w",
				idx,
				err)
		}

		err = visit(entry)
		if err != nil {
			return err
		}
	}

	return nil
}

func SectionHeaders(
	cursor *Cursor,
	header *FileHeader,
) (
	[]SectionHeaderEntry,
	error,
) {
	entries := make([]SectionHeaderEntry, 0, header.NumSectionHeaderEntries)
	err := ReadSectionHeaders(
		cursor,
		header,
		func(entry SectionHeaderEntry) error {
			entries = append(entries, entry)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func readSectionNameAndType(cursor *Cursor, entry *SectionHeaderEntry) error {
	var err error
	entry.NameIndex, err = cursor.U32()
	if err != nil {
		return err
	}

	sectionType, err := cursor.U32()
	if err != nil {
		return err
	}
	entry.SectionType = SectionType(sectionType)

	return nil
}

// Elf32_Shdr, after sh_name and sh_type.  Every field is 4 bytes.
func readSectionHeaderEntry32(cursor *Cursor, entry *SectionHeaderEntry) error {
	values := make([]uint32, 8)
	for idx := range values {
		var err error
		values[idx], err = cursor.U32()
		if err != nil {
			return err
		}
	}

	entry.SectionFlags = SectionFlags(values[0])
	entry.Address = uint64(values[1])
	entry.Offset = uint64(values[2])
	entry.Size = uint64(values[3])
	entry.Link = values[4]
	entry.Info = values[5]
	entry.AddressAlignment = uint64(values[6])
	entry.EntrySize = uint64(values[7])

	return nil
}

// Elf64_Shdr, after sh_name and sh_type.  sh_link and sh_info remain 4 byte
// fields in between the 8 byte fields.
func readSectionHeaderEntry64(cursor *Cursor, entry *SectionHeaderEntry) error {
	flags, err := cursor.U64()
	if err != nil {
		return err
	}
	entry.SectionFlags = SectionFlags(flags)

	wide := []*uint64{&entry.Address, &entry.Offset, &entry.Size}
	for _, field := range wide {
		*field, err = cursor.U64()
		if err != nil {
			return err
		}
	}

	entry.Link, err = cursor.U32()
	if err != nil {
		return err
	}

	entry.Info, err = cursor.U32()
	if err != nil {
		return err
	}

	entry.AddressAlignment, err = cursor.U64()
	if err != nil {
		return err
	}

	entry.EntrySize, err = cursor.U64()
	if err != nil {
		return err
	}

	return nil
}
