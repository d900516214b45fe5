package elf

import (
	"fmt"
)

type programHeaderEntryReader func(*Cursor, *ProgramHeaderEntry) error

// The two layouts differ in field order, not just field width: elf64 places
// p_flags right after p_type, while elf32 places it right before p_align.
var programHeaderEntryReaders = map[Class]programHeaderEntryReader{
	Class32: readProgramHeaderEntry32,
	Class64: readProgramHeaderEntry64,
}

// Decodes the program header table, calling visit on each entry as soon as
// the entry is decoded.  The table is located relative to the cursor's
// origin, independent of the cursor's current position.
//
// Entries of an unsupported class (only possible with LenientClass) only
// have their p_type populated.
func ReadProgramHeaders(
	cursor *Cursor,
	header *FileHeader,
	visit func(ProgramHeaderEntry) error,
) error {
	if header.NumProgramHeaderEntries == 0 {
		return nil
	}

	err := cursor.SeekFromOrigin(header.ProgramHeaderOffset)
	if err != nil {
		return fmt.Errorf(
			"failed to seek to program header offset (%d): %w",
			header.ProgramHeaderOffset,
			err)
	}

	readRest := programHeaderEntryReaders[header.Class]

	for idx := 0; idx < int(header.NumProgramHeaderEntries); idx++ {
		entry := ProgramHeaderEntry{}

		programType, err := cursor.U32()
		if err == nil {
			entry.ProgramType = ProgramType(programType)
			if readRest != nil {
				err = readRest(cursor, &entry)
			}
		}
		if err != nil {
			return fmt.Errorf(
				"failed to read program header entry %d: %w",
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

func ProgramHeaders(
	cursor *Cursor,
	header *FileHeader,
) (
	[]ProgramHeaderEntry,
	error,
) {
	entries := make([]ProgramHeaderEntry, 0, header.NumProgramHeaderEntries)
	err := ReadProgramHeaders(
		cursor,
		header,
		func(entry ProgramHeaderEntry) error {
			entries = append(entries, entry)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Elf32_Phdr, after p_type.
func readProgramHeaderEntry32(cursor *Cursor, entry *ProgramHeaderEntry) error {
	fields := []*uint64{
		&entry.ContentOffset,
		&entry.VirtualAddress,
		&entry.PhysicalAddress,
		&entry.FileImageSize,
		&entry.MemoryImageSize,
	}
	for _, field := range fields {
		value, err := cursor.U32()
		if err != nil {
			return err
		}
		*field = uint64(value)
	}

	flags, err := cursor.U32()
	if err != nil {
		return err
	}
	entry.ProgramFlags = ProgramFlags(flags)

	align, err := cursor.U32()
	if err != nil {
		return err
	}
	entry.Alignment = uint64(align)

	return nil
}

// Elf64_Phdr, after p_type.  p_flags stays a 4 byte field, which keeps the
// entry at Elf64ProgramHeaderEntrySize (56) bytes.
func readProgramHeaderEntry64(cursor *Cursor, entry *ProgramHeaderEntry) error {
	flags, err := cursor.U32()
	if err != nil {
		return err
	}
	entry.ProgramFlags = ProgramFlags(flags)

	fields := []*uint64{
		&entry.ContentOffset,
		&entry.VirtualAddress,
		&entry.PhysicalAddress,
		&entry.FileImageSize,
		&entry.MemoryImageSize,
		&entry.Alignment,
	}
	for _, field := range fields {
		*field, err = cursor.U64()
		if err != nil {
			return err
		}
	}

	return nil
}
