package elf

import (
	"fmt"
)

// Decodes the file header.  The cursor must be positioned right after the
// magic number (see IsElf).
//
// The identifier bytes have no endian-ness.  The cursor's byte order is set
// to little endian iff EI_DATA is ELFDATA2LSB (big endian otherwise), and
// applies to every read that follows, including the rest of the file header.
//
// Other than the class policy, no validation is performed.  Out of range
// values are decoded as is.
func ReadFileHeader(cursor *Cursor, policy ClassPolicy) (*FileHeader, error) {
	header := &FileHeader{}

	err := readIdentifier(cursor, &header.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identifier: %w", err)
	}

	cursor.SetByteOrder(header.DataEncoding.ByteOrder())

	err = readFileHeaderBody(cursor, header, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	return header, nil
}

func readIdentifier(cursor *Cursor, id *Identifier) error {
	class, err := cursor.U8()
	if err != nil {
		return err
	}
	id.Class = Class(class)

	encoding, err := cursor.U8()
	if err != nil {
		return err
	}
	id.DataEncoding = DataEncoding(encoding)

	id.IdentifierVersion, err = cursor.U8()
	if err != nil {
		return err
	}

	osAbi, err := cursor.U8()
	if err != nil {
		return err
	}
	id.OperatingSystemABI = OperatingSystemABI(osAbi)

	id.ABIVersion, err = cursor.U8()
	if err != nil {
		return err
	}

	return cursor.Skip(IdentifierPaddingSize)
}

func readFileHeaderBody(
	cursor *Cursor,
	header *FileHeader,
	policy ClassPolicy,
) error {
	fileType, err := cursor.U16()
	if err != nil {
		return err
	}
	header.FileType = FileType(fileType)

	machine, err := cursor.U16()
	if err != nil {
		return err
	}
	header.MachineArchitecture = MachineArchitecture(machine)

	header.FormatVersion, err = cursor.U32()
	if err != nil {
		return err
	}

	switch header.Class {
	case Class32:
		err = readAddresses32(cursor, header)
	case Class64:
		err = readAddresses64(cursor, header)
	default:
		if policy == StrictClass {
			return &UnsupportedClassError{Class: header.Class}
		}
	}
	if err != nil {
		return err
	}

	header.ArchitectureFlags, err = cursor.U32()
	if err != nil {
		return err
	}

	fields := []*uint16{
		&header.ElfHeaderSize,
		&header.ProgramHeaderEntrySize,
		&header.NumProgramHeaderEntries,
		&header.SectionHeaderEntrySize,
		&header.NumSectionHeaderEntries,
	}
	for _, field := range fields {
		*field, err = cursor.U16()
		if err != nil {
			return err
		}
	}

	index, err := cursor.U16()
	if err != nil {
		return err
	}
	header.SectionStringTableIndex = SectionIndex(index)

	return nil
}

// e_entry, e_phoff, e_shoff as Elf32_Addr / Elf32_Off.
func readAddresses32(cursor *Cursor, header *FileHeader) error {
	fields := []*uint64{
		&header.EntryPointAddress,
		&header.ProgramHeaderOffset,
		&header.SectionHeaderOffset,
	}
	for _, field := range fields {
		value, err := cursor.U32()
		if err != nil {
			return err
		}
		*field = uint64(value)
	}

	return nil
}

// e_entry, e_phoff, e_shoff as Elf64_Addr / Elf64_Off.
func readAddresses64(cursor *Cursor, header *FileHeader) error {
	fields := []*uint64{
		&header.EntryPointAddress,
		&header.ProgramHeaderOffset,
		&header.SectionHeaderOffset,
	}
	for _, field := range fields {
		value, err := cursor.U64()
		if err != nil {
			return err
		}
		*field = value
	}

	return nil
}
