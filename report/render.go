package report

import (
	"strconv"

	"github.com/pattyshack/elfhdr/elf"
)

type field struct {
	label       string
	description string
	value       uint64
}

func (f field) String() string {
	value := strconv.FormatUint(f.value, 10)
	if f.description == "" {
		return f.label + ":\t" + value
	}
	return f.label + " - " + f.description + ":\t" + value
}

func blockLines(title string, fields []field) []string {
	lines := make([]string, 0, len(fields)+2)
	lines = append(lines, blockTitleLine(title))
	for _, f := range fields {
		lines = append(lines, f.String())
	}
	return append(lines, "")
}

// Renders the file header block, fields in wire order.
func HeaderLines(header *elf.FileHeader) []string {
	return blockLines(
		HeaderTitle,
		[]field{
			{"CLASS", "1 == 32 bit, 2 == 64 bit", uint64(header.Class)},
			{"ENDIAN", "1 == little", uint64(header.DataEncoding)},
			{"EI VERSION", "", uint64(header.IdentifierVersion)},
			{"OSABI", "Operating System Image", uint64(header.OperatingSystemABI)},
			{"ABIVERSION", "Further Specify OS Version", uint64(header.ABIVersion)},
			{"TYPE", "Object Type", uint64(header.FileType)},
			{"MACHINE", "Architecture", uint64(header.MachineArchitecture)},
			{"VERSION", "", uint64(header.FormatVersion)},
			{"ENTRY", "Address of Execute Entry", header.EntryPointAddress},
			{"PHOFF", "Address Program Header", header.ProgramHeaderOffset},
			{"SHOFF", "Address of Section Header", header.SectionHeaderOffset},
			{"FLAGS", "", uint64(header.ArchitectureFlags)},
			{"EHSIZE", "File Header Size", uint64(header.ElfHeaderSize)},
			{"PHENTSIZE", "Program Header Entry Size", uint64(header.ProgramHeaderEntrySize)},
			{"PHNUM", "Entries in Program Header", uint64(header.NumProgramHeaderEntries)},
			{"SHENTSIZE", "Section Header Size", uint64(header.SectionHeaderEntrySize)},
			{"SHNUM", "Entries in Section Header", uint64(header.NumSectionHeaderEntries)},
			{"SHSTRNDX", "Section Name Index", uint64(header.SectionStringTableIndex)},
		})
}

// NOTE: flags are always rendered right after the type, independent of the
// entry's wire layout.
func ProgramHeaderLines(entry elf.ProgramHeaderEntry) []string {
	return blockLines(
		ProgramHeaderTitle,
		[]field{
			{"PTYPE", "Segment TYPE", uint64(entry.ProgramType)},
			{"PFLAGS", "Segment FLAGS", uint64(entry.ProgramFlags)},
			{"POFFSET", "Segment OFFSET", entry.ContentOffset},
			{"PVADDR", "Segment Virtual Address", entry.VirtualAddress},
			{"PPADDR", "Segment Physical Address", entry.PhysicalAddress},
			{"FILESZ", "Segment Size in File Image", entry.FileImageSize},
			{"MEMSZ", "Segment Size in Memory", entry.MemoryImageSize},
			{"ALIGN", "", entry.Alignment},
		})
}

func SectionHeaderLines(entry elf.SectionHeaderEntry) []string {
	return blockLines(
		SectionHeaderTitle,
		[]field{
			{"NAME", "Offset to .shstrtab", uint64(entry.NameIndex)},
			{"TYPE", "", uint64(entry.SectionType)},
			{"FLAG", "Section Attributes", uint64(entry.SectionFlags)},
			{"ADDR", "Section Virtual Address in Memory", entry.Address},
			{"OFFSET", "Section File Image Offset", entry.Offset},
			{"SIZE", "Section Size", entry.Size},
			{"LINK", "Associated Section Index", uint64(entry.Link)},
			{"INFO", "Extra Info", uint64(entry.Info)},
			{"ADDRALIGN", "Alignment of Section", entry.AddressAlignment},
			{"ENTSIZE", "For Fixed-Size Sections contains size", entry.EntrySize},
		})
}

func addLines(sink Sink, lines []string) error {
	for _, line := range lines {
		err := sink.AddLine(line)
		if err != nil {
			return err
		}
	}
	return nil
}
