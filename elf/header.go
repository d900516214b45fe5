// Based on linux's man page, elf.h, golang's debug/elf package,
// and the elf 1.2 spec.
package elf

import (
	"encoding/binary"
	"fmt"
)

var (
	// EI_MAG0 - EI_MAG3
	IdentifierMagic = []byte{
		0x7f, // ELFMAG0
		'E',  // ELFMAG1
		'L',  // ELFMAG2
		'F',  // ELFMAG3
	}
)

const (
	IdentifierMagicSize = 4
	ElfIdentifierSize   = 16

	// EI_PAD.  Reserved bytes following EI_ABIVERSION.
	IdentifierPaddingSize = 7

	IdentifierVersion = 1 // EI_CURRENT
	FormatVersion     = 1 // EV_CURRENT

	Elf32HeaderSize             = 52
	Elf32ProgramHeaderEntrySize = 32
	Elf32SectionHeaderEntrySize = 40

	Elf64HeaderSize             = 64
	Elf64ProgramHeaderEntrySize = 56
	Elf64SectionHeaderEntrySize = 64
)

// EI_CLASS
type Class byte

const (
	ClassNone = Class(0) // ELFCLASSNONE
	Class32   = Class(1) // ELFCLASS32
	Class64   = Class(2) // ELFCLASS64
)

func (class Class) String() string {
	switch class {
	case ClassNone:
		return "ClassNone"
	case Class32:
		return "Class32"
	case Class64:
		return "Class64"
	default:
		return fmt.Sprintf("ClassUnknown(%d)", class)
	}
}

// EI_DATA
type DataEncoding byte

const (
	DataEncodingNone                       = DataEncoding(0) // ELFDATANONE
	DataEncodingTwosComplementLittleEndian = DataEncoding(1) // ELFDATA2LSB
	DataEncodingTwosComplementBigEndian    = DataEncoding(2) // ELFDATA2MSB
)

func (encoding DataEncoding) String() string {
	switch encoding {
	case DataEncodingNone:
		return "DataEncodingNone"
	case DataEncodingTwosComplementLittleEndian:
		return "TwosComplementLittleEndian"
	case DataEncodingTwosComplementBigEndian:
		return "TwosComplementBigEndian"
	default:
		return fmt.Sprintf("DataEncodingUnknown(%d)", encoding)
	}
}

// Only ELFDATA2LSB selects little endian.  Every other value, including
// ELFDATANONE and out of range values, decodes as big endian.
func (encoding DataEncoding) ByteOrder() binary.ByteOrder {
	if encoding == DataEncodingTwosComplementLittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// EI_OSABI
// NOTE: golang's debug/elf.OSABI defines a more complete list
type OperatingSystemABI byte

const (
	OperatingSystemABIUnixSystemV = OperatingSystemABI(0)   // ELFOSABI_NONE
	OperatingSystemABINetBSD      = OperatingSystemABI(2)   // ELFOSABI_NETBSD
	OperatingSystemABILinux       = OperatingSystemABI(3)   // ELFOSABI_LINUX
	OperatingSystemABISolaris     = OperatingSystemABI(6)   // ELFOSABI_SOLARIS
	OperatingSystemABIFreeBSD     = OperatingSystemABI(9)   // ELFOSABI_FREEBSD
	OperatingSystemABIOpenBSD     = OperatingSystemABI(12)  // ELFOSABI_OPENBSD
	OperatingSystemABIARM         = OperatingSystemABI(97)  // ELFOSABI_ARM
	OperatingSystemABIStandalone  = OperatingSystemABI(255) // ELFOSABI_STANDALONE
)

func (osAbi OperatingSystemABI) String() string {
	switch osAbi {
	case OperatingSystemABIUnixSystemV:
		return "UnixSystemV"
	case OperatingSystemABINetBSD:
		return "NetBSD"
	case OperatingSystemABILinux:
		return "Linux"
	case OperatingSystemABISolaris:
		return "Solaris"
	case OperatingSystemABIFreeBSD:
		return "FreeBSD"
	case OperatingSystemABIOpenBSD:
		return "OpenBSD"
	case OperatingSystemABIARM:
		return "ARM"
	case OperatingSystemABIStandalone:
		return "Standalone"
	default:
		return fmt.Sprintf("OperatingSystemABIUnknown(%d)", osAbi)
	}
}

// e_type
type FileType uint16

const (
	FileTypeNone         = FileType(0) // ET_NONE
	FileTypeRelocatable  = FileType(1) // ET_REL
	FileTypeExecutable   = FileType(2) // ET_EXEC
	FileTypeSharedObject = FileType(3) // ET_DYN
	FileTypeCore         = FileType(4) // ET_CORE
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeNone:
		return "FileTypeNone"
	case FileTypeRelocatable:
		return "Relocatable"
	case FileTypeExecutable:
		return "Executable"
	case FileTypeSharedObject:
		return "SharedObject"
	case FileTypeCore:
		return "Core"
	default:
		return fmt.Sprintf("FileTypeUnknown(%d)", ft)
	}
}

type ProgramType uint32

// see debug/elf for a more complete list
const (
	ProgramNull            = ProgramType(0)          // PT_NULL
	ProgramLoadable        = ProgramType(1)          // PT_LOAD
	ProgramDynamicLinking  = ProgramType(2)          // PT_DYNAMIC
	ProgramInterpreterPath = ProgramType(3)          // PT_INTERP
	ProgramNote            = ProgramType(4)          // PT_NOTE
	ProgramReserved        = ProgramType(5)          // PT_SHLIB
	ProgramHeaderInfo      = ProgramType(6)          // PT_PHDR
	ProgramThreadLocal     = ProgramType(7)          // PT_TLS
	ProgramGNUEHFrame      = ProgramType(0x6474e550) // PT_GNU_EH_FRAME
	ProgramGNUStack        = ProgramType(0x6474e551) // PT_GNU_STACK
	ProgramGNURelRO        = ProgramType(0x6474e552) // PT_GNU_RELRO
)

func (segType ProgramType) String() string {
	switch segType {
	case ProgramNull:
		return "ProgramNull"
	case ProgramLoadable:
		return "Loadable"
	case ProgramDynamicLinking:
		return "DynamicLinking"
	case ProgramInterpreterPath:
		return "InterpreterPath"
	case ProgramNote:
		return "Note"
	case ProgramReserved:
		return "Reserved"
	case ProgramHeaderInfo:
		return "HeaderInfo"
	case ProgramThreadLocal:
		return "ThreadLocal"
	case ProgramGNUEHFrame:
		return "GNUEHFrame"
	case ProgramGNUStack:
		return "GNUStack"
	case ProgramGNURelRO:
		return "GNURelRO"
	default:
		return fmt.Sprintf("ProgramUnknown(%d)", segType)
	}
}

type ProgramFlags uint32

const (
	ProgramFlagExecutableBit = ProgramFlags(0x1)
	ProgramFlagWritableBit   = ProgramFlags(0x2)
	ProgramFlagReadableBit   = ProgramFlags(0x4)
)

func (bits ProgramFlags) String() string {
	if bits > 7 {
		return fmt.Sprintf("%#x", uint32(bits))
	}

	rwx := []byte{'-', '-', '-'}
	if bits&ProgramFlagReadableBit != 0 {
		rwx[0] = 'r'
	}

	if bits&ProgramFlagWritableBit != 0 {
		rwx[1] = 'w'
	}

	if bits&ProgramFlagExecutableBit != 0 {
		rwx[2] = 'x'
	}

	return string(rwx)
}

type SectionType uint32

const (
	SectionTypeNull                  = SectionType(0)  // SHT_NULL
	SectionTypeProgramDefinedInfo    = SectionType(1)  // SHT_PROGBITS
	SectionTypeSymbolTable           = SectionType(2)  // SHT_SYMTAB
	SectionTypeStringTable           = SectionType(3)  // SHT_STRTAB
	SectionTypeRelocationWithAddends = SectionType(4)  // SHT_RELA
	SectionTypeSymbolHashTable       = SectionType(5)  // SHT_HASH
	SectionTypeDynamic               = SectionType(6)  // SHT_DYNAMIC
	SectionTypeNote                  = SectionType(7)  // SHT_NOTE
	SectionTypeNoSpace               = SectionType(8)  // SHT_NOBITS
	SectionTypeRelocationNoAddends   = SectionType(9)  // SHT_REL
	SectionTypeDynamicSymbolTable    = SectionType(11) // SHT_DYNSYM
)

func (stype SectionType) String() string {
	switch stype {
	case SectionTypeNull:
		return "SectionTypeNull"
	case SectionTypeProgramDefinedInfo:
		return "ProgramDefinedInfo"
	case SectionTypeSymbolTable:
		return "SymbolTable"
	case SectionTypeStringTable:
		return "StringTable"
	case SectionTypeRelocationWithAddends:
		return "RelocationWithAddends"
	case SectionTypeSymbolHashTable:
		return "SymbolHashTable"
	case SectionTypeDynamic:
		return "Dynamic"
	case SectionTypeNote:
		return "Note"
	case SectionTypeNoSpace:
		return "NoSpace"
	case SectionTypeRelocationNoAddends:
		return "RelocationNoAddends"
	case SectionTypeDynamicSymbolTable:
		return "DynamicSymbolTable"
	default:
		return fmt.Sprintf("SectionTypeUnknown(%d)", stype)
	}
}

type SectionFlags uint64

const (
	SectionContainsWritableData         = SectionFlags(0x1)   // SHF_WRITE
	SectionOccupiesMemory               = SectionFlags(0x2)   // SHF_ALLOC
	SectionContainsInstructions         = SectionFlags(0x4)   // SHF_EXECINSTR
	SectionMayBeMerged                  = SectionFlags(0x10)  // SHF_MERGE
	SectionContainsStrings              = SectionFlags(0x20)  // SHF_STRINGS
	SectionInfoHoldsSectionIndex        = SectionFlags(0x40)  // SHF_INFO_LINK
	SectionRequiresSpecialOrdering      = SectionFlags(0x80)  // SHF_LINK_ORDER
	SectionRequiresOsSpecificProcessing = SectionFlags(0x100) // SHF_OS_NONCONFORMING
	SectionIsGroupMember                = SectionFlags(0x200) // SHF_GROUP
	SectionContainsTLSData              = SectionFlags(0x400) // SHF_TLS
	SectionIsCompressed                 = SectionFlags(0x800) // SHF_COMPRESSED
)

func (flags SectionFlags) String() string {
	result := make([]byte, 11)
	for i := 0; i < 11; i++ {
		result[i] = '-'
	}

	if flags&SectionContainsWritableData != 0 {
		result[0] = 'w'
	}
	if flags&SectionOccupiesMemory != 0 {
		result[1] = 'a'
	}
	if flags&SectionContainsInstructions != 0 {
		result[2] = 'x'
	}
	if flags&SectionMayBeMerged != 0 {
		result[3] = 'm'
	}
	if flags&SectionContainsStrings != 0 {
		result[4] = 's'
	}
	if flags&SectionInfoHoldsSectionIndex != 0 {
		result[5] = 'i'
	}
	if flags&SectionRequiresSpecialOrdering != 0 {
		result[6] = 'l'
	}
	if flags&SectionRequiresOsSpecificProcessing != 0 {
		result[7] = 'o'
	}
	if flags&SectionIsGroupMember != 0 {
		result[8] = 'g'
	}
	if flags&SectionContainsTLSData != 0 {
		result[9] = 't'
	}
	if flags&SectionIsCompressed != 0 {
		result[10] = 'c'
	}

	return string(result)
}

// e_machine
// NOTE: golang's debug/elf.Machine defines a more complete list of machine
// types.
type MachineArchitecture uint16

const (
	MachineArchitectureNone    = MachineArchitecture(0)   // EM_NONE
	MachineArchitectureSPARC   = MachineArchitecture(2)   // EM_SPARC
	MachineArchitecture386     = MachineArchitecture(3)   // EM_386
	MachineArchitectureMIPS    = MachineArchitecture(8)   // EM_MIPS
	MachineArchitecturePPC     = MachineArchitecture(20)  // EM_PPC
	MachineArchitecturePPC64   = MachineArchitecture(21)  // EM_PPC64
	MachineArchitectureS390    = MachineArchitecture(22)  // EM_S390
	MachineArchitectureARM     = MachineArchitecture(40)  // EM_ARM
	MachineArchitectureX86_64  = MachineArchitecture(62)  // EM_X86_64
	MachineArchitectureAArch64 = MachineArchitecture(183) // EM_AARCH64
	MachineArchitectureRISCV   = MachineArchitecture(243) // EM_RISCV
)

func (arch MachineArchitecture) String() string {
	switch arch {
	case MachineArchitectureNone:
		return "MachineArchitectureNone"
	case MachineArchitectureSPARC:
		return "SPARC"
	case MachineArchitecture386:
		return "i386"
	case MachineArchitectureMIPS:
		return "MIPS"
	case MachineArchitecturePPC:
		return "PowerPC"
	case MachineArchitecturePPC64:
		return "PowerPC64"
	case MachineArchitectureS390:
		return "S390"
	case MachineArchitectureARM:
		return "ARM"
	case MachineArchitectureX86_64:
		return "x86-64"
	case MachineArchitectureAArch64:
		return "AArch64"
	case MachineArchitectureRISCV:
		return "RISC-V"
	default:
		return fmt.Sprintf("MachineArchitectureUnknown(%d)", arch)
	}
}

type SectionIndex uint16

const (
	SectionIndexUndefined = SectionIndex(0)      // SHN_UNDEF
	SectionIndexAbsolute  = SectionIndex(0xfff1) // SHN_ABS
	SectionIndexExtended  = SectionIndex(0xffff) // SHN_XINDEX
)

// Decoded header structs.  Unlike debug/elf, a single struct covers both the
// elf32 and elf64 layouts; elf32 values are zero extended.  These are never
// (de-)serialized with binary.Decode since the field order differs between
// the two layouts.

// e_ident, minus the magic number.
type Identifier struct {
	Class                      // EI_CLASS
	DataEncoding               // EI_DATA
	IdentifierVersion  byte    // EI_VERSION
	OperatingSystemABI         // EI_OSABI
	ABIVersion         byte    // EI_ABIVERSION
}

// Elf32_Ehdr / Elf64_Ehdr
type FileHeader struct {
	Identifier                           // e_ident[EI_NIDENT]
	FileType                             // e_type
	MachineArchitecture                  // e_machine
	FormatVersion           uint32       // e_version
	EntryPointAddress       uint64       // e_entry
	ProgramHeaderOffset     uint64       // e_phoff
	SectionHeaderOffset     uint64       // e_shoff
	ArchitectureFlags       uint32       // e_flags
	ElfHeaderSize           uint16       // e_ehsize
	ProgramHeaderEntrySize  uint16       // e_phentsize
	NumProgramHeaderEntries uint16       // e_phnum
	SectionHeaderEntrySize  uint16       // e_shentsize
	NumSectionHeaderEntries uint16       // e_shnum
	SectionStringTableIndex SectionIndex // e_shstrndx
}

// Elf32_Phdr / Elf64_Phdr
type ProgramHeaderEntry struct {
	ProgramType            // p_type
	ProgramFlags           // p_flags
	ContentOffset   uint64 // p_offset
	VirtualAddress  uint64 // p_vaddr
	PhysicalAddress uint64 // p_paddr
	FileImageSize   uint64 // p_filesz
	MemoryImageSize uint64 // p_memsz
	Alignment       uint64 // p_align
}

// Elf32_Shdr / Elf64_Shdr
type SectionHeaderEntry struct {
	NameIndex        uint32 // sh_name
	SectionType             // sh_type
	SectionFlags            // sh_flags
	Address          uint64 // sh_addr
	Offset           uint64 // sh_offset
	Size             uint64 // sh_size
	Link             uint32 // sh_link
	Info             uint32 // sh_info
	AddressAlignment uint64 // sh_addralign
	EntrySize        uint64 // sh_entsize
}
