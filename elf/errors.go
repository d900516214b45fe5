package elf

import (
	"fmt"
)

// Returned whenever the input ends before all bytes of a field are
// available.
type TruncatedInputError struct {
	Offset    int64 // relative to the cursor's origin
	Needed    uint64
	Available uint64
}

func (err *TruncatedInputError) Error() string {
	return fmt.Sprintf(
		"truncated input at offset %d (needed %d bytes, %d available)",
		err.Offset,
		err.Needed,
		err.Available)
}

// Only returned when decoding with StrictClass.
type UnsupportedClassError struct {
	Class
}

func (err *UnsupportedClassError) Error() string {
	return fmt.Sprintf("unsupported elf class: %s", err.Class)
}

// Controls how EI_CLASS values other than ELFCLASS32 / ELFCLASS64 are
// handled.
type ClassPolicy int

const (
	// Decode anyway.  Class dependent fields (e_entry, e_phoff, e_shoff and
	// the non-type fields of program / section header entries) are left zero.
	LenientClass = ClassPolicy(0)

	// Fail with UnsupportedClassError.
	StrictClass = ClassPolicy(1)
)

func (policy ClassPolicy) String() string {
	switch policy {
	case LenientClass:
		return "lenient"
	case StrictClass:
		return "strict"
	default:
		return fmt.Sprintf("ClassPolicyUnknown(%d)", int(policy))
	}
}

func ParseClassPolicy(value string) (ClassPolicy, error) {
	switch value {
	case "", "lenient":
		return LenientClass, nil
	case "strict":
		return StrictClass, nil
	default:
		return 0, fmt.Errorf("invalid class policy (%s)", value)
	}
}
