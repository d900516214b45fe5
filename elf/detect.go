package elf

import (
	"bytes"
	"errors"
)

// Checks the magic number at the cursor's current position.  On match, the
// cursor is left right after the magic number.  Otherwise (including short
// inputs), the cursor is rewound and false is returned.
//
// The mark established here is the rewind point for the rest of the decode.
func IsElf(cursor *Cursor) (bool, error) {
	cursor.Mark()

	magic, err := cursor.Bytes(IdentifierMagicSize)
	if err == nil && bytes.Equal(magic, IdentifierMagic) {
		return true, nil
	}

	truncated := &TruncatedInputError{}
	if err != nil && !errors.As(err, &truncated) {
		return false, err
	}

	err = cursor.Reset()
	if err != nil {
		return false, err
	}

	return false, nil
}
