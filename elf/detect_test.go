package elf_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfhdr/elf"
)

type DetectSuite struct{}

func TestDetect(t *testing.T) {
	suite.RunTests(t, &DetectSuite{})
}

func (DetectSuite) TestMagicMatch(t *testing.T) {
	content := []byte{0x7f, 'E', 'L', 'F', 2}

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			ok, err := elf.IsElf(cursor)
			expect.Nil(t, err)
			expect.True(t, ok)
			expect.Equal(t, int64(4), cursor.Position())

			class, err := cursor.U8()
			expect.Nil(t, err)
			expect.Equal(t, uint8(2), class)
		})
	}
}

func (DetectSuite) TestMagicMismatch(t *testing.T) {
	content := []byte("\x7fELG and more")

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			ok, err := elf.IsElf(cursor)
			expect.Nil(t, err)
			expect.False(t, ok)
			expect.Equal(t, int64(0), cursor.Position())

			// The peeked bytes are not consumed.
			first, err := cursor.Bytes(4)
			expect.Nil(t, err)
			expect.Equal(t, []byte("\x7fELG"), first)
		})
	}
}

func (DetectSuite) TestShortInput(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x7f},
		{0x7f, 'E', 'L'},
	}

	for _, input := range inputs {
		cursor := elf.NewCursor(binary.BigEndian, bytes.NewReader(input))

		ok, err := elf.IsElf(cursor)
		expect.Nil(t, err)
		expect.False(t, ok)
		expect.Equal(t, int64(0), cursor.Position())
	}
}
