package elf_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfhdr/elf"
)

// Hides the underlying reader's Seek method.
type stream struct {
	io.Reader
}

func newSources(content []byte) map[string]func() io.Reader {
	return map[string]func() io.Reader{
		"seekable": func() io.Reader {
			return bytes.NewReader(content)
		},
		"stream": func() io.Reader {
			return stream{bytes.NewReader(content)}
		},
		"one byte stream": func() io.Reader {
			return iotest.OneByteReader(bytes.NewReader(content))
		},
	}
}

type CursorSuite struct{}

func TestCursor(t *testing.T) {
	suite.RunTests(t, &CursorSuite{})
}

func (CursorSuite) TestSeekability(t *testing.T) {
	content := []byte{1, 2, 3}

	expect.True(t, elf.NewCursor(binary.BigEndian, bytes.NewReader(content)).IsSeekable())
	expect.False(
		t,
		elf.NewCursor(binary.BigEndian, stream{bytes.NewReader(content)}).IsSeekable())
}

func (CursorSuite) TestByteOrder(t *testing.T) {
	content := []byte{
		0x01,
		0x01, 0x02,
		0x01, 0x02, 0x03, 0x04,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			u8, err := cursor.U8()
			expect.Nil(t, err)
			expect.Equal(t, uint8(1), u8)

			u16, err := cursor.U16()
			expect.Nil(t, err)
			expect.Equal(t, uint16(0x0102), u16)

			cursor.SetByteOrder(binary.LittleEndian)

			u32, err := cursor.U32()
			expect.Nil(t, err)
			expect.Equal(t, uint32(0x04030201), u32)

			u64, err := cursor.U64()
			expect.Nil(t, err)
			expect.Equal(t, uint64(0x0807060504030201), u64)

			expect.Equal(t, int64(len(content)), cursor.Position())
		})
	}
}

func (CursorSuite) TestTruncated(t *testing.T) {
	content := []byte{0xaa, 0xbb, 0xcc}

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			_, err := cursor.U8()
			expect.Nil(t, err)

			_, err = cursor.U32()
			expect.Error(t, err, "truncated input")

			truncated := &elf.TruncatedInputError{}
			expect.True(t, errors.As(err, &truncated))
			expect.Equal(t, int64(1), truncated.Offset)
			expect.Equal(t, uint64(4), truncated.Needed)
			expect.Equal(t, uint64(2), truncated.Available)
		})
	}
}

func (CursorSuite) TestMarkAndReset(t *testing.T) {
	content := []byte{0x10, 0x20, 0x30, 0x40, 0x50}

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())
			cursor.Mark()

			value, err := cursor.U32()
			expect.Nil(t, err)
			expect.Equal(t, uint32(0x10203040), value)

			err = cursor.Reset()
			expect.Nil(t, err)
			expect.Equal(t, int64(0), cursor.Position())

			u8, err := cursor.U8()
			expect.Nil(t, err)
			expect.Equal(t, uint8(0x10), u8)

			// Reading past the previously consumed prefix still works.
			err = cursor.Skip(3)
			expect.Nil(t, err)

			u8, err = cursor.U8()
			expect.Nil(t, err)
			expect.Equal(t, uint8(0x50), u8)
		})
	}
}

func (CursorSuite) TestSeekFromOrigin(t *testing.T) {
	content := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	for name, newSource := range newSources(content) {
		t.Run(name, func(t *testing.T) {
			cursor := elf.NewCursor(binary.BigEndian, newSource())

			err := cursor.SeekFromOrigin(8)
			expect.Nil(t, err)

			u8, err := cursor.U8()
			expect.Nil(t, err)
			expect.Equal(t, uint8(8), u8)

			// Rewind to an earlier offset after reading further ahead.
			err = cursor.SeekFromOrigin(2)
			expect.Nil(t, err)

			u16, err := cursor.U16()
			expect.Nil(t, err)
			expect.Equal(t, uint16(0x0203), u16)
			expect.Equal(t, int64(4), cursor.Position())
		})
	}
}

func (CursorSuite) TestOriginIsConstructionPosition(t *testing.T) {
	reader := bytes.NewReader([]byte{0xff, 0xff, 1, 2, 3})
	_, err := reader.Seek(2, io.SeekStart)
	expect.Nil(t, err)

	cursor := elf.NewCursor(binary.BigEndian, reader)

	err = cursor.SeekFromOrigin(1)
	expect.Nil(t, err)

	u8, err := cursor.U8()
	expect.Nil(t, err)
	expect.Equal(t, uint8(2), u8)
}

func (CursorSuite) TestSkipPastEndOfStream(t *testing.T) {
	cursor := elf.NewCursor(binary.BigEndian, stream{bytes.NewReader([]byte{1, 2})})

	err := cursor.Skip(5)
	expect.Error(t, err, "truncated input")
	expect.Equal(t, int64(0), cursor.Position())
}

func (CursorSuite) TestSkipPastEndOfSeekable(t *testing.T) {
	cursor := elf.NewCursor(binary.BigEndian, bytes.NewReader([]byte{1, 2}))

	// Seekable sources only fail on the next read.
	err := cursor.Skip(5)
	expect.Nil(t, err)

	_, err = cursor.U8()
	expect.Error(t, err, "truncated input")
}

func (CursorSuite) TestSkipOverflow(t *testing.T) {
	cursor := elf.NewCursor(binary.BigEndian, stream{bytes.NewReader([]byte{1})})

	err := cursor.Skip(^uint64(0))
	expect.Error(t, err, "truncated input")
}

func (CursorSuite) TestSourceError(t *testing.T) {
	failure := errors.New("disk on fire")
	cursor := elf.NewCursor(binary.BigEndian, iotest.ErrReader(failure))

	_, err := cursor.U8()
	expect.Error(t, err, "disk on fire")
	expect.True(t, errors.Is(err, failure))
}
