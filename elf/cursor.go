package elf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Cursor decodes fixed size unsigned integers from a byte stream.
//
// The cursor's origin is the source's position at construction time.  The
// cursor can always rewind to its origin: seekable sources are rewound by
// seeking, while bytes pulled from non-seekable sources are retained in an
// internal buffer and replayed.
type Cursor struct {
	binary.ByteOrder

	source io.Reader

	// Only set when the source is seekable.
	seeker io.Seeker
	origin int64

	// Every byte read from a non-seekable source, starting at the origin.
	consumed bytes.Buffer

	position int64
	mark     int64
}

func NewCursor(byteOrder binary.ByteOrder, source io.Reader) *Cursor {
	cursor := &Cursor{
		ByteOrder: byteOrder,
		source:    source,
	}

	seeker, ok := source.(io.Seeker)
	if ok {
		origin, err := seeker.Seek(0, io.SeekCurrent)
		if err == nil {
			// Some io.Seeker (e.g., pipes wrapped in os.File) can't actually
			// seek.  Those are treated as non-seekable.
			cursor.seeker = seeker
			cursor.origin = origin
		}
	}

	return cursor
}

func (cursor *Cursor) SetByteOrder(byteOrder binary.ByteOrder) {
	cursor.ByteOrder = byteOrder
}

func (cursor *Cursor) IsSeekable() bool {
	return cursor.seeker != nil
}

// Logical offset relative to the cursor's origin.
func (cursor *Cursor) Position() int64 {
	return cursor.position
}

func (cursor *Cursor) Mark() {
	cursor.mark = cursor.position
}

func (cursor *Cursor) Reset() error {
	return cursor.seekTo(cursor.mark)
}

// Rewinds to the origin, then skips forward by offset bytes.
func (cursor *Cursor) SeekFromOrigin(offset uint64) error {
	err := cursor.seekTo(0)
	if err != nil {
		return err
	}

	return cursor.Skip(offset)
}

func (cursor *Cursor) seekTo(position int64) error {
	if cursor.seeker != nil {
		_, err := cursor.seeker.Seek(cursor.origin+position, io.SeekStart)
		if err != nil {
			return fmt.Errorf("failed to seek to %d: %w", position, err)
		}
	}

	cursor.position = position
	return nil
}

func (cursor *Cursor) Skip(count uint64) error {
	if count > math.MaxInt64-uint64(cursor.position) {
		return &TruncatedInputError{
			Offset: cursor.position,
			Needed: count,
		}
	}

	if cursor.seeker != nil {
		_, err := cursor.seeker.Seek(int64(count), io.SeekCurrent)
		if err != nil {
			return fmt.Errorf(
				"failed to skip %d bytes (%d): %w",
				count,
				cursor.position,
				err)
		}

		cursor.position += int64(count)
		return nil
	}

	end := cursor.position + int64(count)
	available, err := cursor.fill(end)
	if err != nil {
		return err
	}

	if available < end {
		return &TruncatedInputError{
			Offset:    cursor.position,
			Needed:    count,
			Available: uint64(available - cursor.position),
		}
	}

	cursor.position = end
	return nil
}

// Pulls bytes from a non-seekable source into the consumed buffer until the
// buffer reaches end (or the source is exhausted).  Returns the buffer's
// resulting length.
func (cursor *Cursor) fill(end int64) (int64, error) {
	buffered := int64(cursor.consumed.Len())
	if buffered >= end {
		return buffered, nil
	}

	n, err := io.CopyN(&cursor.consumed, cursor.source, end-buffered)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf(
			"failed to read from source (%d): %w",
			buffered+n,
			err)
	}

	return buffered + n, nil
}

func (cursor *Cursor) Bytes(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid read size (%d)", size)
	}

	result := make([]byte, size)

	if cursor.seeker != nil {
		n, err := io.ReadFull(cursor.source, result)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Keep the seeker and the logical position in sync.
				cursor.position += int64(n)
				return nil, &TruncatedInputError{
					Offset:    cursor.position - int64(n),
					Needed:    uint64(size),
					Available: uint64(n),
				}
			}

			return nil, fmt.Errorf(
				"failed to read %d bytes (%d): %w",
				size,
				cursor.position,
				err)
		}

		cursor.position += int64(n)
		return result, nil
	}

	end := cursor.position + int64(size)
	available, err := cursor.fill(end)
	if err != nil {
		return nil, err
	}

	if available < end {
		return nil, &TruncatedInputError{
			Offset:    cursor.position,
			Needed:    uint64(size),
			Available: uint64(available - cursor.position),
		}
	}

	copy(result, cursor.consumed.Bytes()[cursor.position:end])
	cursor.position = end
	return result, nil
}

func (cursor *Cursor) decode(size int, name string) ([]byte, error) {
	content, err := cursor.Bytes(size)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return content, nil
}

func (cursor *Cursor) U8() (uint8, error) {
	content, err := cursor.decode(1, "U8")
	if err != nil {
		return 0, err
	}
	return content[0], nil
}

func (cursor *Cursor) U16() (uint16, error) {
	content, err := cursor.decode(2, "U16")
	if err != nil {
		return 0, err
	}
	return cursor.ByteOrder.Uint16(content), nil
}

func (cursor *Cursor) U32() (uint32, error) {
	content, err := cursor.decode(4, "U32")
	if err != nil {
		return 0, err
	}
	return cursor.ByteOrder.Uint32(content), nil
}

func (cursor *Cursor) U64() (uint64, error) {
	content, err := cursor.decode(8, "U64")
	if err != nil {
		return 0, err
	}
	return cursor.ByteOrder.Uint64(content), nil
}
