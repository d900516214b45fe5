// Package mapped provides read-only, memory mapped file contents.  Mapped
// files are seekable, which lets elf cursors rewind by seeking rather than
// by buffering.
package mapped

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

type File struct {
	*bytes.Reader

	name    string
	content []byte
}

func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot map %s: not a regular file", path)
	}

	size := info.Size()
	if size == 0 {
		// mmap rejects zero length mappings.
		return &File{
			Reader: bytes.NewReader(nil),
			name:   path,
		}, nil
	}

	if int64(int(size)) != size {
		return nil, fmt.Errorf("cannot map %s: file too large (%d)", path, size)
	}

	content, err := unix.Mmap(
		int(file.Fd()),
		0,
		int(size),
		unix.PROT_READ,
		unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %s: %w", path, err)
	}

	return &File{
		Reader:  bytes.NewReader(content),
		name:    path,
		content: content,
	}, nil
}

func (file *File) Name() string {
	return file.name
}

// The returned slice is only valid until the file is closed.
func (file *File) Bytes() []byte {
	return file.content
}

func (file *File) Close() error {
	if file.content == nil {
		return nil
	}

	content := file.content
	file.content = nil
	file.Reader = bytes.NewReader(nil)

	err := unix.Munmap(content)
	if err != nil {
		return fmt.Errorf("failed to munmap %s: %w", file.name, err)
	}

	return nil
}
