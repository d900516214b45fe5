package report

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/mapped"
)

// Parser renders elf header reports.  The zero value is a lenient parser
// that accumulates reports in memory.
//
// Parser holds no per-call state; a single parser may be used by multiple
// goroutines concurrently, as long as NewSink returns independent sinks.
type Parser struct {
	ClassPolicy elf.ClassPolicy

	// Called once per parsed elf input.  Defaults to NewBufferSink.
	NewSink func() Sink

	Names ResourceNames
}

func (parser *Parser) newSink() Sink {
	if parser.NewSink == nil {
		return NewBufferSink()
	}
	return parser.NewSink()
}

// Parse returns the invalid elf document (and no error) when the input does
// not start with the elf magic number.  Any other decoding failure (e.g.,
// truncated input) aborts the parse; no partial document is returned.
//
// Cancellation is checked between header entries.
func (parser *Parser) Parse(
	ctx context.Context,
	source io.Reader,
) (
	Document,
	error,
) {
	cursor := elf.NewCursor(binary.BigEndian, source)

	isElf, err := elf.IsElf(cursor)
	if err != nil {
		return Document{}, fmt.Errorf("failed to detect elf magic: %w", err)
	}

	if !isElf {
		return InvalidDocument(), nil
	}

	sink := parser.newSink()

	err = parser.decode(ctx, cursor, sink)
	if err != nil {
		return Document{}, err
	}

	doc, err := sink.Finish()
	if err != nil {
		return Document{}, fmt.Errorf("failed to finish report: %w", err)
	}

	return doc, nil
}

func (parser *Parser) decode(
	ctx context.Context,
	cursor *elf.Cursor,
	sink Sink,
) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	header, err := elf.ReadFileHeader(cursor, parser.ClassPolicy)
	if err != nil {
		return err
	}

	err = addLines(sink, HeaderLines(header))
	if err != nil {
		return err
	}

	err = elf.ReadProgramHeaders(
		cursor,
		header,
		func(entry elf.ProgramHeaderEntry) error {
			err := ctx.Err()
			if err != nil {
				return err
			}

			return addLines(sink, ProgramHeaderLines(entry))
		})
	if err != nil {
		return fmt.Errorf("failed to parse program headers: %w", err)
	}

	err = elf.ReadSectionHeaders(
		cursor,
		header,
		func(entry elf.SectionHeaderEntry) error {
			err := ctx.Err()
			if err != nil {
				return err
			}

			return addLines(sink, SectionHeaderLines(entry))
		})
	if err != nil {
		return fmt.Errorf("failed to parse section headers: %w", err)
	}

	return ctx.Err()
}

func (parser *Parser) ParseBytes(
	ctx context.Context,
	content []byte,
) (
	Document,
	error,
) {
	return parser.Parse(ctx, bytes.NewReader(content))
}

func (parser *Parser) ParseFile(
	ctx context.Context,
	path string,
) (
	Document,
	error,
) {
	file, err := mapped.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer file.Close()

	doc, err := parser.Parse(ctx, file)
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, nil
}
