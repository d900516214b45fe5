package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/mapped"
	"github.com/pattyshack/elfhdr/report"
)

type session struct {
	parser *report.Parser

	file *mapped.File
}

func newSession(parser *report.Parser) *session {
	return &session{
		parser: parser,
	}
}

func (sess *session) Close() error {
	if sess.file == nil {
		return nil
	}

	err := sess.file.Close()
	sess.file = nil
	return err
}

// Every command decodes from a fresh cursor over the mapped content.
func (sess *session) newCursor() (*elf.Cursor, error) {
	if sess.file == nil {
		return nil, fmt.Errorf("no file opened")
	}

	cursor := elf.NewCursor(
		binary.BigEndian,
		bytes.NewReader(sess.file.Bytes()))

	ok, err := elf.IsElf(cursor)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%s: %s", sess.file.Name(), report.InvalidElfLine)
	}

	return cursor, nil
}

func (sess *session) readHeader() (*elf.Cursor, *elf.FileHeader, error) {
	cursor, err := sess.newCursor()
	if err != nil {
		return nil, nil, err
	}

	header, err := elf.ReadFileHeader(cursor, sess.parser.ClassPolicy)
	if err != nil {
		return nil, nil, err
	}

	return cursor, header, nil
}

func printLines(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}

func parseIndex(args []string) (int, error) {
	if len(args) == 0 {
		return -1, nil
	}

	idx, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid index argument (%s): %w", args[0], err)
	}

	return int(idx), nil
}

func openFile(sess *session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}

	file, err := mapped.Open(args[0])
	if err != nil {
		return err
	}

	err = sess.Close()
	if err != nil {
		fmt.Println("failed to close previous file:", err)
	}

	sess.file = file
	fmt.Println("opened", args[0])
	return nil
}

func headerSummary(header *elf.FileHeader) string {
	return fmt.Sprintf(
		"%s %s %s %s %s",
		header.Class,
		header.DataEncoding,
		header.OperatingSystemABI,
		header.FileType,
		header.MachineArchitecture)
}

func printHeader(sess *session, args []string) error {
	_, header, err := sess.readHeader()
	if err != nil {
		return err
	}

	fmt.Println("Header:", headerSummary(header))
	printLines(report.HeaderLines(header))
	return nil
}

func printProgramHeaders(sess *session, args []string) error {
	selected, err := parseIndex(args)
	if err != nil {
		return err
	}

	cursor, header, err := sess.readHeader()
	if err != nil {
		return err
	}

	entries, err := elf.ProgramHeaders(cursor, header)
	if err != nil {
		return err
	}

	if selected >= len(entries) {
		return fmt.Errorf("program header index out of bound (%d)", selected)
	}

	fmt.Println("Program headers:", len(entries))
	for idx, entry := range entries {
		if selected < 0 || selected == idx {
			fmt.Printf("[%d] %s %s\n", idx, entry.ProgramType, entry.ProgramFlags)
			printLines(report.ProgramHeaderLines(entry))
		}
	}

	return nil
}

func printSectionHeaders(sess *session, args []string) error {
	selected, err := parseIndex(args)
	if err != nil {
		return err
	}

	cursor, header, err := sess.readHeader()
	if err != nil {
		return err
	}

	entries, err := elf.SectionHeaders(cursor, header)
	if err != nil {
		return err
	}

	if selected >= len(entries) {
		return fmt.Errorf("section header index out of bound (%d)", selected)
	}

	fmt.Println("Sections:", len(entries))
	for idx, entry := range entries {
		if selected < 0 || selected == idx {
			fmt.Printf("[%d] %s %s\n", idx, entry.SectionType, entry.SectionFlags)
			printLines(report.SectionHeaderLines(entry))
		}
	}

	return nil
}

func printReport(sess *session, args []string) error {
	if sess.file == nil {
		return fmt.Errorf("no file opened")
	}

	doc, err := sess.parser.ParseBytes(context.Background(), sess.file.Bytes())
	if err != nil {
		return err
	}

	printLines(doc.Lines)
	return nil
}

func lookupName(sess *session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one resource id argument")
	}

	id, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid resource id (%s): %w", args[0], err)
	}

	name, ok := sess.parser.Names.Lookup(uint32(id))
	if !ok {
		fmt.Printf("%#x: no name\n", id)
		return nil
	}

	fmt.Printf("%#x: %s\n", id, name)
	return nil
}

func printHelp(sess *session, args []string) error {
	for _, cmd := range commands {
		fmt.Printf("  %-10s %s\n", cmd.name, cmd.description)
	}
	fmt.Printf("  %-10s %s\n", "quit", "exit the shell")
	return nil
}
