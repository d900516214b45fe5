package report

import (
	"io"
	"strings"
)

const (
	InvalidElfLine = "Error: Invalid ELF File"

	HeaderTitle        = "Header"
	ProgramHeaderTitle = "Program Header"
	SectionHeaderTitle = "Section Header"
)

func blockTitleLine(title string) string {
	return "### " + title + " ###"
}

func parseBlockTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, "### ") || !strings.HasSuffix(line, " ###") ||
		len(line) < len("### ###")+1 {
		return "", false
	}

	return line[len("### ") : len(line)-len(" ###")], true
}

// A finished report.  Documents are never modified once returned.
type Document struct {
	Lines []string
}

func InvalidDocument() Document {
	return Document{
		Lines: []string{InvalidElfLine},
	}
}

func (doc Document) IsInvalid() bool {
	return len(doc.Lines) == 1 && doc.Lines[0] == InvalidElfLine
}

func (doc Document) String() string {
	builder := strings.Builder{}
	for _, line := range doc.Lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	return builder.String()
}

func (doc Document) WriteTo(writer io.Writer) (int64, error) {
	n, err := io.WriteString(writer, doc.String())
	return int64(n), err
}

type Block struct {
	Title string

	// Field lines, excluding the title line and the trailing blank line.
	Lines []string
}

// Groups the document's lines by block title.  Lines before the first title
// (e.g., the invalid elf message) are not part of any block.
func (doc Document) Blocks() []Block {
	blocks := []Block{}

	var current *Block
	for _, line := range doc.Lines {
		title, ok := parseBlockTitle(line)
		if ok {
			blocks = append(blocks, Block{Title: title})
			current = &blocks[len(blocks)-1]
			continue
		}

		if current == nil || line == "" {
			continue
		}

		current.Lines = append(current.Lines, line)
	}

	return blocks
}

func (doc Document) BlocksWithTitle(title string) []Block {
	result := []Block{}
	for _, block := range doc.Blocks() {
		if block.Title == title {
			result = append(result, block)
		}
	}
	return result
}
