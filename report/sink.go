package report

import (
	"fmt"
	"io"
)

// Sink accumulates report lines and finalizes them into a document.  A sink
// is used by a single parse call.
type Sink interface {
	AddLine(line string) error

	// Finish must be called at most once.  No lines may be added afterward.
	Finish() (Document, error)
}

type BufferSink struct {
	lines    []string
	finished bool
}

func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

func (sink *BufferSink) AddLine(line string) error {
	if sink.finished {
		return fmt.Errorf("cannot add line to finished report")
	}

	sink.lines = append(sink.lines, line)
	return nil
}

func (sink *BufferSink) Finish() (Document, error) {
	if sink.finished {
		return Document{}, fmt.Errorf("report already finished")
	}

	sink.finished = true
	return Document{Lines: sink.lines}, nil
}

// WriterSink forwards every line to the underlying writer as soon as the
// line is added, in addition to accumulating the lines.
type WriterSink struct {
	BufferSink

	writer io.Writer
}

func NewWriterSink(writer io.Writer) *WriterSink {
	return &WriterSink{
		writer: writer,
	}
}

func (sink *WriterSink) AddLine(line string) error {
	err := sink.BufferSink.AddLine(line)
	if err != nil {
		return err
	}

	_, err = io.WriteString(sink.writer, line+"\n")
	if err != nil {
		return fmt.Errorf("failed to write report line: %w", err)
	}

	return nil
}
