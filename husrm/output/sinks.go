package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ZanzyTHEbar/husrm/husrm/mining"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Output formats.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

// Sink is a rule sink that buffers and must be flushed.
type Sink interface {
	mining.RuleSink
	Flush() error
}

// Open returns a sink writing format to w.
func Open(format string, w io.Writer) (Sink, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewTextSink(w), nil
	case FormatJSONL, "json":
		return NewJSONLinesSink(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// TextSink writes one tab-separated line per rule.
type TextSink struct {
	w *bufio.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: bufio.NewWriter(w)}
}

func (s *TextSink) Emit(r mining.Rule) error {
	if _, err := s.w.WriteString(r.String()); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *TextSink) Flush() error { return s.w.Flush() }

// JSONLinesSink writes one JSON object per rule.
type JSONLinesSink struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	bw := bufio.NewWriter(w)
	return &JSONLinesSink{w: bw, enc: json.NewEncoder(bw)}
}

func (s *JSONLinesSink) Emit(r mining.Rule) error {
	return s.enc.Encode(r)
}

func (s *JSONLinesSink) Flush() error { return s.w.Flush() }

// MultiSink forwards each rule to every sink in order and stops at the first error.
type MultiSink []mining.RuleSink

func (m MultiSink) Emit(r mining.Rule) error {
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every member that buffers.
func (m MultiSink) Flush() error {
	var errs []error
	for _, s := range m {
		if f, ok := s.(interface{ Flush() error }); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}
