package formatter

import (
	"bufio"
	"io"
	"strings"

	"github.com/mcncl/jflat/internal/flatmap"
	"github.com/mcncl/jflat/internal/models"
)

// DefaultValueSeparator separates a path from its value in a flat dump
const DefaultValueSeparator = "="

// Line endings understood by ConvertLineEndings
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// DumpOptions controls the flat dump text
type DumpOptions struct {
	// Separator goes between each path and its value; "" means "="
	Separator string
	// ReplaceEOL rewrites line feeds inside values with EOLReplacement
	ReplaceEOL     bool
	EOLReplacement string
}

// Formatter renders flat maps and denormalized records as text
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FlatTree writes one "path<separator>value" line per entry, in the
// order given.
func (f *Formatter) FlatTree(w io.Writer, entries []flatmap.Entry, opts DumpOptions) error {
	separator := opts.Separator
	if separator == "" {
		separator = DefaultValueSeparator
	}

	bw := bufio.NewWriter(w)
	for _, entry := range entries {
		value := entry.Value
		if opts.ReplaceEOL {
			value = strings.ReplaceAll(value, "\n", opts.EOLReplacement)
		}
		if _, err := bw.WriteString(entry.Key + separator + value + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CSV writes one line per record: the record key and every value, each
// followed by separator. Values are written verbatim: a separator or a
// line feed inside a value is not escaped.
func (f *Formatter) CSV(w io.Writer, records []models.Record, separator string) error {
	bw := bufio.NewWriter(w)
	for _, record := range records {
		var line strings.Builder
		line.WriteString(record.Key)
		line.WriteString(separator)
		for _, value := range record.Values {
			line.WriteString(value)
			line.WriteString(separator)
		}
		line.WriteString("\n")
		if _, err := bw.WriteString(line.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ConvertLineEndings rewrites the "\n" line terminators of text with ending
func (f *Formatter) ConvertLineEndings(text, ending string) string {
	if ending == "" || ending == LF {
		return text
	}
	return strings.ReplaceAll(text, LF, ending)
}
