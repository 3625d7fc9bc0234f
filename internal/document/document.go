// Package document ties the parser, the flattener and the denormalizer
// together behind a small API.
//
// A Document is either Unparsed (the zero value) or Parsed (returned by one
// of the Parse functions). Every operation on an Unparsed document fails with
// errors.ErrNotParsed. A Parsed document never changes: parsing another
// source yields a new Document, and concurrent reads are safe.
package document

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mcncl/jflat/internal/denormalizer"
	"github.com/mcncl/jflat/internal/errors"
	"github.com/mcncl/jflat/internal/flatmap"
	"github.com/mcncl/jflat/internal/flattener"
	"github.com/mcncl/jflat/internal/formatter"
	"github.com/mcncl/jflat/internal/models"
	"github.com/mcncl/jflat/internal/parser"
)

// Document is a flattened JSON document
type Document struct {
	result flattener.Result
	denorm *denormalizer.Denormalizer
	logger *slog.Logger
}

type options struct {
	removeNodes bool
	logger      *slog.Logger
}

// Option configures how a document is flattened
type Option func(*options)

// WithoutContainerMarkers drops the "{object}" and "{array}" entries of
// containers from the flat map. The array index is kept complete.
func WithoutContainerMarkers() Option {
	return func(o *options) {
		o.removeNodes = true
	}
}

// WithLogger sets the logger used for debug output. Documents are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Parse reads a JSON document from r and flattens it. On failure no
// document is returned.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}
	return build(root, opts), nil
}

// ParseString parses and flattens the JSON document held in s
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseFile parses and flattens the JSON document stored at path
func ParseFile(path string, opts ...Option) (*Document, error) {
	root, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return build(root, opts), nil
}

func build(root *models.Node, opts []Option) *Document {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	result := flattener.NewFlattener(o.removeNodes).WithLogger(o.logger).Flatten(root)
	return &Document{
		result: result,
		denorm: denormalizer.NewDenormalizer(result).WithLogger(o.logger),
		logger: o.logger,
	}
}

func (d *Document) parsed() error {
	if d == nil || d.result.Map == nil {
		return errors.NewStateError("document has not been parsed")
	}
	return nil
}

// FlatTree returns the flat map as text, one "path=value" line per entry in
// case-insensitive path order.
func (d *Document) FlatTree(opts formatter.DumpOptions) (string, error) {
	if err := d.parsed(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := formatter.NewFormatter().FlatTree(&sb, d.result.Map.Entries(), opts); err != nil {
		return "", errors.NewOutputError("failed to render flat tree", err)
	}
	return sb.String(), nil
}

// Entries returns a snapshot of the flat map in path order
func (d *Document) Entries() ([]flatmap.Entry, error) {
	if err := d.parsed(); err != nil {
		return nil, err
	}
	return d.result.Map.Entries(), nil
}

// Arrays returns a copy of the array index
func (d *Document) Arrays() (models.ArrayIndex, error) {
	if err := d.parsed(); err != nil {
		return nil, err
	}
	arrays := make(models.ArrayIndex, len(d.result.Arrays))
	copy(arrays, d.result.Arrays)
	return arrays, nil
}

// Get looks up a single path, ignoring case
func (d *Document) Get(path string) (string, bool, error) {
	if err := d.parsed(); err != nil {
		return "", false, err
	}
	value, ok := d.result.Map.Get(path)
	return value, ok, nil
}

// ToCSV denormalizes the document along entry. An empty separator means ";".
func (d *Document) ToCSV(entry string, properties []string, separator string) (string, error) {
	if err := d.parsed(); err != nil {
		return "", err
	}
	return d.denorm.ToCSV(entry, properties, separator), nil
}

// Query describes a denormalization whose arguments may be absent, as when
// they come from a configuration file. A nil Entry or a nil property is
// rejected; a nil Separator means ";". A non-nil Separator is used as given,
// so an empty one joins the columns with nothing.
type Query struct {
	Entry      *string
	Properties []*string
	Separator  *string
}

// Denormalize validates q and runs ToCSV with it
func (d *Document) Denormalize(q Query) (string, error) {
	if q.Entry == nil {
		return "", errors.NewArgumentError("entry path must not be null")
	}
	properties := make([]string, len(q.Properties))
	for i, property := range q.Properties {
		if property == nil {
			return "", errors.NewArgumentError("property paths must not be null")
		}
		properties[i] = *property
	}
	separator := denormalizer.DefaultSeparator
	if q.Separator != nil {
		separator = *q.Separator
	}

	if err := d.parsed(); err != nil {
		return "", err
	}

	d.logger.Debug("running query", "entry", *q.Entry, "properties", properties, "separator", separator)
	return d.denorm.Render(*q.Entry, properties, separator), nil
}
