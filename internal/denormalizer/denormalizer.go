package denormalizer

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mcncl/jflat/internal/flatmap"
	"github.com/mcncl/jflat/internal/flattener"
	"github.com/mcncl/jflat/internal/formatter"
	"github.com/mcncl/jflat/internal/models"
	"github.com/mcncl/jflat/internal/paths"
)

// DefaultSeparator separates CSV columns when none is given
const DefaultSeparator = ";"

// Denormalizer turns a flat map into CSV records, one record per
// concrete row of an entry path. It only reads the flat map and the array
// index, so a single Denormalizer may serve concurrent calls.
type Denormalizer struct {
	flat   *flatmap.Map
	arrays models.ArrayIndex
	logger *slog.Logger
}

// NewDenormalizer creates a Denormalizer over the result of a flattening pass
func NewDenormalizer(result flattener.Result) *Denormalizer {
	flat := result.Map
	if flat == nil {
		flat = flatmap.New()
	}
	return &Denormalizer{
		flat:   flat,
		arrays: result.Arrays,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for debug output
func (d *Denormalizer) WithLogger(logger *slog.Logger) *Denormalizer {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// Rows expands entry into the ordered list of concrete row paths. Every
// array met along the entry path contributes one row per element, outer
// arrays varying slower than inner ones.
func (d *Denormalizer) Rows(entry string) []string {
	entry = paths.NormalizeEntry(entry)

	var rows []string
	if length, ok := d.arrays.Length(""); ok && length > 0 {
		// The document itself is an array: [0], [1], ...
		for i := 0; i < length; i++ {
			rows = append(rows, paths.Index("", i))
		}
	} else {
		rows = []string{paths.Root}
	}

	for _, segment := range paths.Segments(entry) {
		expanded := make([]string, 0, len(rows))
		for _, row := range rows {
			candidate := paths.Child(row, segment)
			length, _ := d.arrays.Length(candidate)
			if length == 0 {
				expanded = append(expanded, candidate)
				continue
			}
			for i := 0; i < length; i++ {
				expanded = append(expanded, paths.Index(candidate, i))
			}
		}
		rows = expanded
	}

	return rows
}

// Resolve returns the flat map path designated by property relative to row
func Resolve(row, property string) string {
	return paths.ResolveParents(paths.Join(row, property))
}

// Records builds one record per existing row of entry. The first column of
// each record is the row path as stored in the flat map, followed by the
// value of each property ("" when the property does not exist).
func (d *Denormalizer) Records(entry string, properties []string) []models.Record {
	if d.flat.Len() == 0 {
		return nil
	}

	normalized := make([]string, len(properties))
	for i, property := range properties {
		normalized[i] = paths.NormalizeProperty(property)
	}

	rows := d.Rows(entry)
	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		// Rows of a path that does not exist in this document are skipped
		if !d.flat.Contains(row) {
			continue
		}
		key, _ := d.flat.Floor(row)

		values := make([]string, len(normalized))
		for i, property := range normalized {
			values[i], _ = d.flat.Get(Resolve(row, property))
		}
		records = append(records, models.Record{Key: key, Values: values})
	}

	d.logger.Debug("denormalized entry path",
		"entry", entry,
		"properties", len(properties),
		"rows", len(rows),
		"records", len(records))

	return records
}

// ToCSV renders the records of entry as CSV text. An empty separator
// means DefaultSeparator.
func (d *Denormalizer) ToCSV(entry string, properties []string, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}
	return d.Render(entry, properties, separator)
}

// Render is ToCSV with separator used as given, even when empty
func (d *Denormalizer) Render(entry string, properties []string, separator string) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = formatter.NewFormatter().CSV(&sb, d.Records(entry, properties), separator)
	return sb.String()
}
