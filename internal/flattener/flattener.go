package flattener

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/mcncl/jflat/internal/flatmap"
	"github.com/mcncl/jflat/internal/models"
)

// RootPath is the key under which the document root is stored
const RootPath = "/"

// Result holds everything the denormalizer needs from a document
type Result struct {
	Map    *flatmap.Map
	Arrays models.ArrayIndex
}

// Flattener walks a JSON tree and records one flat map entry per node
type Flattener struct {
	removeNodes bool
	logger      *slog.Logger

	flat   *flatmap.Map
	arrays models.ArrayIndex
}

// NewFlattener creates a Flattener. When removeNodes is set, objects and
// arrays get no "{object}"/"{array}" entry of their own.
func NewFlattener(removeNodes bool) *Flattener {
	return &Flattener{
		removeNodes: removeNodes,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for debug output
func (f *Flattener) WithLogger(logger *slog.Logger) *Flattener {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Flatten walks root depth-first and returns the flat map and the array
// index. A nil root yields empty structures.
func (f *Flattener) Flatten(root *models.Node) Result {
	f.flat = flatmap.New()
	f.arrays = models.ArrayIndex{}

	f.walk(root, "")

	// The root is visited with an empty path but is addressed as "/"
	if value, ok := f.flat.Get(""); ok {
		f.flat.Delete("")
		f.flat.Put(RootPath, value)
	}

	f.logger.Debug("flattened JSON document",
		"entries", f.flat.Len(),
		"arrays", len(f.arrays),
		"remove_nodes", f.removeNodes)

	return Result{Map: f.flat, Arrays: f.arrays}
}

// Flatten is a shorthand for NewFlattener(removeNodes).Flatten(root)
func Flatten(root *models.Node, removeNodes bool) Result {
	return NewFlattener(removeNodes).Flatten(root)
}

func (f *Flattener) walk(node *models.Node, path string) {
	if node == nil {
		return
	}

	switch node.Kind {
	case models.Object:
		if !f.removeNodes {
			f.flat.Put(path, models.ObjectMarker)
		}
		for _, member := range node.Members {
			f.walk(member.Value, path+"/"+member.Key)
		}

	case models.Array:
		if !f.removeNodes {
			f.flat.Put(path, models.ArrayMarker)
		}
		for i, element := range node.Elements {
			f.walk(element, path+"["+strconv.Itoa(i)+"]")
		}
		// Recorded even without markers, the denormalizer relies on it
		f.arrays = append(f.arrays, models.ArrayInfo{Path: path, Length: len(node.Elements)})

	case models.String, models.Number:
		f.flat.Put(path, node.Text)

	case models.Boolean:
		if node.Bool {
			f.flat.Put(path, models.TrueValue)
		} else {
			f.flat.Put(path, models.FalseValue)
		}

	case models.Null:
		f.flat.Put(path, models.NullValue)
	}
}
