package models

import "strings"

// Kind identifies the variant held by a Node.
type Kind int

const (
	Null Kind = iota
	Boolean
	Number
	String
	Object
	Array
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Node is a parsed JSON value.
// Only the fields matching Kind are meaningful.
type Node struct {
	Kind     Kind
	Text     string   // string value, or the number exactly as written in the source
	Bool     bool     // boolean value
	Members  []Member // object members in document order
	Elements []*Node  // array elements
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value *Node
}

// Values stored in the flat map for container and literal nodes
const (
	ObjectMarker = "{object}"
	ArrayMarker  = "{array}"
	TrueValue    = "TRUE"
	FalseValue   = "FALSE"
	NullValue    = "NULL"
)

// ArrayInfo records the path and element count of an array node.
type ArrayInfo struct {
	Path   string
	Length int
}

// ArrayIndex lists every array of a document. An array is appended once all
// of its elements have been walked, so nested arrays precede their parent.
type ArrayIndex []ArrayInfo

// Length returns the length of the first array whose path matches,
// ignoring case.
func (ai ArrayIndex) Length(path string) (int, bool) {
	for _, info := range ai {
		if strings.EqualFold(info.Path, path) {
			return info.Length, true
		}
	}
	return 0, false
}

// Record is one denormalized CSV line: the concrete row path followed
// by one value per requested property.
type Record struct {
	Key    string
	Values []string
}
