package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jflat/internal/errors" // Custom errors package
	"github.com/mcncl/jflat/internal/models"
	"github.com/tidwall/gjson"
)

// Parse reads a single JSON document from reader and returns its tree.
// Object members keep their document order and numbers keep their
// exact source text.
func Parse(reader io.Reader) (*models.Node, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewSourceError("failed to read JSON source", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a JSON document held in memory
func ParseBytes(data []byte) (*models.Node, error) {
	raw, err := validate(data)
	if err != nil {
		return nil, err
	}
	return buildNode(gjson.ParseBytes(raw)), nil
}

// validate checks that data holds exactly one well-formed JSON value and
// returns the bytes of that value.
func validate(data []byte) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return nil, syntaxFailure(data, err)
	}

	// Only JSON whitespace may follow the document. decoder.More is not
	// enough here: it reports false for a stray ']' or '}'.
	var trailing json.RawMessage
	err := decoder.Decode(&trailing)
	switch {
	case stderrors.Is(err, io.EOF):
		return raw, nil
	case err != nil:
		return nil, syntaxFailure(data, err)
	default:
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}
}

// syntaxFailure converts a decoder error into a located SyntaxError
func syntaxFailure(data []byte, err error) error {
	var syntaxError *json.SyntaxError
	switch {
	case stderrors.As(err, &syntaxError):
		return errors.NewParsingError("failed to parse JSON",
			errors.NewSyntaxError(data, syntaxError.Offset, syntaxError.Error()))
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		// The location is just past the last byte
		return errors.NewParsingError("failed to parse JSON",
			errors.NewSyntaxError(data, int64(len(data))+1, "unexpected end of JSON input"))
	default:
		return errors.NewParsingError("failed to decode JSON", err)
	}
}

// buildNode converts a gjson result into the models tree
func buildNode(res gjson.Result) *models.Node {
	switch res.Type {
	case gjson.String:
		return &models.Node{Kind: models.String, Text: res.Str}
	case gjson.Number:
		return &models.Node{Kind: models.Number, Text: res.Raw}
	case gjson.True:
		return &models.Node{Kind: models.Boolean, Bool: true}
	case gjson.False:
		return &models.Node{Kind: models.Boolean, Bool: false}
	case gjson.JSON:
		if res.IsArray() {
			node := &models.Node{Kind: models.Array, Elements: []*models.Node{}}
			res.ForEach(func(_, value gjson.Result) bool {
				node.Elements = append(node.Elements, buildNode(value))
				return true
			})
			return node
		}
		node := &models.Node{Kind: models.Object, Members: []models.Member{}}
		res.ForEach(func(key, value gjson.Result) bool {
			node.Members = append(node.Members, models.Member{Key: key.Str, Value: buildNode(value)})
			return true
		})
		return node
	default:
		return &models.Node{Kind: models.Null}
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (*models.Node, error) {
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (*models.Node, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	return Parse(file)
}
