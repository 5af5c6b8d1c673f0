// Package jsondoc provides typed, fallible access to parsed JSON documents.
//
// A document is a tree of tagged values. Every accessor returns the value
// together with an error, so a missing key or a value of the wrong kind is
// reported instead of silently producing a zero value:
//
//	doc, err := jsondoc.Parse("scene.json")
//	if err != nil {
//		return err
//	}
//	name, err := jsondoc.GetString(doc, "name")
//	if errors.Is(err, jsondoc.ErrKeyNotFound) {
//		name = "untitled"
//	}
//
// Files ending in .yaml or .yml are decoded as YAML into the same value model.
package jsondoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Document is a parsed document with its root value.
type Document struct {
	path string
	root Value
}

// Path returns the file the document was parsed from, or "" for in-memory input.
func (d *Document) Path() string {
	return d.path
}

// Root returns the top-level value of the document.
func (d *Document) Root() Value {
	return d.root
}

// Parse loads and decodes the document at path. It returns ErrNotFound when
// the file does not exist and a *ParseError when its content is malformed.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}

	var root Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		root, err = decodeYAML(data, path)
	default:
		root, err = decodeJSON(data, path)
	}
	if err != nil {
		return nil, err
	}
	return &Document{path: path, root: root}, nil
}

// ParseBytes decodes a JSON document held in memory.
func ParseBytes(data []byte) (*Document, error) {
	root, err := decodeJSON(data, "")
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseYAMLBytes decodes a YAML document held in memory.
func ParseYAMLBytes(data []byte) (*Document, error) {
	root, err := decodeYAML(data, "")
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseReader decodes a JSON document read from r.
func ParseReader(r io.Reader) (*Document, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseBytes(buf.Bytes())
}

func (d *Document) rootObject(key string) (Object, error) {
	if d == nil {
		return Object{}, mismatch(key, KindObject, KindNull)
	}
	if d.root.kind != KindObject {
		return Object{}, mismatch(key, KindObject, d.root.kind)
	}
	return d.root.obj, nil
}

// GetObject returns the object stored under key in the document root.
func GetObject(doc *Document, key string) (Object, error) {
	root, err := doc.rootObject(key)
	if err != nil {
		return Object{}, err
	}
	return root.Object(key)
}

// GetArray returns the array stored under key in the document root.
func GetArray(doc *Document, key string) (Array, error) {
	root, err := doc.rootObject(key)
	if err != nil {
		return Array{}, err
	}
	return root.Array(key)
}

// GetString returns the string stored under key in the document root.
func GetString(doc *Document, key string) (string, error) {
	root, err := doc.rootObject(key)
	if err != nil {
		return "", err
	}
	return root.String(key)
}

// GetNumber returns the number stored under key in the document root.
func GetNumber(doc *Document, key string) (float64, error) {
	root, err := doc.rootObject(key)
	if err != nil {
		return 0, err
	}
	return root.Number(key)
}

// GetDecimal returns the number stored under key in the document root
// without rounding it through float64.
func GetDecimal(doc *Document, key string) (decimal.Decimal, error) {
	root, err := doc.rootObject(key)
	if err != nil {
		return decimal.Zero, err
	}
	return root.Decimal(key)
}
