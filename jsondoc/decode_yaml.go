package jsondoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Alias expansion copies the anchored subtree for every reference, so the
// number of produced values is bounded relative to the input size.
const (
	minYAMLValueBudget = 10000
	yamlValuesPerByte  = 100
)

type yamlDecoder struct {
	active   map[*yaml.Node]bool
	produced int
	budget   int
}

func decodeYAML(data []byte, path string) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, &ParseError{Path: path, Line: yamlErrorLine(err), Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Value{}, &ParseError{Path: path, Line: 1, Column: 1, Err: errors.New("empty document")}
	}

	d := &yamlDecoder{
		active: make(map[*yaml.Node]bool),
		budget: max(minYAMLValueBudget, yamlValuesPerByte*len(data)),
	}
	root, err := d.convertNode(doc.Content[0])
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return Value{}, err
	}
	return root, nil
}

func (d *yamlDecoder) convertNode(node *yaml.Node) (Value, error) {
	d.produced++
	if d.produced > d.budget {
		return Value{}, nodeError(node, fmt.Errorf("document expands to more than %d values", d.budget))
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nullValue(), nil
		}
		return d.convertNode(node.Content[0])
	case yaml.AliasNode:
		return d.convertNode(node.Alias)
	case yaml.SequenceNode:
		if err := d.enter(node); err != nil {
			return Value{}, err
		}
		defer d.leave(node)

		values := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := d.convertNode(child)
			if err != nil {
				return Value{}, err
			}
			values = append(values, v)
		}
		return arrayValue(Array{values: values}), nil
	case yaml.MappingNode:
		obj := newObject()
		if err := d.fillMapping(&obj, node); err != nil {
			return Value{}, err
		}
		return objectValue(obj), nil
	case yaml.ScalarNode:
		return convertScalar(node)
	default:
		return Value{}, nodeError(node, fmt.Errorf("unsupported node kind %d", node.Kind))
	}
}

// enter marks a collection as being converted. Re-entering it means an alias
// refers to one of its own ancestors.
func (d *yamlDecoder) enter(node *yaml.Node) error {
	if d.active[node] {
		return nodeError(node, errors.New("recursive alias"))
	}
	d.active[node] = true
	return nil
}

func (d *yamlDecoder) leave(node *yaml.Node) {
	delete(d.active, node)
}

func (d *yamlDecoder) fillMapping(obj *Object, node *yaml.Node) error {
	if err := d.enter(node); err != nil {
		return err
	}
	defer d.leave(node)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.ShortTag() == "!!merge" {
			if err := d.mergeInto(obj, valueNode); err != nil {
				return err
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nodeError(keyNode, errors.New("mapping key must be a scalar"))
		}

		v, err := d.convertNode(valueNode)
		if err != nil {
			return err
		}
		obj.set(keyNode.Value, v)
	}
	return nil
}

// mergeInto applies a "<<" merge key. Explicit keys already present win.
func (d *yamlDecoder) mergeInto(obj *Object, node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	var sources []*yaml.Node
	switch node.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{node}
	case yaml.SequenceNode:
		if err := d.enter(node); err != nil {
			return err
		}
		defer d.leave(node)
		for _, child := range node.Content {
			if child.Kind == yaml.AliasNode {
				child = child.Alias
			}
			sources = append(sources, child)
		}
	default:
		return nodeError(node, errors.New("merge value must be a mapping"))
	}

	for _, src := range sources {
		if src.Kind != yaml.MappingNode {
			return nodeError(src, errors.New("merge value must be a mapping"))
		}
		merged := newObject()
		if err := d.fillMapping(&merged, src); err != nil {
			return err
		}
		for key, v := range merged.All() {
			if !obj.Has(key) {
				obj.set(key, v)
			}
		}
	}
	return nil
}

func convertScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return nullValue(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, nodeError(node, err)
		}
		return boolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, nodeError(node, err)
		}
		// Keep the source text when it is a plain decimal literal so exact
		// reads stay exact; hex, octal and .inf are normalised.
		if _, err := decimal.NewFromString(node.Value); err == nil {
			return numberValue(node.Value), nil
		}
		return numberValue(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return stringValue(node.Value), nil
	}
}

func nodeError(node *yaml.Node, err error) error {
	return &ParseError{Line: node.Line, Column: node.Column, Err: err}
}

// yamlErrorLine extracts the line from messages of the form "yaml: line N: ...".
func yamlErrorLine(err error) int {
	msg := err.Error()
	idx := strings.Index(msg, "line ")
	if idx < 0 {
		return 0
	}
	rest := msg[idx+len("line "):]
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end <= 0 {
		return 0
	}
	line, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return line
}
