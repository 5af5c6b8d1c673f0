package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeJSON walks the token stream instead of unmarshalling into a map so
// that object keys keep their document order.
func decodeJSON(data []byte, path string) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readValue(dec)
	if err != nil {
		return Value{}, jsonParseError(data, path, dec, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return Value{}, jsonParseError(data, path, dec, err)
	}
	return root, nil
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case bool:
		return boolValue(t), nil
	case json.Number:
		return numberValue(t.String()), nil
	case string:
		return stringValue(t), nil
	case nil:
		return nullValue(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func readObject(dec *json.Decoder) (Value, error) {
	obj := newObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", tok)
		}

		v, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.set(key, v)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return Value{}, err
	}
	return objectValue(obj), nil
}

func readArray(dec *json.Decoder) (Value, error) {
	var values []Value
	for dec.More() {
		v, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return Value{}, err
	}
	return arrayValue(Array{values: values}), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

func jsonParseError(data []byte, path string, dec *json.Decoder, err error) error {
	offset := dec.InputOffset()
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}

	line, col := position(data, offset)
	return &ParseError{Path: path, Line: line, Column: col, Err: err}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}

	before := data[:offset]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := int(offset) - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}
