package config

import (
	"bytes"
	"encoding/json"

	"github.com/emberforge/ember/pkg/errs"
)

// MergeJSON decodes a JSON document and merges it into the builder's root.
// A JSON bool, number or string replaces whatever value sits at its path; a
// JSON null leaves the existing value untouched. JSON objects merge into an
// Object and JSON arrays into a Table (element by element, keeping any
// existing elements past the array's length), creating the container where
// the path holds no value; the merge fails if a different kind of value is
// already there. JSON numbers are installed as F64 (JSON carries no
// distinct integer type to recover). Merging another Builder's tree directly, rather than a
// JSON document, is left open — see DESIGN.md.
func (b *Builder) MergeJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		return errs.New(errs.InvalidArgument, err, "decoding JSON for merge")
	}
	return mergeValue(b.Root(), v)
}

func mergeValue(c *Cursor, v any) error {
	switch tv := v.(type) {
	case nil:
		return nil
	case bool:
		return c.SetBool(tv)
	case float64:
		return c.SetF64(tv)
	case string:
		return c.SetString(tv)
	case []any:
		for i, elem := range tv {
			child, err := c.Index(i)
			if err != nil {
				return err
			}
			if err := mergeValue(child, elem); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for key, elem := range tv {
			child, err := c.Child(key)
			if err != nil {
				return err
			}
			if err := mergeValue(child, elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return errs.New(errs.WrongValueType, nil, "unsupported JSON value type %T", v)
	}
}
