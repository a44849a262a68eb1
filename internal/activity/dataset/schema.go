package dataset

import (
	"bytes"
	"encoding/json"
)

// field is one key/value pair of a decoded JSON object, in document order.
type field struct {
	key string
	raw json.RawMessage
}

type record []field

func (r record) get(key string) (json.RawMessage, bool) {
	for _, f := range r {
		if f.key == key {
			return f.raw, true
		}
	}
	return nil, false
}

type valueClass int

const (
	classNull valueClass = iota
	classNumber
	classString
	classBool
	classNested
)

func classify(raw json.RawMessage) valueClass {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return classNull
	}
	switch raw[0] {
	case 'n':
		return classNull
	case '"':
		return classString
	case 't', 'f':
		return classBool
	case '{', '[':
		return classNested
	default:
		return classNumber
	}
}

// ColumnSpec describes one column kept by schema inference.
type ColumnSpec struct {
	Name string
	Kind Kind
}

// Manifest is the typed result of schema inference over a set of records.
type Manifest struct {
	// Columns holds the numeric columns in first-seen order.
	Columns []ColumnSpec
	// Dropped holds the names of columns discarded as non-numeric.
	Dropped []string
}

// InferSchema keeps a column when at least one of its values is a number and
// none of its non-null values is anything else. The date column is never part
// of the manifest.
func InferSchema(records []record) Manifest {
	var order []string
	classes := make(map[string]map[valueClass]bool)

	for _, rec := range records {
		for _, f := range rec {
			if f.key == DateColumn {
				continue
			}
			seen, ok := classes[f.key]
			if !ok {
				seen = make(map[valueClass]bool)
				classes[f.key] = seen
				order = append(order, f.key)
			}
			seen[classify(f.raw)] = true
		}
	}

	var m Manifest
	for _, name := range order {
		seen := classes[name]
		if seen[classNumber] && !seen[classString] && !seen[classBool] && !seen[classNested] {
			m.Columns = append(m.Columns, ColumnSpec{Name: name, Kind: KindNumber})
			continue
		}
		m.Dropped = append(m.Dropped, name)
	}

	return m
}
