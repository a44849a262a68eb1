package dataset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Encoding tells how a payload travelled to the service.
type Encoding string

const (
	// EncodingDataURL is "<media type>;base64,<body>", as sent by browser
	// upload widgets.
	EncodingDataURL Encoding = "data-url"
	// EncodingRaw is the file content as is.
	EncodingRaw Encoding = "raw"
)

// Payload is one uploaded export file.
type Payload struct {
	Name     string
	Encoding Encoding
	Data     []byte
}

// ParseResult is the outcome of parsing one payload. Exactly one of Table and
// Err is set.
type ParseResult struct {
	Source string
	Table  *Table
	Err    error
}

// ParseAll parses every payload in order and keeps each outcome.
func ParseAll(payloads []Payload) []ParseResult {
	results := make([]ParseResult, 0, len(payloads))
	for _, p := range payloads {
		tbl, err := Parse(p)
		results = append(results, ParseResult{Source: p.Name, Table: tbl, Err: err})
	}
	return results
}

// Parse decodes one payload into a table holding DateColumn followed by every
// numeric column of the file. Other columns are dropped.
func Parse(p Payload) (*Table, error) {
	content, err := decodePayload(p)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(content)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrFormat)
	}

	dates := &Column{Name: DateColumn, Kind: KindDate, Cells: make([]Cell, len(records))}
	for i, rec := range records {
		raw, ok := rec.get(DateColumn)
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrFormat, i, DateColumn)
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrFormat, i, err)
		}
		dates.Cells[i] = DateCell(d)
	}

	tbl := NewTable(len(records))
	if err := tbl.Set(dates); err != nil {
		return nil, err
	}

	for _, spec := range InferSchema(records).Columns {
		col := NewColumn(spec.Name, spec.Kind, len(records))
		for i, rec := range records {
			raw, ok := rec.get(spec.Name)
			if !ok || classify(raw) == classNull {
				continue
			}
			v, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrFormat, i, spec.Name, err)
			}
			col.Cells[i] = NumberCell(v)
		}
		if err := tbl.Set(col); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

func decodePayload(p Payload) ([]byte, error) {
	switch p.Encoding {
	case EncodingRaw:
		return p.Data, nil
	case EncodingDataURL:
		header, body, ok := strings.Cut(string(p.Data), ",")
		if !ok {
			return nil, fmt.Errorf("%w: missing encoding marker", ErrDecode)
		}
		if strings.Contains(body, ",") {
			return nil, fmt.Errorf("%w: unexpected separator in body", ErrDecode)
		}
		if !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: encoding marker %q is not base64", ErrDecode, header)
		}
		content, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return content, nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrDecode, p.Encoding)
	}
}

// decodeRecords reads a JSON array of objects, keeping key order.
func decodeRecords(content []byte) ([]record, error) {
	dec := json.NewDecoder(bytes.NewReader(content))

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var records []record
	for dec.More() {
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrFormat, len(records), err)
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrFormat)
	}

	return records, nil
}

func decodeObject(dec *json.Decoder) (record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}

	var rec record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		rec = append(rec, field{key: key, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrFormat, want, tok)
	}
	return nil
}

//nolint:gochecknoglobals // fixed list of accepted layouts
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	switch classify(raw) {
	case classString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid %s %q", DateColumn, s)
	case classNumber:
		ms, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s %s", DateColumn, raw)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%s is null or not a date", DateColumn)
	}
}
