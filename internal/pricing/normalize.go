package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nurpe/seminar-quote/internal/model"
)

var (
	ErrMalformedPayload = errors.New("malformed price payload")
	ErrSourcePayload    = errors.New("price source reported an error")
)

type flatEntry struct {
	path  string
	value json.RawMessage
}

// DecodeFlat reads the remote wire format, a flat object of dotted paths,
// and expands it into a table. Entries are applied in payload order.
func DecodeFlat(r io.Reader) (model.PriceTable, error) {
	entries, err := readFlatEntries(r)
	if err != nil {
		return model.PriceTable{}, err
	}

	table := model.NewPriceTable()
	for _, entry := range entries {
		path := strings.TrimSpace(entry.path)
		if path == "" {
			continue
		}
		if nested, ok := nestedSection(entry.value); ok {
			for _, leaf := range nested.Entries() {
				table.Set(path+"."+leaf.Path, nonNegative(leaf.Price))
			}
			continue
		}
		table.Set(path, nonNegative(flatPrice(entry.value)))
	}
	return table, nil
}

func readFlatEntries(r io.Reader) ([]flatEntry, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrMalformedPayload)
	}

	var entries []flatEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if key == "error" {
			return nil, fmt.Errorf("%w: %s", ErrSourcePayload, strings.Trim(string(raw), `"`))
		}
		entries = append(entries, flatEntry{path: key, value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return entries, nil
}

// flatPrice reads either a plain number, a numeric string, or the
// spreadsheet export shape {"74": 0} whose key carries the price.
func flatPrice(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	switch raw[0] {
	case '{':
		value, _ := wrappedPrice(raw)
		return value
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0
		}
		return value
	default:
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return 0
		}
		return value
	}
}

func wrappedPrice(raw json.RawMessage) (float64, bool) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return 0, false
	}
	keys := make([]string, 0, len(wrapped))
	for key := range wrapped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value, err := strconv.ParseFloat(strings.TrimSpace(key), 64); err == nil {
			return value, true
		}
	}
	return 0, false
}

// nestedSection handles sheets that publish whole sections, e.g.
// {"catering": {"pause": {"suess": 8}}}, next to flat entries.
func nestedSection(raw json.RawMessage) (model.PriceTable, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return model.PriceTable{}, false
	}
	if _, ok := wrappedPrice(raw); ok {
		return model.PriceTable{}, false
	}
	var nested model.PriceTable
	if err := json.Unmarshal(raw, &nested); err != nil {
		return model.PriceTable{}, false
	}
	entries := nested.Entries()
	if len(entries) == 0 {
		return model.PriceTable{}, false
	}
	for _, entry := range entries {
		if strings.Contains("."+entry.Path+".", "..") {
			return model.PriceTable{}, false
		}
	}
	return nested, true
}

// DecodeNested reads the local fallback format, which already has the
// table's shape.
func DecodeNested(r io.Reader) (model.PriceTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.PriceTable{}, err
	}
	var table model.PriceTable
	if err := json.Unmarshal(data, &table); err != nil {
		return model.PriceTable{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return sanitize(table), nil
}

// sanitize rebuilds table with negative leaves clamped to 0.
func sanitize(table model.PriceTable) model.PriceTable {
	clean := model.NewPriceTable()
	for _, entry := range table.Entries() {
		clean.Set(entry.Path, nonNegative(entry.Price))
	}
	return clean
}

func nonNegative(value float64) float64 {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
