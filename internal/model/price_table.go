package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNotPriceTable = errors.New("price table must be a JSON object")

// PriceTable is an ordered tree of price keys. Leaves hold gross prices.
// The zero value is an empty table whose lookups all resolve to 0.
type PriceTable struct {
	root *priceNode
}

// PriceEntry is one leaf of a PriceTable addressed by its dotted path.
type PriceEntry struct {
	Path  string  `json:"path"`
	Price float64 `json:"price"`
}

type priceNode struct {
	leaf     bool
	value    float64
	keys     []string
	children map[string]*priceNode
}

func newBranch() *priceNode {
	return &priceNode{children: make(map[string]*priceNode)}
}

func (n *priceNode) put(key string, child *priceNode) {
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

func NewPriceTable() PriceTable {
	return PriceTable{root: newBranch()}
}

// Set stores value at the dotted path, creating intermediate nodes. A leaf
// found where a node is needed is replaced by a new node. Copies of a
// PriceTable share their tree, so Set is for building a table; use Clone
// before changing one that has been handed out.
func (t *PriceTable) Set(path string, value float64) {
	segments := strings.Split(path, ".")
	if t.root == nil {
		t.root = newBranch()
	}
	current := t.root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current.children[segment]
		if !ok || next.leaf {
			next = newBranch()
			current.put(segment, next)
		}
		current = next
	}
	current.put(segments[len(segments)-1], &priceNode{leaf: true, value: value})
}

// Clone returns a deep copy that can be changed without affecting t.
func (t PriceTable) Clone() PriceTable {
	if t.root == nil {
		return PriceTable{}
	}
	return PriceTable{root: t.root.clone()}
}

func (n *priceNode) clone() *priceNode {
	if n.leaf {
		return &priceNode{leaf: true, value: n.value}
	}
	copied := newBranch()
	for _, key := range n.keys {
		copied.put(key, n.children[key].clone())
	}
	return copied
}

// Lookup descends the dotted path and reports whether it ends on a leaf.
func (t PriceTable) Lookup(path string) (float64, bool) {
	if t.root == nil || path == "" {
		return 0, false
	}
	current := t.root
	for _, segment := range strings.Split(path, ".") {
		if current.leaf {
			return 0, false
		}
		next, ok := current.children[segment]
		if !ok {
			return 0, false
		}
		current = next
	}
	if !current.leaf {
		return 0, false
	}
	return current.value, true
}

// Price returns the leaf at path, or 0 when the path does not resolve.
func (t PriceTable) Price(path string) float64 {
	value, _ := t.Lookup(path)
	return value
}

func (t PriceTable) IsEmpty() bool {
	return t.root == nil || len(t.root.keys) == 0
}

// Entries flattens the table into dotted paths in insertion order.
func (t PriceTable) Entries() []PriceEntry {
	if t.root == nil {
		return nil
	}
	var entries []PriceEntry
	var walk func(prefix string, n *priceNode)
	walk = func(prefix string, n *priceNode) {
		for _, key := range n.keys {
			child := n.children[key]
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			if child.leaf {
				entries = append(entries, PriceEntry{Path: path, Price: child.value})
				continue
			}
			walk(path, child)
		}
	}
	walk("", t.root)
	return entries
}

// Flat returns the dotted-path mapping of every leaf.
func (t PriceTable) Flat() map[string]float64 {
	entries := t.Entries()
	result := make(map[string]float64, len(entries))
	for _, entry := range entries {
		result[entry.Path] = entry.Price
	}
	return result
}

func (t PriceTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if t.root == nil {
		buf.WriteString("{}")
		return buf.Bytes(), nil
	}
	if err := writeNode(&buf, t.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *priceNode) error {
	if n.leaf {
		value := n.value
		if !isFinite(value) {
			value = 0
		}
		buf.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
		return nil
	}
	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		if err := writeNode(buf, n.children[key]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON reads a nested object, keeping key order. Numeric strings
// are accepted as leaves; null, booleans, other strings and non-finite
// numbers are skipped.
func (t *PriceTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotPriceTable
	}
	root, err := decodeBranch(dec)
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func decodeBranch(dec *json.Decoder) (*priceNode, error) {
	node := newBranch()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		child, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if child != nil {
			node.put(key, child)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (*priceNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch value := tok.(type) {
	case json.Delim:
		if value == '{' {
			return decodeBranch(dec)
		}
		return nil, fmt.Errorf("unexpected %v in price table", value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil || !isFinite(parsed) {
			return nil, nil
		}
		return &priceNode{leaf: true, value: parsed}, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || !isFinite(parsed) {
			return nil, nil
		}
		return &priceNode{leaf: true, value: parsed}, nil
	default:
		return nil, nil
	}
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
