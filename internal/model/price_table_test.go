package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPriceTableMissingPathResolvesToZero(t *testing.T) {
	table := NewPriceTable()
	table.Set("rooms.single_per_night", 90)

	paths := []string{"", "rooms", "rooms.double_per_night", "rooms.single_per_night.extra", "catering.pause.suess", "rooms..single_per_night"}
	for _, path := range paths {
		if got := table.Price(path); got != 0 {
			t.Fatalf("expected 0 for %q, got %f", path, got)
		}
	}

	var zero PriceTable
	if got := zero.Price("rooms.single_per_night"); got != 0 {
		t.Fatalf("zero table must resolve to 0, got %f", got)
	}
}

func TestPriceTableSetLookupRoundTrip(t *testing.T) {
	table := NewPriceTable()
	values := map[string]float64{
		"1tag.base_price":                   74,
		"catering.pause.gemischt":           14,
		"catering.abendessen.upgrade_steak": 87.5,
		"activities.yoga":                   0,
	}
	for path, value := range values {
		table.Set(path, value)
	}
	for path, want := range values {
		got, ok := table.Lookup(path)
		if !ok {
			t.Fatalf("expected %s to resolve", path)
		}
		if got != want {
			t.Fatalf("%s: expected %f, got %f", path, want, got)
		}
	}
}

func TestPriceTableSetReplacesLeafWithNode(t *testing.T) {
	table := NewPriceTable()
	table.Set("rooms", 10)
	table.Set("rooms.single_per_night", 90)

	if got := table.Price("rooms.single_per_night"); got != 90 {
		t.Fatalf("expected nested price 90, got %f", got)
	}
	if _, ok := table.Lookup("rooms"); ok {
		t.Fatalf("rooms must now be a node, not a leaf")
	}

	table.Set("rooms", 12)
	if got := table.Price("rooms"); got != 12 {
		t.Fatalf("expected leaf to replace node, got %f", got)
	}
	if got := table.Price("rooms.single_per_night"); got != 0 {
		t.Fatalf("replaced subtree must be gone, got %f", got)
	}
}

func TestPriceTableJSONKeepsOrder(t *testing.T) {
	raw := `{"rooms":{"single_per_night":151,"naechtigungsabgabe":"2.50"},"1tag":{"base_price":74},"note":null}`

	var table PriceTable
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := table.Price("rooms.naechtigungsabgabe"); got != 2.5 {
		t.Fatalf("expected numeric string to be read, got %f", got)
	}

	entries := table.Entries()
	wantPaths := []string{"rooms.single_per_night", "rooms.naechtigungsabgabe", "1tag.base_price"}
	if len(entries) != len(wantPaths) {
		t.Fatalf("expected %d entries, got %d", len(wantPaths), len(entries))
	}
	for i, path := range wantPaths {
		if entries[i].Path != path {
			t.Fatalf("entry %d: expected %s, got %s", i, path, entries[i].Path)
		}
	}

	encoded, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"rooms":{"single_per_night":151,"naechtigungsabgabe":2.5},"1tag":{"base_price":74}}`
	if string(encoded) != want {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestPriceTableRejectsNonObject(t *testing.T) {
	var table PriceTable
	if err := json.Unmarshal([]byte(`[1,2]`), &table); err == nil {
		t.Fatalf("expected error for array payload")
	}
}

func TestPriceTableFlat(t *testing.T) {
	table := NewPriceTable()
	table.Set("a.b", 1)
	table.Set("a.c.d", 2)

	flat := table.Flat()
	if len(flat) != 2 || flat["a.b"] != 1 || flat["a.c.d"] != 2 {
		t.Fatalf("unexpected flat mapping %v", flat)
	}
}

func TestPriceTableSkipsNonFiniteValues(t *testing.T) {
	raw := `{"rooms":{"single_per_night":"Infinity","double_per_night":1e400,"naechtigungsabgabe":2.5}}`

	var table PriceTable
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := table.Lookup("rooms.single_per_night"); ok {
		t.Fatalf("infinite string must be skipped")
	}
	if _, ok := table.Lookup("rooms.double_per_night"); ok {
		t.Fatalf("out of range number must be skipped")
	}

	table.Set("rooms.extra", math.Inf(1))
	encoded, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"rooms":{"naechtigungsabgabe":2.5,"extra":0}}`
	if string(encoded) != want {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestPriceTableCloneIsIndependent(t *testing.T) {
	table := NewPriceTable()
	table.Set("rooms.single_per_night", 151)
	shared := table

	copied := table.Clone()
	copied.Set("rooms.single_per_night", 99)
	copied.Set("rooms.double_per_night", 118)

	if got := shared.Price("rooms.single_per_night"); got != 151 {
		t.Fatalf("clone must not change the original, got %f", got)
	}
	if _, ok := table.Lookup("rooms.double_per_night"); ok {
		t.Fatalf("clone must not add keys to the original")
	}
	if got := copied.Price("rooms.single_per_night"); got != 99 {
		t.Fatalf("expected 99 in clone, got %f", got)
	}
	var zero PriceTable
	if !zero.Clone().IsEmpty() {
		t.Fatalf("clone of zero table must be empty")
	}
}
