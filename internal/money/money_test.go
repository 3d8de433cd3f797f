package money

import "testing"

func TestRound(t *testing.T) {
	cases := map[float64]float64{
		672.7272727: 672.73,
		67.2727272:  67.27,
		0.005:       0.01,
		-1.555:      -1.56,
		740:         740,
	}
	for in, want := range cases {
		if got := Round(in); got != want {
			t.Errorf("Round(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatEUR(t *testing.T) {
	cases := map[float64]string{
		0:        "0,00 EUR",
		74:       "74,00 EUR",
		1234.5:   "1.234,50 EUR",
		1234567:  "1.234.567,00 EUR",
		-2345.25: "-2.345,25 EUR",
	}
	for in, want := range cases {
		if got := FormatEUR(in); got != want {
			t.Errorf("FormatEUR(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAndEqual(t *testing.T) {
	if got := Format(2.5); got != "2.50" {
		t.Fatalf("unexpected format %q", got)
	}
	if !Equal(672.7272, 672.73) {
		t.Fatalf("expected cent equality")
	}
	if Equal(10, 10.02) {
		t.Fatalf("expected amounts to differ")
	}
}
