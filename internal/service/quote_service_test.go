package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nurpe/seminar-quote/internal/excel"
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pricing"
)

func TestQuoteRoundsAndFlagsDefaults(t *testing.T) {
	svc := NewQuoteService(resolverWith(pricing.OriginDefaults), excel.NewGenerator())

	result, err := svc.Quote(context.Background(), model.Selection{Kind: "single-day", Headcount: 10})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !result.Defaults || result.Origin != pricing.OriginDefaults {
		t.Fatalf("expected defaults flag, got %+v", result)
	}
	if result.Quote.Net != 672.73 || result.Quote.VATReduced != 67.27 {
		t.Fatalf("expected rounded amounts, got net=%v vat=%v", result.Quote.Net, result.Quote.VATReduced)
	}
}

func TestQuoteRejectsUnknownKind(t *testing.T) {
	svc := NewQuoteService(resolverWith(pricing.OriginRemote), excel.NewGenerator())
	if _, err := svc.Quote(context.Background(), model.Selection{Kind: "", Headcount: 3}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestQuoteExport(t *testing.T) {
	svc := NewQuoteService(resolverWith(pricing.OriginRemote), excel.NewGenerator())
	file, err := svc.Export(context.Background(), model.Selection{Kind: "mehrtag", Headcount: 4})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if file.FileName != "angebot.xlsx" || !bytes.HasPrefix(file.Content, []byte("PK")) {
		t.Fatalf("expected xlsx archive, got %s", file.FileName)
	}
}

func TestPriceRefreshRequiresOperator(t *testing.T) {
	resolver := resolverWith(pricing.OriginRemote)
	svc := NewPriceService(resolver, excel.NewGenerator())

	if _, err := svc.Refresh(context.Background(), model.Principal{UserID: "x"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), operator); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resolver.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", resolver.refreshes)
	}
}

func TestPriceExport(t *testing.T) {
	svc := NewPriceService(resolverWith(pricing.OriginLocal), excel.NewGenerator())
	file, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(file.Content, []byte("PK")) {
		t.Fatalf("expected xlsx content")
	}
}
