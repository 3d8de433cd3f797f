package service

import (
	"context"
	"fmt"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pricing"
	"github.com/nurpe/seminar-quote/internal/quote"
)

type QuoteResult struct {
	Quote    model.Quote
	Origin   pricing.Origin
	Defaults bool
}

type QuoteService struct {
	resolver PriceResolver
	excel    ExcelGenerator
}

func NewQuoteService(resolver PriceResolver, excel ExcelGenerator) *QuoteService {
	return &QuoteService{resolver: resolver, excel: excel}
}

// Quote prices sel against the current table. Amounts are rounded to cents.
func (s *QuoteService) Quote(ctx context.Context, sel model.Selection) (*QuoteResult, error) {
	sel, err := normalizeSelection(sel)
	if err != nil {
		return nil, err
	}
	res := s.resolver.Resolve(ctx)
	return &QuoteResult{
		Quote:    quote.Round(quote.Compute(sel, res.Table)),
		Origin:   res.Origin,
		Defaults: res.IsDefault(),
	}, nil
}

func (s *QuoteService) Export(ctx context.Context, sel model.Selection) (*FileResult, error) {
	result, err := s.Quote(ctx, sel)
	if err != nil {
		return nil, err
	}
	sel, _ = normalizeSelection(sel)
	content, err := s.excel.QuoteWorkbook(result.Quote, sel)
	if err != nil {
		return nil, fmt.Errorf("quote workbook: %w", err)
	}
	return &FileResult{FileName: "angebot.xlsx", Content: content}, nil
}

func normalizeSelection(sel model.Selection) (model.Selection, error) {
	kind, ok := model.ParseSeminarKind(string(sel.Kind))
	if !ok {
		return sel, fmt.Errorf("%w: unknown seminar kind %q", ErrInvalidInput, sel.Kind)
	}
	sel.Kind = kind
	return sel, nil
}
