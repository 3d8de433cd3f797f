package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pricing"
)

type PriceResolver interface {
	Resolve(ctx context.Context) pricing.Resolution
	Refresh(ctx context.Context) pricing.Resolution
}

type ExcelGenerator interface {
	QuoteWorkbook(q model.Quote, sel model.Selection) ([]byte, error)
	PriceTableWorkbook(table model.PriceTable, origin string, resolvedAt time.Time) ([]byte, error)
}

type FileResult struct {
	FileName string
	Content  []byte
}

type PriceService struct {
	resolver PriceResolver
	excel    ExcelGenerator
}

func NewPriceService(resolver PriceResolver, excel ExcelGenerator) *PriceService {
	return &PriceService{resolver: resolver, excel: excel}
}

func (s *PriceService) Current(ctx context.Context) pricing.Resolution {
	return s.resolver.Resolve(ctx)
}

// Refresh reloads prices from the sources. Only operators may trigger it.
func (s *PriceService) Refresh(ctx context.Context, principal model.Principal) (pricing.Resolution, error) {
	if !principal.CanManagePrices() {
		return pricing.Resolution{}, ErrPermissionDenied
	}
	return s.resolver.Refresh(ctx), nil
}

func (s *PriceService) Export(ctx context.Context) (*FileResult, error) {
	res := s.resolver.Resolve(ctx)
	content, err := s.excel.PriceTableWorkbook(res.Table, string(res.Origin), res.ResolvedAt)
	if err != nil {
		return nil, fmt.Errorf("price workbook: %w", err)
	}
	return &FileResult{
		FileName: fmt.Sprintf("preise_%s.xlsx", res.ResolvedAt.Format("20060102")),
		Content:  content,
	}, nil
}
