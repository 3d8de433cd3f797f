// Package quote derives seminar prices from a selection and a price table.
// Compute is pure: no I/O and no state, safe to call on every form change.
package quote

import (
	"math"
	"strings"
	"time"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pricing"
)

const (
	// ReducedVATRate applies to lodging, catering and the single-day package.
	ReducedVATRate = 0.10
	// StandardVATRate applies to equipment and activities.
	StandardVATRate = 0.20
)

// Prices is the lookup the calculator needs; model.PriceTable satisfies it.
type Prices interface {
	Price(path string) float64
}

// Compute prices sel against prices. Stored prices are gross; the per-night
// occupancy tax carries no VAT and enters gross and net unchanged.
func Compute(sel model.Selection, prices Prices) model.Quote {
	headcount := sel.Headcount.Int()

	var breakdown model.Breakdown
	var days, nights int

	if sel.IsSingleDay() {
		days = 1
		breakdown.Package = price(prices, pricing.KeyPackageBase) * float64(headcount)
		breakdown.Equipment = equipmentLines(sel.Equipment, prices, days)
	} else {
		days = Days(sel.StartDate, sel.EndDate)
		nights = Nights(days)

		singles := sel.SingleRooms.Int()
		doubles := sel.DoubleRooms.Int()

		breakdown.Catering = cateringPerPerson(sel.Catering, prices) * float64(headcount)
		breakdown.Lodging = float64(singles)*price(prices, pricing.KeySingleRoom)*float64(nights) +
			float64(doubles)*price(prices, pricing.KeyDoubleRoom)*2*float64(nights)
		breakdown.Statutory = price(prices, pricing.KeyOccupancyTax) * float64(singles+doubles*2) * float64(nights)

		equipment := equipmentLines(sel.Equipment, prices, days)
		if sel.RoomGuarantee {
			equipment += price(prices, pricing.KeyRoomGuarantee)
		}
		if sel.BreakoutRoom {
			equipment += price(prices, pricing.KeyBreakoutRoom) * float64(days)
		}
		breakdown.Equipment = equipment
		breakdown.Activities = activities(sel.Activities, prices, headcount)
	}

	reduced := breakdown.Package + breakdown.Catering + breakdown.Lodging
	standard := breakdown.Equipment + breakdown.Activities

	reducedNet := reduced / (1 + ReducedVATRate)
	standardNet := standard / (1 + StandardVATRate)

	result := model.Quote{
		Kind:           kindOf(sel),
		Headcount:      headcount,
		Days:           days,
		Nights:         nights,
		Gross:          reduced + standard + breakdown.Statutory,
		Net:            reducedNet + standardNet + breakdown.Statutory,
		VATReduced:     reduced - reducedNet,
		VATStandard:    standard - standardNet,
		StatutoryTax:   breakdown.Statutory,
		Breakdown:      breakdown,
		RoomSuggestion: SuggestRoom(headcount),
	}
	if headcount > 0 {
		result.PerPerson = result.Gross / float64(headcount)
	}
	return result
}

const millisPerDay = 86400000

// Days counts the seminar days between two ISO dates, both inclusive. A
// missing or unparsable date, or an end before the start, yields 1.
func Days(start, end string) int {
	startDate, ok := parseDate(start)
	if !ok {
		return 1
	}
	endDate, ok := parseDate(end)
	if !ok {
		return 1
	}
	if endDate.Before(startDate) {
		return 1
	}
	diff := endDate.UnixMilli() - startDate.UnixMilli()
	days := int(math.Floor(float64(diff)/millisPerDay)) + 1
	if days < 1 {
		return 1
	}
	return days
}

func Nights(days int) int {
	if days <= 1 {
		return 0
	}
	return days - 1
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func cateringPerPerson(c model.Catering, prices Prices) float64 {
	total := price(prices, c.MorningBreak) + price(prices, c.AfternoonBreak)
	for _, key := range c.Lunch {
		total += price(prices, key)
	}
	return total + price(prices, c.Dinner)
}

func equipmentLines(lines []model.EquipmentLine, prices Prices, days int) float64 {
	total := 0.0
	for _, line := range lines {
		total += float64(line.Quantity.Int()) * price(prices, line.Key) * float64(days)
	}
	return total
}

func activities(items []model.Activity, prices Prices, headcount int) float64 {
	total := 0.0
	for _, item := range items {
		value := price(prices, item.Key)
		if item.Flat {
			total += value
			continue
		}
		total += value * float64(headcount)
	}
	return total
}

// price treats an unselected (empty) key and a missing price alike.
func price(prices Prices, key string) float64 {
	key = strings.TrimSpace(key)
	if key == "" || prices == nil {
		return 0
	}
	value := prices.Price(key)
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func kindOf(sel model.Selection) model.SeminarKind {
	if sel.IsSingleDay() {
		return model.SeminarKindSingleDay
	}
	return model.SeminarKindMultiDay
}
