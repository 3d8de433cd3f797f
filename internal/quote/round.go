package quote

import (
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/money"
)

// Round returns q with every amount rounded to cents, for output only.
func Round(q model.Quote) model.Quote {
	q.Gross = money.Round(q.Gross)
	q.Net = money.Round(q.Net)
	q.VATReduced = money.Round(q.VATReduced)
	q.VATStandard = money.Round(q.VATStandard)
	q.StatutoryTax = money.Round(q.StatutoryTax)
	q.PerPerson = money.Round(q.PerPerson)
	q.Breakdown = model.Breakdown{
		Package:    money.Round(q.Breakdown.Package),
		Lodging:    money.Round(q.Breakdown.Lodging),
		Catering:   money.Round(q.Breakdown.Catering),
		Equipment:  money.Round(q.Breakdown.Equipment),
		Activities: money.Round(q.Breakdown.Activities),
		Statutory:  money.Round(q.Breakdown.Statutory),
	}
	return q
}
