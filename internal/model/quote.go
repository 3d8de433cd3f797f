package model

// Breakdown splits the gross total by category. Its Total equals the
// quote's gross amount.
type Breakdown struct {
	Package    float64 `json:"package"`
	Lodging    float64 `json:"lodging"`
	Catering   float64 `json:"catering"`
	Equipment  float64 `json:"equipment"`
	Activities float64 `json:"activities"`
	Statutory  float64 `json:"statutory_tax"`
}

func (b Breakdown) Total() float64 {
	return b.Package + b.Lodging + b.Catering + b.Equipment + b.Activities + b.Statutory
}

type Quote struct {
	Kind           SeminarKind `json:"kind"`
	Headcount      int         `json:"headcount"`
	Days           int         `json:"days"`
	Nights         int         `json:"nights"`
	Gross          float64     `json:"gross"`
	Net            float64     `json:"net"`
	VATReduced     float64     `json:"vat_reduced"`
	VATStandard    float64     `json:"vat_standard"`
	StatutoryTax   float64     `json:"statutory_tax"`
	PerPerson      float64     `json:"per_person"`
	Breakdown      Breakdown   `json:"breakdown"`
	RoomSuggestion string      `json:"room_suggestion,omitempty"`
}
