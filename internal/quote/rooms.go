package quote

// SuggestRoom names the seminar room included for a group size.
func SuggestRoom(headcount int) string {
	switch {
	case headcount <= 0:
		return ""
	case headcount <= 10:
		return "40m² Raum (inkludiert)"
	case headcount <= 16:
		return "80m² Raum (inkludiert)"
	default:
		return "Anfrage erforderlich (mehr als 16 Personen)"
	}
}
