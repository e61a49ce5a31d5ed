package importer

// Profile describes the header names of a reminder CSV layout.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name          string
	DueDateCol    string
	AmountCol     string
	DescCol       string
	TypeCol       string // optional, defaults to "other"
	DaysBeforeCol string // optional, defaults to the reminder default
	CurrencyCol   string // optional, defaults to TRY
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.DueDateCol, p.AmountCol, p.DescCol}
}

// profiles is the ordered list of layouts tried during auto-detection.
// Header names are compared case-insensitively.
var profiles = []Profile{
	{
		Name:          "standard",
		DueDateCol:    "due_date",
		AmountCol:     "amount",
		DescCol:       "description",
		TypeCol:       "type",
		DaysBeforeCol: "days_before",
		CurrencyCol:   "currency",
	},
	{
		Name:          "turkish",
		DueDateCol:    "vade tarihi",
		AmountCol:     "tutar",
		DescCol:       "açıklama",
		TypeCol:       "tür",
		DaysBeforeCol: "hatırlatma günü",
		CurrencyCol:   "para birimi",
	},
}
