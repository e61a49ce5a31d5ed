package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

const (
	titleKey   = "Payment reminder"
	messageKey = "%[1]s: %[2]s due on %[3]s"
)

func init() {
	message.SetString(language.Turkish, titleKey, "Ödeme hatırlatması")
	message.SetString(language.Turkish, messageKey, "%[1]s: %[2]s tutarındaki ödemenin vadesi %[3]s")
}

var dateLayouts = map[language.Base]string{
	language.MustParseBase("tr"): "02.01.2006",
	language.MustParseBase("de"): "02.01.2006",
	language.MustParseBase("en"): "01/02/2006",
}

// Renderer builds the human-readable text of a reminder notification.
type Renderer struct {
	printer    *message.Printer
	dateLayout string
}

func NewRenderer(locale string) (*Renderer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}

	layout := "2006-01-02"

	base, _ := tag.Base()
	if l, ok := dateLayouts[base]; ok {
		layout = l
	}

	return &Renderer{printer: message.NewPrinter(tag), dateLayout: layout}, nil
}

// Amount formats minor units with the locale's separators, followed by the
// currency code.
func (r *Renderer) Amount(minor int64, code string) string {
	value := decimal.New(minor, -2)

	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}

	return r.printer.Sprint(number.Decimal(value.InexactFloat64(), number.Scale(2))) + " " + code
}

func (r *Renderer) Title() string {
	return r.printer.Sprintf(titleKey)
}

func (r *Renderer) Message(rem *reminder.Reminder) string {
	return r.printer.Sprintf(messageKey,
		rem.Description,
		r.Amount(rem.Amount, rem.Currency),
		rem.DueDate.Format(r.dateLayout),
	)
}
