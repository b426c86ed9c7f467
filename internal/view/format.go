package view

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"budgetboard/internal/core"
)

// Formatter renders money, percentages and dates for one locale.
type Formatter struct {
	printer     *message.Printer
	symbol      string
	symbolAfter bool
	dateLayout  string
}

// suffixSymbolLanguages write the currency symbol after the amount, separated by a space.
var suffixSymbolLanguages = map[string]bool{
	"cs": true, "da": true, "de": true, "es": true, "fi": true, "fr": true,
	"hu": true, "it": true, "nb": true, "pl": true, "pt": true, "ru": true,
	"sk": true, "sv": true, "uk": true,
}

// NewFormatter builds a formatter for a BCP 47 locale such as "en-US".
func NewFormatter(locale, currencySymbol string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	symbolAfter := suffixSymbolLanguages[base.String()]
	if base.String() == "pt" && region.String() == "BR" {
		symbolAfter = false
	}
	return &Formatter{
		printer:     message.NewPrinter(tag),
		symbol:      currencySymbol,
		symbolAfter: symbolAfter,
		dateLayout:  dateLayoutFor(tag),
	}, nil
}

// DefaultFormatter is en-US with a dollar sign.
func DefaultFormatter() *Formatter {
	f, _ := NewFormatter("en-US", "$")
	return f
}

func dateLayoutFor(tag language.Tag) string {
	if region, _ := tag.Region(); region.String() == "US" {
		return "1/2/2006"
	}
	if base, _ := tag.Base(); base.String() == "de" {
		return "02.01.2006"
	}
	return "02/01/2006"
}

// Currency renders m with grouping and two decimals; negatives render as -$5.00, or as
// -5,00 € where the locale puts the symbol last.
func (f *Formatter) Currency(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	amount := f.printer.Sprint(number.Decimal(float64(cents)/100,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if f.symbolAfter {
		return sign + amount + " " + f.symbol
	}
	return sign + f.symbol + amount
}

// Percent renders p with one decimal followed by a percent sign.
func (f *Formatter) Percent(p float64) string {
	return f.printer.Sprint(number.Decimal(p,
		number.MinFractionDigits(1), number.MaxFractionDigits(1))) + "%"
}

// Date renders d in the locale's short date layout.
func (f *Formatter) Date(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(f.dateLayout)
}
