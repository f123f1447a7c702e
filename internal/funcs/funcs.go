package funcs

import (
	"time"

	"github.com/lunawallet/luna/internal/money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TemplateFuncs is shared by the plain-text and HTML email templates.
// Declared as a plain map so it satisfies both template packages.
var TemplateFuncs = map[string]any{
	"formatAmount": formatAmount,
	"formatTime":   formatTime,
}

var printer = message.NewPrinter(language.English)

// formatAmount renders "1250.50" cents-backed amounts as "$1,250.50"
func formatAmount(amount money.Amount) string {
	return printer.Sprintf("$%.2f", amount.Float64())
}

func formatTime(t time.Time) string {
	return t.Format("Jan 02, 2006 3:04 PM")
}
