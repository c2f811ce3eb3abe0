// Package render formats a persisted receipt into a fixed-width
// plain-text layout suitable for the public receipt view.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olchaban/receipts/internal/models"
)

// DefaultLineWidth is used when the caller does not supply a width.
const DefaultLineWidth = 30

// Labels holds the localized strings used by the renderer.
type Labels struct {
	Sum      string
	Cash     string
	Card     string
	Change   string
	ThankYou string
}

// English is the default label set.
var English = Labels{
	Sum:      "SUM",
	Cash:     "Cash",
	Card:     "Card",
	Change:   "Change",
	ThankYou: "Thank you for your purchase!",
}

// Ukrainian is the label set of the original deployment.
var Ukrainian = Labels{
	Sum:      "СУМА",
	Cash:     "Готівка",
	Card:     "Картка",
	Change:   "Решта",
	ThankYou: "Дякуємо за покупку!",
}

// Receipt renders rcpt as fixed-width text, lineWidth characters per
// line. Lines are joined with newlines, no trailing newline.
//
// Rendering is deterministic: the same receipt and width always
// produce byte-identical output. Widths narrower than the content are
// honored with zero padding rather than an error.
func Receipt(rcpt *models.Receipt, lineWidth int, labels Labels) string {
	lines := make([]string, 0, 9+3*len(rcpt.Items))

	lines = append(lines,
		center(rcpt.OwnerUsername, lineWidth),
		strings.Repeat("=", lineWidth),
	)

	for _, item := range rcpt.Items {
		lines = append(lines,
			fmt.Sprintf("%.2f x %.2f", float64(item.Quantity), item.Price),
			alignRight(item.Name, fmt.Sprintf("%.2f", item.Subtotal()), lineWidth),
			strings.Repeat("-", lineWidth),
		)
	}

	method := labels.Cash
	if rcpt.PaymentType == models.PaymentCashless {
		method = labels.Card
	}

	lines = append(lines,
		strings.Repeat("=", lineWidth),
		alignRight(labels.Sum, fmt.Sprintf("%.2f", rcpt.Total), lineWidth),
		alignRight(method, fmt.Sprintf("%.2f", rcpt.PaymentAmount), lineWidth),
		alignRight(labels.Change, fmt.Sprintf("%.2f", rcpt.Rest()), lineWidth),
		strings.Repeat("=", lineWidth),
		center(rcpt.CreatedAt.Format("02.01.2006 15:04"), lineWidth),
		center(labels.ThankYou, lineWidth),
	)

	return strings.Join(lines, "\n")
}

// alignRight left-justifies left and right-aligns right within width.
// The pad width is width minus the length of the right string; when
// that is not wider than the left string, no padding is inserted.
func alignRight(left, right string, width int) string {
	return ljust(left, width-utf8.RuneCountInString(right)) + right
}

func ljust(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

func center(s string, width int) string {
	margin := width - utf8.RuneCountInString(s)
	if margin <= 0 {
		return s
	}
	left := margin / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", margin-left)
}
