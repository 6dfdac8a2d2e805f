package finance

import "gitlab.com/yelinaung/finflow/internal/models"

// Palette holds the colours cycled through for new categories of each type.
type Palette struct {
	Expense []string
	Income  []string
}

// Color returns the colour for the next category of txType given how many
// categories of that type the user already has. Empty palettes yield "".
func (p Palette) Color(txType models.TransactionType, existing int) string {
	colors := p.Expense
	if txType == models.TypeIncome {
		colors = p.Income
	}
	if len(colors) == 0 {
		return ""
	}
	return colors[max(0, existing)%len(colors)]
}
