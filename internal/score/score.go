// Package score folds findings into the 0-100 SEO score.
package score

import "github.com/nao1215/seoscan/internal/model"

// Maximum and minimum scores.
const (
	Max = 100
	Min = 0
)

// Compute returns clamp(0, 100, 100 - sum of penalties). The result only
// depends on how many findings of each severity there are, never on order.
func Compute(findings []model.Finding) int {
	s := Max
	for _, f := range findings {
		s -= f.Severity.Penalty()
	}
	return Clamp(s)
}

// Clamp limits s to the [Min, Max] range.
func Clamp(s int) int {
	if s < Min {
		return Min
	}
	if s > Max {
		return Max
	}
	return s
}
