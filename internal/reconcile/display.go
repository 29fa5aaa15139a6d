package reconcile

import (
	"strings"

	"github.com/cristhianchimbo50/sri-extractor/internal/models"
)

// Labels rendered for retention sequences below models.RetentionFloor. The
// listing and the retention detail flag the same condition differently.
const (
	ListingRetentionLabel = models.NotValidated
	DetailRetentionLabel  = models.LargeTaxpayer
)

// RetentionDisplay classifies a retention sequence for display:
//
//   - blank gives models.NoRecord
//   - the models.LargeTaxpayer sentinel (any case) is returned unchanged
//   - an all-digit value whose 9-digit left-padded form sorts before
//     models.RetentionFloor gives belowFloor
//   - anything else is returned unchanged
func RetentionDisplay(seq, belowFloor string) string {
	cleaned := strings.TrimSpace(seq)
	if cleaned == "" {
		return models.NoRecord
	}
	if strings.EqualFold(cleaned, models.LargeTaxpayer) {
		return seq
	}
	if isDigits(cleaned) && padLeft(cleaned, models.RetentionPadding, '0') < models.RetentionFloor {
		return belowFloor
	}
	return seq
}

// TransactionDisplay renders an accounting transaction number, models.NoRecord
// when blank.
func TransactionDisplay(number string) string {
	if strings.TrimSpace(number) == "" {
		return models.NoRecord
	}
	return number
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}
