package intent

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Entities is the structured slot bag consumed by the core: every field is
// individually optional, replacing the original's dynamic dictionaries so
// the input contract stays statically checkable.
type Entities struct {
	Amount        *decimal.Decimal
	PhoneNumber   *string
	UpiID         *string
	RecipientName *string
}

// ParseEntities sorts the extractor's raw keywords into typed slots. The
// first keyword of each kind wins; later duplicates are ignored.
func ParseEntities(keywords []string) Entities {
	var entities Entities
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		switch {
		case entities.UpiID == nil && strings.Contains(kw, "@"):
			v := strings.ToLower(kw)
			entities.UpiID = &v
		case entities.PhoneNumber == nil && isPhone(kw):
			v := kw
			entities.PhoneNumber = &v
		case entities.Amount == nil && isAmount(kw):
			d, _ := decimal.NewFromString(strings.TrimPrefix(kw, "₹"))
			entities.Amount = &d
		case entities.RecipientName == nil:
			v := kw
			entities.RecipientName = &v
		}
	}
	return entities
}

func isAmount(s string) bool {
	s = strings.TrimPrefix(s, "₹")
	if s == "" {
		return false
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return false
	}
	return true
}

func isPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 10
}
