package attribution

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

var maskedFields = []string{"campaign_id", "campaignId", "account_id", "accountId"}

func init() {
	for _, field := range maskedFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// Mask returns a log-safe rendition of an attribution identifier.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
