package links

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// HoldersPushType is the type tag of card/account transaction pushes.
	HoldersPushType = "holders-push"
	// HoldersTransactionsPath is the in-app path holders pushes route to.
	HoldersTransactionsPath = "holders/transactions"
)

// HoldersPush is the validated shape of a holders notification payload.
type HoldersPush struct {
	AccountID string
	Addresses []string
	EventID   string
	CardID    string
}

// IsHoldersPushType reports whether a notification type tag names a holders push.
func IsHoldersPushType(value string) bool {
	return strings.Contains(strings.ToLower(value), HoldersPushType)
}

// ParseHoldersPush validates data against the holders push shape: a literal
// "holders-push" type, a string accountId, a non-empty string array of
// addresses and optional string eventId/cardId. Unknown keys are ignored.
func ParseHoldersPush(data map[string]any) (HoldersPush, error) {
	if data == nil {
		return HoldersPush{}, fmt.Errorf("%w: payload is empty", ErrInvalidPushPayload)
	}
	if typ, ok := data["type"].(string); !ok || typ != HoldersPushType {
		return HoldersPush{}, fmt.Errorf("%w: type must be %q", ErrInvalidPushPayload, HoldersPushType)
	}
	accountID, ok := data["accountId"].(string)
	if !ok {
		return HoldersPush{}, fmt.Errorf("%w: accountId must be a string", ErrInvalidPushPayload)
	}
	addresses, err := stringList(data["addresses"])
	if err != nil {
		return HoldersPush{}, fmt.Errorf("%w: addresses %v", ErrInvalidPushPayload, err)
	}
	eventID, err := optionalString(data, "eventId")
	if err != nil {
		return HoldersPush{}, err
	}
	cardID, err := optionalString(data, "cardId")
	if err != nil {
		return HoldersPush{}, err
	}
	return HoldersPush{
		AccountID: accountID,
		Addresses: addresses,
		EventID:   eventID,
		CardID:    cardID,
	}, nil
}

// URL builds the transactions link for the push under domain.
func (h HoldersPush) URL(domain *url.URL) string {
	u := *domain
	u.Path = strings.TrimRight(u.Path, "/") + "/" + HoldersTransactionsPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	params := Params{
		{Key: "accountId", Value: h.AccountID},
		{Key: "addresses", Value: strings.Join(h.Addresses, ",")},
	}
	if h.CardID != "" {
		params = append(params, Param{Key: "cardId", Value: h.CardID})
	}
	if h.EventID != "" {
		params = append(params, Param{Key: "transactionId", Value: h.EventID})
	}
	appendQuery(&u, params)
	return u.String()
}

func stringList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("are required")
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("must not be empty")
		}
		return append([]string(nil), v...), nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("must not be empty")
		}
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d is not a string", i)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be an array, got %T", value)
	}
}

func optionalString(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidPushPayload, key)
	}
	return s, nil
}
