package links

import (
	"net/url"
	"strings"
)

// appendQuery appends params to u's query in order, after any existing
// parameters. Existing parameters are left untouched.
func appendQuery(u *url.URL, params Params) {
	if len(params) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, param := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQuery(param.Key))
		b.WriteByte('=')
		b.WriteString(escapeQuery(param.Value))
	}
	u.RawQuery = b.String()
	u.ForceQuery = false
}

// escapeQuery form-encodes s but keeps commas literal so joined lists such
// as addresses stay readable.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2C", ",")
}
