// Package normalize centralizes every loosely-shaped backend payload rule:
// identifier probing at known nesting depths, list shape variants, numeric
// coercion, image URL resolution and display-name fallbacks. Call sites must
// not re-implement any of these inline.
package normalize

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Probe is one key path into a decoded JSON document.
type Probe []string

// Identifier probe lists, in fixed priority order. The backend nests ids at
// varying depths depending on endpoint and version.
var (
	OrderIDProbes = []Probe{
		{"id"},
		{"data", "id"},
		{"data", "data", "id"},
		{"data", "order_id"},
	}
	TransactionIDProbes = []Probe{
		{"transaction_id"},
		{"data", "transaction_id"},
		{"data", "data", "transaction_id"},
		{"data", "order_transaction_id"},
	}
	TokenProbes = []Probe{
		{"token"},
		{"access_token"},
		{"data", "token"},
		{"data", "access_token"},
		{"data", "data", "token"},
	}
)

func lookup(doc any, path Probe) (any, bool) {
	cur := doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// FirstID probes doc in order and returns the first value coercible to a
// numeric identifier.
func FirstID(doc any, probes []Probe) (int64, bool) {
	for _, p := range probes {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		if id, ok := ID(v); ok {
			return id, true
		}
	}
	return 0, false
}

// FirstString probes doc in order and returns the first non-empty string
// form.
func FirstString(doc any, probes []Probe) (string, bool) {
	for _, p := range probes {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		if s := Str(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// ID coerces a scalar to a numeric identifier.
func ID(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Str renders a scalar as a string; non-scalars yield "".
func Str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Amount coerces a price-like value to a decimal, defaulting to zero on
// anything unparseable.
func Amount(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return t
	}
	return decimal.Zero
}

// Quantity coerces a quantity-like value to a positive int, defaulting to 1.
func Quantity(v any) int {
	switch t := v.(type) {
	case float64:
		if n := int(t); n > 0 {
			return n
		}
	case int:
		if t > 0 {
			return t
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// Items unwraps the three list shape variants the backend uses: a bare
// array, an object with .products, or an object with .items.
func Items(data any) []any {
	switch t := data.(type) {
	case []any:
		return t
	case map[string]any:
		if v, ok := t["products"].([]any); ok {
			return v
		}
		if v, ok := t["items"].([]any); ok {
			return v
		}
	}
	return nil
}

// AsMap narrows a decoded value to an object.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// DisplayName resolves the first non-empty candidate. Callers pass the
// fallback chain for the entity (e.g. product name, then item name).
func DisplayName(candidates ...any) string {
	for _, c := range candidates {
		if s := Str(c); s != "" {
			return s
		}
	}
	return ""
}

// imageKeys are tried in order when an image field arrives as an object
// instead of a string.
var imageKeys = []string{"url", "path", "src", "image"}

const maxImageUnwrap = 2

func imageString(v any, depth int) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if depth >= maxImageUnwrap {
			return ""
		}
		for _, k := range imageKeys {
			if nested, ok := t[k]; ok {
				if s := imageString(nested, depth+1); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// ImageURL resolves an image reference against the API base URL. Relative
// paths are joined to the base origin with a trailing /api suffix stripped,
// since images live at the site root rather than under the API path.
// Absolute URLs pass through unchanged; unresolvable inputs yield "".
func ImageURL(v any, baseURL string) string {
	s := imageString(v, 0)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	origin := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return origin + s
}
