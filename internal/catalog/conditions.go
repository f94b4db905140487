package catalog

// UsageLimitKey is the one conditions key the resolver interprets. All other
// keys are carried through to the caller untouched.
const UsageLimitKey = "usage_limit"

// Conditions is the structured key-value payload attached to a grant. The
// shape is open: unknown keys are preserved verbatim.
type Conditions map[string]any

// UsageLimit extracts the reserved usage_limit key. It reports false when the
// key is absent, not numeric, or not a positive number.
func (c Conditions) UsageLimit() (int64, bool) {
	raw, ok := c[UsageLimitKey]
	if !ok {
		return 0, false
	}
	var limit int64
	switch v := raw.(type) {
	case int64:
		limit = v
	case int:
		limit = int64(v)
	case float64:
		limit = int64(v)
	default:
		return 0, false
	}
	if limit <= 0 {
		return 0, false
	}
	return limit, true
}
