package service

// Page limits
const (
	DefaultProductLimit = 100
	MaxProductLimit     = 100
	DefaultOrderLimit   = 10
	MaxOrderLimit       = 100
)

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
