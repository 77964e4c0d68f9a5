package anki

import (
	"encoding/json"
	"strconv"
)

// Count is a card or note count that may be unavailable. Best-effort
// statistics queries can fail without aborting the parent operation, in
// which case the count is unknown and serializes as the string "unknown".
type Count struct {
	value int
	known bool
}

// KnownCount returns a definitive count.
func KnownCount(n int) Count {
	return Count{value: n, known: true}
}

// UnknownCount returns an unavailable count.
func UnknownCount() Count {
	return Count{}
}

// Known reports whether the count is definitive.
func (c Count) Known() bool {
	return c.known
}

// Value returns the count value. Only meaningful when Known is true.
func (c Count) Value() int {
	return c.value
}

// String returns the decimal value, or "unknown".
func (c Count) String() string {
	if !c.known {
		return "unknown"
	}
	return strconv.Itoa(c.value)
}

// MarshalJSON serializes a known count as a number and an unknown count as
// the string "unknown".
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.known {
		return json.Marshal("unknown")
	}
	return json.Marshal(c.value)
}
