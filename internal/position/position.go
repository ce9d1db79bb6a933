// Package position implements the fractional-indexing scheme that orders
// world-clock entries. Sort keys are strings over a fixed 62-symbol
// alphabet, compared lexicographically. Midpoint computes a key strictly
// between two existing keys, so any device can insert or reorder an entry
// without renumbering its neighbours and without coordinating with other
// devices first.
package position

import (
	"fmt"
	"strings"
)

// Alphabet is the ordered set of valid position symbols: digits, then
// uppercase, then lowercase (ASCII order).
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// MinSymbol sorts before every other symbol. A generated key never ends
	// with it: that would close the interval to its left for good.
	MinSymbol = byte('0')
	// MaxSymbol sorts after every other symbol.
	MaxSymbol = byte('z')
	// MidSymbol splits the alphabet in half. It is the key handed out for
	// the first entry of an empty list.
	MidSymbol = byte('U')
)

// Initial is the position assigned to the first entry of an empty list.
const Initial = string(MidSymbol)

// ErrNoInterval is returned when no key can exist strictly between the
// given bounds.
type ErrNoInterval struct {
	Lower, Upper string
}

func (e *ErrNoInterval) Error() string {
	return fmt.Sprintf("position: no open interval between %q and %q", e.Lower, e.Upper)
}

// Midpoint returns a sort key strictly between lower and upper.
//
// An empty lower bound means "before everything". An empty upper bound
// means "after lower", i.e. there is no entry to the right. Both bounds
// empty is an error, as is a pair that collapses to the all-minimum key
// (nothing can sort below "0", "00", ...).
//
// The computation walks both keys digit by digit. A missing digit counts
// as the alphabet minimum on the lower side and as the alphabet maximum on
// the upper side (one past the maximum when the upper bound is absent
// entirely). At the first digit with room, the arithmetic mean of the two
// alphabet indices is taken; when the mean collapses onto the lower digit
// the shared digit is kept and precision is borrowed from the next
// position, the way long division carries remainders.
func Midpoint(lower, upper string) (string, error) {
	if lower == "" && upper == "" {
		return "", &ErrNoInterval{Lower: lower, Upper: upper}
	}
	if upper != "" && allMin(lower) && allMin(upper) {
		return "", &ErrNoInterval{Lower: lower, Upper: upper}
	}
	// upper == lower plus trailing minimum symbols leaves no room either:
	// nothing sorts strictly between "5" and "50".
	if len(upper) > len(lower) && strings.TrimRight(upper, string(MinSymbol)) == lower {
		return "", &ErrNoInterval{Lower: lower, Upper: upper}
	}

	var out strings.Builder
	for i := 0; ; i++ {
		lo := 0
		if i < len(lower) {
			lo = strings.IndexByte(Alphabet, lower[i])
			if lo < 0 {
				return "", fmt.Errorf("position: symbol %q outside alphabet", lower[i])
			}
		}
		hi := len(Alphabet) // upper bound absent: open to the right
		if upper != "" {
			hi = len(Alphabet) - 1
			if i < len(upper) {
				hi = strings.IndexByte(Alphabet, upper[i])
				if hi < 0 {
					return "", fmt.Errorf("position: symbol %q outside alphabet", upper[i])
				}
			}
		}

		mid := (lo + hi) / 2
		out.WriteByte(Alphabet[mid])
		if mid > lo {
			return out.String(), nil
		}
		// No room at this digit: keep it and refine one position deeper.
	}
}

// allMin reports whether s provides no room below it: every symbol is the
// alphabet minimum. The empty string qualifies.
func allMin(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != MinSymbol {
			return false
		}
	}
	return true
}
