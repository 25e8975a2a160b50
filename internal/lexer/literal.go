package lexer

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrIntRange = errors.New("integer literal out of range")

// ParseIntLiteral decodes an int literal lexeme. Decimal literals must fit
// int32 (2147483648 only when negated); hex and binary ones may use all 32
// bits and wrap, so 0xFFFFFFFF is -1.
func ParseIntLiteral(raw string, negated bool) (int32, error) {
	s := strings.ReplaceAll(raw, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, ErrIntRange
	}
	if base != 10 {
		if u > math.MaxUint32 {
			return 0, ErrIntRange
		}
		v := int32(uint32(u)) // #nosec G115 -- намеренный wrap
		if negated {
			v = -v
		}
		return v, nil
	}
	limit := uint64(math.MaxInt32)
	if negated {
		limit++
	}
	if u > limit {
		return 0, ErrIntRange
	}
	if negated {
		return int32(-int64(u)), nil // #nosec G115
	}
	return int32(u), nil // #nosec G115
}

// ParseDoubleLiteral decodes a double literal lexeme, d/f suffix included.
func ParseDoubleLiteral(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, "_", "")
	s = strings.TrimRight(s, "dDfF")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	return strconv.ParseFloat(s, 64)
}
