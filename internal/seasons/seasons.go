// Package seasons parses the season list a user asks for.
package seasons

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalid reports season text that is neither "0" nor a comma-separated
// list of positive integers.
var ErrInvalid = errors.New("seasons: invalid season list")

// Selection is either every season of a series or an explicit list.
// Numbers keeps the order and duplicates the user typed.
type Selection struct {
	All     bool
	Numbers []int
}

// Parse reads sanitized season text. A lone "0" selects every season;
// anything else must be comma-separated positive integers. One bad segment
// rejects the whole input.
func Parse(text string) (Selection, error) {
	text = strings.TrimSpace(text)
	if text == "0" {
		return Selection{All: true}, nil
	}
	if text == "" {
		return Selection{}, ErrInvalid
	}

	parts := strings.Split(text, ",")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return Selection{}, ErrInvalid
		}
		numbers = append(numbers, n)
	}
	return Selection{Numbers: numbers}, nil
}

// Resolve turns the selection into concrete season numbers. For All it
// expands to 1..count; a count of zero or less yields an empty list.
func (s Selection) Resolve(count int) []int {
	if !s.All {
		return append([]int{}, s.Numbers...)
	}
	out := make([]int, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		out = append(out, i)
	}
	return out
}
