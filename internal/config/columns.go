package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ColumnSelector is the set of 1-based column positions to translate
type ColumnSelector map[int]struct{}

// InvalidColumnSpecError reports a column list that is not a list of
// positive integers.
type InvalidColumnSpecError struct {
	Spec  string
	Token string
}

func (e *InvalidColumnSpecError) Error() string {
	return fmt.Sprintf("invalid column list %q: %q is not a column number", e.Spec, e.Token)
}

// ParseColumns parses a comma separated list such as "2,3". Empty tokens are
// ignored; any other non-numeric or non-positive token invalidates the list.
func ParseColumns(spec string) (ColumnSelector, error) {
	sel := make(ColumnSelector)
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil || n < 1 {
			return nil, &InvalidColumnSpecError{Spec: spec, Token: token}
		}
		sel[n] = struct{}{}
	}
	return sel, nil
}

// Contains reports whether the 0-based field index is selected
func (s ColumnSelector) Contains(index int) bool {
	_, ok := s[index+1]
	return ok
}

// Positions returns the selected 1-based positions in ascending order
func (s ColumnSelector) Positions() []int {
	out := make([]int, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func (s ColumnSelector) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s.Positions() {
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, ",")
}
