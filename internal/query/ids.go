// Package query holds the recipe read-path building blocks: the ID-list
// parser for filter parameters, the ownership filter, and the immutable
// recipe query spec the store renders to SQL.
package query

import (
	"fmt"
	"strconv"
	"strings"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

// ParseIDs parses a comma-separated list such as "3, 7,9" into [3 7 9].
// Tokens may carry surrounding whitespace. Order and duplicates are kept.
// Any token that is not an integer literal, including an empty one, fails
// the whole list with a validation error.
func ParseIDs(s string) ([]int64, error) {
	tokens := strings.Split(s, ",")
	ids := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, domainerrors.Validationf("invalid id %q in list %q", tok, s)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// parseParam parses a named filter parameter, attaching the parameter name
// to any validation failure.
func parseParam(name, value string) ([]int64, error) {
	ids, err := ParseIDs(value)
	if err != nil {
		return nil, domainerrors.FieldValidation(name, fmt.Sprintf("%s must be a comma-separated list of integer ids", name)).WithCause(err)
	}
	return ids, nil
}
