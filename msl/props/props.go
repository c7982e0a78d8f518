// Package props tokenizes entity property values written as loose number lists,
// like "0, -1, 0.5" or "(1 2 3)".
package props

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_NUMBER = iota
	TOKEN_SEPARATOR
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[\+\-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][\+\-]?[0-9]+)?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`[,;]`), getToken(TOKEN_SEPARATOR))
	lexer.Add([]byte(`[\(\)\[\]]`), skip)
	lexer.Add([]byte(`\s+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// ParseNumbers returns every number of value in order. Separators are optional,
// but two separators in a row mean a missing component.
func ParseNumbers(value string) ([]float64, error) {
	scanner, err := lexer.Scanner([]byte(value))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	result := make([]float64, 0, 3)
	separated := true
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse %q", value)
		}
		tok := itok.(*lexmachine.Token)

		switch tok.Type {
		case TOKEN_NUMBER:
			f, err := strconv.ParseFloat(string(tok.Lexeme), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Unknown number format at column %v of %q", tok.StartColumn, value)
			}
			result = append(result, f)
			separated = false
		case TOKEN_SEPARATOR:
			if separated {
				return nil, errors.Errorf("Missing component at column %v of %q", tok.StartColumn, value)
			}
			separated = true
		}
	}
	return result, nil
}

// ParseNumber parses a value holding exactly one number.
func ParseNumber(value string) (float64, error) {
	nums, err := ParseNumbers(value)
	if err != nil {
		return 0, err
	}
	if len(nums) != 1 {
		return 0, errors.Errorf("Expected one number in %q, got %d", value, len(nums))
	}
	return nums[0], nil
}

// ParseVector parses a value holding exactly three numbers.
func ParseVector(value string) ([3]float64, error) {
	var v [3]float64
	nums, err := ParseNumbers(value)
	if err != nil {
		return v, err
	}
	if len(nums) != 3 {
		return v, errors.Errorf("Expected 3 components in %q, got %d", value, len(nums))
	}
	copy(v[:], nums)
	return v, nil
}

// SpaceSeparated rewrites a comma separated list ("255,200,100") the way map
// properties expect it ("255 200 100").
func SpaceSeparated(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, ",", " "))
}
