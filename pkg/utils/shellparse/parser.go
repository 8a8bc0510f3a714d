// Package shellparse provides shell-like command line splitting and
// joining, so a manifest can name its package manager with a quoted
// command prefix such as "sudo apt-get" and the generated install
// script can quote arguments safely.
//
// Splitting follows POSIX word-splitting rules, similar to Python's
// shlex.split(): single quotes are literal, double quotes allow
// backslash escapes for special characters, and a bare backslash
// escapes the next character.
package shellparse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted string is not closed
	ErrUnclosedQuote = errors.New("unclosed quote in command string")

	// ErrTrailingEscape is returned when a backslash ends the input
	ErrTrailingEscape = errors.New("trailing escape character at end of command")
)

// Split parses a command string into arguments.
func Split(input string) ([]string, error) {
	result := []string{}
	var word strings.Builder
	var inSingle, inDouble, quotedWord bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case ch == '\\' && !inSingle:
			if i+1 >= len(runes) {
				return nil, ErrTrailingEscape
			}
			i++
			next := runes[i]
			if inDouble && !strings.ContainsRune("\"\\$`", next) {
				// Inside double quotes the backslash is only special
				// before ", \, $ and `.
				word.WriteRune('\\')
			}
			word.WriteRune(next)

		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			if !inSingle {
				quotedWord = true
			}

		case ch == '"' && !inSingle:
			inDouble = !inDouble
			if !inDouble {
				quotedWord = true
			}

		case unicode.IsSpace(ch) && !inSingle && !inDouble:
			if word.Len() > 0 || quotedWord {
				result = append(result, word.String())
				word.Reset()
				quotedWord = false
			}

		default:
			word.WriteRune(ch)
		}
	}

	if inSingle {
		return nil, fmt.Errorf("%w: unclosed single quote", ErrUnclosedQuote)
	}
	if inDouble {
		return nil, fmt.Errorf("%w: unclosed double quote", ErrUnclosedQuote)
	}
	if word.Len() > 0 || quotedWord {
		result = append(result, word.String())
	}

	return result, nil
}

// Join combines arguments into a shell command string, quoting any
// argument that contains whitespace or shell-special characters.
func Join(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return "''"
	}

	if !strings.ContainsAny(arg, " \t\n'\"\\$`") {
		return arg
	}

	// Single quotes are simplest when the argument contains none.
	if !strings.Contains(arg, "'") {
		return "'" + arg + "'"
	}

	var b strings.Builder
	b.WriteRune('"')
	for _, ch := range arg {
		if strings.ContainsRune("\"\\$`", ch) {
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteRune('"')
	return b.String()
}
