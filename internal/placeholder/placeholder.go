// SPDX-License-Identifier: Apache-2.0

// Package placeholder rewrites named SQL placeholders (`${name}` or
// `:name`) into PostgreSQL's positional `$1`, `$2`, ... form before a
// statement reaches the parser, mirroring original_source's preprocess.rs.
// Statements that already use only positional placeholders pass through
// unchanged.
package placeholder

import (
	"fmt"
	"strings"
)

// Result is the outcome of preprocessing one statement.
type Result struct {
	// SQL is the statement with every named placeholder rewritten to its
	// assigned `$n`.
	SQL string
	// Names holds the name bound to each parameter, in order of first
	// appearance: Names[i-1] is the name of `$i`. Empty when the input used only
	// positional placeholders.
	Names []string
}

// Error reports why a statement's placeholders could not be preprocessed.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Preprocess rewrites named placeholders to positional ones. Mixing named
// and positional placeholders in one statement is rejected, matching the
// original implementation: a statement commits to exactly one placeholder
// style.
func Preprocess(sql string) (Result, error) {
	var out strings.Builder
	out.Grow(len(sql))

	sawNamed := false
	sawNumbered := false
	nameIndex := map[string]int{}
	var names []string

	runes := []rune(sql)
	n := len(runes)
	i := 0

	for i < n {
		c := runes[i]

		switch {
		case c == '\'':
			// Single-quoted string literal, '' is an escaped quote.
			out.WriteRune(c)
			i++
			for i < n {
				out.WriteRune(runes[i])
				if runes[i] == '\'' {
					if i+1 < n && runes[i+1] == '\'' {
						i++
						out.WriteRune(runes[i])
						i++
						continue
					}
					i++
					break
				}
				i++
			}
			continue

		case c == '"':
			// Quoted identifier, "" is an escaped quote.
			out.WriteRune(c)
			i++
			for i < n {
				out.WriteRune(runes[i])
				if runes[i] == '"' {
					if i+1 < n && runes[i+1] == '"' {
						i++
						out.WriteRune(runes[i])
						i++
						continue
					}
					i++
					break
				}
				i++
			}
			continue

		case c == '-' && i+1 < n && runes[i+1] == '-':
			for i < n && runes[i] != '\n' {
				out.WriteRune(runes[i])
				i++
			}
			continue

		case c == '/' && i+1 < n && runes[i+1] == '*':
			out.WriteRune(runes[i])
			out.WriteRune(runes[i+1])
			i += 2
			for i < n {
				if runes[i] == '*' && i+1 < n && runes[i+1] == '/' {
					out.WriteRune(runes[i])
					out.WriteRune(runes[i+1])
					i += 2
					break
				}
				out.WriteRune(runes[i])
				i++
			}
			continue

		case c == '$' && i+1 < n && isDollarQuoteStart(runes, i):
			tag, end := scanDollarQuote(runes, i)
			out.WriteString(string(runes[i:end]))
			_ = tag
			i = end
			continue

		case c == '$' && i+1 < n && isDigit(runes[i+1]):
			sawNumbered = true
			start := i
			i++
			for i < n && isDigit(runes[i]) {
				i++
			}
			out.WriteString(string(runes[start:i]))
			continue

		case c == '$' && i+1 < n && runes[i+1] == '{':
			start := i + 2
			end := start
			for end < n && runes[end] != '}' {
				end++
			}
			if end >= n {
				return Result{}, &Error{Reason: "unterminated ${...} placeholder"}
			}
			name := string(runes[start:end])
			sawNamed = true
			idx := assignIndex(name, nameIndex, &names)
			out.WriteString(fmt.Sprintf("$%d", idx))
			i = end + 1
			continue

		case c == ':' && i+1 < n && runes[i+1] == ':':
			// Type-cast operator, not a named placeholder.
			out.WriteString("::")
			i += 2
			continue

		case c == ':' && i+1 < n && isIdentStart(runes[i+1]):
			start := i + 1
			end := start
			for end < n && isIdentPart(runes[end]) {
				end++
			}
			name := string(runes[start:end])
			sawNamed = true
			idx := assignIndex(name, nameIndex, &names)
			out.WriteString(fmt.Sprintf("$%d", idx))
			i = end
			continue

		default:
			out.WriteRune(c)
			i++
		}
	}

	if sawNamed && sawNumbered {
		return Result{}, &Error{Reason: "statement mixes named and positional placeholders"}
	}

	return Result{SQL: out.String(), Names: names}, nil
}

func assignIndex(name string, seen map[string]int, names *[]string) int {
	if idx, ok := seen[name]; ok {
		return idx
	}
	idx := len(*names) + 1
	seen[name] = idx
	*names = append(*names, name)
	return idx
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

// isDollarQuoteStart reports whether runes[i:] begins a dollar-quoted
// string ($$...$$ or $tag$...$tag$) rather than a numbered placeholder.
// Dollar-quote tags, when present, are identifier characters; a bare `$$`
// is the empty-tag form.
func isDollarQuoteStart(runes []rune, i int) bool {
	j := i + 1
	for j < len(runes) && isIdentPart(runes[j]) {
		j++
	}
	return j < len(runes) && runes[j] == '$'
}

// scanDollarQuote returns the index just past the closing tag of the
// dollar-quoted string starting at i, scanning past its body verbatim.
func scanDollarQuote(runes []rune, i int) (tag string, end int) {
	j := i + 1
	for j < len(runes) && isIdentPart(runes[j]) {
		j++
	}
	tag = string(runes[i : j+1]) // includes both delimiting "$"s, e.g. "$$" or "$foo$"
	bodyStart := j + 1
	closer := tag
	k := bodyStart
	for k < len(runes) {
		if k+len(closer) <= len(runes) && string(runes[k:k+len(closer)]) == closer {
			return tag, k + len(closer)
		}
		k++
	}
	return tag, len(runes)
}
