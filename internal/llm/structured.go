package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed value after JSON extraction.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object found in raw model output.
// Markdown fences, surrounding prose, comments, trailing commas and
// leading-dot numbers are tolerated. Failures wrap ErrInvalidOutput.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	block := firstObject(unfence(raw))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var result T
	if err := json.Unmarshal([]byte(repairJSON(block)), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// unfence drops markdown fence lines and keeps everything else.
func unfence(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// jsonLexer tracks whether a byte position is inside a JSON string literal.
type jsonLexer struct {
	inString bool
	escaped  bool
}

// step advances over c and reports whether c is structural (outside a string
// and not the quote that opens or closes one).
func (l *jsonLexer) step(c byte) bool {
	switch {
	case l.escaped:
		l.escaped = false
		return false
	case l.inString && c == '\\':
		l.escaped = true
		return false
	case c == '"':
		l.inString = !l.inString
		return false
	default:
		return !l.inString
	}
}

// firstObject returns the first balanced {...} block in s, or "".
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	var lx jsonLexer
	depth := 0
	for i := start; i < len(s); i++ {
		if !lx.step(s[i]) {
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON removes comments and trailing commas and rewrites ".5" as "0.5",
// touching only bytes outside string literals.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var lx jsonLexer

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !lx.step(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += 2 + end + 1
			}
			continue
		case c == ',' && closesNext(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && numberMayStart(lastNonSpace(b.String())):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesNext reports whether the next non-space byte from i closes a container.
func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func lastNonSpace(s string) byte {
	t := strings.TrimRight(s, " \n\r\t")
	if t == "" {
		return 0
	}
	return t[len(t)-1]
}

func numberMayStart(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
