package macro

import (
	"fmt"
	"strings"
	"unicode"

	"seleniumacros/domain/entities"
)

// Tokenize splits a macro line on whitespace. Quoted runs stay in one token
// with their quotes kept, so `SET !VAR3 "Hello World"` yields three tokens.
// A quote only opens at the start of a token, right after '=', or right after
// ':' inside an ATTR or FORM filter (ATTR=TXT:"Sign up"); a backslash inside
// quotes keeps the next character literally.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0:
			current.WriteRune(r)
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case (r == '"' || r == '\'') && opensQuote(current.String()):
			current.WriteRune(r)
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in %q", entities.ErrInvalidArgument, line)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

func opensQuote(sofar string) bool {
	switch {
	case sofar == "", strings.HasSuffix(sofar, "="):
		return true
	case strings.HasSuffix(sofar, ":"):
		key, _, _ := strings.Cut(sofar, "=")
		return key == keyAttr || key == keyForm
	}
	return false
}

// splitKeyValue - splits a KEY=VALUE token on the first '='
func splitKeyValue(token string) (string, string, error) {
	key, value, ok := strings.Cut(token, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: expected KEY=VALUE, got %q", entities.ErrInvalidArgument, token)
	}
	return key, value, nil
}
