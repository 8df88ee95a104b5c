package macro

import (
	"regexp"
	"strconv"
	"strings"

	"seleniumacros/domain/entities"
)

var (
	userReference    = regexp.MustCompile(`^\{\{([0-9A-Z_]+)\}\}$`)
	builtinReference = regexp.MustCompile(`^\{\{(![0-9A-Z_]+)\}\}$`)
	allDigits        = regexp.MustCompile(`^[0-9]+$`)
)

var escapes = strings.NewReplacer(
	"<SP>", " ",
	"<BR>", "\n",
)

// Resolver turns raw macro tokens into values. Unknown variables resolve to "".
type Resolver struct {
	vars *VariableStore
}

// NewResolver - creates a resolver reading from the given store
func NewResolver(vars *VariableStore) *Resolver {
	return &Resolver{vars: vars}
}

// Resolve - substitutes the token and converts it into a typed value
func (r *Resolver) Resolve(token string) entities.Value {
	s := r.Substitute(token)
	if allDigits.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return entities.ParseInteger(n, s)
		}
	}
	return entities.NewText(ExpandEscapes(s))
}

// Substitute - applies variable lookup and quote stripping without escape expansion.
// The substituted value is never expanded again.
func (r *Resolver) Substitute(token string) string {
	if m := userReference.FindStringSubmatch(token); m != nil {
		v, _ := r.vars.User(m[1])
		return v
	}
	if m := builtinReference.FindStringSubmatch(token); m != nil {
		v, _ := r.vars.Builtin(m[1])
		return v
	}
	if unquoted, ok := unquote(token); ok {
		return unquoted
	}
	return token
}

// ExpandEscapes - expands the <SP> and <BR> markers.
// A literal % is kept as is: values are logged as arguments, never as a format string.
func ExpandEscapes(s string) string {
	return escapes.Replace(s)
}

func unquote(token string) (string, bool) {
	if len(token) < 2 {
		return "", false
	}
	first, last := token[0], token[len(token)-1]
	if (first == '\'' || first == '"') && first == last {
		return token[1 : len(token)-1], true
	}
	return "", false
}
