package macro

import (
	"testing"

	"seleniumacros/domain/entities"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func newTestResolver(t *testing.T) (*Resolver, *VariableStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	vars := NewVariableStore(logger)
	return NewResolver(vars), vars
}

func TestResolveUserVariable(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetUserVariables(map[string]string{
		"USER":  "john.doe",
		"SPACE": "a<SP>b",
		"NUM":   "42",
	})

	assert.Equal(t, entities.NewText("john.doe"), r.Resolve("{{USER}}"))
	assert.Equal(t, entities.NewText("a b"), r.Resolve("{{SPACE}}"))

	num := r.Resolve("{{NUM}}")
	assert.True(t, num.IsInteger())
	assert.Equal(t, 42, num.Int)
}

func TestResolveBuiltinVariable(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetBuiltinVariables(map[string]string{"!VAR1": "120", "!VAR2": "Hello<BR>World"})

	v := r.Resolve("{{!VAR1}}")
	assert.True(t, v.IsInteger())
	assert.Equal(t, 120, v.Int)

	assert.Equal(t, entities.NewText("Hello\nWorld"), r.Resolve("{{!VAR2}}"))
	assert.Equal(t, 60, r.Resolve("{{!TIMEOUT}}").Int)
}

func TestResolveUnknownVariableIsEmpty(t *testing.T) {
	r, _ := newTestResolver(t)

	assert.Equal(t, entities.NewText(""), r.Resolve("{{MISSING}}"))
	assert.Equal(t, entities.NewText(""), r.Resolve("{{!VAR3}}"))
}

func TestResolveLiterals(t *testing.T) {
	r, _ := newTestResolver(t)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "single quotes", token: "'Hello World'", want: "Hello World"},
		{name: "double quotes", token: `"Hello World"`, want: "Hello World"},
		{name: "mismatched quotes stay", token: `'Hello"`, want: `'Hello"`},
		{name: "lone quote", token: `"`, want: `"`},
		{name: "space marker", token: "Hello<SP>World", want: "Hello World"},
		{name: "line break marker", token: "one<BR>two", want: "one\ntwo"},
		{name: "quoted markers expand", token: `"a<SP>b"`, want: "a b"},
		{name: "percent is kept", token: "100%25", want: "100%25"},
		{name: "bare percent is not doubled", token: "100%", want: "100%"},
		{name: "verbatim", token: "http://example.test/?q=1", want: "http://example.test/?q=1"},
		{name: "lower-case braces are not variables", token: "{{user}}", want: "{{user}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := r.Resolve(tt.token)
			assert.False(t, v.IsInteger())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestResolveIntegers(t *testing.T) {
	r, _ := newTestResolver(t)

	v := r.Resolve("300")
	assert.True(t, v.IsInteger())
	assert.Equal(t, 300, v.Int)

	quoted := r.Resolve(`"7"`)
	assert.True(t, quoted.IsInteger())
	assert.Equal(t, 7, quoted.Int)

	// digits keep their literal form when sent to the page
	zeros := r.Resolve("007")
	assert.True(t, zeros.IsInteger())
	assert.Equal(t, 7, zeros.Int)
	assert.Equal(t, "007", zeros.String())

	assert.False(t, r.Resolve("-5").IsInteger())
	assert.False(t, r.Resolve("12abc").IsInteger())
}

func TestResolveDoesNotRecurse(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetUserVariables(map[string]string{
		"OUTER": "{{INNER}}",
		"INNER": "secret",
	})

	assert.Equal(t, "{{INNER}}", r.Resolve("{{OUTER}}").String())
}

func TestResolvedPercentSurvivesVariables(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetUserVariables(map[string]string{"RATE": "50%<SP>off"})

	assert.Equal(t, "50% off", r.Resolve("{{RATE}}").String())
	assert.Equal(t, "50%", ExpandEscapes("50%"))
}

func TestSubstituteSkipsEscapes(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetUserVariables(map[string]string{"HOST": "example.test"})

	assert.Equal(t, "example.test", r.Substitute("{{HOST}}"))
	assert.Equal(t, "a<SP>b", r.Substitute("'a<SP>b'"))
	assert.Equal(t, "http://x/%20y", r.Substitute("http://x/%20y"))
}
