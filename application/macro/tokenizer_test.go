package macro

import (
	"testing"

	"seleniumacros/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "URL GOTO=http://example.test/", want: []string{"URL", "GOTO=http://example.test/"}},
		{line: "  SIZE   X=300\tY=600  ", want: []string{"SIZE", "X=300", "Y=600"}},
		{line: `SET !VAR3 "Hello World"`, want: []string{"SET", "!VAR3", `"Hello World"`}},
		{line: `SET !VAR3 'Hello World'`, want: []string{"SET", "!VAR3", `'Hello World'`}},
		{line: `TAG POS=1 TYPE=INPUT:TEXT ATTR=NAME:q CONTENT="two words"`, want: []string{"TAG", "POS=1", "TYPE=INPUT:TEXT", "ATTR=NAME:q", `CONTENT="two words"`}},
		{line: `TAG POS=1 TYPE=A ATTR=TXT:it's`, want: []string{"TAG", "POS=1", "TYPE=A", "ATTR=TXT:it's"}},
		{line: `SET !VAR1 "say \"hi\" now"`, want: []string{"SET", "!VAR1", `"say \"hi\" now"`}},
		{line: `TAG POS=1 TYPE=A ATTR=TXT:"Sign up"`, want: []string{"TAG", "POS=1", "TYPE=A", `ATTR=TXT:"Sign up"`}},
		{line: `TAG POS=1 TYPE=INPUT:TEXT FORM=NAME:'login form' ATTR=NAME:"a b"&&CLASS:'x y'`, want: []string{"TAG", "POS=1", "TYPE=INPUT:TEXT", `FORM=NAME:'login form'`, `ATTR=NAME:"a b"&&CLASS:'x y'`}},
		{line: `TAG POS=1 TYPE=INPUT:TEXT ATTR=NAME:q CONTENT=a:'b`, want: []string{"TAG", "POS=1", "TYPE=INPUT:TEXT", "ATTR=NAME:q", "CONTENT=a:'b"}},
		{line: "VERSION", want: []string{"VERSION"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	got, err := Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	_, err := Tokenize(`SET !VAR1 "oops`)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestSplitKeyValue(t *testing.T) {
	key, value, err := splitKeyValue("GOTO=http://x/?a=b")
	require.NoError(t, err)
	assert.Equal(t, "GOTO", key)
	assert.Equal(t, "http://x/?a=b", value)

	key, value, err = splitKeyValue("CONTENT=")
	require.NoError(t, err)
	assert.Equal(t, "CONTENT", key)
	assert.Empty(t, value)

	_, _, err = splitKeyValue("NOEQUALS")
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, _, err = splitKeyValue("=value")
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}
