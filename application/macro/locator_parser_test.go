package macro

import (
	"testing"

	"seleniumacros/domain/entities"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocatorSpec(t *testing.T) {
	r, vars := newTestResolver(t)
	vars.SetUserVariables(map[string]string{"USER": "alice"})
	p := NewLocatorParser(r)

	content := entities.NewText("alice")
	extract := "TXT"

	tests := []struct {
		name   string
		tokens []string
		want   entities.LocatorSpec
	}{
		{
			name:   "defaults",
			tokens: nil,
			want:   entities.LocatorSpec{Position: 1, ElementType: "div", Attributes: entities.AttributeFilter{}},
		},
		{
			name:   "input subtype",
			tokens: []string{"POS=2", "TYPE=INPUT:TEXT", "ATTR=NAME:user", "CONTENT={{USER}}"},
			want: entities.LocatorSpec{
				Position:    2,
				ElementType: "input[type=text]",
				Attributes:  entities.AttributeFilter{"name": entities.Equals("user")},
				Content:     &content,
			},
		},
		{
			name:   "form scope and presence",
			tokens: []string{"TYPE=SELECT", "FORM=NAME:F1", "ATTR=MULTIPLE&&*&&NAME:s1"},
			want: entities.LocatorSpec{
				Position:    1,
				ElementType: "select",
				Form:        entities.AttributeFilter{"name": entities.Equals("F1")},
				Attributes: entities.AttributeFilter{
					"multiple": entities.Present(),
					"name":     entities.Equals("s1"),
				},
			},
		},
		{
			name:   "extract is kept raw",
			tokens: []string{"TYPE=SPAN", "EXTRACT=TXT"},
			want: entities.LocatorSpec{
				Position:    1,
				ElementType: "span",
				Attributes:  entities.AttributeFilter{},
				Extract:     &extract,
			},
		},
		{
			name:   "empty attribute spec",
			tokens: []string{"TYPE=A", "ATTR="},
			want:   entities.LocatorSpec{Position: 1, ElementType: "a", Attributes: entities.AttributeFilter{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.tokens)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAttributeFilter(t *testing.T) {
	r, _ := newTestResolver(t)
	p := NewLocatorParser(r)

	got := p.ParseAttributeFilter("NAME:cb1&&ID:cb1")
	want := entities.AttributeFilter{
		"name": entities.Equals("cb1"),
		"id":   entities.Equals("cb1"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseAttributeFilter() mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, p.ParseAttributeFilter(""))
	assert.Empty(t, p.ParseAttributeFilter("*"))
	assert.Equal(t, entities.AttributeFilter{"txt": entities.Equals("Sign in")}, p.ParseAttributeFilter("TXT:Sign<SP>in"))
	assert.Equal(t, entities.AttributeFilter{"txt": entities.Equals("Sign up")}, p.ParseAttributeFilter(`TXT:"Sign up"`))
	assert.Equal(t, entities.AttributeFilter{"href": entities.Equals("http://x/a:b")}, p.ParseAttributeFilter("HREF:http://x/a:b"))
}

func TestParseLocatorSpecErrors(t *testing.T) {
	r, _ := newTestResolver(t)
	p := NewLocatorParser(r)

	tests := []struct {
		name   string
		tokens []string
	}{
		{name: "unknown key", tokens: []string{"POS=1", "COLOR=red"}},
		{name: "lower-case key", tokens: []string{"pos=1"}},
		{name: "zero position", tokens: []string{"POS=0"}},
		{name: "negative position", tokens: []string{"POS=-1"}},
		{name: "relative position", tokens: []string{"POS=R1"}},
		{name: "variable position", tokens: []string{"POS={{N}}"}},
		{name: "not key value", tokens: []string{"TYPE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.tokens)
			assert.ErrorIs(t, err, entities.ErrInvalidArgument)
		})
	}
}
