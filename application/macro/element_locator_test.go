package macro

import (
	"context"
	"testing"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"
	"seleniumacros/infrastructure/browser"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const locatorPage = `<html><head><title>Locator</title></head><body>
<input type="text" name="first" value="1">
<input type="text" name="second" value="2">
<input type="checkbox" name="cb1" id="cb1">
<input type="text" name="third" value="3">
<form name="F0"><input type="text" name="tf1" id="outside"></form>
<form name="F1">
  <input type="text" name="tf1" id="inside">
  <a href="/a">  Sign in </a>
  <a href="/b">Sign in later</a>
  <a href="/c">Sign in</a>
</form>
<div class="x" data-role="card">card</div>
</body></html>`

func newLocatorFixture(t *testing.T) (*ElementLocator, *browser.StaticDriver) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	driver := browser.NewStaticDriver(nil, logger)
	require.NoError(t, driver.LoadHTML(locatorPage))
	return NewElementLocator(driver, logger), driver
}

func attr(t *testing.T, el interfaces.Element, name string) string {
	t.Helper()
	v, err := el.GetAttribute(context.Background(), name)
	require.NoError(t, err)
	return v
}

func TestLocateByPosition(t *testing.T) {
	loc, _ := newLocatorFixture(t)
	ctx := context.Background()

	spec := entities.LocatorSpec{Position: 2, ElementType: "input[type=text]", Attributes: entities.AttributeFilter{}}
	el, err := loc.Locate(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, "second", attr(t, el, "name"))

	spec.Position = 5
	el, err = loc.Locate(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, "inside", attr(t, el, "id"))

	spec.Position = 6
	_, err = loc.Locate(ctx, spec)
	assert.ErrorIs(t, err, entities.ErrElementNotFound)
}

func TestLocateIDShortcutIgnoresEverythingElse(t *testing.T) {
	loc, _ := newLocatorFixture(t)

	spec := entities.LocatorSpec{
		Position:    7,
		ElementType: "textarea",
		Form:        entities.AttributeFilter{"name": entities.Equals("missing")},
		Attributes: entities.AttributeFilter{
			"name": entities.Equals("cb1"),
			"id":   entities.Equals("cb1"),
		},
	}
	el, err := loc.Locate(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "checkbox", attr(t, el, "type"))

	spec.Attributes["id"] = entities.Equals("nope")
	_, err = loc.Locate(context.Background(), spec)
	assert.ErrorIs(t, err, entities.ErrElementNotFound)
}

func TestLocateWithinForm(t *testing.T) {
	loc, _ := newLocatorFixture(t)

	spec := entities.LocatorSpec{
		Position:    1,
		ElementType: "input[type=text]",
		Form:        entities.AttributeFilter{"name": entities.Equals("F1")},
		Attributes:  entities.AttributeFilter{"name": entities.Equals("tf1")},
	}
	el, err := loc.Locate(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "inside", attr(t, el, "id"))

	spec.Form = entities.AttributeFilter{"name": entities.Equals("F9")}
	_, err = loc.Locate(context.Background(), spec)
	assert.ErrorIs(t, err, entities.ErrElementNotFound)
}

func TestLocateTextFilterIsExact(t *testing.T) {
	loc, _ := newLocatorFixture(t)
	ctx := context.Background()

	spec := entities.LocatorSpec{
		Position:    2,
		ElementType: "a",
		Attributes:  entities.AttributeFilter{"txt": entities.Equals("Sign in")},
	}
	el, err := loc.Locate(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, "/c", attr(t, el, "href"))

	spec.Position = 3
	_, err = loc.Locate(ctx, spec)
	assert.ErrorIs(t, err, entities.ErrElementNotFound)

	spec.Attributes = entities.AttributeFilter{"txt": entities.Equals("sign in")}
	spec.Position = 1
	_, err = loc.Locate(ctx, spec)
	assert.ErrorIs(t, err, entities.ErrElementNotFound, "text match is case-sensitive")
}

func TestLocatePresenceFilter(t *testing.T) {
	loc, _ := newLocatorFixture(t)

	spec := entities.LocatorSpec{
		Position:    1,
		ElementType: "div",
		Attributes:  entities.AttributeFilter{"data-role": entities.Present()},
	}
	el, err := loc.Locate(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "x", attr(t, el, "class"))
}

func TestLocateRejectsNestedFormScope(t *testing.T) {
	loc, _ := newLocatorFixture(t)

	_, err := loc.locate(context.Background(), entities.LocatorSpec{
		Position:    1,
		ElementType: "input",
		Form:        entities.AttributeFilter{"name": entities.Equals("F1")},
		Attributes:  entities.AttributeFilter{},
	}, maxScopeDepth)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

type nilQueryDriver struct {
	interfaces.Driver
}

func (nilQueryDriver) QueryAll(ctx context.Context, selector string, scope interfaces.Element) ([]interfaces.Element, error) {
	return nil, nil
}

func TestLocateTreatsNilResultAsEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	loc := NewElementLocator(nilQueryDriver{}, logger)

	_, err := loc.Locate(context.Background(), entities.NewLocatorSpec())
	assert.ErrorIs(t, err, entities.ErrElementNotFound)
}

func TestBuildSelector(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		filter entities.AttributeFilter
		want   string
	}{
		{name: "type only", typ: "div", filter: entities.AttributeFilter{}, want: "div"},
		{name: "sorted attributes", typ: "input[type=text]", filter: entities.AttributeFilter{
			"name":  entities.Equals("q"),
			"class": entities.Equals("big"),
		}, want: `input[type=text][class="big"][name="q"]`},
		{name: "presence", typ: "select", filter: entities.AttributeFilter{"multiple": entities.Present()}, want: "select[multiple]"},
		{name: "escaping", typ: "a", filter: entities.AttributeFilter{"title": entities.Equals(`say "hi" \o/`)}, want: `a[title="say \"hi\" \\o/"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSelector(tt.typ, tt.filter))
		})
	}
}
