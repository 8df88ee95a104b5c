package macro

import (
	"context"
	"fmt"
	"strings"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	// textAttribute is the pseudo attribute holding the free-text filter
	textAttribute = "txt"

	// forms are never form-scoped themselves
	maxScopeDepth = 1
)

var cssValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ElementLocator resolves locator specs against the live document
type ElementLocator struct {
	driver interfaces.Driver
	logger *logrus.Logger
}

// NewElementLocator - creates a locator bound to a driver
func NewElementLocator(driver interfaces.Driver, logger *logrus.Logger) *ElementLocator {
	return &ElementLocator{driver: driver, logger: logger}
}

// Locate - resolves spec to exactly one element
func (l *ElementLocator) Locate(ctx context.Context, spec entities.LocatorSpec) (interfaces.Element, error) {
	return l.locate(ctx, spec, 0)
}

func (l *ElementLocator) locate(ctx context.Context, spec entities.LocatorSpec, depth int) (interfaces.Element, error) {
	// ids are assumed unique: the other locator fields are ignored
	if id, ok := spec.Attributes["id"]; ok && !id.PresenceOnly {
		l.logger.Debugf("Locating element by id %q", id.Value)
		el, err := l.driver.FindByID(ctx, id.Value)
		if err != nil {
			return nil, fmt.Errorf("element with id %q: %w", id.Value, err)
		}
		return el, nil
	}

	text, hasText := spec.Attributes[textAttribute]
	selector := BuildSelector(spec.ElementType, spec.Attributes.Without(textAttribute))

	var scope interfaces.Element
	if spec.Form != nil {
		if depth >= maxScopeDepth {
			return nil, fmt.Errorf("%w: nested form scope", entities.ErrInvalidArgument)
		}
		form, err := l.locate(ctx, entities.LocatorSpec{
			Position:    1,
			ElementType: "form",
			Attributes:  spec.Form,
		}, depth+1)
		if err != nil {
			return nil, fmt.Errorf("scoping form: %w", err)
		}
		scope = form
	}

	l.logger.Debugf("Querying %s (position %d, scoped: %v)", selector, spec.Position, scope != nil)
	elements, err := l.driver.QueryAll(ctx, selector, scope)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if elements == nil {
		elements = []interfaces.Element{}
	}

	if hasText && !text.PresenceOnly {
		elements, err = filterByText(ctx, elements, text)
		if err != nil {
			return nil, err
		}
	}

	if spec.Position > len(elements) {
		return nil, fmt.Errorf("%w: %s at position %d (%d matches)", entities.ErrElementNotFound, selector, spec.Position, len(elements))
	}
	return elements[spec.Position-1], nil
}

// BuildSelector - synthesizes a CSS selector from an element type and attribute filter
func BuildSelector(elementType string, filter entities.AttributeFilter) string {
	var sb strings.Builder
	sb.WriteString(elementType)
	for _, name := range filter.Names() {
		value := filter[name]
		if value.PresenceOnly {
			fmt.Fprintf(&sb, "[%s]", name)
			continue
		}
		fmt.Fprintf(&sb, `[%s="%s"]`, name, cssValueEscaper.Replace(value.Value))
	}
	return sb.String()
}

// filterByText keeps elements whose trimmed text equals the expected text exactly.
// The expected text was already escape-expanded when the filter was parsed.
func filterByText(ctx context.Context, elements []interfaces.Element, text entities.FilterValue) ([]interfaces.Element, error) {
	want := strings.TrimSpace(text.Value)
	kept := make([]interfaces.Element, 0, len(elements))
	for _, el := range elements {
		got, err := el.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("read element text: %w", err)
		}
		if strings.TrimSpace(got) == want {
			kept = append(kept, el)
		}
	}
	return kept, nil
}
