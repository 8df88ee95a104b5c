package macro

import (
	"fmt"
	"strconv"
	"strings"

	"seleniumacros/domain/entities"
)

const (
	keyPos     = "POS"
	keyType    = "TYPE"
	keyForm    = "FORM"
	keyAttr    = "ATTR"
	keyContent = "CONTENT"
	keyExtract = "EXTRACT"

	inputTypePrefix = "INPUT:"
	fragmentSep     = "&&"
	wildcard        = "*"
)

// LocatorParser builds locator specs from TAG argument tokens
type LocatorParser struct {
	resolver *Resolver
}

// NewLocatorParser - creates a parser resolving values through resolver
func NewLocatorParser(resolver *Resolver) *LocatorParser {
	return &LocatorParser{resolver: resolver}
}

// Parse - parses KEY=VALUE tokens into a LocatorSpec
func (p *LocatorParser) Parse(tokens []string) (entities.LocatorSpec, error) {
	spec := entities.NewLocatorSpec()

	for _, token := range tokens {
		key, value, err := splitKeyValue(token)
		if err != nil {
			return entities.LocatorSpec{}, err
		}

		switch key {
		case keyPos:
			pos, err := parsePosition(value)
			if err != nil {
				return entities.LocatorSpec{}, err
			}
			spec.Position = pos
		case keyType:
			spec.ElementType = elementTypeSelector(value)
		case keyForm:
			spec.Form = p.ParseAttributeFilter(value)
		case keyAttr:
			spec.Attributes = p.ParseAttributeFilter(value)
		case keyContent:
			content := p.resolver.Resolve(value)
			spec.Content = &content
		case keyExtract:
			extract := value
			spec.Extract = &extract
		default:
			return entities.LocatorSpec{}, fmt.Errorf("%w: unknown TAG parameter %s", entities.ErrInvalidArgument, key)
		}
	}

	return spec, nil
}

// ParseAttributeFilter - parses a NAME:VALUE&&NAME&&* specification
func (p *LocatorParser) ParseAttributeFilter(spec string) entities.AttributeFilter {
	filter := entities.AttributeFilter{}
	if spec == "" {
		return filter
	}

	for _, fragment := range strings.Split(spec, fragmentSep) {
		if fragment == "" || fragment == wildcard {
			continue
		}
		name, value, hasValue := strings.Cut(fragment, ":")
		name = strings.ToLower(name)
		if !hasValue {
			filter[name] = entities.Present()
			continue
		}
		filter[name] = entities.Equals(p.resolver.Resolve(value).String())
	}
	return filter
}

func parsePosition(value string) (int, error) {
	if !allDigits.MatchString(value) {
		return 0, fmt.Errorf("%w: POS must be a positive integer, got %q", entities.ErrInvalidArgument, value)
	}
	pos, err := strconv.Atoi(value)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("%w: POS must be a positive integer, got %q", entities.ErrInvalidArgument, value)
	}
	return pos, nil
}

// elementTypeSelector maps TYPE=INPUT:TEXT to input[type=text]
func elementTypeSelector(value string) string {
	if strings.HasPrefix(strings.ToUpper(value), inputTypePrefix) {
		return fmt.Sprintf("input[type=%s]", strings.ToLower(value[len(inputTypePrefix):]))
	}
	return strings.ToLower(value)
}
