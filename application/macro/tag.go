package macro

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"
)

// TAG POS=n TYPE=t [FORM=...] ATTR=... [CONTENT=...] [EXTRACT=...]
func (s *Session) executeTag(ctx context.Context, args []string) error {
	spec, err := s.parser.Parse(args)
	if err != nil {
		return err
	}
	driver, err := s.requireDriver()
	if err != nil {
		return err
	}

	el, err := NewElementLocator(driver, s.logger).Locate(ctx, spec)
	if err != nil {
		return err
	}

	if spec.Extract != nil {
		s.logger.Warnf("EXTRACT=%s is not supported yet, clicking instead", *spec.Extract)
		return el.Click(ctx)
	}
	if spec.Content == nil {
		return el.Click(ctx)
	}

	tag, err := el.TagName(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tag name: %w", err)
	}

	switch strings.ToLower(tag) {
	case "input", "textarea":
		return s.fillInput(ctx, el, *spec.Content)
	case "select":
		return s.chooseOptions(ctx, driver, el, spec.Content.String())
	default:
		return el.Click(ctx)
	}
}

func (s *Session) fillInput(ctx context.Context, el interfaces.Element, content entities.Value) error {
	inputType, err := el.GetAttribute(ctx, "type")
	if err != nil {
		return fmt.Errorf("failed to read input type: %w", err)
	}

	switch strings.ToLower(inputType) {
	case "checkbox", "radio":
		want := strings.EqualFold(content.String(), "YES")
		selected, err := el.IsSelected(ctx)
		if err != nil {
			return fmt.Errorf("failed to read selection state: %w", err)
		}
		if selected == want {
			return nil
		}
		return el.Click(ctx)
	case "file":
		return el.SendKeys(ctx, content.String())
	default:
		if err := el.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear input: %w", err)
		}
		return el.SendKeys(ctx, content.String())
	}
}

// chooseOptions clicks the options named in a ':'-joined list.
// Names may be prefixed with % (value), $ (text) or # (1-based index).
func (s *Session) chooseOptions(ctx context.Context, driver interfaces.Driver, sel interfaces.Element, content string) error {
	names := strings.Split(content, ":")

	multiple, err := sel.IsMultiple(ctx)
	if err != nil {
		return fmt.Errorf("failed to read multiple state: %w", err)
	}
	if !multiple {
		names = names[len(names)-1:]
	}

	options, err := driver.QueryAll(ctx, "option", sel)
	if err != nil {
		return fmt.Errorf("failed to list options: %w", err)
	}

	targets := make([]interfaces.Element, 0, len(names))
	for _, name := range names {
		opt, err := findOption(ctx, options, name)
		if err != nil {
			return err
		}
		targets = append(targets, opt)
	}

	if !multiple {
		return targets[0].Click(ctx)
	}

	if err := driver.KeyDown(ctx, interfaces.KeyControl); err != nil {
		return fmt.Errorf("failed to hold modifier: %w", err)
	}
	defer func() {
		if err := driver.KeyUp(ctx, interfaces.KeyControl); err != nil {
			s.logger.Warnf("Failed to release modifier: %v", err)
		}
	}()
	for _, opt := range targets {
		if err := opt.Click(ctx); err != nil {
			return err
		}
	}
	return nil
}

func findOption(ctx context.Context, options []interfaces.Element, name string) (interfaces.Element, error) {
	if strings.HasPrefix(name, "#") {
		idx, err := strconv.Atoi(name[1:])
		if err != nil || idx < 1 {
			return nil, fmt.Errorf("%w: invalid option index %q", entities.ErrInvalidArgument, name)
		}
		if idx > len(options) {
			return nil, fmt.Errorf("%w: option %s", entities.ErrElementNotFound, name)
		}
		return options[idx-1], nil
	}

	byValue, byText := true, true
	switch {
	case strings.HasPrefix(name, "%"):
		name, byText = name[1:], false
	case strings.HasPrefix(name, "$"):
		name, byValue = name[1:], false
	}

	for _, opt := range options {
		if byValue {
			value, err := opt.GetAttribute(ctx, "value")
			if err != nil {
				return nil, err
			}
			if value == name {
				return opt, nil
			}
		}
		if byText {
			text, err := opt.Text(ctx)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) == name {
				return opt, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: option %q", entities.ErrElementNotFound, name)
}
