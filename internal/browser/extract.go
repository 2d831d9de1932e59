package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

var (
	ErrNoMatch      = errors.New("selector matched nothing")
	ErrMissingField = errors.New("required field missing")
)

// Element is the read-only view of a listing card the extraction table needs.
// An empty selector addresses the card itself.
type Element interface {
	Text(selector string) (string, error)
	Attr(selector, name string) (string, error)
}

// Strategy is one way of reading a field: the inner text, or an attribute
// when Attr is set, of the first node matching Selector.
type Strategy struct {
	Selector  string
	Attr      string
	Transform func(string) string
}

func (s Strategy) read(el Element) (string, error) {
	var (
		v   string
		err error
	)
	if s.Attr != "" {
		v, err = el.Attr(s.Selector, s.Attr)
	} else {
		v, err = el.Text(s.Selector)
	}
	if err != nil {
		return "", err
	}
	v = CleanText(v)
	if v != "" && s.Transform != nil {
		v = CleanText(s.Transform(v))
	}
	return v, nil
}

// Rule lists the strategies for one field in priority order. Default is used
// when none of them produces a value; a Required field without a value fails
// the whole card.
type Rule struct {
	Field      string
	Strategies []Strategy
	Default    string
	Required   bool
}

// Table is the per-site extraction declaration.
type Table []Rule

// Extract evaluates every rule against el. The first non-empty strategy wins.
func (t Table) Extract(el Element) (map[string]string, error) {
	out := make(map[string]string, len(t))
	for _, rule := range t {
		value := ""
		for _, s := range rule.Strategies {
			v, err := s.read(el)
			if err != nil || v == "" {
				continue
			}
			value = v
			break
		}
		if value == "" {
			value = rule.Default
		}
		if value == "" && rule.Required {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, rule.Field)
		}
		out[rule.Field] = value
	}
	return out, nil
}

// CleanText collapses whitespace runs, including newlines and nbsp.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// AbsoluteURL prefixes root-relative links with base.
func AbsoluteURL(base string) func(string) string {
	return func(href string) string {
		if strings.HasPrefix(href, "/") {
			return strings.TrimRight(base, "/") + href
		}
		return href
	}
}

// LocatorElement adapts a playwright locator to Element.
type LocatorElement struct {
	Locator playwright.Locator
	// Timeout in milliseconds for each lookup
	Timeout float64
}

func (l LocatorElement) target(selector string) (playwright.Locator, error) {
	loc := l.Locator
	if selector != "" {
		loc = loc.Locator(selector).First()
	}
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoMatch
	}
	return loc, nil
}

func (l LocatorElement) Text(selector string) (string, error) {
	loc, err := l.target(selector)
	if err != nil {
		return "", err
	}
	return loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(l.Timeout)})
}

func (l LocatorElement) Attr(selector, name string) (string, error) {
	loc, err := l.target(selector)
	if err != nil {
		return "", err
	}
	return loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(l.Timeout)})
}
