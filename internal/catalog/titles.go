package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleRule turns a struggle into a title when any of its keywords occurs.
type titleRule struct {
	keywords []string
	format   func(input string) string
}

// titleRules are checked in order and only the first match applies. Several
// keywords can occur in one input ("bedtime tantrums"), so the order is part
// of the behaviour.
var titleRules = []titleRule{
	{[]string{"tantrum"}, func(in string) string { return "Managing " + in }},
	{[]string{"sleep", "bed"}, func(in string) string { return "Peaceful " + in + " Solution" }},
	{[]string{"eat", "food", "meal"}, func(in string) string { return "Nourishing " + in + " Journey" }},
	{[]string{"homework", "study"}, func(in string) string { return in + " Success" }},
	{[]string{"sibling", "brother", "sister"}, func(in string) string { return "Harmony in " + in }},
	{[]string{"morning"}, func(in string) string { return "Smooth " + in + " Flow" }},
	{[]string{"potty", "toilet"}, func(in string) string { return in + " Triumph" }},
	{[]string{"screen", "tv", "ipad"}, func(in string) string { return "Balanced " + in + " Guide" }},
	{[]string{"behavior", "behaviour"}, func(in string) string { return "Shaping " + in }},
}

// TitleFor returns the display title for a struggle tag or free text. Exact
// (case-insensitive) table entries win; otherwise the first keyword rule
// applies, falling back to "Navigating {Input}". Blank input yields "".
func (c *Catalog) TitleFor(tag string) string {
	key := normalizeTag(tag)
	if key == "" {
		return ""
	}
	if title, ok := c.titles[key]; ok {
		return title
	}

	input := capitalizeWords(strings.TrimSpace(tag))
	for _, rule := range titleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(key, kw) {
				return rule.format(input)
			}
		}
	}
	return "Navigating " + input
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// capitalizeWords upper-cases the first letter of every word and lower-cases
// the rest.
func capitalizeWords(s string) string {
	return cases.Title(language.English).String(s)
}
