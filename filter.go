// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// entryMatcher holds compiled include/exclude rules for entry selection.
type entryMatcher struct {
	matcher *pathrules.Matcher
}

// newEntryMatcher compiles entry path rules. Empty rule set yields a nil matcher that selects everything.
func newEntryMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*entryMatcher, error) {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := NormalizePath(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{Action: rule.Action, Pattern: pattern})
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(normalized, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterPattern, err)
	}

	return &entryMatcher{matcher: matcher}, nil
}

// Match reports whether name is selected by the rules.
func (m *entryMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// FilterEntries returns entries selected by rules, keeping directory order.
func FilterEntries(entries []Entry, rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]Entry, error) {
	m, err := newEntryMatcher(rules, opts)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return entries, nil
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if m.Match(e.Name) {
			out = append(out, e)
		}
	}

	return out, nil
}
