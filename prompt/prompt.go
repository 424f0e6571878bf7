/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package prompt builds instruction strings from templates with explicit
// bindings. A template declares placeholders as {{name}}; every placeholder
// must be bound before Build succeeds, which keeps configuration values from
// silently going missing in a long system prompt.
package prompt

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// Template is a prompt template with named placeholders.
type Template struct {
	text     string
	bindings map[string]string
	bound    map[string]bool
}

// New parses a template and collects its placeholder names.
func New(text string) (*Template, error) {
	t := &Template{
		text:     text,
		bindings: make(map[string]string),
		bound:    make(map[string]bool),
	}
	if err := walk(text, func(name string) error {
		t.bound[name] = false
		return nil
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// BindString binds a string value to a placeholder. Binding an unknown or
// already-bound placeholder is an error.
func (t *Template) BindString(name, value string) (*Template, error) {
	return t.bind(name, value)
}

// BindJSON binds a value to a placeholder as compact JSON.
func (t *Template) BindJSON(name string, value any) (*Template, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling binding %q: %w", name, err)
	}
	return t.bind(name, string(b))
}

func (t *Template) bind(name, value string) (*Template, error) {
	done, exists := t.bound[name]
	if !exists {
		return nil, fmt.Errorf("unknown binding %q", name)
	}
	if done {
		return nil, fmt.Errorf("binding %q is already bound", name)
	}
	nt := &Template{
		text:     t.text,
		bindings: maps.Clone(t.bindings),
		bound:    maps.Clone(t.bound),
	}
	nt.bindings[name] = value
	nt.bound[name] = true
	return nt, nil
}

// Bindings returns the placeholder names found in the template.
func (t *Template) Bindings() map[string]struct{} {
	names := make(map[string]struct{}, len(t.bound))
	for name := range t.bound {
		names[name] = struct{}{}
	}
	return names
}

// Build renders the template, failing if any placeholder remains unbound.
func (t *Template) Build() (string, error) {
	for name, done := range t.bound {
		if !done {
			return "", fmt.Errorf("unbound placeholder %q", name)
		}
	}
	var out strings.Builder
	text := t.text
	err := walkReplace(text, &out, func(name string) string {
		return t.bindings[name]
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// walk tokenizes the template and calls visit for each placeholder name.
func walk(text string, visit func(name string) error) error {
	var discard strings.Builder
	return walkReplaceErr(text, &discard, func(name string) (string, error) {
		if err := visit(name); err != nil {
			return "", err
		}
		return "", nil
	})
}

func walkReplace(text string, out *strings.Builder, resolve func(name string) string) error {
	return walkReplaceErr(text, out, func(name string) (string, error) {
		return resolve(name), nil
	})
}

func walkReplaceErr(text string, out *strings.Builder, resolve func(name string) (string, error)) error {
	for len(text) > 0 {
		start := strings.Index(text, "{{")
		if start == -1 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:start])

		end := strings.Index(text[start:], "}}")
		if end == -1 {
			return fmt.Errorf("unclosed placeholder near %q", truncate(text[start:], 40))
		}
		end += start + 2

		name := strings.TrimSpace(text[start+2 : end-2])
		if !isIdentifier(name) {
			return fmt.Errorf("invalid placeholder name %q", name)
		}
		value, err := resolve(name)
		if err != nil {
			return err
		}
		out.WriteString(value)
		text = text[end:]
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
