// Package prompt renders {name}-style prompt templates.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Well-known variables.
const (
	VarFormatInstructions = "format_instructions"
	VarJournal            = "journal"
	VarQuestion           = "question"
	VarTopic              = "topic"
)

var placeholder = regexp.MustCompile(`\{([a-z_][a-z0-9_]*)\}`)

// Template is a parsed prompt. Partial values are bound once and shared by
// every Render call.
type Template struct {
	text      string
	variables []string
	partials  map[string]string
}

// New parses text and records its placeholders.
func New(text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt template is empty")
	}
	seen := map[string]bool{}
	var vars []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	sort.Strings(vars)
	return &Template{text: text, variables: vars, partials: map[string]string{}}, nil
}

// Variables lists the placeholder names, sorted.
func (t *Template) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Partial returns a copy of t with name bound to value.
func (t *Template) Partial(name, value string) *Template {
	partials := make(map[string]string, len(t.partials)+1)
	for k, v := range t.partials {
		partials[k] = v
	}
	partials[name] = value
	return &Template{text: t.text, variables: t.variables, partials: partials}
}

// Render substitutes every placeholder. A placeholder with no value is an error.
func (t *Template) Render(vars map[string]string) (string, error) {
	pairs := make([]string, 0, 2*len(t.variables))
	var missing []string
	for _, name := range t.variables {
		v, ok := vars[name]
		if !ok {
			v, ok = t.partials[name]
		}
		if !ok {
			missing = append(missing, name)
			continue
		}
		pairs = append(pairs, "{"+name+"}", v)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt variables missing: %s", strings.Join(missing, ", "))
	}
	return strings.NewReplacer(pairs...).Replace(t.text), nil
}
