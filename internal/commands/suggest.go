// ABOUTME: Fuzzy "did you mean" suggestions for mistyped command names
// ABOUTME: Thin layer over sahilm/fuzzy, best matches first

package commands

import "github.com/sahilm/fuzzy"

const maxSuggestions = 3

// Suggest returns up to three registered command names that fuzzy-match
// name, best first. An empty name yields nothing.
func (r *Registry) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, r.Names())
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
