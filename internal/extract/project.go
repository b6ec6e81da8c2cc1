package extract

import (
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Phrasings that introduce a project or subject, for example "for the Q3
// budget" or "regarding the Atlas launch". Capitalization anchors the
// capture so ordinary prose is not swallowed.
var projectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:for|regarding|about|re:)\s+(?:the\s+)?([A-Z][\w\s]+?)(?:\s|$|\.)`),
	regexp.MustCompile(`(?:project|campaign|initiative)\s+([A-Z]\w*)`),
	regexp.MustCompile(`([A-Z][A-Z0-9]+)\s+(?:project|budget|meeting)`),
}

// ProjectContext finds project and organization names referenced by the
// note, deduplicated in order of first appearance.
func (e *Extractor) ProjectContext(text string) []string {
	var contexts []string
	seen := make(map[string]bool)

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			contexts = append(contexts, name)
		}
	}

	for _, pattern := range projectPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}

	// Named entities catch organizations the patterns miss
	if doc, err := prose.NewDocument(text); err == nil {
		for _, ent := range doc.Entities() {
			if ent.Label == "GPE" {
				add(ent.Text)
			}
		}
	}

	return contexts
}
