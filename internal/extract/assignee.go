package extract

import (
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

var (
	teamPattern     = regexp.MustCompile(`(?i)(?:with|to)\s+(?:the\s+)?(\w+(?:\s+\w+)?)\s+team`)
	delegatePattern = regexp.MustCompile(`(?i)(?:ask|tell|contact|call|email|message|assigned?\s+to)\s+(\w+)`)
)

// Pronouns and filler words the delegation pattern tends to capture
var assigneeStoplist = map[string]bool{
	"me": true, "us": true, "him": true, "her": true, "them": true,
	"the": true, "a": true, "an": true, "my": true, "our": true,
	"his": true, "their": true, "someone": true, "everyone": true,
	"about": true, "back": true, "it": true,
}

// Assignee finds the person or team a note delegates to. An explicit
// @mention wins, then the first recognized person name, then a team
// phrase like "with the marketing team", then delegation phrasings like
// "ask John". Empty when the note names nobody.
func (e *Extractor) Assignee(text string) string {
	if m := mentionPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	if doc, err := prose.NewDocument(text); err == nil {
		for _, ent := range doc.Entities() {
			if ent.Label == "PERSON" {
				return ent.Text
			}
		}
	}

	if m := teamPattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]) + " team"
	}

	if m := delegatePattern.FindStringSubmatch(text); m != nil {
		candidate := m[1]
		if len(candidate) > 2 && !assigneeStoplist[strings.ToLower(candidate)] {
			return candidate
		}
	}

	return ""
}
