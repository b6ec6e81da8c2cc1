package extract

import (
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// MaxKeywords caps how many keywords are kept per note
const MaxKeywords = 10

var wordPattern = regexp.MustCompile(`^[a-z][a-z0-9'-]*$`)

// stopwords that survive the part-of-speech filter but carry no signal
var stopwords = map[string]bool{
	"be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "having": true, "does": true, "did": true, "doing": true,
	"will": true, "would": true, "should": true, "could": true, "can": true,
	"may": true, "might": true, "shall": true, "get": true, "got": true,
	"getting": true, "let": true, "lets": true, "need": true, "needs": true,
	"want": true, "wants": true, "going": true, "goes": true, "went": true,
	"thing": true, "things": true, "something": true, "anything": true,
	"someone": true, "everyone": true, "nothing": true, "one": true,
	"make": true, "makes": true, "made": true, "take": true, "takes": true,
	"use": true, "uses": true, "used": true, "way": true, "ways": true,
	"time": true, "times": true, "today": true, "tomorrow": true,
	"yesterday": true, "week": true, "month": true, "year": true,
	"day": true, "days": true, "morning": true, "afternoon": true,
	"evening": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true, "sunday": true,
}

// Keywords extracts up to max content words from the note: nouns, proper
// nouns, and verbs, stemmed to a base form, ranked by frequency with ties
// broken by first appearance.
func (e *Extractor) Keywords(text string, max int) []string {
	if max <= 0 {
		max = MaxKeywords
	}

	doc, err := prose.NewDocument(strings.ToLower(text))
	if err != nil {
		return nil
	}

	counts := make(map[string]int)
	var order []string

	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "NN") && !strings.HasPrefix(tok.Tag, "VB") {
			continue
		}
		word := strings.Trim(tok.Text, "'-")
		if len(word) <= 2 || !wordPattern.MatchString(word) || stopwords[word] {
			continue
		}

		stem, err := snowball.Stem(word, "english", true)
		if err != nil || len(stem) <= 2 || stopwords[stem] {
			continue
		}

		if counts[stem] == 0 {
			order = append(order, stem)
		}
		counts[stem]++
	}

	// Stable sort by frequency keeps first-appearance order for ties
	sorted := make([]string, len(order))
	copy(sorted, order)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && counts[sorted[j]] > counts[sorted[j-1]]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}
