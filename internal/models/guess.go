package models

import "time"

// NoteGuess is the untrusted structured interpretation of a raw note, as
// produced by an extraction strategy (local heuristics or a remote model).
// Every field may be missing or malformed; the ingest normalizer is the
// single place that repairs a guess into canonical values before storage.
type NoteGuess struct {
	CardType       string     `json:"card_type"`
	Description    string     `json:"description"`
	Date           *time.Time `json:"-"`
	DateText       string     `json:"date"`
	Assignee       string     `json:"assignee"`
	Priority       string     `json:"priority"`
	Keywords       []string   `json:"keywords"`
	ProjectContext []string   `json:"project_context"`
}

// ExtractedNote is the canonical result of normalizing a NoteGuess. All
// enum fields are guaranteed valid and the date, if any, is parsed.
type ExtractedNote struct {
	CardType       CardType   `json:"card_type"`
	Description    string     `json:"description"`
	Date           *time.Time `json:"date,omitempty"`
	Assignee       string     `json:"assignee,omitempty"`
	Priority       Priority   `json:"priority"`
	Keywords       []string   `json:"keywords"`
	ProjectContext []string   `json:"project_context"`
}
