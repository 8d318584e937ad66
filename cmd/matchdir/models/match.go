package models

// DefaultState is the standard starting position every new match begins with
const DefaultState = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// MaxNameLength mirrors the width of the name column
const MaxNameLength = 100

// Match represents one chess game session.
// Maps to: matches table
type Match struct {
	// System-assigned, never reused
	ID int64 `db:"id" json:"id"`

	// Set at creation, immutable
	Name string `db:"name" json:"name"`

	// Opaque board-position notation, overwritten wholesale on update
	State string `db:"state" json:"state"`
}

// MatchSummary is the list view of a match (state omitted)
type MatchSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Summary returns the list view of m
func (m *Match) Summary() MatchSummary {
	return MatchSummary{ID: m.ID, Name: m.Name}
}
