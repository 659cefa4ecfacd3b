// Package leaderboard manages named score boards stored in the Voids
// Datastore. Each board lives under the key "leaderboard:<name>" in its
// tenant's namespace, alongside an index document listing all board
// names in that namespace.
package leaderboard

import (
	"cmp"
	"slices"
	"strconv"
)

const (
	keyPrefix    = "leaderboard:"
	indexKey     = "leaderboards_index"
	maxSymbolLen = 7
)

// Position selects which side of a score the board's symbol goes on.
type Position string

const (
	Prefix Position = "prefix"
	Suffix Position = "suffix"
)

// Board is the stored leaderboard document.
type Board struct {
	Prefix string         `json:"prefix"`
	Suffix string         `json:"suffix"`
	Scores map[string]int `json:"scores"`
}

// Standing is one member's place on a board.
type Standing struct {
	Member string
	Score  int
}

// Standings returns the board's entries ordered by score, highest
// first. Members with equal scores are ordered by name.
func (b Board) Standings() []Standing {
	out := make([]Standing, 0, len(b.Scores))
	for member, score := range b.Scores {
		out = append(out, Standing{Member: member, Score: score})
	}

	slices.SortFunc(out, func(x, y Standing) int {
		if x.Score != y.Score {
			return cmp.Compare(y.Score, x.Score)
		}
		return cmp.Compare(x.Member, y.Member)
	})

	return out
}

// Format renders a score with the board's symbol applied.
func (b Board) Format(score int) string {
	return b.Prefix + strconv.Itoa(score) + b.Suffix
}

func boardKey(name string) string {
	return keyPrefix + name
}
