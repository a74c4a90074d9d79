// Package leaderboard merges finished sessions into the persisted standings
// and ranks them for display.
//
// The persisted form is a JSON array of entries. The whole array is decoded,
// merged and re-encoded on every write; nothing is patched in place.
package leaderboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
)

// DefaultCapacity is how many entries survive a merge.
const DefaultCapacity = 200

// Entry is one player's standing.
type Entry struct {
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Accuracy  int       `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Attempts  int       `json:"attempts"`
}

// Ranked is an entry with its 1-based position in a view.
type Ranked struct {
	Rank int `json:"rank"`
	Entry
}

// Key returns the case-insensitive identity of a player name.
func Key(name string) string {
	// Casers carry state and must not be shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(name))
}

// Decode parses a stored blob. An absent blob is an empty collection. A blob
// that is not a JSON array yields an empty collection and ErrCorruptState.
// Elements without a string name are dropped; other malformed fields read as
// zero. Entries whose names fold to the same key are collapsed into one.
func Decode(blob []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return []Entry{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return []Entry{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		if e, ok := decodeEntry(r); ok {
			out = append(out, e)
		}
	}
	return collapse(out), nil
}

// collapse folds entries sharing a Key into the first of them. Scores and
// attempts add up; name, accuracy and timestamp come from the most recent.
// The result does not depend on the order of the duplicates.
func collapse(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		key := Key(e.Name)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, e)
			continue
		}
		merged := out[i]
		if newer(e, merged) {
			merged.Name, merged.Accuracy, merged.Timestamp = e.Name, e.Accuracy, e.Timestamp
		}
		merged.Score += e.Score
		merged.Attempts += e.Attempts
		out[i] = merged
	}
	return out
}

// newer reports whether a supersedes b as the latest record of a player.
// Equal timestamps fall back to the higher accuracy, then the smaller name.
func newer(a, b Entry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	if a.Accuracy != b.Accuracy {
		return a.Accuracy > b.Accuracy
	}
	return a.Name < b.Name
}

func decodeEntry(r json.RawMessage) (Entry, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil || fields == nil {
		return Entry{}, false
	}

	var name string
	if err := json.Unmarshal(fields["name"], &name); err != nil {
		return Entry{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false
	}

	e := Entry{
		Name:     name,
		Score:    intField(fields["score"]),
		Accuracy: intField(fields["accuracy"]),
		Attempts: intField(fields["attempts"]),
	}
	var ts string
	if json.Unmarshal(fields["timestamp"], &ts) == nil {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
	}
	if e.Attempts < 1 {
		e.Attempts = 1
	}
	return e, true
}

func intField(raw json.RawMessage) int {
	var n json.Number
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}

// Encode renders entries in their current order.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Timestamp = e.Timestamp.UTC()
		out[i] = e
	}
	return json.Marshal(out)
}

// Merge folds a finished session into entries and returns a new sorted
// collection truncated to capacity. Duplicate names already present in
// entries are collapsed first. The input slice is not modified.
// capacity <= 0 uses DefaultCapacity.
func Merge(entries []Entry, sum session.Summary, now time.Time, capacity int) []Entry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	out := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		out = append(out, e)
	}
	out = collapse(out)

	key := Key(sum.PlayerName)
	found := false
	for i := range out {
		if Key(out[i].Name) != key {
			continue
		}
		out[i].Score += sum.TotalScore
		out[i].Accuracy = sum.MeanBestAccuracy()
		out[i].Timestamp = now
		out[i].Attempts++
		found = true
		break
	}
	if !found && key != "" {
		out = append(out, Entry{
			Name:      strings.TrimSpace(sum.PlayerName),
			Score:     sum.TotalScore,
			Accuracy:  sum.MeanBestAccuracy(),
			Timestamp: now,
			Attempts:  1,
		})
	}

	Sort(out)
	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

// Sort orders entries by score desc, then most recent first, then name.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return Key(a.Name) < Key(b.Name)
	})
}

// Window restricts a view to recent entries.
type Window string

// Windows.
const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
)

// ParseWindow maps a query value to a Window. Empty means all.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowToday:
		return WindowToday, nil
	case WindowWeek:
		return WindowWeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
}

// Since returns the earliest timestamp inside w as seen at now. Today starts
// at midnight in now's location; week covers the last seven days.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// View filters entries to w, sorts them and assigns ranks. entries is not
// modified.
func View(entries []Entry, w Window, now time.Time) []Ranked {
	since := w.Since(now)
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if w != WindowAll && e.Timestamp.Before(since) {
			continue
		}
		kept = append(kept, e)
	}
	Sort(kept)

	out := make([]Ranked, len(kept))
	for i, e := range kept {
		out[i] = Ranked{Rank: i + 1, Entry: e}
	}
	return out
}

// Find returns the ranked entry for name in view.
func Find(view []Ranked, name string) (Ranked, bool) {
	key := Key(name)
	for _, r := range view {
		if Key(r.Name) == key {
			return r, true
		}
	}
	return Ranked{}, false
}
