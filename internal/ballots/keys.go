package ballots

import (
	"strings"
	"time"
)

const maxSlugLen = 50

// ElectionKey is the deterministic id used when no election id is supplied.
func ElectionKey(jurisdictionID string, date time.Time) string {
	return "election-" + jurisdictionID + "-" + date.UTC().Format("2006-01-02")
}

// BallotKey is the deterministic id of a ballot item within an election.
func BallotKey(electionID, title string) string {
	return "ballot-" + electionID + "-" + Slugify(title)
}

// Slugify replaces every character outside [A-Za-z0-9] with '-',
// lowercases, and truncates to 50 characters.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if b.Len() == maxSlugLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
