package store

import "time"

// MatchResultRecord is the persisted form of an ended room's outcome. The
// score map is stored as JSONB; the winner column stays empty when the room
// ended with no score entries.
type MatchResultRecord struct {
	ID           string
	RoomID       string
	Game         string
	WinnerUserID string
	Scores       map[string]int
	EndedAt      time.Time
}

type LeaderboardRow struct {
	UserID     string
	Wins       int
	TotalScore int64
}
