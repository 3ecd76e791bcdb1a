package realtime

// MatchResult is the immutable outcome of an ended room.
type MatchResult struct {
	RoomID       string
	WinnerUserID string // empty when the room ended with no score entries
	Scores       map[string]int
}

// Resolve picks the winner from a final score table. Pure and deterministic:
// highest score wins, ties break to the lexicographically lowest user id so
// the outcome never depends on map iteration order. An empty table yields no
// winner.
func Resolve(roomID string, scores map[string]int) MatchResult {
	res := MatchResult{RoomID: roomID, Scores: make(map[string]int, len(scores))}
	winner := ""
	best := 0
	found := false
	for uid, s := range scores {
		res.Scores[uid] = s
		switch {
		case !found:
			winner, best, found = uid, s, true
		case s > best:
			winner, best = uid, s
		case s == best && uid < winner:
			winner = uid
		}
	}
	res.WinnerUserID = winner
	return res
}
