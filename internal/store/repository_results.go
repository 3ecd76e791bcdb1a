package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) RecordMatchResult(ctx context.Context, rec MatchResultRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO match_results (id, room_id, game, winner_user_id, scores, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.RoomID, rec.Game, rec.WinnerUserID, scores, rec.EndedAt)
	return err
}

func (s *Store) GetMatchResultByRoom(ctx context.Context, roomID string) (*MatchResultRecord, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, room_id, game, winner_user_id, scores, ended_at
		FROM match_results
		WHERE room_id = $1
		ORDER BY ended_at DESC
		LIMIT 1`, roomID)
	var rec MatchResultRecord
	var scores []byte
	if err := row.Scan(&rec.ID, &rec.RoomID, &rec.Game, &rec.WinnerUserID, &scores, &rec.EndedAt); err != nil {
		return nil, mapNotFound(err)
	}
	if err := json.Unmarshal(scores, &rec.Scores); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListRecentResults(ctx context.Context, limit, offset int) ([]MatchResultRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, room_id, game, winner_user_id, scores, ended_at
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MatchResultRecord{}
	for rows.Next() {
		var rec MatchResultRecord
		var scores []byte
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.Game, &rec.WinnerUserID, &scores, &rec.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(scores, &rec.Scores); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListLeaderboard aggregates persisted results into wins per user. Rooms that
// ended without a winner are excluded.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT winner_user_id,
		       COUNT(*) AS wins,
		       COALESCE(SUM((scores ->> winner_user_id)::bigint), 0) AS total_score
		FROM match_results
		WHERE winner_user_id <> ''
		GROUP BY winner_user_id
		ORDER BY wins DESC, total_score DESC, winner_user_id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Wins, &r.TotalScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
