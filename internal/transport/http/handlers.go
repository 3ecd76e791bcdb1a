package httptransport

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"playniti-realtime/internal/realtime"
	"playniti-realtime/internal/store"
)

// Handlers serves the small public REST surface next to the WS coordinator.
// The store may be nil; persistence-backed endpoints report that explicitly.
type Handlers struct {
	store *store.Store
	dir   *realtime.Directory
}

func NewHandlers(st *store.Store, dir *realtime.Directory) *Handlers {
	return &Handlers{store: st, dir: dir}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *Handlers) LobbyList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := h.dir.Snapshot()
		sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })
		_ = json.NewEncoder(w).Encode(map[string]any{"items": rooms})
	}
}

func (h *Handlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			writeHTTPError(w, http.StatusServiceUnavailable, "persistence_disabled")
			return
		}
		limit, offset := parsePagination(r)
		rows, err := h.store.ListLeaderboard(r.Context(), limit, offset)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, map[string]any{
				"user_id":     row.UserID,
				"wins":        row.Wins,
				"total_score": row.TotalScore,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  out,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func (h *Handlers) RecentResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			writeHTTPError(w, http.StatusServiceUnavailable, "persistence_disabled")
			return
		}
		limit, offset := parsePagination(r)
		items, err := h.store.ListRecentResults(r.Context(), limit, offset)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			out = append(out, map[string]any{
				"room_id":        it.RoomID,
				"game":           it.Game,
				"winner_user_id": it.WinnerUserID,
				"scores":         it.Scores,
				"ended_at":       it.EndedAt,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  out,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func parsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
