package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"playniti-realtime/internal/game"
	"playniti-realtime/internal/store"
)

// Config carries the deployment-tunable knobs of the coordinator. None of
// these are protocol invariants.
type Config struct {
	MinPlayersToStart   int
	MatchDuration       time.Duration
	DefaultRoomCapacity int
	MaxRoomCapacity     int
}

// Server is the session coordinator: it routes inbound client messages to the
// matching room, mutates room state under the room's lock, and fans resulting
// frames out to members. The server is the sole writer of scores; client
// messages only request scoring events.
type Server struct {
	cfg      Config
	store    *store.Store // nil disables result persistence
	registry *Registry
	dir      *Directory
	upgrader websocket.Upgrader

	metricsMu      sync.Mutex
	matchesEnded   int64
	inputsAccepted int64
}

func NewServer(cfg Config, st *store.Store) *Server {
	if cfg.MinPlayersToStart < 1 {
		cfg.MinPlayersToStart = 1
	}
	if cfg.DefaultRoomCapacity < 1 {
		cfg.DefaultRoomCapacity = 4
	}
	if cfg.MaxRoomCapacity < cfg.DefaultRoomCapacity {
		cfg.MaxRoomCapacity = cfg.DefaultRoomCapacity
	}
	if cfg.MatchDuration <= 0 {
		cfg.MatchDuration = time.Minute
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		registry: NewRegistry(),
		dir:      NewDirectory(),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Directory() *Directory {
	return s.dir
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newConn(ws)
	s.registry.Register(c)

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *Conn) {
	defer func() {
		s.registry.Deregister(c)
		_ = c.ws.Close()
	}()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case TypeHello:
			var hello HelloMessage
			if err := json.Unmarshal(msg, &hello); err != nil {
				continue
			}
			s.handleHello(c, hello)
		case TypeJoin:
			var join JoinMessage
			if err := json.Unmarshal(msg, &join); err != nil {
				continue
			}
			s.handleJoin(c, join)
		case TypeInput:
			s.handleInput(c)
		case TypePing:
			s.handlePing(c)
		}
	}
}

func (s *Server) writeLoop(c *Conn) {
	for msg := range c.send {
		_ = c.ws.WriteMessage(websocket.TextMessage, msg)
	}
}

// handleHello binds identity once per connection; repeat HELLOs are ignored
// and the original binding stands.
func (s *Server) handleHello(c *Conn, hello HelloMessage) {
	if !s.registry.Identify(c, hello.UserID) {
		return
	}
	s.sendTo(c, HelloAck{Type: TypeHelloAck})
}

func (s *Server) handleJoin(c *Conn, join JoinMessage) {
	uid := c.UserID()
	if uid == "" {
		return
	}
	if c.Room() != nil {
		// one room per connection; a second JOIN mid-session is dropped
		return
	}

	room := s.dir.FindByCode(join.Code)
	if room == nil {
		kind, ok := game.ParseKind(join.Game)
		if !ok {
			return
		}
		room = s.dir.CreateRoom(kind, s.clampCapacity(join.Capacity), "")
		log.Info().
			Str("room_id", room.ID).
			Str("code", room.Code).
			Str("game", string(room.Kind)).
			Int("capacity", room.Capacity).
			Msg("room_created")
	}

	players, ok, reason := room.Join(c, uid)
	if !ok {
		s.sendTo(c, JoinRejected{Type: TypeJoinRejected, Reason: reason})
		return
	}

	lobby, _ := json.Marshal(LobbyUpdate{
		Type:     TypeLobby,
		Code:     room.Code,
		Players:  players,
		Capacity: room.Capacity,
	})
	room.Broadcast(lobby)

	if room.StartIfReady(s.cfg.MinPlayersToStart, s.cfg.MatchDuration, s.endRoom) {
		start, _ := json.Marshal(StartMessage{
			Type:        TypeStart,
			Seed:        room.Seed(),
			DurationSec: int(s.cfg.MatchDuration.Seconds()),
		})
		room.Broadcast(start)
		log.Info().
			Str("room_id", room.ID).
			Str("code", room.Code).
			Int("players", players).
			Msg("match_start")
	}
}

func (s *Server) handleInput(c *Conn) {
	room := c.Room()
	if room == nil {
		return
	}
	uid := c.UserID()
	if uid == "" {
		return
	}
	score, ok := room.AddInput(uid)
	if !ok {
		return
	}
	s.metricsMu.Lock()
	s.inputsAccepted++
	s.metricsMu.Unlock()
	tick, _ := json.Marshal(TickMessage{Type: TypeTick, UID: uid, Score: score})
	room.Broadcast(tick)
}

func (s *Server) handlePing(c *Conn) {
	c.touch()
	s.sendTo(c, PongMessage{Type: TypePong})
}

// endRoom is the timer-fired terminal transition. The room's end() guard makes
// the resolve happen at most once even if an early-end path is added later.
func (s *Server) endRoom(room *Room) {
	scores, ended := room.end()
	if !ended {
		return
	}
	res := Resolve(room.ID, scores)
	msg, _ := json.Marshal(EndMessage{
		Type:         TypeEnd,
		WinnerUserID: res.WinnerUserID,
		Scores:       res.Scores,
	})
	room.Broadcast(msg)
	s.dir.Retire(room)
	s.persistResult(room, res)

	s.metricsMu.Lock()
	s.matchesEnded++
	matches := s.matchesEnded
	inputs := s.inputsAccepted
	s.metricsMu.Unlock()
	log.Info().
		Str("room_id", room.ID).
		Str("code", room.Code).
		Str("winner", res.WinnerUserID).
		Int("players", len(res.Scores)).
		Int64("matches_ended", matches).
		Int64("inputs_accepted", inputs).
		Msg("match_end")
}

func (s *Server) persistResult(room *Room, res MatchResult) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.store.RecordMatchResult(ctx, store.MatchResultRecord{
		ID:           store.NewID(),
		RoomID:       res.RoomID,
		Game:         string(room.Kind),
		WinnerUserID: res.WinnerUserID,
		Scores:       res.Scores,
		EndedAt:      time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", res.RoomID).Msg("record match result failed")
	}
}

func (s *Server) clampCapacity(capacity int) int {
	if capacity < 1 {
		return s.cfg.DefaultRoomCapacity
	}
	if capacity > s.cfg.MaxRoomCapacity {
		return s.cfg.MaxRoomCapacity
	}
	return capacity
}

func (s *Server) sendTo(c *Conn, v any) {
	msg, _ := json.Marshal(v)
	safeSend(c.send, msg)
}
