package realtime

import (
	"sync"
	"time"

	"playniti-realtime/internal/game"
)

type State string

const (
	StateLobby   State = "lobby"
	StateRunning State = "running"
	StateEnded   State = "ended"
)

// Room is one bounded game session. All mutation of a room is serialized on
// its mutex; transitions are monotonic (lobby -> running -> ended) and a room
// never regresses.
type Room struct {
	ID       string
	Code     string
	Kind     game.Kind
	Capacity int

	mu        sync.Mutex
	state     State
	seed      string
	members   map[*Conn]struct{}
	scores    map[string]int
	startedAt time.Time
	endTimer  *time.Timer
}

func newRoom(id, code string, kind game.Kind, capacity int, seed string) *Room {
	return &Room{
		ID:       id,
		Code:     code,
		Kind:     kind,
		Capacity: capacity,
		state:    StateLobby,
		seed:     seed,
		members:  map[*Conn]struct{}{},
		scores:   map[string]int{},
	}
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Seed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seed
}

func (r *Room) Players() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) StartedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startedAt
}

// Join admits the connection while the room is still in lobby and under
// capacity. Returns the member count after the join so the caller can
// broadcast a consistent lobby snapshot. A zero score entry is created for
// the user on first join.
func (r *Room) Join(c *Conn, userID string) (players int, ok bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateRunning:
		return len(r.members), false, RejectAlreadyStarted
	case StateEnded:
		return len(r.members), false, RejectEnded
	}
	if len(r.members) >= r.Capacity {
		return len(r.members), false, RejectFull
	}
	r.members[c] = struct{}{}
	if _, exists := r.scores[userID]; !exists {
		r.scores[userID] = 0
	}
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
	return len(r.members), true, ""
}

// StartIfReady transitions lobby -> running once the member count reaches the
// threshold (capped at capacity) and arms the end timer. The timer is the sole
// clock authority for the match; onEnd fires exactly once per room.
func (r *Room) StartIfReady(minToStart int, duration time.Duration, onEnd func(*Room)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLobby {
		return false
	}
	threshold := minToStart
	if threshold > r.Capacity {
		threshold = r.Capacity
	}
	if threshold < 1 {
		threshold = 1
	}
	if len(r.members) < threshold {
		return false
	}
	r.state = StateRunning
	r.startedAt = time.Now()
	r.endTimer = time.AfterFunc(duration, func() { onEnd(r) })
	return true
}

// AddInput applies one authoritative scoring event for userID. Inputs are
// no-ops unless the room is running and the user has a score entry; the
// increment is atomic under the room mutex so concurrent inputs never lose
// updates.
func (r *Room) AddInput(userID string) (score int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return 0, false
	}
	if _, member := r.scores[userID]; !member {
		return 0, false
	}
	r.scores[userID]++
	return r.scores[userID], true
}

// end freezes the room. The returned snapshot feeds the resolver; ended=false
// means another path already ended the room and the caller must not resolve
// again. Cancels the end timer when the room ends early.
func (r *Room) end() (scores map[string]int, ended bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateEnded {
		return nil, false
	}
	r.state = StateEnded
	if r.endTimer != nil {
		r.endTimer.Stop()
		r.endTimer = nil
	}
	snapshot := make(map[string]int, len(r.scores))
	for uid, s := range r.scores {
		snapshot[uid] = s
	}
	return snapshot, true
}

// DropMember removes the connection from membership. The user's score entry
// survives until the room ends naturally; there is no forfeiture or grace
// period on disconnect.
func (r *Room) DropMember(c *Conn) {
	r.mu.Lock()
	delete(r.members, c)
	r.mu.Unlock()
}

// Broadcast fans a frame out to every current member. Per-connection queues
// are buffered and drop on overflow, so one slow peer never stalls the room.
func (r *Room) Broadcast(msg []byte) {
	r.mu.Lock()
	for c := range r.members {
		safeSend(c.send, msg)
	}
	r.mu.Unlock()
}
