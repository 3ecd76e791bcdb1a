package realtime

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"playniti-realtime/internal/game"
	"playniti-realtime/internal/store"
)

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const codeLength = 6

// Directory creates rooms, resolves join codes and retires ended rooms. It is
// an explicit instance owned by the coordinator, so tests can run several
// independent directories side by side.
type Directory struct {
	mu     sync.Mutex
	byID   map[string]*Room
	byCode map[string]*Room
}

func NewDirectory() *Directory {
	return &Directory{
		byID:   map[string]*Room{},
		byCode: map[string]*Room{},
	}
}

// CreateRoom allocates a lobby-state room with a fresh id and a join code
// unique among rooms not yet retired. Code generation retries on collision,
// so creation always succeeds. An empty seed gets a fresh one.
func (d *Directory) CreateRoom(kind game.Kind, capacity int, seed string) *Room {
	if seed == "" {
		seed = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	code := d.newCodeLocked()
	room := newRoom(store.NewID(), code, kind, capacity, seed)
	d.byID[room.ID] = room
	d.byCode[code] = room
	return room
}

// FindByCode returns the live room addressed by code. Ended rooms are not
// returned; their codes are no longer guaranteed unique.
func (d *Directory) FindByCode(code string) *Room {
	d.mu.Lock()
	room := d.byCode[code]
	d.mu.Unlock()
	if room == nil || room.State() == StateEnded {
		return nil
	}
	return room
}

// Retire removes a room from lookup. The join code becomes free for reuse.
func (d *Directory) Retire(room *Room) {
	d.mu.Lock()
	if d.byID[room.ID] == room {
		delete(d.byID, room.ID)
	}
	if d.byCode[room.Code] == room {
		delete(d.byCode, room.Code)
	}
	d.mu.Unlock()
}

// RoomInfo is a read-only snapshot for the public lobby listing.
type RoomInfo struct {
	ID       string    `json:"id"`
	Code     string    `json:"code"`
	Game     game.Kind `json:"game"`
	Players  int       `json:"players"`
	Capacity int       `json:"capacity"`
	State    State     `json:"state"`
}

func (d *Directory) Snapshot() []RoomInfo {
	d.mu.Lock()
	rooms := make([]*Room, 0, len(d.byID))
	for _, r := range d.byID {
		rooms = append(rooms, r)
	}
	d.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomInfo{
			ID:       r.ID,
			Code:     r.Code,
			Game:     r.Kind,
			Players:  r.Players(),
			Capacity: r.Capacity,
			State:    r.State(),
		})
	}
	return out
}

func (d *Directory) newCodeLocked() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := d.byCode[code]; !taken {
			return code
		}
	}
}
