package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newWSTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	s := NewServer(cfg, nil)
	ts := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", b, err)
	}
	return m
}

func expectType(t *testing.T, m map[string]any, want string) {
	t.Helper()
	if m["type"] != want {
		t.Fatalf("message type = %v, want %s (full message %v)", m["type"], want, m)
	}
}

func hello(t *testing.T, conn *websocket.Conn, uid string) {
	t.Helper()
	sendJSON(t, conn, HelloMessage{Type: TypeHello, UserID: uid})
	expectType(t, readJSON(t, conn), TypeHelloAck)
}

func join(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	sendJSON(t, conn, JoinMessage{Type: TypeJoin, Code: code, Game: "sarpniti", Capacity: 4})
}

func TestJoinAutoCreatesRoom(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 3, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)
	hello(t, conn, "alice")

	join(t, conn, "UNKNOWN")
	lobby := readJSON(t, conn)
	expectType(t, lobby, TypeLobby)
	code, _ := lobby["code"].(string)
	if len(code) != codeLength {
		t.Fatalf("lobby code = %q, want generated %d-char code", code, codeLength)
	}
	if lobby["players"] != float64(1) || lobby["capacity"] != float64(4) {
		t.Fatalf("lobby = %v, want 1/4", lobby)
	}

	// a second client joining the advertised code lands in the same room
	conn2 := dialWS(t, ts)
	hello(t, conn2, "bob")
	join(t, conn2, code)
	lobby2 := readJSON(t, conn2)
	expectType(t, lobby2, TypeLobby)
	if lobby2["code"] != code || lobby2["players"] != float64(2) {
		t.Fatalf("second lobby = %v, want code %s with 2 players", lobby2, code)
	}
}

func TestAutoStartSharedSeedAndLateJoinRejected(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 3, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})

	c1 := dialWS(t, ts)
	hello(t, c1, "alice")
	join(t, c1, "")
	lobby := readJSON(t, c1)
	expectType(t, lobby, TypeLobby)
	code := lobby["code"].(string)

	c2 := dialWS(t, ts)
	hello(t, c2, "bob")
	join(t, c2, code)
	expectType(t, readJSON(t, c2), TypeLobby)
	expectType(t, readJSON(t, c1), TypeLobby)

	c3 := dialWS(t, ts)
	hello(t, c3, "carol")
	join(t, c3, code)

	seeds := map[string]bool{}
	for _, conn := range []*websocket.Conn{c1, c2, c3} {
		expectType(t, readJSON(t, conn), TypeLobby)
		start := readJSON(t, conn)
		expectType(t, start, TypeStart)
		if start["durationSec"] != float64(60) {
			t.Fatalf("durationSec = %v, want 60", start["durationSec"])
		}
		seeds[start["seed"].(string)] = true
	}
	if len(seeds) != 1 {
		t.Fatalf("members saw %d distinct seeds, want 1", len(seeds))
	}

	// room is RUNNING with capacity to spare; the join is still rejected
	c4 := dialWS(t, ts)
	hello(t, c4, "dave")
	join(t, c4, code)
	rejected := readJSON(t, c4)
	expectType(t, rejected, TypeJoinRejected)
	if rejected["reason"] != RejectAlreadyStarted {
		t.Fatalf("reason = %v, want %s", rejected["reason"], RejectAlreadyStarted)
	}
}

func TestInputScoresAndTicks(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 2, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})

	c1 := dialWS(t, ts)
	hello(t, c1, "alice")
	join(t, c1, "")
	code := readJSON(t, c1)["code"].(string)

	c2 := dialWS(t, ts)
	hello(t, c2, "bob")
	join(t, c2, code)
	expectType(t, readJSON(t, c2), TypeLobby)
	expectType(t, readJSON(t, c2), TypeStart)
	expectType(t, readJSON(t, c1), TypeLobby)
	expectType(t, readJSON(t, c1), TypeStart)

	sendJSON(t, c1, map[string]any{"type": TypeInput})
	sendJSON(t, c1, map[string]any{"type": TypeInput})
	for _, conn := range []*websocket.Conn{c1, c2} {
		for i := 1; i <= 2; i++ {
			tick := readJSON(t, conn)
			expectType(t, tick, TypeTick)
			if tick["uid"] != "alice" || tick["score"] != float64(i) {
				t.Fatalf("tick = %v, want alice score %d", tick, i)
			}
		}
	}
}

func TestInputBeforeStartIsIgnored(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 2, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)
	hello(t, conn, "alice")
	join(t, conn, "")
	expectType(t, readJSON(t, conn), TypeLobby)

	sendJSON(t, conn, map[string]any{"type": TypeInput})
	sendJSON(t, conn, map[string]any{"type": TypePing})
	// per-connection ordering: if the INPUT had produced a TICK it would
	// arrive before the PONG
	expectType(t, readJSON(t, conn), TypePong)
}

func TestMatchEndsAfterDuration(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 1, MatchDuration: 150 * time.Millisecond, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)
	hello(t, conn, "alice")
	join(t, conn, "")
	lobby := readJSON(t, conn)
	expectType(t, lobby, TypeLobby)
	code := lobby["code"].(string)
	expectType(t, readJSON(t, conn), TypeStart)

	end := readJSON(t, conn)
	expectType(t, end, TypeEnd)
	if end["winnerUserId"] != "alice" {
		t.Fatalf("winner = %v, want alice", end["winnerUserId"])
	}
	scores := end["scores"].(map[string]any)
	if scores["alice"] != float64(0) {
		t.Fatalf("scores = %v, want alice frozen at 0", scores)
	}

	// the old code no longer resolves: joining it creates a fresh lobby
	conn2 := dialWS(t, ts)
	hello(t, conn2, "bob")
	join(t, conn2, code)
	lobby2 := readJSON(t, conn2)
	expectType(t, lobby2, TypeLobby)
	if lobby2["players"] != float64(1) {
		t.Fatalf("lobby after retire = %v, want fresh room with 1 player", lobby2)
	}
}

func TestDisconnectedMemberScoreSurvivesToEnd(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 2, MatchDuration: 300 * time.Millisecond, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})

	c1 := dialWS(t, ts)
	hello(t, c1, "alice")
	join(t, c1, "")
	code := readJSON(t, c1)["code"].(string)

	c2 := dialWS(t, ts)
	hello(t, c2, "bob")
	join(t, c2, code)
	expectType(t, readJSON(t, c2), TypeLobby)
	expectType(t, readJSON(t, c2), TypeStart)
	expectType(t, readJSON(t, c1), TypeLobby)
	expectType(t, readJSON(t, c1), TypeStart)

	sendJSON(t, c1, map[string]any{"type": TypeInput})
	expectType(t, readJSON(t, c2), TypeTick)
	_ = c1.Close()

	end := readJSON(t, c2)
	expectType(t, end, TypeEnd)
	scores := end["scores"].(map[string]any)
	if scores["alice"] != float64(1) || scores["bob"] != float64(0) {
		t.Fatalf("scores = %v, want alice:1 bob:0", scores)
	}
	if end["winnerUserId"] != "alice" {
		t.Fatalf("winner = %v, want disconnected alice", end["winnerUserId"])
	}
}

func TestHelloBindsOncePerConnection(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 1, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)
	hello(t, conn, "alice")

	// second HELLO is ignored outright: no ack, binding unchanged
	sendJSON(t, conn, HelloMessage{Type: TypeHello, UserID: "mallory"})
	join(t, conn, "")
	expectType(t, readJSON(t, conn), TypeLobby)
	expectType(t, readJSON(t, conn), TypeStart)

	sendJSON(t, conn, map[string]any{"type": TypeInput})
	tick := readJSON(t, conn)
	expectType(t, tick, TypeTick)
	if tick["uid"] != "alice" {
		t.Fatalf("tick uid = %v, want original binding alice", tick["uid"])
	}
}

func TestMalformedFramesDroppedSilently(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 3, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)

	frames := []string{
		"not json at all",
		`{"type":123}`,
		`{"type":"NO_SUCH_TYPE"}`,
		`{"type":"JOIN","capacity":"not-a-number"}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("write %q: %v", f, err)
		}
	}
	sendJSON(t, conn, map[string]any{"type": TypePing})
	expectType(t, readJSON(t, conn), TypePong)
}

func TestJoinWithoutIdentityIgnored(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 1, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)

	join(t, conn, "")
	sendJSON(t, conn, map[string]any{"type": TypePing})
	expectType(t, readJSON(t, conn), TypePong)
}

func TestJoinWithUnknownGameKindIgnored(t *testing.T) {
	ts := newWSTestServer(t, Config{MinPlayersToStart: 1, MatchDuration: time.Minute, DefaultRoomCapacity: 4, MaxRoomCapacity: 16})
	conn := dialWS(t, ts)
	hello(t, conn, "alice")

	sendJSON(t, conn, JoinMessage{Type: TypeJoin, Code: "", Game: "chess", Capacity: 4})
	sendJSON(t, conn, map[string]any{"type": TypePing})
	expectType(t, readJSON(t, conn), TypePong)
}
