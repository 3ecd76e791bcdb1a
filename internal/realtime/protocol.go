package realtime

// Wire catalog. Every frame is a JSON text message with a "type" tag; payloads
// are decoded in two passes (envelope, then the typed struct) and malformed
// frames are dropped without closing the connection.

const (
	TypeHello = "HELLO"
	TypeJoin  = "JOIN"
	TypeInput = "INPUT"
	TypePing  = "PING"

	TypeHelloAck     = "HELLO_ACK"
	TypeJoinRejected = "JOIN_REJECTED"
	TypeLobby        = "LOBBY"
	TypeStart        = "START"
	TypeTick         = "TICK"
	TypePong         = "PONG"
	TypeEnd          = "END"
)

// Join rejection reasons. Rejections are the one failure mode clients must be
// able to react to, so they always get an explicit reply.
const (
	RejectFull           = "full"
	RejectAlreadyStarted = "already-started"
	RejectEnded          = "ended"
)

type HelloMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type JoinMessage struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Game     string `json:"game"`
	Capacity int    `json:"capacity"`
}

type HelloAck struct {
	Type string `json:"type"`
}

type JoinRejected struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type LobbyUpdate struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
}

type StartMessage struct {
	Type        string `json:"type"`
	Seed        string `json:"seed"`
	DurationSec int    `json:"durationSec"`
}

type TickMessage struct {
	Type  string `json:"type"`
	UID   string `json:"uid"`
	Score int    `json:"score"`
}

type PongMessage struct {
	Type string `json:"type"`
}

type EndMessage struct {
	Type         string         `json:"type"`
	WinnerUserID string         `json:"winnerUserId"`
	Scores       map[string]int `json:"scores"`
}
