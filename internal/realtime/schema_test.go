package realtime

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The schema is the published contract for server frames; every struct the
// coordinator marshals onto the wire must validate against it.
func TestServerFrameSchema(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/realtime_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("realtime_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("realtime_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	frames := []any{
		HelloAck{Type: TypeHelloAck},
		JoinRejected{Type: TypeJoinRejected, Reason: RejectFull},
		JoinRejected{Type: TypeJoinRejected, Reason: RejectAlreadyStarted},
		JoinRejected{Type: TypeJoinRejected, Reason: RejectEnded},
		LobbyUpdate{Type: TypeLobby, Code: "ABCD23", Players: 2, Capacity: 4},
		StartMessage{Type: TypeStart, Seed: "6f1c2a9e", DurationSec: 60},
		TickMessage{Type: TypeTick, UID: "alice", Score: 3},
		PongMessage{Type: TypePong},
		EndMessage{Type: TypeEnd, WinnerUserID: "alice", Scores: map[string]int{"alice": 3, "bob": 1}},
		EndMessage{Type: TypeEnd, WinnerUserID: "", Scores: map[string]int{}},
	}

	for i, frame := range frames {
		b, err := json.Marshal(frame)
		if err != nil {
			t.Fatalf("marshal frame %d: %v", i, err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal frame %d: %v", i, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Fatalf("frame %d (%s) failed schema validation: %v", i, b, err)
		}
	}
}
