package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/chain"
	"github.com/mindduel/backend/internal/hub"
	"github.com/mindduel/backend/internal/httpapi"
	"github.com/mindduel/backend/internal/questions"
	"github.com/mindduel/backend/internal/types"
	"github.com/mindduel/backend/pkg/metrics"
)

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	h := hub.New(ctx, map[string]float64{"5": 5}, questions.NewStatic(), chain.NewMockStaker(log), log, met)

	srv := httptest.NewServer(httpapi.SetupRoutes(h, log, met, reg))
	t.Cleanup(srv.Close)

	dialCtx, dialCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readEvent reads frames until one of the wanted type arrives.
func readEvent(t *testing.T, conn *websocket.Conn, evType string) rawEvent {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithDeadline(context.Background(), deadline)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			t.Fatalf("read while waiting for %q: %v", evType, err)
		}
		var ev rawEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if ev.Type == evType {
			return ev
		}
	}
	t.Fatalf("timed out waiting for %q", evType)
	return rawEvent{} // unreachable
}

func TestHandler_JoinPlayAnswer(t *testing.T) {
	conn := dialTestServer(t)

	readEvent(t, conn, types.EvtWelcome)

	sendMsg(t, conn, types.ClientMessage{Type: types.MsgJoinPool, PoolID: "5", Wallet: "0xabc"})

	pu := readEvent(t, conn, types.EvtPoolUpdate)
	var update types.PoolUpdate
	if err := json.Unmarshal(pu.Data, &update); err != nil || update.Players != 1 {
		t.Fatalf("poolUpdate: %s err=%v", pu.Data, err)
	}

	gs := readEvent(t, conn, types.EvtGameStart)
	var start struct {
		Questions []struct {
			Q       string   `json:"q"`
			Options []string `json:"options"`
		} `json:"questions"`
		RoundID string `json:"roundId"`
	}
	if err := json.Unmarshal(gs.Data, &start); err != nil {
		t.Fatalf("gameStart: %v", err)
	}
	if len(start.Questions) != 10 || len(start.Questions[0].Options) != 4 {
		t.Fatalf("gameStart shape: %s", gs.Data)
	}
	// The correct answer must not go over the wire.
	if strings.Contains(string(gs.Data), `"answer"`) {
		t.Fatalf("answer leaked to client: %s", gs.Data)
	}

	sendMsg(t, conn, types.ClientMessage{Type: types.MsgSubmitAnswer, PoolID: "5", Wallet: "0xabc", QIndex: 0, Answer: "wrong guess", ElapsedMs: 1400})

	nq := readEvent(t, conn, types.EvtNextQuestion)
	var next types.NextQuestion
	if err := json.Unmarshal(nq.Data, &next); err != nil || next.QIndex != 1 {
		t.Fatalf("nextQuestion: %s err=%v", nq.Data, err)
	}
}

func TestHandler_UnknownPoolRejected(t *testing.T) {
	conn := dialTestServer(t)
	readEvent(t, conn, types.EvtWelcome)

	sendMsg(t, conn, types.ClientMessage{Type: types.MsgJoinPool, PoolID: "250", Wallet: "0xabc"})

	ev := readEvent(t, conn, types.EvtError)
	var e types.Error
	if err := json.Unmarshal(ev.Data, &e); err != nil || !strings.Contains(e.Message, "unknown pool") {
		t.Fatalf("error event: %s err=%v", ev.Data, err)
	}
}

func TestHandler_BadJSONGetsErrorNotDisconnect(t *testing.T) {
	conn := dialTestServer(t)
	readEvent(t, conn, types.EvtWelcome)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	readEvent(t, conn, types.EvtError)

	// The connection is still usable.
	sendMsg(t, conn, types.ClientMessage{Type: types.MsgJoinPool, PoolID: "5", Wallet: "0xdef"})
	readEvent(t, conn, types.EvtPoolUpdate)
}
