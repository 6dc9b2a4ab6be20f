package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/engine"
	"github.com/mindduel/backend/internal/hub"
	"github.com/mindduel/backend/internal/pool"
	"github.com/mindduel/backend/internal/types"
	"github.com/mindduel/backend/pkg/metrics"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 60 * time.Second
)

func Handler(h *hub.Hub, log *zap.Logger, met *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// The wallet address is a bare string; there is no origin-bound
			// auth to protect, so cross-origin clients are allowed.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		met.ConnectedClients.Inc()
		defer met.ConnectedClients.Dec()

		clientID := randID(8)
		log := log.With(zap.String("client", clientID))

		// The pool this connection is attached to, if any. Each attachment
		// gets its own outbox; the pool closes it on detach (or when it
		// drops us as a slow consumer), which ends that writer goroutine.
		var joined *pool.Pool
		detach := func() {
			if joined != nil {
				joined.Inbox() <- pool.Leave{ClientID: clientID}
				joined = nil
			}
		}
		defer detach()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		attach := func(p *pool.Pool, wallet string) {
			detach()
			out := make(chan types.ServerEvent, 16)
			go writer(writeCtx, conn, out)
			joined = p
			p.Inbox() <- pool.Join{Wallet: wallet, ClientID: clientID, Outbox: out}
		}

		writeEvent(r.Context(), conn, types.ServerEvent{
			Type: types.EvtWelcome,
			Data: types.Welcome{Message: "Welcome to MindDuel backend!"},
		})

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read loop ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch cm.Type {
			case types.MsgJoinPool:
				if cm.Wallet == "" {
					writeError(r.Context(), conn, "wallet required")
					continue
				}
				p, ok := h.Get(cm.PoolID)
				if !ok {
					writeError(r.Context(), conn, "unknown pool: "+cm.PoolID)
					continue
				}
				attach(p, cm.Wallet)

			case types.MsgSubmitAnswer, types.MsgTimeout:
				p, ok := h.Get(cm.PoolID)
				if !ok {
					writeError(r.Context(), conn, "unknown pool: "+cm.PoolID)
					continue
				}
				p.Inbox() <- pool.FromPlayer{ClientID: clientID, Cmd: toCommand(cm)}

			case types.MsgLeavePool:
				detach()

			default:
				log.Debug("unknown message type", zap.String("type", cm.Type))
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

// writer forwards pool events to the socket until the outbox closes.
// conn.Write is safe for concurrent use, so a short overlap while
// switching pools is fine.
func writer(ctx context.Context, conn *websocket.Conn, out <-chan types.ServerEvent) {
	for ev := range out {
		writeEvent(ctx, conn, ev)
	}
}

func toCommand(m types.ClientMessage) engine.Command {
	cmdType := engine.CmdSubmitAnswer
	if m.Type == types.MsgTimeout {
		cmdType = engine.CmdTimeout
	}
	return engine.Command{
		Type:      cmdType,
		Wallet:    m.Wallet,
		QIndex:    m.QIndex,
		Answer:    m.Answer,
		ElapsedMs: m.ElapsedMs,
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev types.ServerEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	writeEvent(ctx, conn, types.ServerEvent{Type: types.EvtError, Data: types.Error{Message: msg}})
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
