// Package pool implements the per-tier actor that owns pool membership,
// the broadcast group, and the round lifecycle. All state mutation
// happens inside one goroutine loop, so the duplicate-generation race
// between two simultaneous joins cannot occur: the second Join message is
// handled after the first has already moved the pool to Generating.
package pool

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/chain"
	"github.com/mindduel/backend/internal/engine"
	"github.com/mindduel/backend/internal/questions"
	"github.com/mindduel/backend/internal/settle"
	"github.com/mindduel/backend/internal/types"
	"github.com/mindduel/backend/pkg/metrics"
)

type Msg interface{ isPoolMsg() }

// Join adds a wallet to the pool (idempotent) and attaches the
// connection's outbox to the broadcast group.
type Join struct {
	Wallet   string
	ClientID string
	Outbox   chan types.ServerEvent
}

func (Join) isPoolMsg() {}

// FromPlayer carries a submitAnswer or timeout command.
type FromPlayer struct {
	ClientID string
	Cmd      engine.Command
}

func (FromPlayer) isPoolMsg() {}

// Leave detaches a connection from the broadcast group. Pool membership
// is deliberately kept; the wallet can reconnect into the same round.
type Leave struct{ ClientID string }

func (Leave) isPoolMsg() {}

type Shutdown struct{}

func (Shutdown) isPoolMsg() {}

// GetState reflects internal state without data races. Test-only.
type GetState struct {
	Reply chan View
}

func (GetState) isPoolMsg() {}

// questionsReady and questionsFailed are posted back into the inbox by
// the generation goroutine.
type questionsReady struct {
	roundID string
	qs      engine.QuestionSet
}

func (questionsReady) isPoolMsg() {}

type questionsFailed struct {
	roundID string
	err     error
}

func (questionsFailed) isPoolMsg() {}

type sessionState int

const (
	stateAbsent sessionState = iota
	stateGenerating
	stateActive
)

func (s sessionState) String() string {
	switch s {
	case stateGenerating:
		return "generating"
	case stateActive:
		return "active"
	default:
		return "absent"
	}
}

// View is a race-free snapshot for tests and the /pools listing.
type View struct {
	PoolID     string
	Stake      float64
	State      string
	Members    []string
	NumClients int
	RoundID    string
	Players    []types.PlayerView
}

type client struct {
	wallet string
	outbox chan types.ServerEvent
}

type Pool struct {
	id    string
	stake float64

	inbox   chan Msg
	members []string // join order, unique
	clients map[string]client

	state        sessionState
	session      *engine.Session
	pendingRound string // round ID of the in-flight generation
	pendingFrom  string // clientID that triggered it, for failure delivery

	provider questions.Provider
	staker   chain.Staker
	log      *zap.Logger
	met      *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id string, stake float64, provider questions.Provider, staker chain.Staker, log *zap.Logger, met *metrics.Metrics) *Pool {
	ctx, cancel := context.WithCancel(parent)
	p := &Pool{
		id:       id,
		stake:    stake,
		inbox:    make(chan Msg, 64),
		clients:  make(map[string]client),
		provider: provider,
		staker:   staker,
		log:      log.With(zap.String("pool", id)),
		met:      met,
		ctx:      ctx,
		cancel:   cancel,
	}
	go p.loop()
	return p
}

func (p *Pool) Inbox() chan<- Msg { return p.inbox }

func (p *Pool) loop() {
	for {
		select {
		case <-p.ctx.Done():
			p.shutdown()
			return

		case m := <-p.inbox:
			switch msg := m.(type) {
			case Join:
				p.handleJoin(msg)
			case FromPlayer:
				p.handlePlayerEvent(msg)
			case Leave:
				if c, ok := p.clients[msg.ClientID]; ok {
					close(c.outbox)
					delete(p.clients, msg.ClientID)
				}
			case questionsReady:
				p.handleQuestionsReady(msg)
			case questionsFailed:
				p.handleQuestionsFailed(msg)
			case GetState:
				msg.Reply <- p.view()
			case Shutdown:
				p.shutdown()
				return
			}
		}
	}
}

func (p *Pool) handleJoin(msg Join) {
	p.met.PoolJoins.WithLabelValues(p.id).Inc()

	// Re-attach the event stream regardless of membership state. A
	// replaced outbox is closed so its writer goroutine terminates.
	if old, ok := p.clients[msg.ClientID]; ok && old.outbox != msg.Outbox {
		close(old.outbox)
	}
	p.clients[msg.ClientID] = client{wallet: msg.Wallet, outbox: msg.Outbox}

	alreadyMember := slices.Contains(p.members, msg.Wallet)
	if !alreadyMember {
		p.members = append(p.members, msg.Wallet)
		if err := p.staker.Stake(p.ctx, msg.Wallet, p.stake); err != nil {
			p.log.Warn("stake failed", zap.String("wallet", msg.Wallet), zap.Error(err))
		}
		p.broadcast(types.ServerEvent{Type: types.EvtPoolUpdate, Data: p.membershipSnapshot()})
	} else {
		// Duplicate join is not an error; the caller just gets the
		// current snapshot on its own stream.
		p.send(msg.ClientID, types.ServerEvent{Type: types.EvtPoolUpdate, Data: p.membershipSnapshot()})
	}

	switch p.state {
	case stateAbsent:
		p.startGeneration(msg.ClientID)

	case stateGenerating:
		// A round is already being prepared; the joiner will receive the
		// gameStart broadcast like everyone else.

	case stateActive:
		if _, ok := p.session.Player(msg.Wallet); !ok {
			if err := p.session.AddPlayer(msg.Wallet); err != nil {
				p.log.Warn("mid-round add failed", zap.String("wallet", msg.Wallet), zap.Error(err))
				return
			}
			// The rest of the pool should see the new name on the board.
			p.broadcast(types.ServerEvent{Type: types.EvtScoreUpdate, Data: types.ScoreUpdate{
				Players: p.playerViews(),
			}})
		}
		// Resynchronize just this connection.
		player, _ := p.session.Player(msg.Wallet)
		p.send(msg.ClientID, types.ServerEvent{Type: types.EvtGameState, Data: types.GameState{
			PoolID:    p.id,
			Questions: p.session.OrderedQuestions(),
			CurrentQ:  player.Index,
			Players:   p.playerViews(),
			StartTime: p.session.StartTime.UnixMilli(),
			RoundID:   p.session.RoundID,
		}})
	}
}

// startGeneration moves the pool to Generating and launches the provider
// call off-loop. The goroutine owns no pool state; it reports back
// through the inbox, tagged with the round ID so a stale result for a
// superseded round is ignored.
func (p *Pool) startGeneration(clientID string) {
	roundID := uuid.NewString()
	p.state = stateGenerating
	p.pendingRound = roundID
	p.pendingFrom = clientID
	p.log.Info("generating questions", zap.String("round", roundID))

	go func() {
		qs, err := p.provider.Generate(p.ctx)
		var result Msg
		if err != nil {
			result = questionsFailed{roundID: roundID, err: err}
		} else {
			result = questionsReady{roundID: roundID, qs: qs}
		}
		select {
		case p.inbox <- result:
		case <-p.ctx.Done():
		}
	}()
}

func (p *Pool) handleQuestionsReady(msg questionsReady) {
	if p.state != stateGenerating || msg.roundID != p.pendingRound {
		return
	}
	p.session = engine.NewSession(p.id, msg.roundID, msg.qs, p.members, time.Now())
	p.state = stateActive
	p.pendingRound = ""
	p.pendingFrom = ""
	p.met.RoundsStarted.WithLabelValues(p.id).Inc()
	p.met.ActiveSessions.Inc()
	p.log.Info("round started", zap.String("round", msg.roundID), zap.Int("players", p.session.Size()))

	p.broadcast(types.ServerEvent{Type: types.EvtGameStart, Data: types.GameStart{
		PoolID:    p.id,
		Questions: p.session.OrderedQuestions(),
		Players:   p.playerViews(),
		StartTime: p.session.StartTime.UnixMilli(),
		RoundID:   p.session.RoundID,
	}})
}

func (p *Pool) handleQuestionsFailed(msg questionsFailed) {
	if p.state != stateGenerating || msg.roundID != p.pendingRound {
		return
	}
	p.state = stateAbsent
	p.met.ProviderFailures.Inc()
	p.log.Error("question generation failed", zap.String("round", msg.roundID), zap.Error(msg.err))

	// Only the join that triggered generation gets the failure; the pool
	// stays session-less and the next join retries.
	p.send(p.pendingFrom, types.ServerEvent{Type: types.EvtError, Data: types.Error{
		Message: "could not start a round, please try again",
	}})
	p.pendingRound = ""
	p.pendingFrom = ""
}

func (p *Pool) handlePlayerEvent(msg FromPlayer) {
	if p.state != stateActive {
		return
	}
	// A connection only speaks for the wallet it joined with, and a
	// connection that never joined speaks for nobody.
	c, ok := p.clients[msg.ClientID]
	if !ok || c.wallet != msg.Cmd.Wallet {
		p.log.Warn("player event from unauthorized connection",
			zap.String("client", msg.ClientID), zap.String("claimed", msg.Cmd.Wallet))
		return
	}
	events, err := p.session.Apply(msg.Cmd)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrStaleEvent):
			p.met.StaleEvents.Inc()
		case errors.Is(err, engine.ErrUnknownPlayer):
			p.log.Warn("event from wallet outside session", zap.String("wallet", msg.Cmd.Wallet))
		default:
			p.log.Warn("rejected player event", zap.Error(err))
		}
		return
	}
	p.met.AnswersProcessed.WithLabelValues(p.id).Inc()

	complete := false
	var nextIndex int
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtAdvanced:
			nextIndex = ev.QIndex
		case engine.EvtRoundComplete:
			complete = true
		}
	}

	if complete {
		p.settleRound()
		return
	}

	p.broadcast(types.ServerEvent{Type: types.EvtScoreUpdate, Data: types.ScoreUpdate{
		Players: p.playerViews(),
	}})
	// Progression is per-player, not lockstep: only the submitting
	// connection advances to its next question.
	p.send(msg.ClientID, types.ServerEvent{Type: types.EvtNextQuestion, Data: types.NextQuestion{
		PoolID: p.id,
		QIndex: nextIndex,
	}})
}

func (p *Pool) settleRound() {
	standings := make([]settle.Standing, 0, p.session.Size())
	for _, pr := range p.session.Standings() {
		standings = append(standings, settle.Standing{
			Wallet:      pr.Wallet,
			Score:       pr.Score,
			TotalTimeMs: pr.TotalTimeMs,
		})
	}
	prizes, ranked := settle.Compute(standings, p.stake)

	for _, prize := range prizes {
		if err := p.staker.Payout(p.ctx, prize.Wallet, prize.Amount); err != nil {
			p.log.Error("payout failed", zap.String("wallet", prize.Wallet), zap.Error(err))
		}
	}

	finalRanking := make([]types.PlayerView, 0, len(ranked))
	for _, s := range ranked {
		finalRanking = append(finalRanking, types.PlayerView{
			Wallet:    s.Wallet,
			Score:     s.Score,
			TotalTime: s.TotalTimeMs,
			QIndex:    engine.QuestionsPerRound,
		})
	}
	p.broadcast(types.ServerEvent{Type: types.EvtGameEnd, Data: types.GameEnd{
		PoolID:       p.id,
		Prizes:       prizes,
		FinalRanking: finalRanking,
	}})

	p.log.Info("round settled", zap.String("round", p.session.RoundID), zap.Int("players", len(ranked)))
	p.met.RoundsSettled.WithLabelValues(p.id).Inc()
	p.met.ActiveSessions.Dec()

	// Membership survives; the next join starts a fresh round.
	p.session = nil
	p.state = stateAbsent
}

func (p *Pool) membershipSnapshot() types.PoolUpdate {
	return types.PoolUpdate{
		PoolID:     p.id,
		Players:    len(p.members),
		PlayerList: slices.Clone(p.members),
	}
}

func (p *Pool) playerViews() []types.PlayerView {
	standings := p.session.Standings()
	out := make([]types.PlayerView, 0, len(standings))
	for _, pr := range standings {
		out = append(out, types.PlayerView{
			Wallet:    pr.Wallet,
			Score:     pr.Score,
			TotalTime: pr.TotalTimeMs,
			QIndex:    pr.Index,
		})
	}
	return out
}

func (p *Pool) send(clientID string, ev types.ServerEvent) {
	c, ok := p.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.outbox <- ev:
	default:
		close(c.outbox)
		delete(p.clients, clientID)
	}
}

func (p *Pool) broadcast(ev types.ServerEvent) {
	for id, c := range p.clients {
		select {
		case c.outbox <- ev:
			// ok
		default:
			// Client is slow/full - drop them.
			close(c.outbox)
			delete(p.clients, id)
		}
	}
}

func (p *Pool) view() View {
	v := View{
		PoolID:     p.id,
		Stake:      p.stake,
		State:      p.state.String(),
		Members:    slices.Clone(p.members),
		NumClients: len(p.clients),
	}
	if p.session != nil {
		v.RoundID = p.session.RoundID
		v.Players = p.playerViews()
	}
	return v
}

func (p *Pool) shutdown() {
	for id, c := range p.clients {
		close(c.outbox)
		delete(p.clients, id)
	}
	p.cancel()
}
