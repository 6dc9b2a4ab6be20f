// Package engine holds the rules core for one trivia round: per-player
// progression, answer scoring, and completion detection. It has no
// knowledge of transport or pools; the pool actor feeds it commands and
// broadcasts the events it returns.
//
// Timing is client-reported: ElapsedMs on answers and timeouts is trusted
// as-is. That is a known trust boundary, not an accident.
package engine

import (
	"errors"
	"math/rand"
	"slices"
	"time"
)

var ErrStaleEvent = errors.New("stale question index")
var ErrUnknownPlayer = errors.New("player not in session")
var ErrAlreadyInSession = errors.New("player already in session")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdSubmitAnswer CommandType = "SubmitAnswer"
	CmdTimeout      CommandType = "Timeout"
)

type Command struct {
	Type      CommandType
	Wallet    string
	QIndex    int
	Answer    string // only meaningful for CmdSubmitAnswer
	ElapsedMs int64
}

type EventType string

const (
	EvtScored        EventType = "Scored"
	EvtAdvanced      EventType = "Advanced"
	EvtRoundComplete EventType = "RoundComplete"
)

type Event struct {
	Type   EventType
	Wallet string
	QIndex int // for EvtAdvanced: the player's new index
}

// Progression is one player's position within a round. Owned exclusively
// by the Session; callers get value copies via Standings.
type Progression struct {
	Wallet      string
	Score       int
	Index       int // next question ordinal, 0..QuestionsPerRound
	TotalTimeMs int64
	Order       []int // permutation of question indices, fixed at creation
}

// Session is one round for one pool. At most one exists per pool at a
// time; the pool actor enforces that.
type Session struct {
	PoolID    string
	RoundID   string
	Questions QuestionSet
	StartTime time.Time

	players map[string]*Progression
	joined  []string // wallet insertion order, for stable snapshots
	order   []int    // the round's shared shuffle, copied to every player
}

// NewSession shuffles the question order once and hands every current
// member a progression carrying a copy of that order. All players in a
// round answer the same question at the same ordinal position, which is
// what makes score-vs-score comparison fair.
func NewSession(poolID, roundID string, qs QuestionSet, wallets []string, start time.Time) *Session {
	s := &Session{
		PoolID:    poolID,
		RoundID:   roundID,
		Questions: qs,
		StartTime: start,
		players:   make(map[string]*Progression, len(wallets)),
		order:     rand.Perm(len(qs)),
	}
	for _, w := range wallets {
		_ = s.AddPlayer(w)
	}
	return s
}

// AddPlayer registers a late joiner. The new progression copies the
// round's shared order rather than reshuffling.
func (s *Session) AddPlayer(wallet string) error {
	if _, ok := s.players[wallet]; ok {
		return ErrAlreadyInSession
	}
	s.players[wallet] = &Progression{
		Wallet: wallet,
		Order:  slices.Clone(s.order),
	}
	s.joined = append(s.joined, wallet)
	return nil
}

// Apply processes one player event. A command whose QIndex doesn't match
// the player's current index is a stale duplicate/replay and changes
// nothing; callers drop ErrStaleEvent silently.
func (s *Session) Apply(cmd Command) ([]Event, error) {
	p, ok := s.players[cmd.Wallet]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if p.Index >= QuestionsPerRound || cmd.QIndex != p.Index {
		return nil, ErrStaleEvent
	}

	var events []Event
	switch cmd.Type {
	case CmdSubmitAnswer:
		q := s.Questions[p.Order[cmd.QIndex]]
		if MatchAnswer(cmd.Answer, q.Answer) {
			p.Score++
			events = append(events, Event{Type: EvtScored, Wallet: cmd.Wallet, QIndex: cmd.QIndex})
		}
	case CmdTimeout:
		// Never scores; just consumes the question.
	default:
		return nil, ErrUnsupportedCommand
	}

	p.TotalTimeMs += cmd.ElapsedMs
	p.Index++
	events = append(events, Event{Type: EvtAdvanced, Wallet: cmd.Wallet, QIndex: p.Index})

	if s.Complete() {
		events = append(events, Event{Type: EvtRoundComplete})
	}
	return events, nil
}

// Complete reports whether every player has consumed all questions.
func (s *Session) Complete() bool {
	for _, p := range s.players {
		if p.Index < QuestionsPerRound {
			return false
		}
	}
	return len(s.players) > 0
}

// Player returns a value copy of one player's progression.
func (s *Session) Player(wallet string) (Progression, bool) {
	p, ok := s.players[wallet]
	if !ok {
		return Progression{}, false
	}
	cp := *p
	cp.Order = slices.Clone(p.Order)
	return cp, true
}

// Standings returns value copies of every progression in join order.
// Broadcast payloads are built from these, never from live records.
func (s *Session) Standings() []Progression {
	out := make([]Progression, 0, len(s.joined))
	for _, w := range s.joined {
		p := s.players[w]
		cp := *p
		cp.Order = nil // not part of any snapshot
		out = append(out, cp)
	}
	return out
}

// OrderedQuestions returns the round's questions in the shared shuffled
// order, i.e. exactly as every player will see them.
func (s *Session) OrderedQuestions() []Question {
	out := make([]Question, 0, len(s.order))
	for _, i := range s.order {
		out = append(out, s.Questions[i])
	}
	return out
}

// Size reports the number of players in the session.
func (s *Session) Size() int { return len(s.players) }
