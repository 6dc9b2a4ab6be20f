// Package types defines the wire protocol: what clients send over the
// socket and what the server emits to a pool group or a single
// connection.
package types

import (
	"github.com/mindduel/backend/internal/engine"
	"github.com/mindduel/backend/internal/settle"
)

// Client -> server message types.
const (
	MsgJoinPool     = "joinPool"
	MsgSubmitAnswer = "submitAnswer"
	MsgTimeout      = "timeout"
	MsgLeavePool    = "leavePool"
)

type ClientMessage struct {
	Type      string `json:"type"`
	PoolID    string `json:"poolId,omitempty"`
	Wallet    string `json:"wallet,omitempty"`
	Answer    string `json:"answer,omitempty"`
	QIndex    int    `json:"qIndex"`
	ElapsedMs int64  `json:"elapsedMs,omitempty"`
}

// Server -> client event names.
const (
	EvtWelcome      = "welcome"
	EvtPoolUpdate   = "poolUpdate"
	EvtGameStart    = "gameStart"
	EvtGameState    = "gameState"
	EvtNextQuestion = "nextQuestion"
	EvtScoreUpdate  = "scoreUpdate"
	EvtGameEnd      = "gameEnd"
	EvtError        = "error"
)

// ServerEvent is the envelope for everything the server emits.
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// PlayerView is a player's progression as leaderboards see it.
type PlayerView struct {
	Wallet    string `json:"wallet"`
	Score     int    `json:"score"`
	TotalTime int64  `json:"totalTime"`
	QIndex    int    `json:"qIndex"`
}

type Welcome struct {
	Message string `json:"message"`
}

type PoolUpdate struct {
	PoolID     string   `json:"poolId"`
	Players    int      `json:"players"`
	PlayerList []string `json:"playerList"`
}

type GameStart struct {
	PoolID    string            `json:"poolId"`
	Questions []engine.Question `json:"questions"`
	Players   []PlayerView      `json:"players"`
	StartTime int64             `json:"startTime"` // unix millis
	RoundID   string            `json:"roundId"`
}

// GameState resynchronizes a connection that joins while a round is
// already active.
type GameState struct {
	PoolID    string            `json:"poolId"`
	Questions []engine.Question `json:"questions"`
	CurrentQ  int               `json:"currentQ"`
	Players   []PlayerView      `json:"players"`
	StartTime int64             `json:"startTime"`
	RoundID   string            `json:"roundId"`
}

type NextQuestion struct {
	PoolID string `json:"poolId"`
	QIndex int    `json:"qIndex"`
}

type ScoreUpdate struct {
	Players []PlayerView `json:"players"`
}

type GameEnd struct {
	PoolID       string         `json:"poolId"`
	Prizes       []settle.Prize `json:"prizes"`
	FinalRanking []PlayerView   `json:"finalRanking"`
}

type Error struct {
	Message string `json:"message"`
}
