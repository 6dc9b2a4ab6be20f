// Package chain is the wallet/staking boundary. The real integration
// (approve + stake transactions) lives outside this repo; the core only
// needs something to call when a round settles.
package chain

import (
	"context"

	"go.uber.org/zap"
)

type Staker interface {
	// Stake locks a player's entry for a round.
	Stake(ctx context.Context, wallet string, amount float64) error
	// Payout sends a settled prize to a wallet.
	Payout(ctx context.Context, wallet string, amount float64) error
}

// MockStaker logs and succeeds. Wallet addresses are taken at face value
// here; verifying them is out of scope for this service.
type MockStaker struct {
	log *zap.Logger
}

func NewMockStaker(log *zap.Logger) *MockStaker {
	return &MockStaker{log: log}
}

func (m *MockStaker) Stake(_ context.Context, wallet string, amount float64) error {
	m.log.Info("mock stake", zap.String("wallet", wallet), zap.Float64("amount", amount))
	return nil
}

func (m *MockStaker) Payout(_ context.Context, wallet string, amount float64) error {
	m.log.Info("mock payout", zap.String("wallet", wallet), zap.Float64("amount", amount))
	return nil
}
