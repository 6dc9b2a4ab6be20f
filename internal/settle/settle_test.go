package settle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_TwoPlayerFiveStake(t *testing.T) {
	// The pool "5" scenario: A 8/9000ms beats B 6/15000ms.
	standings := []Standing{
		{Wallet: "0xB", Score: 6, TotalTimeMs: 15000},
		{Wallet: "0xA", Score: 8, TotalTimeMs: 9000},
	}

	prizes, ranked := Compute(standings, 5)

	require.Len(t, prizes, 2)
	assert.Equal(t, Prize{Wallet: "0xA", Rank: 1, Amount: 4.50}, prizes[0])
	assert.Equal(t, Prize{Wallet: "0xB", Rank: 2, Amount: 2.70}, prizes[1])

	require.Len(t, ranked, 2)
	assert.Equal(t, "0xA", ranked[0].Wallet)
	assert.Equal(t, "0xB", ranked[1].Wallet)
}

func TestCompute_TopThreeReceiveFullNinetyPercent(t *testing.T) {
	standings := []Standing{
		{Wallet: "w1", Score: 10, TotalTimeMs: 1000},
		{Wallet: "w2", Score: 9, TotalTimeMs: 1000},
		{Wallet: "w3", Score: 8, TotalTimeMs: 1000},
		{Wallet: "w4", Score: 7, TotalTimeMs: 1000},
		{Wallet: "w5", Score: 6, TotalTimeMs: 1000},
	}
	stake := 2.0

	prizes, _ := Compute(standings, stake)

	require.Len(t, prizes, 3, "4th place and below get nothing")
	var total float64
	for _, p := range prizes {
		total += p.Amount
	}
	// P*S*0.9*(0.5+0.3+0.2)
	assert.Equal(t, 5*stake*0.9, total)
	assert.Equal(t, "w4", Rank(standings)[3].Wallet)
}

func TestCompute_FewerThanThreePlayers(t *testing.T) {
	prizes, _ := Compute([]Standing{{Wallet: "only", Score: 3}}, 10)
	require.Len(t, prizes, 1)
	// 1 * 10 * 0.5 * 0.9
	assert.Equal(t, 4.50, prizes[0].Amount)
}

func TestRank_TiesBrokenByFasterTime(t *testing.T) {
	standings := []Standing{
		{Wallet: "slow", Score: 7, TotalTimeMs: 20000},
		{Wallet: "fast", Score: 7, TotalTimeMs: 8000},
		{Wallet: "top", Score: 9, TotalTimeMs: 30000},
	}

	ranked := Rank(standings)

	assert.Equal(t, []string{"top", "fast", "slow"}, []string{ranked[0].Wallet, ranked[1].Wallet, ranked[2].Wallet})
	// Input order untouched.
	assert.Equal(t, "slow", standings[0].Wallet)
}

func TestCompute_Deterministic(t *testing.T) {
	standings := []Standing{
		{Wallet: "a", Score: 5, TotalTimeMs: 1000},
		{Wallet: "b", Score: 5, TotalTimeMs: 1000},
		{Wallet: "c", Score: 5, TotalTimeMs: 1000},
	}

	first, _ := Compute(standings, 1)
	second, _ := Compute(standings, 1)
	assert.Equal(t, first, second)
	// Full ties keep input order, so "a" ranks first both times.
	assert.Equal(t, "a", first[0].Wallet)
}

func TestCompute_AmountsRoundedToCents(t *testing.T) {
	// 3 players at $0.50: pool 1.50, first prize 0.675 -> 0.68.
	standings := []Standing{
		{Wallet: "a", Score: 3},
		{Wallet: "b", Score: 2},
		{Wallet: "c", Score: 1},
	}

	prizes, _ := Compute(standings, 0.50)

	assert.Equal(t, 0.68, prizes[0].Amount)
	assert.Equal(t, 0.40, prizes[1].Amount)
	assert.Equal(t, 0.27, prizes[2].Amount)
}
