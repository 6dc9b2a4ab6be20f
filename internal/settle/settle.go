// Package settle computes the prize split once every player in a round
// has finished. Pure functions only; the pool actor calls Compute exactly
// once per round and broadcasts the result.
package settle

import (
	"math"
	"sort"
)

// PlatformFeeRate is taken off the top before prizes are split.
const PlatformFeeRate = 0.10

// prizeShares is the split across the top three finishers.
var prizeShares = [3]float64{0.5, 0.3, 0.2}

// Standing is one player's final score and accumulated answer time.
type Standing struct {
	Wallet      string
	Score       int
	TotalTimeMs int64
}

// Prize is one winner's payout. Rank is 1-based.
type Prize struct {
	Wallet string  `json:"wallet"`
	Rank   int     `json:"rank"`
	Amount float64 `json:"prize"`
}

// Rank orders standings by score descending, ties broken by total time
// ascending (faster wins). The input is not modified; remaining ties keep
// input order, so identical inputs rank identically.
func Rank(standings []Standing) []Standing {
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TotalTimeMs < ranked[j].TotalTimeMs
	})
	return ranked
}

// Compute ranks the standings and splits the pool among the top three.
// totalPool = len(standings) * stake; each prize is share * totalPool
// * (1 - fee), rounded to cents. Players ranked 4th and below get nothing.
func Compute(standings []Standing, stake float64) ([]Prize, []Standing) {
	ranked := Rank(standings)
	totalPool := float64(len(ranked)) * stake

	var prizes []Prize
	for i, s := range ranked {
		if i >= len(prizeShares) {
			break
		}
		amount := totalPool * prizeShares[i] * (1 - PlatformFeeRate)
		prizes = append(prizes, Prize{
			Wallet: s.Wallet,
			Rank:   i + 1,
			Amount: roundCents(amount),
		})
	}
	return prizes, ranked
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
