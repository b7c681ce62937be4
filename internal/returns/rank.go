package returns

import (
	"math"
	"sort"

	"github.com/wonny/compass/internal/contracts"
)

// RankCrossSection converts raw returns into 1-99 percentile ranks per
// horizon across the whole universe. Symbols with an undefined return at a
// horizon stay at the neutral 50 and do not dilute the ranked pool.
// ⭐ SSOT: 횡단면 랭킹은 여기서만
func RankCrossSection(set *contracts.ReturnSet) *contracts.RankSet {
	out := &contracts.RankSet{
		Date:  set.Date,
		Ranks: make(map[string]map[contracts.Horizon]int, len(set.Returns)),
	}

	for symbol := range set.Returns {
		out.Ranks[symbol] = make(map[contracts.Horizon]int, len(contracts.AllHorizons()))
		for _, h := range contracts.AllHorizons() {
			out.Ranks[symbol][h] = int(contracts.NeutralRank)
		}
	}

	for _, h := range contracts.AllHorizons() {
		rankHorizon(set, h, out)
	}
	return out
}

type rankedEntry struct {
	symbol string
	value  float64
}

func rankHorizon(set *contracts.ReturnSet, h contracts.Horizon, out *contracts.RankSet) {
	pool := make([]rankedEntry, 0, len(set.Returns))
	for symbol, byHorizon := range set.Returns {
		if mv, ok := byHorizon[h]; ok && mv.Defined {
			pool = append(pool, rankedEntry{symbol: symbol, value: mv.Value})
		}
	}

	// Fewer than two defined values: no cross-section exists, everyone
	// stays neutral.
	if len(pool) < 2 {
		return
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].value == pool[j].value {
			return pool[i].symbol < pool[j].symbol
		}
		return pool[i].value < pool[j].value
	})

	n := len(pool)
	firstIdx := 0
	for i, entry := range pool {
		if i > 0 && entry.value != pool[i-1].value {
			firstIdx = i
		}
		out.Ranks[entry.symbol][h] = RankFromPosition(firstIdx, n)
	}
}

// RankFromPosition maps a 0-based ascending position within a pool of n
// values onto the 1-99 scale.
func RankFromPosition(position, n int) int {
	rank := int(math.Round(float64(position)/float64(n-1)*98.0)) + 1
	if rank < 1 {
		rank = 1
	}
	if rank > 99 {
		rank = 99
	}
	return rank
}
