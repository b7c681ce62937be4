package contracts

import "time"

// SectorTrend labels a sector's composite trajectory
type SectorTrend string

const (
	SectorLeading   SectorTrend = "LEADING"
	SectorImproving SectorTrend = "IMPROVING"
	SectorNeutral   SectorTrend = "NEUTRAL"
	SectorWeakening SectorTrend = "WEAKENING"
	SectorLagging   SectorTrend = "LAGGING"
)

// SectorRankingRow is the per-sector composite ranking for one date
// ⭐ SSOT: 섹터 랭킹 산출물
type SectorRankingRow struct {
	SectorCode string    `json:"sector_code"`
	Date       time.Time `json:"date"`

	Score float64 `json:"score"` // [0, 100] composite

	// Normalized per-feed scores, each [0, 100]
	RSScore        float64 `json:"rs_score"`
	MoneyFlowScore float64 `json:"money_flow_score"`
	BreadthScore   float64 `json:"breadth_score"`
	MomentumScore  float64 `json:"momentum_score"`

	Trend SectorTrend `json:"trend"`

	// Dense rank, descending by score; ties broken by sector_code ascending
	Rank int `json:"rank"`
}
