package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/compass/pkg/database"
	"github.com/wonny/compass/pkg/logger"
)

// Registry is the read-only symbol → sector lookup, loaded once per run and
// injected into the components that need it.
// ⭐ SSOT: 섹터 매핑 (전역 싱글턴 금지, 명시적 주입만)
type Registry struct {
	bySymbol map[string]string
	bySector map[string][]string
}

// Load reads the full mapping from market.sectors
func Load(ctx context.Context, db *database.DB, log *logger.Logger) (*Registry, error) {
	rows, err := db.Pool.Query(ctx, `SELECT symbol, sector_code FROM market.sectors`)
	if err != nil {
		return nil, fmt.Errorf("query sectors: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var symbol, sector string
		if err := rows.Scan(&symbol, &sector); err != nil {
			return nil, fmt.Errorf("scan sector row: %w", err)
		}
		mapping[symbol] = sector
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r := NewStatic(mapping)
	log.WithFields(map[string]interface{}{
		"symbols": len(r.bySymbol),
		"sectors": len(r.bySector),
	}).Info("Sector registry loaded")
	return r, nil
}

// NewStatic builds a registry from an in-memory mapping (테스트 픽스처용)
func NewStatic(bySymbol map[string]string) *Registry {
	r := &Registry{
		bySymbol: make(map[string]string, len(bySymbol)),
		bySector: make(map[string][]string),
	}
	for symbol, sector := range bySymbol {
		r.bySymbol[symbol] = sector
		r.bySector[sector] = append(r.bySector[sector], symbol)
	}
	for _, symbols := range r.bySector {
		sort.Strings(symbols)
	}
	return r
}

// SectorOf implements contracts.SectorRegistry
func (r *Registry) SectorOf(symbol string) (string, bool) {
	sector, ok := r.bySymbol[symbol]
	return sector, ok
}

// Sectors returns all sector codes, sorted
func (r *Registry) Sectors() []string {
	out := make([]string, 0, len(r.bySector))
	for sector := range r.bySector {
		out = append(out, sector)
	}
	sort.Strings(out)
	return out
}

// Symbols returns the symbols of one sector, sorted
func (r *Registry) Symbols(sectorCode string) []string {
	return r.bySector[sectorCode]
}
