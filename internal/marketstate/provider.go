package marketstate

import (
	"context"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/logger"
)

// SnapshotSource supplies the regime snapshot a state is derived from
type SnapshotSource interface {
	GetByDate(ctx context.Context, date time.Time) (*contracts.RegimeSnapshot, error)
}

// Provider derives the RISK_ON/CAUTION/RISK_OFF signal and exposure level
// from the persisted regime snapshot of the same date.
// 스냅샷이 없으면 보수적으로 CAUTION/50 반환.
type Provider struct {
	source SnapshotSource
	log    *logger.Logger
}

// NewProvider creates a market state provider
func NewProvider(source SnapshotSource, log *logger.Logger) *Provider {
	return &Provider{source: source, log: log}
}

// State implements contracts.MarketStateProvider
func (p *Provider) State(ctx context.Context, date time.Time) (contracts.MarketState, error) {
	snapshot, err := p.source.GetByDate(ctx, date)
	if err != nil {
		return contracts.MarketState{}, err
	}
	if snapshot == nil {
		p.log.WithField("date", date.Format("2006-01-02")).
			Warn("No regime snapshot, defaulting market state to CAUTION")
		return contracts.MarketState{Date: date, Signal: contracts.SignalCaution, Exposure: 50}, nil
	}
	return FromSnapshot(snapshot), nil
}

// FromSnapshot maps a regime snapshot onto a market state.
// 순서 있는 결정 테이블: 위에서부터 첫 매치 적용.
func FromSnapshot(s *contracts.RegimeSnapshot) contracts.MarketState {
	state := contracts.MarketState{Date: s.Date}

	switch {
	case s.Regime == contracts.RegimeBottom:
		state.Signal, state.Exposure = contracts.SignalRiskOff, 0
	case s.RiskLevel == contracts.RiskVeryHigh:
		state.Signal, state.Exposure = contracts.SignalRiskOff, 20
	case s.Regime == contracts.RegimeFear || s.RiskLevel == contracts.RiskHigh:
		state.Signal, state.Exposure = contracts.SignalCaution, 50
	case s.Regime == contracts.RegimeEuphoria || s.Regime == contracts.RegimeBubble:
		// Overheated but rising: participate with reduced size
		state.Signal, state.Exposure = contracts.SignalRiskOn, 80
	default:
		state.Signal, state.Exposure = contracts.SignalRiskOn, 100
	}
	return state
}
