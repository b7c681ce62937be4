package marketstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/logger"
)

type stubSource struct {
	snapshot *contracts.RegimeSnapshot
	err      error
}

func (s *stubSource) GetByDate(ctx context.Context, date time.Time) (*contracts.RegimeSnapshot, error) {
	return s.snapshot, s.err
}

func testLog() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "console"})
}

func TestFromSnapshot(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		regime   contracts.Regime
		risk     contracts.RiskLevel
		signal   contracts.MarketSignal
		exposure float64
	}{
		{"bottom overrides everything", contracts.RegimeBottom, contracts.RiskLow, contracts.SignalRiskOff, 0},
		{"very high risk", contracts.RegimeNeutral, contracts.RiskVeryHigh, contracts.SignalRiskOff, 20},
		{"fear", contracts.RegimeFear, contracts.RiskMedium, contracts.SignalCaution, 50},
		{"high risk in neutral", contracts.RegimeNeutral, contracts.RiskHigh, contracts.SignalCaution, 50},
		{"euphoria reduces size", contracts.RegimeEuphoria, contracts.RiskMedium, contracts.SignalRiskOn, 80},
		{"bubble reduces size", contracts.RegimeBubble, contracts.RiskHigh, contracts.SignalCaution, 50}, // RiskHigh가 먼저 매치
		{"calm neutral", contracts.RegimeNeutral, contracts.RiskMedium, contracts.SignalRiskOn, 100},
		{"calm neutral low risk", contracts.RegimeNeutral, contracts.RiskLow, contracts.SignalRiskOn, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := FromSnapshot(&contracts.RegimeSnapshot{
				Date: date, Regime: tt.regime, RiskLevel: tt.risk,
			})
			if state.Signal != tt.signal {
				t.Errorf("signal = %s, want %s", state.Signal, tt.signal)
			}
			if state.Exposure != tt.exposure {
				t.Errorf("exposure = %.0f, want %.0f", state.Exposure, tt.exposure)
			}
			if !state.Date.Equal(date) {
				t.Errorf("date = %v, want %v", state.Date, date)
			}
		})
	}
}

// TestState_MissingSnapshotIsCaution 스냅샷 없으면 보수적 기본값
func TestState_MissingSnapshotIsCaution(t *testing.T) {
	p := NewProvider(&stubSource{}, testLog())
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	state, err := p.State(context.Background(), date)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Signal != contracts.SignalCaution || state.Exposure != 50 {
		t.Errorf("fallback state = %s/%.0f, want CAUTION/50", state.Signal, state.Exposure)
	}
}

func TestState_SourceErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	p := NewProvider(&stubSource{err: wantErr}, testLog())

	_, err := p.State(context.Background(), time.Now())
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
