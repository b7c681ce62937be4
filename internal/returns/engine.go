package returns

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/pkg/logger"
)

// Engine computes trailing returns for every symbol in a price panel.
// 종목별 계산은 독립이므로 워커 풀로 병렬 처리한다.
type Engine struct {
	log     *logger.Logger
	workers int
}

// NewEngine creates a return engine. workers <= 0 defaults to GOMAXPROCS.
func NewEngine(log *logger.Logger, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{log: log, workers: workers}
}

// ComputeReturns calculates the trailing return at every horizon for each
// symbol in the panel. Symbols with fewer than 252 sessions of history are
// ineligible and omitted from the result entirely.
func (e *Engine) ComputeReturns(ctx context.Context, panel *contracts.Panel) (*contracts.ReturnSet, error) {
	if panel == nil || panel.Count() == 0 {
		return nil, fmt.Errorf("empty price panel")
	}

	set := &contracts.ReturnSet{
		Date:    panel.Date,
		Returns: make(map[string]map[contracts.Horizon]contracts.MaybeValue, panel.Count()),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	skipped := 0
	for symbol := range panel.Symbols {
		symbol := symbol
		g.Go(func() error {
			history, _ := panel.History(symbol)
			returns, ok := symbolReturns(history)

			mu.Lock()
			defer mu.Unlock()
			if !ok {
				skipped++
				return nil
			}
			set.Returns[symbol] = returns
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"date":          panel.Date.Format("2006-01-02"),
		"symbols":       panel.Count(),
		"short_history": skipped,
	}).Debug("Trailing returns computed")

	return set, nil
}

// symbolReturns computes all horizon returns for one symbol's ascending
// history. Returns ok=false when the history is shorter than the eligibility
// minimum (그 종목은 이 날짜에서 제외).
func symbolReturns(history []contracts.PricePoint) (map[contracts.Horizon]contracts.MaybeValue, bool) {
	if len(history) < contracts.MinHistorySessions {
		return nil, false
	}

	out := make(map[contracts.Horizon]contracts.MaybeValue, len(contracts.AllHorizons()))
	last := history[len(history)-1].Close
	for _, h := range contracts.AllHorizons() {
		sessions := h.Sessions()
		if len(history) <= sessions {
			out[h] = contracts.None()
			continue
		}

		base := history[len(history)-1-sessions].Close
		if base <= 0 || last <= 0 {
			out[h] = contracts.None()
			continue
		}
		out[h] = contracts.Some(last/base - 1.0)
	}
	return out, true
}
