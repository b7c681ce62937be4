package rsrating

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/wonny/compass/internal/contracts"
	"github.com/wonny/compass/internal/returns"
	"github.com/wonny/compass/internal/strategy"
	"github.com/wonny/compass/pkg/config"
	"github.com/wonny/compass/pkg/logger"
)

func testCalculator() *Calculator {
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "console"})
	return NewCalculator(&strategy.Default().RSRating, log)
}

// returnSet builds a set where every horizon carries the symbol's 1M return,
// ret1m/ret3m만 따로 지정 가능
func returnSet(rets map[string][2]float64) *contracts.ReturnSet {
	set := &contracts.ReturnSet{
		Date:    time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Returns: make(map[string]map[contracts.Horizon]contracts.MaybeValue),
	}
	for symbol, r := range rets {
		set.Returns[symbol] = map[contracts.Horizon]contracts.MaybeValue{
			contracts.Horizon1M:  contracts.Some(r[0]),
			contracts.Horizon3M:  contracts.Some(r[1]),
			contracts.Horizon6M:  contracts.Some(r[1]),
			contracts.Horizon9M:  contracts.Some(r[1]),
			contracts.Horizon12M: contracts.Some(r[1]),
		}
	}
	return set
}

func TestCalculate_OneMonthPenaltyOnly(t *testing.T) {
	// ret_1m = -5% (-2% 미만), ret_3m = +10% → 1M 페널티만 적용 (0.85)
	set := returnSet(map[string][2]float64{
		"Y": {-0.05, 0.10},
		"A": {0.02, 0.05},
		"B": {0.08, 0.12},
		"C": {-0.01, 0.01},
	})
	ranks := returns.RankCrossSection(set)

	out, err := testCalculator().Calculate(context.Background(), set, ranks)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	rec, ok := out.Get("Y")
	if !ok {
		t.Fatal("Y missing from output")
	}
	if math.Abs(rec.Penalty-0.85) > 1e-9 {
		t.Errorf("penalty = %v, want 0.85", rec.Penalty)
	}

	want := int(math.Round(float64(rec.RSRatingRaw) * 0.85))
	if want < 1 {
		want = 1
	}
	if rec.RSRating != want {
		t.Errorf("rs_rating = %d, want round(%d * 0.85) = %d", rec.RSRating, rec.RSRatingRaw, want)
	}
}

func TestCalculate_CompoundPenalties(t *testing.T) {
	tests := []struct {
		name        string
		ret1m       float64
		ret3m       float64
		wantPenalty float64
	}{
		{"no penalty", 0.01, 0.05, 1.0},
		{"noise band not penalized", -0.015, -0.01, 1.0},
		{"both monthly tests fire", -0.05, -0.05, 0.85 * 0.70},
		{"falling knife stacks", -0.20, 0.10, 0.85 * 0.85},
		{"all three fire", -0.20, -0.10, 0.85 * 0.85 * 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := returnSet(map[string][2]float64{
				"X": {tt.ret1m, tt.ret3m},
				"A": {0.0, 0.0},
				"B": {0.05, 0.05},
			})
			ranks := returns.RankCrossSection(set)

			out, err := testCalculator().Calculate(context.Background(), set, ranks)
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}

			rec, _ := out.Get("X")
			if math.Abs(rec.Penalty-tt.wantPenalty) > 1e-9 {
				t.Errorf("penalty = %v, want %v", rec.Penalty, tt.wantPenalty)
			}
		})
	}
}

func TestCalculate_RatingNeverExceedsRaw(t *testing.T) {
	// 페널티는 (0,1] → rs_rating ≤ rs_rating_raw 불변식
	rng := rand.New(rand.NewSource(42))

	rets := make(map[string][2]float64)
	for i := 0; i < 200; i++ {
		rets[fmt.Sprintf("S%03d", i)] = [2]float64{
			rng.Float64()*0.8 - 0.4,
			rng.Float64()*0.8 - 0.4,
		}
	}
	set := returnSet(rets)
	ranks := returns.RankCrossSection(set)

	out, err := testCalculator().Calculate(context.Background(), set, ranks)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	for symbol, rec := range out.Ratings {
		if rec.RSRating > rec.RSRatingRaw {
			t.Errorf("%s: rs_rating %d > rs_rating_raw %d", symbol, rec.RSRating, rec.RSRatingRaw)
		}
		if rec.RSRating < 1 || rec.RSRating > 99 {
			t.Errorf("%s: rs_rating %d out of [1,99]", symbol, rec.RSRating)
		}
		if rec.Penalty <= 0 || rec.Penalty > 1 {
			t.Errorf("%s: penalty %v out of (0,1]", symbol, rec.Penalty)
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	// 같은 입력 두 번 → 같은 출력 (숨은 전역 상태 금지)
	set := returnSet(map[string][2]float64{
		"A": {0.10, 0.05}, "B": {-0.03, 0.02}, "C": {0.0, 0.0}, "D": {0.22, -0.08},
	})
	ranks := returns.RankCrossSection(set)
	calc := testCalculator()

	first, err := calc.Calculate(context.Background(), set, ranks)
	if err != nil {
		t.Fatalf("first Calculate failed: %v", err)
	}
	second, err := calc.Calculate(context.Background(), set, ranks)
	if err != nil {
		t.Fatalf("second Calculate failed: %v", err)
	}

	if !reflect.DeepEqual(first.Ratings, second.Ratings) {
		t.Error("identical inputs produced different outputs")
	}
}

func TestCalculate_SingleSymbolIsNeutral(t *testing.T) {
	// 횡단면이 없으면 재랭킹 불가 → raw 50
	set := returnSet(map[string][2]float64{"ONLY": {0.10, 0.10}})
	ranks := returns.RankCrossSection(set)

	out, err := testCalculator().Calculate(context.Background(), set, ranks)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	rec, _ := out.Get("ONLY")
	if rec.RSRatingRaw != 50 {
		t.Errorf("rs_rating_raw = %d, want neutral 50", rec.RSRatingRaw)
	}
}
