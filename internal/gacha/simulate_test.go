package gacha

import (
	"context"
	"errors"
	"math"
	"testing"
)

func newSim(t *testing.T, items []ItemGroup, targets []Target, copies int, policy GuaranteePolicy) *Simulator {
	t.Helper()
	pool := mustPool(t, items, targets, policy)
	return NewSimulator(pool, Classify(pool, copies), copies)
}

func TestMassConservation(t *testing.T) {
	sim := newSim(t, fixtureItems(), []Target{{Label: "Wピックアップ", Count: 2}, {Label: "★5服装", Count: 1}}, 2, DefaultPolicy())
	_, err := sim.Run(t.Context(), 250, func(pull int, tbl Table) error {
		if m := tbl.Mass(); !approx(m, 1, 1e-9) {
			t.Fatalf("pull %d: mass=%v, want 1", pull, m)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSingleCertainDraw(t *testing.T) {
	items := []ItemGroup{{Label: "X", Probability: "100%", Count: 1}}
	res := mustCalculate(t, items, Settings{
		Targets:        []Target{{Label: "X", Count: 1}},
		CopiesRequired: 1, MaxPulls: 1, SampleStep: 1,
	}, DefaultPolicy())
	if len(res.Curve) != 1 || res.Curve[0].PullCount != 1 {
		t.Fatalf("unexpected curve %+v", res.Curve)
	}
	if got := res.Curve[0].Probabilities[0]; got != 1.0 {
		t.Fatalf("P(>=1) = %v, want 1", got)
	}
}

func TestTwoOutcomes(t *testing.T) {
	items := []ItemGroup{
		{Label: "A", Probability: "10%", Count: 1},
		{Label: "B", Probability: "90%", Count: 1},
	}
	res := mustCalculate(t, items, Settings{
		Targets:        []Target{{Label: "A", Count: 1}},
		CopiesRequired: 1, MaxPulls: 1, SampleStep: 1,
	}, DefaultPolicy())
	if got := res.Curve[0].Probabilities[0]; !approx(got, 0.10, 1e-15) {
		t.Fatalf("P(>=1) = %v, want 0.10", got)
	}
}

func TestSoftPityForcesTenthPull(t *testing.T) {
	items := []ItemGroup{
		{Label: "T", Probability: "1%", Count: 1},
		{Label: "F", Probability: "99%", Count: 1},
	}
	policy := GuaranteePolicy{SoftLabels: []string{"T"}}
	res := mustCalculate(t, items, Settings{
		Targets:        []Target{{Label: "T", Count: 1}},
		CopiesRequired: 1, MaxPulls: 12, SampleStep: 1,
	}, policy)

	p9, _ := res.Curve.At(9)
	p10, _ := res.Curve.At(10)
	if want := 1 - math.Pow(0.99, 9); !approx(p9.Probabilities[0], want, 1e-12) {
		t.Fatalf("pull 9: P=%v, want binomial %v", p9.Probabilities[0], want)
	}
	naive := 1 - math.Pow(0.99, 10)
	if !approx(p10.Probabilities[0], 1, 1e-12) {
		t.Fatalf("pull 10: P=%v, want 1 (forced guarantee pool); naive would be %v", p10.Probabilities[0], naive)
	}
}

func TestHardPityGuaranteesTarget(t *testing.T) {
	items := []ItemGroup{
		{Label: "追加枠", Probability: "0.0001%", Count: 1},
		{Label: "★5武器", Probability: "5%", Count: 10},
		{Label: "素材-a", Probability: "45%", Count: 1},
	}
	sim := newSim(t, items, []Target{{Label: "追加枠", Count: 1}}, 1, DefaultPolicy())
	_, err := sim.Run(t.Context(), 100, func(pull int, tbl Table) error {
		zero := 0.0
		for st, p := range tbl {
			if st.Counts[0] == 0 {
				zero += p
			}
		}
		switch pull {
		case 99:
			if zero < 0.99 {
				t.Fatalf("pull 99: P(no target)=%v, expected the target to be very unlikely", zero)
			}
		case 100:
			if zero != 0 {
				t.Fatalf("pull 100: P(no target)=%v, want exactly 0", zero)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHardPityTieBreakAcrossRuns(t *testing.T) {
	items := []ItemGroup{
		{Label: "ピックアップ", Probability: "0.0001%", Count: 1},
		{Label: "追加枠", Probability: "0.0001%", Count: 1},
		{Label: "★5武器", Probability: "5%", Count: 10},
		{Label: "素材-a", Probability: "45%", Count: 1},
	}
	sim := newSim(t, items, []Target{{Label: "ピックアップ", Count: 1}, {Label: "追加枠", Count: 1}}, 1, DefaultPolicy())
	_, err := sim.Run(t.Context(), 200, func(pull int, tbl Table) error {
		var first, second float64
		for st, p := range tbl {
			if st.Counts[0] == 1 {
				first += p
			}
			if st.Counts[1] == 1 {
				second += p
			}
		}
		switch pull {
		case 100:
			if !approx(first, 1, 1e-9) || second > 0.01 {
				t.Fatalf("pull 100: P(first)=%v P(second)=%v; the first emitted target must receive the grant", first, second)
			}
		case 200:
			if !approx(second, 1, 1e-9) {
				t.Fatalf("pull 200: P(second)=%v, want 1", second)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCurveMonotonic(t *testing.T) {
	res := mustCalculate(t, fixtureItems(), Settings{
		Targets:        []Target{{Label: "Wピックアップ", Count: 2}, {Label: "★4武器", Count: 1}},
		CopiesRequired: 1, MaxPulls: 300, SampleStep: 5,
	}, DefaultPolicy())

	const tol = 1e-12
	for i, pt := range res.Curve {
		for k := 0; k+1 < len(pt.Probabilities); k++ {
			if pt.Probabilities[k]+tol < pt.Probabilities[k+1] {
				t.Fatalf("pull %d: P(>=%d)=%v < P(>=%d)=%v", pt.PullCount, k+1, pt.Probabilities[k], k+2, pt.Probabilities[k+1])
			}
		}
		if i == 0 {
			continue
		}
		prev := res.Curve[i-1]
		if prev.PullCount >= pt.PullCount {
			t.Fatalf("curve not ascending: %d then %d", prev.PullCount, pt.PullCount)
		}
		for k := range pt.Probabilities {
			if pt.Probabilities[k]+tol < prev.Probabilities[k] {
				t.Fatalf("P(>=%d) fell from %v at %d to %v at %d", k+1, prev.Probabilities[k], prev.PullCount, pt.Probabilities[k], pt.PullCount)
			}
		}
	}
}

func TestStepLeavesPreviousTable(t *testing.T) {
	sim := newSim(t, fixtureItems(), []Target{{Label: "Wピックアップ", Count: 1}}, 1, DefaultPolicy())
	prev := sim.Initial()
	_ = sim.Step(prev, 1)
	if len(prev) != 1 || prev[State{}] != 1 {
		t.Fatalf("Step mutated its input: %v", prev)
	}
}

func TestRunCancellation(t *testing.T) {
	sim := newSim(t, fixtureItems(), []Target{{Label: "Wピックアップ", Count: 1}}, 1, DefaultPolicy())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := sim.Run(ctx, 10, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("got err=%v, want context.Canceled", err)
	}

	ctx, cancel = context.WithCancel(t.Context())
	defer cancel()
	last := 0
	_, err := sim.Run(ctx, 50, func(pull int, _ Table) error {
		last = pull
		if pull == 5 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) || last != 5 {
		t.Fatalf("got err=%v last=%d, want cancellation at the boundary after pull 5", err, last)
	}
}

func TestPullsIterator(t *testing.T) {
	sim := newSim(t, fixtureItems(), []Target{{Label: "Wピックアップ", Count: 1}}, 1, DefaultPolicy())
	want, err := sim.Run(t.Context(), 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	var got Table
	n := 0
	for tbl, err := range sim.Pulls(t.Context(), 20) {
		if err != nil {
			t.Fatal(err)
		}
		n++
		got = tbl
		if n == 5 {
			break
		}
	}
	if n != 5 {
		t.Fatalf("iterated %d pulls, want 5", n)
	}
	a := AtLeast(got, 1, 1)[0]
	b := AtLeast(want, 1, 1)[0]
	if !approx(a, b, 1e-12) {
		t.Fatalf("iterator and Run disagree at pull 5: %v vs %v", a, b)
	}
}

func TestNonFiniteMassIsAComputationError(t *testing.T) {
	pool := &Pool{Outcomes: []DrawOutcome{{Weight: math.NaN(), Target: NoTarget}}}
	sim := NewSimulator(pool, Classify(pool, 1), 1)

	var errs []error
	for tbl, err := range sim.Pulls(t.Context(), 10) {
		if tbl != nil {
			t.Fatalf("got a table with mass %v", tbl.Mass())
		}
		errs = append(errs, err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d results, want a single error", len(errs))
	}
	wantKind(t, errs[0], KindComputation)

	_, err := sim.Run(t.Context(), 10, nil)
	wantKind(t, err, KindComputation)
}

func TestPullsStopsWhenCanceled(t *testing.T) {
	sim := newSim(t, fixtureItems(), []Target{{Label: "Wピックアップ", Count: 1}}, 1, DefaultPolicy())
	ctx, cancel := context.WithCancel(t.Context())
	n := 0
	for tbl, err := range sim.Pulls(ctx, 50) {
		if err != nil {
			if !errors.Is(err, context.Canceled) || n != 3 {
				t.Fatalf("err=%v after %d pulls, want cancellation after 3", err, n)
			}
			break
		}
		if tbl == nil {
			t.Fatal("nil table without error")
		}
		n++
		if n == 3 {
			cancel()
		}
	}
	if n != 3 {
		t.Fatalf("iterated %d pulls, want 3", n)
	}
}

func TestCalculateReportsConfigurationErrors(t *testing.T) {
	_, err := Calculate(t.Context(), fixtureItems(), Settings{
		Targets:        []Target{{Label: "nope", Count: 1}},
		CopiesRequired: 1, MaxPulls: 10, SampleStep: 1,
	}, DefaultPolicy())
	wantKind(t, err, KindUnknownLabel)
	if errors.Is(err, ErrComputation) {
		t.Fatalf("configuration error must not match ErrComputation")
	}
}
