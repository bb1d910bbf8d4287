package gacha

import (
	"errors"
	"math"
	"testing"
)

// fixtureItems is a trimmed copy of the bundled catalog.
func fixtureItems() []ItemGroup {
	return []ItemGroup{
		{Label: "Wピックアップ", Probability: "0.926%", Count: 12},
		{Label: "★5武器", Probability: "0.008%", Count: 188},
		{Label: "★5服装", Probability: "0.012%", Count: 62},
		{Label: "★4武器", Probability: "0.067%", Count: 19},
		{Label: "★3武器", Probability: "0.212%", Count: 26},
		{Label: "素材-a", Probability: "27.775%", Count: 2},
		{Label: "素材-b", Probability: "2.187%", Count: 1},
	}
}

func mustPool(t *testing.T, items []ItemGroup, targets []Target, policy GuaranteePolicy) *Pool {
	t.Helper()
	pool, err := BuildPool(items, targets, policy)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	return pool
}

func mustCalculate(t *testing.T, items []ItemGroup, settings Settings, policy GuaranteePolicy) *Result {
	t.Helper()
	res, err := Calculate(t.Context(), items, settings, policy)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return res
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("got err=%v, want *gacha.Error of kind %s", err, kind)
	}
	if ge.Kind != kind {
		t.Fatalf("got kind=%s (%v), want %s", ge.Kind, err, kind)
	}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
