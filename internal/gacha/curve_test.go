package gacha

import (
	"reflect"
	"testing"
)

func TestSampledPoints(t *testing.T) {
	res := mustCalculate(t, fixtureItems(), Settings{
		Targets:        []Target{{Label: "Wピックアップ", Count: 1}},
		CopiesRequired: 1, MaxPulls: 25, SampleStep: 10,
	}, DefaultPolicy())
	var got []int
	for _, p := range res.Curve {
		got = append(got, p.PullCount)
		if len(p.Probabilities) != 1 {
			t.Fatalf("pull %d: %d probabilities, want 1", p.PullCount, len(p.Probabilities))
		}
	}
	if want := []int{1, 10, 20, 25}; !reflect.DeepEqual(got, want) {
		t.Fatalf("sampled pulls = %v, want %v", got, want)
	}
	if len(res.Targets) != 1 || res.Targets[0].Name != "Wピックアップ-target-1" {
		t.Fatalf("unexpected targets %+v", res.Targets)
	}
}

func TestAtLeast(t *testing.T) {
	tbl := Table{
		State{Counts: [MaxTargets]uint8{0, 0, 0}}: 0.1,
		State{Counts: [MaxTargets]uint8{2, 0, 0}}: 0.2,
		State{Counts: [MaxTargets]uint8{2, 1, 2}}: 0.3,
		State{Counts: [MaxTargets]uint8{2, 2, 2}}: 0.4,
	}
	got := AtLeast(tbl, 3, 2)
	want := []float64{0.9, 0.7, 0.4}
	for i := range want {
		if !approx(got[i], want[i], 1e-12) {
			t.Fatalf("AtLeast = %v, want %v", got, want)
		}
	}
}

func TestCurveLookups(t *testing.T) {
	c := Curve{
		{PullCount: 1, Probabilities: []float64{0.1, 0.01}},
		{PullCount: 10, Probabilities: []float64{0.5, 0.2}},
		{PullCount: 20, Probabilities: []float64{0.9, 0.6}},
	}
	if p, ok := c.At(10); !ok || p.Probabilities[0] != 0.5 {
		t.Fatalf("At(10) = %+v, %v", p, ok)
	}
	if _, ok := c.At(5); ok {
		t.Fatalf("At(5) should miss")
	}
	if n, ok := c.PullsFor(1, 0.5); !ok || n != 10 {
		t.Fatalf("PullsFor(1, 0.5) = %d, %v; want 10", n, ok)
	}
	if n, ok := c.PullsFor(2, 0.5); !ok || n != 20 {
		t.Fatalf("PullsFor(2, 0.5) = %d, %v; want 20", n, ok)
	}
	if _, ok := c.PullsFor(2, 0.99); ok {
		t.Fatalf("PullsFor(2, 0.99) should not be reached")
	}
	if _, ok := c.PullsFor(3, 0.1); ok {
		t.Fatalf("PullsFor beyond the number of targets should not be reached")
	}
}
