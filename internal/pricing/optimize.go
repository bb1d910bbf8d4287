package pricing

import (
	"errors"
	"math"
	"slices"
)

const unreachable = -1

// MaxTableSize bounds the knapsack tables, in units of the gcd of the pack
// prices (budget search) or pack token amounts (cost search).
const MaxTableSize = 1 << 22

// ErrTooLarge is returned when a search would need more than MaxTableSize
// entries.
var ErrTooLarge = errors.New("purchase search space too large")

// MinCostAtLeastTokens finds the cheapest combination granting at least
// targetTokens. Regular packs can be bought any number of times; each
// first-time x2 variant at most once.
//
// The DP runs over token totals up to targetTokens plus the largest variant,
// so a slight overshoot can win when it is cheaper. It fails with ErrTooLarge
// when that range exceeds MaxTableSize.
func MinCostAtLeastTokens(s Store, targetTokens int, first FirstTimeState) (Plan, error) {
	once, regular := s.variants(first)
	all := append(slices.Clone(once), regular...)
	if targetTokens <= 0 || len(all) == 0 {
		return Plan{Currency: s.Currency}, nil
	}

	// Work in units of the common divisor of all token amounts.
	unit := 0
	for _, v := range all {
		unit = gcd(unit, v.tok)
	}
	tok := func(v variant) int { return v.tok / unit }
	target := (targetTokens + unit - 1) / unit
	maxTok := 0
	for _, v := range all {
		maxTok = max(maxTok, tok(v))
	}
	if target >= MaxTableSize || target+maxTok >= MaxTableSize {
		return Plan{}, ErrTooLarge
	}
	limit := target + maxTok

	const inf = math.MaxInt
	// dp[t] = min cost to reach exactly t tokens (t == limit absorbs overshoot)
	dp := make([]int, limit+1)
	for t := range dp {
		dp[t] = inf
	}
	dp[0] = 0

	// 0/1 pass over first-time variants; taken[k][t] is the total before
	// variant k was added on the way to t, or unreachable if it was not.
	taken := make([][]int, len(once))
	for k, v := range once {
		next := slices.Clone(dp)
		taken[k] = filled(limit+1, unreachable)
		for t := 0; t <= limit; t++ {
			if dp[t] == inf {
				continue
			}
			nt := min(t+tok(v), limit)
			if cost := dp[t] + v.price; cost < next[nt] {
				next[nt], taken[k][nt] = cost, t
			}
		}
		dp = next
	}

	// unbounded pass over regular variants
	choice := filled(limit+1, unreachable)
	prev := filled(limit+1, unreachable)
	for t := 0; t <= limit; t++ {
		if dp[t] == inf {
			continue
		}
		for i, v := range regular {
			nt := min(t+tok(v), limit)
			if cost := dp[t] + v.price; cost < dp[nt] {
				dp[nt], choice[nt], prev[nt] = cost, i, t
			}
		}
	}

	best := target
	for t := target; t <= limit; t++ {
		if dp[t] < dp[best] {
			best = t
		}
	}
	if dp[best] == inf {
		return Plan{Currency: s.Currency}, nil
	}

	counts := map[int]int{}
	t := best
	for t > 0 && choice[t] != unreachable {
		counts[len(once)+choice[t]]++
		t = prev[t]
	}
	for k := len(once) - 1; k >= 0; k-- {
		if p := taken[k][t]; p != unreachable {
			counts[k]++
			t = p
		}
	}
	return s.buildPlan(all, counts), nil
}

// MaxTokensUnderBudget computes the most tokens purchasable with budgetCents
// (tax included), using a knapsack over pre-tax cost with the same
// once/regular split as MinCostAtLeastTokens. It fails with ErrTooLarge
// when the pre-tax budget exceeds MaxTableSize price units.
func MaxTokensUnderBudget(s Store, budgetCents int, first FirstTimeState) (Plan, error) {
	once, regular := s.variants(first)
	all := append(slices.Clone(once), regular...)
	if budgetCents <= 0 || len(all) == 0 {
		return Plan{Currency: s.Currency}, nil
	}

	// Tax applies to the subtotal, so shrink the budget to its pre-tax share.
	budget := budgetCents
	if s.TaxRate > 0 {
		budget = int(math.Floor(float64(budgetCents) / (1 + s.TaxRate)))
	}

	// Work in units of the common divisor of all prices.
	unit := 0
	for _, v := range all {
		unit = gcd(unit, v.price)
	}
	price := func(v variant) int { return v.price / unit }
	budget /= unit
	if budget >= MaxTableSize {
		return Plan{}, ErrTooLarge
	}

	// dp[c] = max tokens at pre-tax cost exactly c
	dp := filled(budget+1, unreachable)
	dp[0] = 0

	taken := make([][]int, len(once))
	for k, v := range once {
		next := slices.Clone(dp)
		taken[k] = filled(budget+1, unreachable)
		for c := 0; c+price(v) <= budget; c++ {
			if dp[c] == unreachable {
				continue
			}
			nc := c + price(v)
			if val := dp[c] + v.tok; val > next[nc] {
				next[nc], taken[k][nc] = val, c
			}
		}
		dp = next
	}

	choice := filled(budget+1, unreachable)
	for c := 0; c <= budget; c++ {
		if dp[c] == unreachable {
			continue
		}
		for i, v := range regular {
			nc := c + price(v)
			if nc > budget {
				continue
			}
			if val := dp[c] + v.tok; val > dp[nc] {
				dp[nc], choice[nc] = val, i
			}
		}
	}

	best := 0
	for c := 0; c <= budget; c++ {
		if dp[c] > dp[best] {
			best = c
		}
	}

	counts := map[int]int{}
	c := best
	for c > 0 && choice[c] != unreachable {
		counts[len(once)+choice[c]]++
		c -= price(regular[choice[c]])
	}
	for k := len(once) - 1; k >= 0; k-- {
		if p := taken[k][c]; p != unreachable {
			counts[k]++
			c = p
		}
	}
	return s.buildPlan(all, counts), nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
