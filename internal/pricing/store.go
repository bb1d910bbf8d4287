package pricing

import (
	"math"
	"sort"
)

// Pack models a purchasable SKU in the store.
type Pack struct {
	ID          string `json:"id" yaml:"id"`                     // SKU id, e.g. "6480"
	Name        string `json:"name" yaml:"name"`                 // display name
	Tokens      int    `json:"tokens" yaml:"tokens"`             // base tokens granted
	BonusTokens int    `json:"bonus_tokens" yaml:"bonus_tokens"` // extra tokens on every purchase
	FirstTimeX2 bool   `json:"first_time_x2" yaml:"first_time_x2"`
	PriceCents  int    `json:"price_cents" yaml:"price_cents"`
}

// Store is a regional product list and its tax rate. Prices are pre-tax;
// for tax-inclusive prices set TaxRate to 0.
type Store struct {
	Currency string  `json:"currency" yaml:"currency"` // ISO code, e.g. "JPY"
	TaxRate  float64 `json:"tax_rate" yaml:"tax_rate"` // e.g. 0.10
	Packs    []Pack  `json:"packs" yaml:"packs"`
}

// FirstTimeState maps pack ID -> first-time x2 still available.
type FirstTimeState map[string]bool

// FirstTime builds a FirstTimeState from the IDs that still have the bonus.
func FirstTime(ids []string) FirstTimeState {
	fs := make(FirstTimeState, len(ids))
	for _, id := range ids {
		fs[id] = true
	}
	return fs
}

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases   []Purchase `json:"purchases"`
	SubCents    int        `json:"sub_cents"`
	TaxCents    int        `json:"tax_cents"`
	TotalCents  int        `json:"total_cents"`
	TotalTokens int        `json:"total_tokens"`
	Currency    string     `json:"currency"`
}

// Purchase is one line item in a plan.
type Purchase struct {
	PackID     string `json:"pack_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	UnitPrice  int    `json:"unit_price"`  // cents
	UnitTokens int    `json:"unit_tokens"` // x2/bonus applied
	Subtotal   int    `json:"subtotal"`
}

// variant is one way to buy a pack: the first-time doubled purchase or the
// regular one.
type variant struct {
	id, name   string
	tok, price int
}

// variants expands packs into purchasable variants: once holds the
// first-time x2 purchases (each available a single time), regular the
// repeatable ones. x2 applies to base tokens only, never to bonus tokens.
func (s Store) variants(first FirstTimeState) (once, regular []variant) {
	for _, p := range s.Packs {
		if p.PriceCents <= 0 || p.Tokens+p.BonusTokens <= 0 {
			continue
		}
		if p.FirstTimeX2 && first[p.ID] {
			once = append(once, variant{id: p.ID + "#x2", name: p.Name + " (x2)", tok: p.Tokens*2 + p.BonusTokens, price: p.PriceCents})
		}
		regular = append(regular, variant{id: p.ID, name: p.Name, tok: p.Tokens + p.BonusTokens, price: p.PriceCents})
	}
	return once, regular
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}

// buildPlan turns chosen variant counts into a plan with stable line order.
func (s Store) buildPlan(vs []variant, counts map[int]int) Plan {
	plan := Plan{Currency: s.Currency}
	idx := make([]int, 0, len(counts))
	for i := range counts {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		v, qty := vs[i], counts[i]
		sub := v.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:     v.id,
			Name:       v.name,
			Qty:        qty,
			UnitPrice:  v.price,
			UnitTokens: v.tok,
			Subtotal:   sub,
		})
		plan.SubCents += sub
		plan.TotalTokens += v.tok * qty
	}
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, s.TaxRate)
	return plan
}
