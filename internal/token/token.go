package token

// Token is the premium currency spent on pulls.
type Token struct {
	Name       string `json:"name" yaml:"name"`                                     // e.g. "Stellar Jade"
	PerDraw    int    `json:"per_draw" yaml:"per_draw"`                             // cost of a single pull
	PerTenDraw int    `json:"per_ten_draw,omitempty" yaml:"per_ten_draw,omitempty"` // 0 -> 10 * PerDraw
}

// tenPrice is the cost of ten pulls; a ten-pull priced above ten singles is
// never the better buy.
func (t Token) tenPrice() int {
	if t.PerTenDraw > 0 {
		return min(t.PerTenDraw, 10*t.PerDraw)
	}
	return 10 * t.PerDraw
}

// TokensForDraws returns the tokens needed for n pulls, bought as ten-pulls
// plus singles.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 || t.PerDraw <= 0 {
		return 0
	}
	return (n/10)*t.tenPrice() + (n%10)*t.PerDraw
}

// DrawsForTokens returns the largest pull count whose cost fits in tokens.
// A ten-pull never costs more than ten singles, so taking as many ten-pulls
// as possible first is optimal.
func (t Token) DrawsForTokens(tokens int) int {
	if tokens <= 0 || t.PerDraw <= 0 {
		return 0
	}
	ten := t.tenPrice()
	tens := tokens / ten
	singles := min((tokens-tens*ten)/t.PerDraw, 9)
	return tens*10 + singles
}
