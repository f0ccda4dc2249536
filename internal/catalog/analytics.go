package catalog

import (
	"math"
	"sort"
)

// Analytics precomputes reusable aggregates over the catalog for the
// analysis endpoint. Only rows with numeric budget, revenue, profit
// and release year (and a positive budget) participate.
type Analytics struct {
	rows []analyticsRow
}

type analyticsRow struct {
	title   string
	genre   string
	year    int
	budget  float64
	revenue float64
	profit  float64
}

const million = 1_000_000

// NewAnalytics filters the catalog down to rows usable for aggregation.
func NewAnalytics(c *Catalog) *Analytics {
	a := &Analytics{}
	for _, rec := range c.Records {
		budget, ok1 := rec.NumberField(BudgetColumn)
		revenue, ok2 := rec.NumberField(RevenueColumn)
		profit, ok3 := rec.NumberField(ProfitColumn)
		year, ok4 := rec.NumberField(YearColumn)
		if !ok1 || !ok2 || !ok3 || !ok4 || budget <= 0 {
			continue
		}
		a.rows = append(a.rows, analyticsRow{
			title:   rec.StringField(TitleColumn),
			genre:   rec.StringField(GenreColumn),
			year:    int(year),
			budget:  budget,
			revenue: revenue,
			profit:  profit,
		})
	}
	return a
}

// TopGenresByAverageProfit returns the n genres with the highest mean
// profit, in millions.
func (a *Analytics) TopGenresByAverageProfit(n int) []map[string]any {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range a.rows {
		sums[r.genre] += r.profit
		counts[r.genre]++
	}
	type pair struct {
		genre string
		avg   float64
	}
	pairs := make([]pair, 0, len(sums))
	for g, s := range sums {
		pairs = append(pairs, pair{g, s / float64(counts[g])})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].avg != pairs[j].avg {
			return pairs[i].avg > pairs[j].avg
		}
		return pairs[i].genre < pairs[j].genre
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]map[string]any, 0, n)
	for _, p := range pairs[:n] {
		out = append(out, map[string]any{
			"genre":          p.genre,
			"average_profit": round2(p.avg / million),
		})
	}
	return out
}

// MedianProfitMarginByGenre returns the n genres with the highest
// median profit/budget ratio.
func (a *Analytics) MedianProfitMarginByGenre(n int) []map[string]any {
	margins := map[string][]float64{}
	for _, r := range a.rows {
		margins[r.genre] = append(margins[r.genre], r.profit/r.budget)
	}
	type pair struct {
		genre  string
		median float64
	}
	pairs := make([]pair, 0, len(margins))
	for g, vals := range margins {
		pairs = append(pairs, pair{g, median(vals)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].median != pairs[j].median {
			return pairs[i].median > pairs[j].median
		}
		return pairs[i].genre < pairs[j].genre
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]map[string]any, 0, n)
	for _, p := range pairs[:n] {
		out = append(out, map[string]any{
			"genre":         p.genre,
			"median_margin": roundN(p.median, 3),
		})
	}
	return out
}

// RevenueProfitTrend returns mean revenue and profit per release year,
// ascending by year, in millions.
func (a *Analytics) RevenueProfitTrend() []map[string]any {
	revSums := map[int]float64{}
	profSums := map[int]float64{}
	counts := map[int]int{}
	for _, r := range a.rows {
		revSums[r.year] += r.revenue
		profSums[r.year] += r.profit
		counts[r.year]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]map[string]any, 0, len(years))
	for _, y := range years {
		c := float64(counts[y])
		out = append(out, map[string]any{
			"release_year":    y,
			"average_revenue": round2(revSums[y] / c / million),
			"average_profit":  round2(profSums[y] / c / million),
		})
	}
	return out
}

// MetricCorrelations returns pairwise Pearson correlations between
// budget, revenue and profit.
func (a *Analytics) MetricCorrelations() []map[string]any {
	metrics := []struct {
		name string
		get  func(analyticsRow) float64
	}{
		{"Budget", func(r analyticsRow) float64 { return r.budget }},
		{"Revenue", func(r analyticsRow) float64 { return r.revenue }},
		{"Profit", func(r analyticsRow) float64 { return r.profit }},
	}
	var out []map[string]any
	for i := range metrics {
		for j := i + 1; j < len(metrics); j++ {
			xs := make([]float64, len(a.rows))
			ys := make([]float64, len(a.rows))
			for k, r := range a.rows {
				xs[k] = metrics[i].get(r)
				ys[k] = metrics[j].get(r)
			}
			out = append(out, map[string]any{
				"pair":  metrics[i].name + " vs " + metrics[j].name,
				"value": roundN(pearson(xs, ys), 3),
			})
		}
	}
	return out
}

// TopMoviesByProfitAndMargin returns the n most profitable movies,
// margin breaking profit ties.
func (a *Analytics) TopMoviesByProfitAndMargin(n int) []map[string]any {
	ranked := make([]analyticsRow, len(a.rows))
	copy(ranked, a.rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].profit != ranked[j].profit {
			return ranked[i].profit > ranked[j].profit
		}
		return ranked[i].profit/ranked[i].budget > ranked[j].profit/ranked[j].budget
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]map[string]any, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, map[string]any{
			"title":        r.title,
			"genre":        r.genre,
			"release_year": r.year,
			"revenue":      round2(r.revenue / million),
			"profit":       round2(r.profit / million),
			"margin":       round2(r.profit / r.budget),
		})
	}
	return out
}

// SummaryPayload bundles every aggregate into the analysis response.
func (a *Analytics) SummaryPayload() map[string]any {
	return map[string]any{
		"top_genres_average_profit":       a.TopGenresByAverageProfit(8),
		"median_profit_margin_by_genre":   a.MedianProfitMarginByGenre(8),
		"revenue_profit_trend":            a.RevenueProfitTrend(),
		"metric_correlations":             a.MetricCorrelations(),
		"top_movies_by_profit_and_margin": a.TopMoviesByProfitAndMargin(6),
	}
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func round2(v float64) float64 { return roundN(v, 2) }

func roundN(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
