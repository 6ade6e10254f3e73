// Package charts renders computed tables as go-echarts HTML.
package charts

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// Colours used across the dashboard.
const (
	ColorHighlight = "#1f77b4"
	ColorOther     = "#9e9e9e"
	ColorWin       = "#2ca02c"
	ColorLoss      = "#d62728"
	ColorTie       = "#9e9e9e"
)

var heatmapRange = []string{"#d73027", "#fc8d59", "#fee08b", "#d9ef8b", "#91cf60", "#1a9850"}

// Builder renders charts, colouring highlighted groups apart from the rest.
type Builder struct {
	highlighted map[string]struct{}
	width       string
	height      string
}

// Option configures a Builder.
type Option func(*Builder)

// WithHighlighted marks groups to draw in the highlight colour.
func WithHighlighted(groups ...string) Option {
	return func(b *Builder) {
		for _, g := range groups {
			b.highlighted[g] = struct{}{}
		}
	}
}

// WithSize sets the CSS size of every chart.
func WithSize(width, height string) Option {
	return func(b *Builder) {
		if width != "" {
			b.width = width
		}
		if height != "" {
			b.height = height
		}
	}
}

// NewBuilder returns a Builder with full-width charts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{highlighted: make(map[string]struct{}), width: "100%", height: "480px"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) colorFor(group string) string {
	if _, ok := b.highlighted[group]; ok {
		return ColorHighlight
	}
	return ColorOther
}

func (b *Builder) init() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{Width: b.width, Height: b.height})
}

// ProductivityBar draws mean productivity per group, best first, with a mark
// line at the overall mean.
func (b *Builder) ProductivityBar(summaries []aggregate.GroupSummary) *charts.Bar {
	summaries = append([]aggregate.GroupSummary(nil), summaries...)
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].Mean > summaries[j].Mean })

	x := make([]string, 0, len(summaries))
	y := make([]opts.BarData, 0, len(summaries))
	var total float64
	for _, s := range summaries {
		x = append(x, s.GroupID)
		y = append(y, opts.BarData{Value: round(s.Mean), ItemStyle: &opts.ItemStyle{Color: b.colorFor(s.GroupID)}})
		total += s.Mean
	}
	overall := 0.0
	if len(summaries) > 0 {
		overall = total / float64(len(summaries))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{Title: "Produtividade Média (sc)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "sc/ha"}),
	)
	bar.SetXAxis(x).AddSeries("média", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "Média geral", YAxis: round(overall)}),
	)
	return bar
}

// RelativeBars draws the percentage of overall mean and of the best group.
func (b *Builder) RelativeBars(t aggregate.RelativeTable) (ofMean, ofBest *charts.Bar) {
	x := make([]string, 0, len(t.Rows))
	mean := make([]opts.BarData, 0, len(t.Rows))
	best := make([]opts.BarData, 0, len(t.Rows))
	for _, r := range t.Rows {
		x = append(x, r.GroupID)
		style := &opts.ItemStyle{Color: b.colorFor(r.GroupID)}
		mean = append(mean, opts.BarData{Value: r.PctOfOverallMean, ItemStyle: style})
		best = append(best, opts.BarData{Value: r.PctOfBest, ItemStyle: style})
	}

	ofMean = charts.NewBar()
	ofMean.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{Title: "% da Média", Subtitle: fmt.Sprintf("média geral %.2f", t.OverallMean)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	ofMean.SetXAxis(x).AddSeries("% da média", mean,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	ofBest = charts.NewBar()
	ofBest.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{Title: "% do Maior", Subtitle: fmt.Sprintf("maior média %.2f", t.BestMean)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	ofBest.SetXAxis(x).AddSeries("% do maior", best,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return ofMean, ofBest
}

// ScoreBar draws the decision matrix ranking.
func (b *Builder) ScoreBar(rows []scoring.Row) *charts.Bar {
	x := make([]string, 0, len(rows))
	y := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		x = append(x, r.GroupID)
		y = append(y, opts.BarData{Value: round(r.FinalScore), ItemStyle: &opts.ItemStyle{Color: b.colorFor(r.GroupID)}})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{Title: "Matriz de Decisão"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("pontuação", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// StatePie draws trial counts per state as a donut.
func (b *Builder) StatePie(o aggregate.Overview) *charts.Pie {
	data := make([]opts.PieData, 0, len(o.States))
	for _, s := range o.States {
		data = append(data, opts.PieData{Name: s.Value, Value: s.Count})
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{Title: "Ensaios por UF", Subtitle: fmt.Sprintf("%d ensaios, %d híbridos", o.Trials, o.Groups)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("ensaios", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie
}

// HeadToHeadBar draws the per-location difference coloured by outcome.
func (b *Builder) HeadToHeadBar(rows []headtohead.Row, sum headtohead.Summary) *charts.Bar {
	x := make([]string, 0, len(rows))
	y := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		x = append(x, r.LocationID)
		y = append(y, opts.BarData{Value: round(r.Difference), ItemStyle: &opts.ItemStyle{Color: outcomeColor(r.Outcome)}})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		b.init(),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s x %s", sum.Head, sum.Check),
			Subtitle: fmt.Sprintf("%d vitórias, %d empates, %d derrotas em %d locais", sum.Wins, sum.Ties, sum.Losses, sum.Total),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "diferença (sc)"}),
	)
	bar.SetXAxis(x).AddSeries("diferença", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// Heatmap draws relative productivity per group and location. Untested
// pairings are left blank.
func (b *Builder) Heatmap(h relative.Heatmap) *charts.HeatMap {
	data := make([]opts.HeatMapData, 0, len(h.Groups)*len(h.Locations))
	for i := range h.Groups {
		for j := range h.Locations {
			if c := h.Cells[i][j]; c != nil {
				data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, round(*c)}})
			}
		}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: b.width, Height: fmt.Sprintf("%dpx", 120+24*len(h.Groups))}),
		charts.WithTitleOpts(opts.Title{Title: "PR Maior (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: h.Groups, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			InRange:    &opts.VisualMapInRange{Color: heatmapRange},
		}),
	)
	hm.SetXAxis(h.Locations).AddSeries("PR Maior", data)
	return hm
}

// HeadToHead groups one comparison for the dashboard.
type HeadToHead struct {
	Rows    []headtohead.Row
	Summary headtohead.Summary
}

// Dashboard holds every table drawn on the dashboard page. Nil or empty
// members are skipped.
type Dashboard struct {
	Title      string
	Overview   *aggregate.Overview
	Summaries  []aggregate.GroupSummary
	Relative   *aggregate.RelativeTable
	Scores     []scoring.Row
	HeadToHead *HeadToHead
	Heatmap    *relative.Heatmap
}

// Render writes the dashboard page to w.
func (b *Builder) Render(w io.Writer, d Dashboard) error {
	var list []components.Charter
	if d.Overview != nil {
		list = append(list, b.StatePie(*d.Overview))
	}
	if len(d.Summaries) > 0 {
		list = append(list, b.ProductivityBar(d.Summaries))
	}
	if d.Relative != nil && len(d.Relative.Rows) > 0 {
		ofMean, ofBest := b.RelativeBars(*d.Relative)
		list = append(list, ofMean, ofBest)
	}
	if len(d.Scores) > 0 {
		list = append(list, b.ScoreBar(d.Scores))
	}
	if d.HeadToHead != nil {
		list = append(list, b.HeadToHeadBar(d.HeadToHead.Rows, d.HeadToHead.Summary))
	}
	if d.Heatmap != nil && len(d.Heatmap.Groups) > 0 {
		list = append(list, b.Heatmap(*d.Heatmap))
	}
	if len(list) == 0 {
		return ErrNothingToRender
	}

	page := components.NewPage()
	if d.Title != "" {
		page.PageTitle = d.Title
	}
	page.AddCharts(list...)
	return page.Render(w)
}

func outcomeColor(o headtohead.Outcome) string {
	switch o {
	case headtohead.Win:
		return ColorWin
	case headtohead.Loss:
		return ColorLoss
	default:
		return ColorTie
	}
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
