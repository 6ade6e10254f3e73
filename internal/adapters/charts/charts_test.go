package charts_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/okian/fieldtrials/internal/adapters/charts"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuilder(t *testing.T) {
	Convey("Given a builder with one highlighted group", t, func() {
		b := charts.NewBuilder(charts.WithHighlighted("9504VIP3"))
		summaries := []aggregate.GroupSummary{
			{GroupID: "9504VIP3", Mean: 110, Max: 120, Min: 100, Count: 2},
			{GroupID: "AG8700", Mean: 80, Max: 80, Min: 80, Count: 2},
		}

		Convey("When drawing the productivity bar", func() {
			bar := b.ProductivityBar(summaries)

			Convey("Then highlighted groups use the highlight colour", func() {
				So(len(bar.MultiSeries), ShouldEqual, 1)
				data := bar.MultiSeries[0].Data.([]opts.BarData)
				So(data[0].ItemStyle.Color, ShouldEqual, charts.ColorHighlight)
				So(data[1].ItemStyle.Color, ShouldEqual, charts.ColorOther)
			})
		})

		Convey("When summaries arrive in group order", func() {
			in := []aggregate.GroupSummary{
				{GroupID: "A", Mean: 80},
				{GroupID: "B", Mean: 110},
				{GroupID: "C", Mean: 95},
			}
			bar := b.ProductivityBar(in)

			Convey("Then bars are ordered by mean descending", func() {
				data := bar.MultiSeries[0].Data.([]opts.BarData)
				So(data[0].Value, ShouldEqual, 110.0)
				So(data[1].Value, ShouldEqual, 95.0)
				So(data[2].Value, ShouldEqual, 80.0)
				So(in[0].GroupID, ShouldEqual, "A")
			})
		})

		Convey("When drawing a head-to-head", func() {
			rows := []headtohead.Row{
				{LocationID: "X", Difference: 5, Outcome: headtohead.Win},
				{LocationID: "Y", Difference: -3, Outcome: headtohead.Loss},
				{LocationID: "Z", Outcome: headtohead.Tie},
			}
			bar := b.HeadToHeadBar(rows, headtohead.Summary{Head: "H", Check: "C", Wins: 1, Losses: 1, Ties: 1, Total: 3})

			Convey("Then bars are coloured by outcome", func() {
				data := bar.MultiSeries[0].Data.([]opts.BarData)
				So(data[0].ItemStyle.Color, ShouldEqual, charts.ColorWin)
				So(data[1].ItemStyle.Color, ShouldEqual, charts.ColorLoss)
				So(data[2].ItemStyle.Color, ShouldEqual, charts.ColorTie)
			})
		})

		Convey("When drawing a heatmap with an untested pairing", func() {
			v := 100.0
			hm := b.Heatmap(relative.Heatmap{
				Groups:    []string{"A", "B"},
				Locations: []string{"X"},
				Cells:     [][]*float64{{&v}, {nil}},
			})

			Convey("Then only tested cells are plotted", func() {
				data := hm.MultiSeries[0].Data.([]opts.HeatMapData)
				So(len(data), ShouldEqual, 1)
			})
		})

		Convey("When rendering a full dashboard", func() {
			overview := aggregate.Overview{Trials: 4, Groups: 2, States: []aggregate.CategoryCount{{Value: "GO", Count: 4}}}
			rel, err := aggregate.RelativeToMean(summaries)
			So(err, ShouldBeNil)
			scores, err := scoring.Score(summaries, scoring.DefaultWeights())
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			err = b.Render(&buf, charts.Dashboard{
				Title:     "Ensaios",
				Overview:  &overview,
				Summaries: summaries,
				Relative:  &rel,
				Scores:    scores,
			})

			Convey("Then the page carries every chart", func() {
				So(err, ShouldBeNil)
				html := buf.String()
				So(html, ShouldContainSubstring, "<html")
				So(html, ShouldContainSubstring, "9504VIP3")
				So(html, ShouldContainSubstring, "Ensaios por UF")
				So(html, ShouldContainSubstring, "Matriz de Decis")
			})
		})

		Convey("When rendering an empty dashboard", func() {
			var buf bytes.Buffer
			err := b.Render(&buf, charts.Dashboard{})
			So(errors.Is(err, charts.ErrNothingToRender), ShouldBeTrue)
		})
	})
}
