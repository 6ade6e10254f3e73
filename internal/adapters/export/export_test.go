package export_test

import (
	"bytes"
	"testing"

	"github.com/okian/fieldtrials/internal/adapters/export"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func open(buf *bytes.Buffer) *excelize.File {
	f, err := excelize.OpenReader(buf)
	So(err, ShouldBeNil)
	return f
}

func TestDecisionMatrix(t *testing.T) {
	Convey("Given ranked rows", t, func() {
		rows := []scoring.Row{
			{Rank: 1, GroupID: "A", Mean: 110, Max: 120, Min: 100, NormalizedMean: 1, NormalizedMax: 1, NormalizedMin: 1, FinalScore: 1},
			{Rank: 2, GroupID: "B", Mean: 80, Max: 80, Min: 80},
		}

		Convey("When exporting", func() {
			var buf bytes.Buffer
			So(export.DecisionMatrix(&buf, rows), ShouldBeNil)
			f := open(&buf)
			defer func() { _ = f.Close() }()

			Convey("Then the sheet holds a header and one line per row", func() {
				got, err := f.GetRows(export.SheetDecisionMatrix)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
				So(got[0][1], ShouldEqual, "Híbrido")
				So(got[1][0], ShouldEqual, "1")
				So(got[1][1], ShouldEqual, "A")
				So(got[2][1], ShouldEqual, "B")
			})
		})
	})
}

func TestHeadToHead(t *testing.T) {
	Convey("Given a comparison without losses", t, func() {
		win := 5.0
		rows := []headtohead.Row{
			{LocationID: "X", HeadMean: 100, CheckMean: 95, Difference: 5, Outcome: headtohead.Win},
			{LocationID: "Y", HeadMean: 90, CheckMean: 90, Outcome: headtohead.Tie},
		}
		sum := headtohead.Summary{Head: "H", Check: "C", Threshold: 1, Total: 2, Wins: 1, Ties: 1, BiggestWin: &win, MeanWin: &win}

		Convey("When exporting", func() {
			var buf bytes.Buffer
			So(export.HeadToHead(&buf, rows, sum), ShouldBeNil)
			f := open(&buf)
			defer func() { _ = f.Close() }()

			Convey("Then the rows sheet names both groups", func() {
				got, err := f.GetRows(export.SheetHeadToHead)
				So(err, ShouldBeNil)
				So(got[0], ShouldResemble, []string{"Local", "H", "C", "Diferença", "Resultado"})
				So(got[1][4], ShouldEqual, "win")
			})

			Convey("Then absent statistics are marked as such", func() {
				v, err := f.GetCellValue(export.SheetSummary, "B11")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "-")
				v, err = f.GetCellValue(export.SheetSummary, "B9")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "5")
			})
		})
	})
}
