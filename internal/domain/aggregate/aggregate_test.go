package aggregate_test

import (
	"errors"
	"testing"

	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func obs(group, location, state string, prod float64) model.Observation {
	return model.Observation{GroupID: group, LocationID: location, State: state, Productivity: prod}
}

func TestAggregate(t *testing.T) {
	Convey("Given a table with groups A [100, 120] and B [80, 80]", t, func() {
		table := model.NewTable([]model.Observation{
			obs("B", "X", "GO", 80),
			obs("A", "X", "GO", 100),
			obs("A", "Y", "MT", 120),
			obs("B", "Y", "MT", 80),
		})

		Convey("When aggregating productivity by group", func() {
			out, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)

			Convey("Then one summary per group is returned in ascending group order", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].GroupID, ShouldEqual, "A")
				So(out[1].GroupID, ShouldEqual, "B")
			})

			Convey("And the statistics match the scenario", func() {
				So(out[0].Mean, ShouldEqual, 110)
				So(out[0].Max, ShouldEqual, 120)
				So(out[0].Min, ShouldEqual, 100)
				So(out[0].Count, ShouldEqual, 2)
				So(out[1].Mean, ShouldEqual, 80)
				So(out[1].Max, ShouldEqual, 80)
				So(out[1].Min, ShouldEqual, 80)
			})
		})

		Convey("When aggregating by location", func() {
			out, err := aggregate.Aggregate(table, model.ColLocation, model.ColProductivity)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 2)
			So(out[0].GroupID, ShouldEqual, "X")
			So(out[0].Mean, ShouldEqual, 90)
		})

		Convey("When the value column is unknown", func() {
			_, err := aggregate.Aggregate(table, model.ColGroup, "grain_moisture")
			So(errors.Is(err, model.ErrUnknownColumn), ShouldBeTrue)
		})

		Convey("When MeanBy is used", func() {
			means, err := aggregate.MeanBy(table, model.ColGroup, model.ColProductivity)
			So(err, ShouldBeNil)
			So(means, ShouldResemble, map[string]float64{"A": 110, "B": 80})
		})
	})

	Convey("Given a group with a single observation", t, func() {
		table := model.NewTable([]model.Observation{obs("C", "X", "GO", 97.5)})
		out, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)

		Convey("Then mean, max, min and quantiles collapse to the value", func() {
			So(err, ShouldBeNil)
			So(out[0].Mean, ShouldEqual, 97.5)
			So(out[0].Max, ShouldEqual, 97.5)
			So(out[0].Min, ShouldEqual, 97.5)
			So(out[0].Median, ShouldEqual, 97.5)
			So(out[0].P25, ShouldEqual, 97.5)
			So(out[0].P75, ShouldEqual, 97.5)
		})
	})

	Convey("Given repeated values whose sum rounds", t, func() {
		table := model.NewTable([]model.Observation{obs("D", "X", "GO", 0.1), obs("D", "Y", "GO", 0.1), obs("D", "Z", "GO", 0.1)})
		out, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)

		Convey("Then the mean stays within [min, max]", func() {
			So(err, ShouldBeNil)
			So(out[0].Mean, ShouldBeLessThanOrEqualTo, out[0].Max)
			So(out[0].Mean, ShouldBeGreaterThanOrEqualTo, out[0].Min)
		})
	})

	Convey("Given an empty table", t, func() {
		_, err := aggregate.Aggregate(model.NewTable(nil), model.ColGroup, model.ColProductivity)

		Convey("Then ErrEmptyInput is returned", func() {
			So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
		})
	})

	Convey("Given a table emptied by a filter", t, func() {
		table := model.NewTable([]model.Observation{obs("A", "X", "GO", 1)}).
			Filter(model.Filters{model.Equals(model.ColState, "PR")})
		_, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)
		So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
	})
}

func TestRelativeToMean(t *testing.T) {
	Convey("Given summaries with means 110 and 90", t, func() {
		summaries := []aggregate.GroupSummary{
			{GroupID: "B", Mean: 90},
			{GroupID: "A", Mean: 110},
		}
		rt, err := aggregate.RelativeToMean(summaries)

		Convey("Then deviations are computed against the mean of means and the best", func() {
			So(err, ShouldBeNil)
			So(rt.OverallMean, ShouldEqual, 100)
			So(rt.BestMean, ShouldEqual, 110)
			So(rt.Rows[0].GroupID, ShouldEqual, "A")
			So(rt.Rows[0].PctOfOverallMean, ShouldEqual, 10)
			So(rt.Rows[0].PctOfBest, ShouldEqual, 0)
			So(rt.Rows[1].PctOfOverallMean, ShouldEqual, -10)
			So(rt.Rows[1].PctOfBest, ShouldEqual, -18.18)
		})
	})

	Convey("Given summaries whose means are all zero", t, func() {
		_, err := aggregate.RelativeToMean([]aggregate.GroupSummary{{GroupID: "A"}, {GroupID: "B"}})
		So(errors.Is(err, aggregate.ErrDivisionByZero), ShouldBeTrue)
	})

	Convey("Given no summaries", t, func() {
		_, err := aggregate.RelativeToMean(nil)
		So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
	})
}

func TestOverview(t *testing.T) {
	Convey("Given trials across three states", t, func() {
		table := model.NewTable([]model.Observation{
			obs("A", "X", "GO", 1), obs("B", "X", "GO", 1), obs("A", "Y", "MT", 1),
			obs("C", "Z", "PR", 1), obs("C", "W", "MT", 1), obs("A", "V", "GO", 1),
		})
		ov, err := aggregate.Summarize(table)

		Convey("Then counts are ordered by frequency then name", func() {
			So(err, ShouldBeNil)
			So(ov.Trials, ShouldEqual, 6)
			So(ov.Groups, ShouldEqual, 3)
			So(ov.States, ShouldResemble, []aggregate.CategoryCount{
				{Value: "GO", Count: 3}, {Value: "MT", Count: 2}, {Value: "PR", Count: 1},
			})
		})
	})

	Convey("Given an empty table", t, func() {
		_, err := aggregate.Summarize(model.NewTable(nil))
		So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
	})
}
