package model_test

import (
	"testing"

	model "github.com/okian/podium/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRoster(t *testing.T) {
	convey.Convey("Given a roster", t, func() {
		roster := model.Roster{{Name: "A", Points: 90}, {Name: "B", Points: 88}, {Name: "C", Points: 12}}

		convey.Convey("When cloning it", func() {
			clone := roster.Clone()
			clone[0].Points = 500

			convey.Convey("Then the original is untouched", func() {
				convey.So(roster[0].Points, convey.ShouldEqual, 90)
				convey.So(clone[1], convey.ShouldResemble, roster[1])
			})
		})

		convey.Convey("When cloning a nil roster", func() {
			var empty model.Roster

			convey.Convey("Then the clone is nil", func() {
				convey.So(empty.Clone(), convey.ShouldBeNil)
			})
		})

		convey.Convey("Then names keep roster order", func() {
			convey.So(roster.Names(), convey.ShouldResemble, []string{"A", "B", "C"})
		})

		convey.Convey("Then max points is the leader's total", func() {
			convey.So(roster.MaxPoints(), convey.ShouldEqual, 90)
			convey.So(model.Roster{}.MaxPoints(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then points are looked up by name", func() {
			p, ok := roster.Points("B")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p, convey.ShouldEqual, 88)

			_, ok = roster.Points("Z")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestTally(t *testing.T) {
	convey.Convey("Given a tally built from a roster", t, func() {
		roster := model.Roster{{Name: "A"}, {Name: "B"}}
		tally := model.NewTally(roster)

		convey.Convey("Then every competitor starts at zero", func() {
			convey.So(tally, convey.ShouldResemble, model.Tally{"A": 0, "B": 0})
			convey.So(tally.Total(), convey.ShouldEqual, 0)
		})

		convey.Convey("When merging partitioned tallies", func() {
			tally.Add(model.Tally{"A": 3, "B": 1})
			tally.Add(model.Tally{"A": 2})

			convey.Convey("Then counts accumulate", func() {
				convey.So(tally["A"], convey.ShouldEqual, 5)
				convey.So(tally["B"], convey.ShouldEqual, 1)
				convey.So(tally.Total(), convey.ShouldEqual, 6)
			})
		})
	})
}

func TestEventResult(t *testing.T) {
	convey.Convey("Given an event result", t, func() {
		result := model.EventResult{"A": 25, "B": 18, "C": 0}

		convey.Convey("Then total sums awarded points", func() {
			convey.So(result.Total(), convey.ShouldEqual, 43)
		})
	})
}
