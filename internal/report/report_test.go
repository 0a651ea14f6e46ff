package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestStandings(t *testing.T) {
	Convey("Given ranked entries and probabilities", t, func() {
		entries := []repository.Entry{
			{Rank: 1, Name: "A", Titles: 5},
			{Rank: 2, Name: "B", Titles: 2},
			{Rank: 2, Name: "C", Titles: 2},
			{Rank: 3, Name: "D", Titles: 0},
		}
		probs := map[string]float64{"A": 62.5, "B": 25, "C": 25, "D": 0}

		standings := report.Standings(entries, probs)

		Convey("Then rows keep the entry order and shared ranks", func() {
			So(standings, ShouldResemble, []types.Standing{
				{Rank: 1, Name: "A", Chance: 62.5, Titles: 5},
				{Rank: 2, Name: "B", Chance: 25, Titles: 2},
				{Rank: 2, Name: "C", Chance: 25, Titles: 2},
				{Rank: 3, Name: "D", Chance: 0, Titles: 0},
			})
		})
	})

	Convey("Given no entries", t, func() {
		Convey("Then the standings are empty", func() {
			So(report.Standings(nil, nil), ShouldBeEmpty)
		})
	})
}

func TestRenderTable(t *testing.T) {
	Convey("Given standings with a long name", t, func() {
		standings := []types.Standing{
			{Rank: 1, Name: "Max Verstappen", Chance: 62.5},
			{Rank: 2, Name: "B", Chance: 7.126},
		}
		var buf bytes.Buffer

		err := report.RenderTable(&buf, standings, 3)
		out := buf.String()

		Convey("Then the table is bordered and sized to the longest name", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Remaining events: 3")
			So(out, ShouldContainSubstring, "+----------------+------------+\n")
			So(out, ShouldContainSubstring, "| Competitor     | Chance (%) |\n")
			So(out, ShouldContainSubstring, "| Max Verstappen |      62.50 |\n")
			So(out, ShouldContainSubstring, "| B              |       7.13 |\n")
			So(strings.Count(out, "+----------------+------------+"), ShouldEqual, 3)
		})
	})

	Convey("Given a name with non-ASCII letters", t, func() {
		var buf bytes.Buffer
		_ = report.RenderTable(&buf, []types.Standing{{Rank: 1, Name: "Kimi Räikkönen", Chance: 62.5}}, 1)

		Convey("Then the column is sized by characters, not bytes", func() {
			So(buf.String(), ShouldContainSubstring, "+----------------+------------+\n")
			So(buf.String(), ShouldContainSubstring, "| Kimi Räikkönen |      62.50 |\n")
		})
	})

	Convey("Given short names", t, func() {
		var buf bytes.Buffer
		_ = report.RenderTable(&buf, []types.Standing{{Rank: 1, Name: "A", Chance: 100}}, 0)

		Convey("Then the header width is kept", func() {
			So(buf.String(), ShouldContainSubstring, "| A          |     100.00 |\n")
		})
	})

	Convey("Given no standings", t, func() {
		var buf bytes.Buffer
		err := report.RenderTable(&buf, nil, 2)

		Convey("Then a notice is printed instead of a table", func() {
			So(err, ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "No probabilities could be computed.")
			So(buf.String(), ShouldNotContainSubstring, "+-")
		})
	})

	Convey("Given a failing writer", t, func() {
		Convey("Then the write error is returned", func() {
			So(report.RenderTable(failingWriter{}, nil, 1), ShouldNotBeNil)
		})
	})
}

func TestRenderRoster(t *testing.T) {
	Convey("Given a roster out of points order", t, func() {
		roster := model.Roster{{Name: "B", Points: 88}, {Name: "A", Points: 90}, {Name: "C", Points: 88}}
		var buf bytes.Buffer

		err := report.RenderRoster(&buf, roster, 1, 2000)
		out := buf.String()

		Convey("Then competitors are listed by points, ties in input order", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "A: 90 points\nB: 88 points\nC: 88 points\n")
			So(out, ShouldContainSubstring, "Remaining events: 1\nTrials: 2000\n")
		})

		Convey("Then the input roster is left alone", func() {
			So(roster[0].Name, ShouldEqual, "B")
		})
	})
}
