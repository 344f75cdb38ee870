package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/proteams/internal/domain/model"
	"github.com/okian/proteams/internal/domain/ranking"
	"github.com/okian/proteams/internal/domain/report"
	"github.com/okian/proteams/internal/domain/scoring"
	"github.com/okian/proteams/pkg/logger"
	"github.com/okian/proteams/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var ref = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func historyAt(d time.Duration) *string {
	s := ref.Add(-d).Format(scoring.HistoryTimeLayout)
	return &s
}

// fakeLookup serves team metadata from a map and records every call.
type fakeLookup struct {
	mu     sync.Mutex
	teams  map[int64]model.TeamMetadata
	fail   map[int64]error
	delays map[int64]time.Duration
	calls  []int64
}

func (f *fakeLookup) FetchTeam(_ context.Context, teamID int64) (model.TeamMetadata, error) {
	if d := f.delays[teamID]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.calls = append(f.calls, teamID)
	f.mu.Unlock()
	if err := f.fail[teamID]; err != nil {
		return model.TeamMetadata{}, err
	}
	team, ok := f.teams[teamID]
	if !ok {
		return model.TeamMetadata{}, errors.New("not found")
	}
	return team, nil
}

func newBuilder(lookup report.TeamLookup, opts ...report.Option) *report.Builder {
	opts = append(opts, report.WithMetrics(metrics.NewManager()))
	return report.NewBuilder(lookup, opts...)
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given two ranked teams and their players", t, func() {
		players := []model.PlayerRecord{
			{AccountID: 1, PersonaName: "alpha", CountryCode: "se", TeamID: 1, FullHistoryTime: historyAt(100*time.Second + 900*time.Millisecond)},
			{AccountID: 2, PersonaName: "bravo", CountryCode: "", TeamID: 1},
			{AccountID: 3, PersonaName: "charlie", CountryCode: "us", TeamID: 2, FullHistoryTime: historyAt(50 * time.Second)},
			{AccountID: 4, PersonaName: "free agent", TeamID: model.NoTeam, FullHistoryTime: historyAt(time.Hour)},
		}
		ranked := []ranking.TeamScore{{TeamID: 1, Score: 100.9}, {TeamID: 2, Score: 50}}
		lookup := &fakeLookup{teams: map[int64]model.TeamMetadata{
			1: {TeamID: 1, Name: "Team One", Wins: 10, Losses: 2, Rating: 1500.5},
			2: {TeamID: 2, Name: "Team Two", Wins: 3, Losses: 7, Rating: 1100},
		}}

		Convey("When every lookup succeeds", func() {
			res := newBuilder(lookup).Build(context.Background(), ranked, players, ref)

			Convey("Then teams appear in ranked order with metadata", func() {
				So(len(res.Reports), ShouldEqual, 2)
				So(res.Skipped, ShouldBeEmpty)
				So(res.Reports[0].TeamID, ShouldEqual, 1)
				So(res.Reports[0].Name, ShouldEqual, "Team One")
				So(res.Reports[0].Wins, ShouldEqual, 10)
				So(res.Reports[0].Losses, ShouldEqual, 2)
				So(res.Reports[0].Rating, ShouldEqual, 1500.5)
				So(res.Reports[0].Experience, ShouldEqual, 100)
				So(res.Reports[1].Name, ShouldEqual, "Team Two")
			})

			Convey("And each team lists its own players with truncated experience", func() {
				So(res.Reports[0].Players, ShouldResemble, []model.PlayerReport{
					{PersonaName: "alpha", Experience: 100, CountryCode: "se"},
					{PersonaName: "bravo", Experience: 0, CountryCode: ""},
				})
				So(res.Reports[1].Players, ShouldResemble, []model.PlayerReport{
					{PersonaName: "charlie", Experience: 50, CountryCode: "us"},
				})
			})

			Convey("And the lookup is called once per ranked team", func() {
				So(lookup.calls, ShouldResemble, []int64{1, 2})
			})
		})

		Convey("When the lookup for team 2 fails", func() {
			lookup.fail = map[int64]error{2: errors.New("connection reset")}
			res := newBuilder(lookup).Build(context.Background(), ranked, players, ref)

			Convey("Then only team 1 is reported, at position 0", func() {
				So(len(res.Reports), ShouldEqual, 1)
				So(res.Reports[0].TeamID, ShouldEqual, 1)
			})

			Convey("And the failure is recorded as a lookup failure", func() {
				So(len(res.Skipped), ShouldEqual, 1)
				So(res.Skipped[0].TeamID, ShouldEqual, 2)
				So(errors.Is(res.Skipped[0].Err, report.ErrLookupFailure), ShouldBeTrue)
				So(res.Skipped[0].Err.Error(), ShouldContainSubstring, "connection reset")
			})
		})

		Convey("When the first ranked team fails", func() {
			lookup.fail = map[int64]error{1: errors.New("boom")}
			res := newBuilder(lookup).Build(context.Background(), ranked, players, ref)

			Convey("Then the remaining team keeps its relative order", func() {
				So(len(res.Reports), ShouldEqual, 1)
				So(res.Reports[0].TeamID, ShouldEqual, 2)
				So(lookup.calls, ShouldResemble, []int64{1, 2})
			})
		})

		Convey("When nothing is ranked", func() {
			res := newBuilder(lookup).Build(context.Background(), nil, players, ref)

			Convey("Then the report is empty and no lookups happen", func() {
				So(res.Reports, ShouldNotBeNil)
				So(res.Reports, ShouldBeEmpty)
				So(lookup.calls, ShouldBeEmpty)
			})
		})
	})
}

func TestBuilder_Concurrent(t *testing.T) {
	Convey("Given slow lookups finishing in reverse order", t, func() {
		ranked := []ranking.TeamScore{{TeamID: 1, Score: 40}, {TeamID: 2, Score: 30}, {TeamID: 3, Score: 20}, {TeamID: 4, Score: 10}}
		lookup := &fakeLookup{
			teams: map[int64]model.TeamMetadata{
				1: {TeamID: 1, Name: "one"},
				2: {TeamID: 2, Name: "two"},
				4: {TeamID: 4, Name: "four"},
			},
			fail: map[int64]error{3: errors.New("timeout")},
			delays: map[int64]time.Duration{
				1: 40 * time.Millisecond,
				2: 20 * time.Millisecond,
				3: 10 * time.Millisecond,
			},
		}

		Convey("When built with parallel lookups", func() {
			res := newBuilder(lookup, report.WithConcurrency(4)).Build(context.Background(), ranked, nil, ref)

			Convey("Then results are reassembled in ranked order", func() {
				So(len(res.Reports), ShouldEqual, 3)
				So(res.Reports[0].Name, ShouldEqual, "one")
				So(res.Reports[1].Name, ShouldEqual, "two")
				So(res.Reports[2].Name, ShouldEqual, "four")
			})

			Convey("And one failure does not affect the others", func() {
				So(len(res.Skipped), ShouldEqual, 1)
				So(res.Skipped[0].TeamID, ShouldEqual, 3)
				So(len(lookup.calls), ShouldEqual, 4)
			})
		})
	})
}
