package sink_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/proteams/internal/adapters/sink"
	"github.com/okian/proteams/internal/domain/model"
)

func sampleReports() []model.TeamReport {
	return []model.TeamReport{
		{
			TeamID: 1, Name: "Alpha", Wins: 30, Losses: 10, Rating: 1500.5, Experience: 100,
			Players: []model.PlayerReport{
				{PersonaName: "a1", Experience: 60, CountryCode: "se"},
				{PersonaName: "a2", Experience: 40},
			},
		},
		{TeamID: 2, Name: "Beta", Experience: 50, Players: []model.PlayerReport{{PersonaName: "b1", Experience: 50, CountryCode: "pe"}}},
	}
}

func TestNew(t *testing.T) {
	Convey("Given the sink constructor", t, func() {
		var buf bytes.Buffer

		Convey("When a known format is requested", func() {
			for _, f := range append(sink.Formats(), "", "YAML", " Text ") {
				s, err := sink.New(f, &buf)
				So(err, ShouldBeNil)
				So(s, ShouldNotBeNil)
			}
		})

		Convey("When an unknown format is requested", func() {
			s, err := sink.New("csv", &buf)

			Convey("Then it is rejected", func() {
				So(s, ShouldBeNil)
				So(errors.Is(err, sink.ErrUnknownFormat), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "csv")
			})
		})
	})
}

func TestYAMLSink(t *testing.T) {
	Convey("Given a YAML sink", t, func() {
		var buf bytes.Buffer
		s, err := sink.New(sink.FormatYAML, &buf)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When two team reports are emitted", func() {
			So(s.Emit(ctx, sampleReports()), ShouldBeNil)

			Convey("Then the document round-trips in order", func() {
				var decoded []model.TeamReport
				So(yaml.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
				So(decoded, ShouldResemble, sampleReports())
			})

			Convey("And it uses a two-space indent with snake_case keys", func() {
				out := buf.String()
				So(out, ShouldStartWith, "- team_id: 1\n  name: Alpha\n")
				So(out, ShouldContainSubstring, "  country_code: se")
				So(out, ShouldContainSubstring, "personaname: b1")
			})
		})

		Convey("When the report is empty", func() {
			So(s.Emit(ctx, nil), ShouldBeNil)

			Convey("Then an empty list is written", func() {
				So(buf.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then nothing is written", func() {
				So(errors.Is(s.Emit(cctx, sampleReports()), context.Canceled), ShouldBeTrue)
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestTextSink(t *testing.T) {
	Convey("Given a text sink", t, func() {
		var buf bytes.Buffer
		s, err := sink.New(sink.FormatText, &buf)
		So(err, ShouldBeNil)

		Convey("When two team reports are emitted", func() {
			So(s.Emit(context.Background(), sampleReports()), ShouldBeNil)
			out := buf.String()

			Convey("Then teams are numbered in report order", func() {
				So(out, ShouldStartWith, "1. Alpha (team 1)\n")
				So(out, ShouldContainSubstring, "2. Beta (team 2)")
				So(bytes.Index(buf.Bytes(), []byte("Alpha")), ShouldBeLessThan, bytes.Index(buf.Bytes(), []byte("Beta")))
			})

			Convey("And players are listed with their experience", func() {
				So(out, ShouldContainSubstring, "- a1")
				So(out, ShouldContainSubstring, "[se]")
				So(out, ShouldContainSubstring, "[--]")
				So(out, ShouldContainSubstring, "60 s")
				So(out, ShouldContainSubstring, "1500.50")
			})
		})

		Convey("When the report is empty", func() {
			So(s.Emit(context.Background(), nil), ShouldBeNil)
			So(buf.String(), ShouldEqual, "no teams ranked\n")
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given an output destination", t, func() {
		dir := t.TempDir()

		Convey("When the path is stdout", func() {
			for _, p := range []string{"", sink.StdoutPath} {
				w := sink.Open(p)
				So(w, ShouldNotBeNil)
				So(w.Close(), ShouldBeNil)
			}
		})

		Convey("When a file destination is never written", func() {
			path := filepath.Join(dir, "unused.yaml")
			w := sink.Open(path)
			So(w.Close(), ShouldBeNil)

			Convey("Then no file is created", func() {
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When a report is emitted to an existing file", func() {
			path := filepath.Join(dir, "teams.yaml")
			So(os.WriteFile(path, []byte("stale content that is longer than the report\n"), 0o600), ShouldBeNil)

			w := sink.Open(path)
			s, err := sink.New(sink.FormatYAML, w)
			So(err, ShouldBeNil)
			So(s.Emit(context.Background(), nil), ShouldBeNil)
			So(w.Close(), ShouldBeNil)

			Convey("Then the file is truncated and rewritten", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "[]\n")
			})
		})

		Convey("When the file cannot be created", func() {
			w := sink.Open(filepath.Join(dir, "missing", "teams.txt"))
			s, err := sink.New(sink.FormatText, w)
			So(err, ShouldBeNil)
			err = s.Emit(context.Background(), sampleReports())

			Convey("Then the open failure surfaces as an encode error", func() {
				So(errors.Is(err, sink.ErrEncode), ShouldBeTrue)
				So(errors.Is(err, sink.ErrOpenOutput), ShouldBeTrue)
			})
		})
	})
}

func TestLazyWriteCloser(t *testing.T) {
	Convey("Given a lazy writer", t, func() {
		calls := 0
		var buf bytes.Buffer
		w := sink.NewLazyWriteCloser(func() (io.WriteCloser, error) {
			calls++
			return nopWriteCloser{&buf}, nil
		})

		Convey("Then init runs once on the first write", func() {
			So(w.Opened(), ShouldBeFalse)
			_, _ = w.Write([]byte("a"))
			_, _ = w.Write([]byte("b"))
			So(calls, ShouldEqual, 1)
			So(w.Opened(), ShouldBeTrue)
			So(buf.String(), ShouldEqual, "ab")
			So(w.Close(), ShouldBeNil)
		})
	})
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
