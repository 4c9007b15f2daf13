package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Then Get returns it", func() {
			So(Get(), ShouldNotBeNil)
		})

		Convey("Then Named returns a child logger", func() {
			So(Named("test"), ShouldNotBeNil)
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info", func() {
			Get().Info(ctx, "simulation done", String("mode", "strategies"), Int("weeks", 20), Bool("cached", false))

			Convey("Then fields and source are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "simulation done")
				So(out, ShouldContainSubstring, "mode=strategies")
				So(out, ShouldContainSubstring, "weeks=20")
				So(out, ShouldContainSubstring, "source=")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Debug(ctx, "visible")

			Convey("Then debug lines are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When using a named logger", func() {
			Named("engine").Warn(ctx, "careful")

			Convey("Then the component is attached", func() {
				So(buf.String(), ShouldContainSubstring, "component=engine")
			})
		})
	})

	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithJSON(true)), ShouldBeNil)

		Convey("Then lines are JSON objects", func() {
			Get().Error(context.Background(), "boom", Float64("rate", 1.2))
			line := strings.TrimSpace(buf.String())
			So(line, ShouldStartWith, "{")
			So(line, ShouldContainSubstring, `"rate":1.2`)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known levels are accepted", func() {
			for _, l := range []string{"debug", "info", "", "warn", "WARNING", " error "} {
				So(SetLevelString(l), ShouldBeNil)
			}
		})

		Convey("Then unknown levels are rejected", func() {
			err := SetLevelString("loud")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log level")
		})
	})
}
