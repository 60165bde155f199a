package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("When it is initialized with an unknown format", func() {
			So(InitWithFormat("xml"), ShouldNotBeNil)
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		So(SetLevelString("info"), ShouldBeNil)
		var buf bytes.Buffer
		l, err := New(&buf, FormatJSON)
		So(err, ShouldBeNil)

		Convey("When a named logger writes an entry with fields", func() {
			l.Named("members").Named("registry").Info(context.Background(), "member created",
				String("member_id", "m-1"),
				Int("count", 2),
				Error(errors.New("boom")),
			)

			var entry map[string]any
			So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)

			Convey("Then message, fields, name and caller are recorded", func() {
				So(entry["msg"], ShouldEqual, "member created")
				So(entry["member_id"], ShouldEqual, "m-1")
				So(entry["count"], ShouldEqual, float64(2))
				So(entry["logger"], ShouldEqual, "members.registry")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above info", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			l.Info(context.Background(), "hidden")
			l.Warn(context.Background(), "shown")

			Convey("Then only entries at or above the level are written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		err := SetLevelString("loud")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "loud"), ShouldBeTrue)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a no-op logger", t, func() {
		l := NewNop()
		So(func() { l.Error(context.Background(), "ignored", String("k", "v")) }, ShouldNotPanic)
		So(func() { l.Named("x").Debug(nil, "ignored") }, ShouldNotPanic) //nolint:staticcheck // nil context tolerated
	})
}
