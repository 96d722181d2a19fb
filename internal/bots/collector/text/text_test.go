package text

import (
	"errors"
	"testing"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/harness"
)

func imapSuite() harness.Suite {
	return harness.Suite{
		BotID: "imap-collector",
		New:   func() bot.Processor { return New() },
		Sysconfig: config.Params{
			ParamName:     "IMAP Feed",
			ParamURL:      "http://localhost/foobar.txt",
			ParamFileName: "foobar.txt",
		},
		Input: harness.Raw("bar text"),
	}
}

func TestCollector_Standard(t *testing.T) {
	harness.RunStandardTests(t, imapSuite())
}

func TestCollector_Report(t *testing.T) {
	d := harness.NewDriver(t, imapSuite())
	d.Reset()
	d.MustRun()

	d.AssertLogLine(0, "Bot is starting", "INFO")
	d.AssertLogNotMatches("ERROR")
	d.AssertLogNotMatches("CRITICAL")
	d.AssertQueueNames()

	d.AssertOutputLen(1)
	d.AssertMessageSubset(0, map[string]any{
		"__type":          "Report",
		"feed.name":       "IMAP Feed",
		"feed.accuracy":   100.0,
		"feed.url":        "http://localhost/foobar.txt",
		"extra.file_name": "foobar.txt",
		"raw":             "YmFyIHRleHQ=",
	})

	if n := len(d.InputQueue()); n != 0 {
		t.Errorf("expected input consumed, got %d", n)
	}
}

func TestCollector_Accuracy(t *testing.T) {
	s := imapSuite()
	s.Sysconfig[ParamAccuracy] = 50

	d := harness.NewDriver(t, s)
	d.Reset()
	d.MustRun()

	d.AssertMessageSubset(0, map[string]any{"feed.accuracy": 50.0})
}

func TestCollector_InvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		sysconfig config.Params
		want      error
	}{
		{name: "missing name", sysconfig: config.Params{}, want: config.ErrMissingParam},
		{name: "accuracy out of range", sysconfig: config.Params{ParamName: "x", ParamAccuracy: 120}, want: config.ErrInvalidParam},
		{name: "accuracy not a number", sysconfig: config.Params{ParamName: "x", ParamAccuracy: "high"}, want: config.ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := imapSuite()
			s.Sysconfig = tt.sysconfig

			d := harness.NewDriver(t, s)
			d.Reset()

			err := d.Run()

			var startErr *bot.StartError
			if !errors.As(err, &startErr) {
				t.Fatalf("expected StartError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			d.AssertLogMatches("CRITICAL - Bot failed.")
		})
	}
}

func TestCollector_MultipleInputs(t *testing.T) {
	d := harness.NewDriver(t, imapSuite())
	d.Reset()
	d.SetInputQueue(harness.Raw("first", "second"))
	d.MustRun()

	d.AssertOutputLen(2)
	d.AssertMessageSubset(0, map[string]any{"raw": "Zmlyc3Q="})
	d.AssertMessageSubset(1, map[string]any{"raw": "c2Vjb25k"})
}
