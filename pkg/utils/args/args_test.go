package args_test

import (
	"flag"
	"testing"
	"time"

	"github.com/servefab/servefab/pkg/utils/args"
)

func TestParser(t *testing.T) {
	t.Run("it parses a typed flag value", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		interval := args.Parser(time.ParseDuration)
		fs.Var(interval, "interval", "")

		if err := fs.Parse([]string{"-interval", "90s"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !interval.IsSet() {
			t.Error("IsSet should be true after parsing")
		}
		if actual := interval.Value(); actual != 90*time.Second {
			t.Errorf("value: actual=%s, expect=90s", actual)
		}
	})

	t.Run("it rejects an unparsable value", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(discard{})
		interval := args.Parser(time.ParseDuration)
		fs.Var(interval, "interval", "")

		if err := fs.Parse([]string{"-interval", "soon"}); err == nil {
			t.Error("parse should fail")
		}
	})

	t.Run("it stays unset without the flag", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		interval := args.Parser(time.ParseDuration)
		fs.Var(interval, "interval", "")

		if err := fs.Parse([]string{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if interval.IsSet() {
			t.Error("IsSet should be false without the flag")
		}
	})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
