package notify_test

import (
	"bytes"
	"testing"

	notify "github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
)

func TestWriteMessage_ErrorType(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	notify.WriteMessage(notify.Message{
		Type:    notify.ErrorType,
		Content: "test error",
		Writer:  &out,
	})

	got := out.String()
	want := "✗ test error\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestWriteMessage_WithFormatting(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	notify.Errorf(&out, "error: %s (%d)", "failed", 42)

	got := out.String()
	want := "✗ error: failed (42)\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestWriteMessage_SuccessWithTimer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	tmr := timer.New()
	tmr.Start()

	notify.SuccessWithTimerf(&out, tmr, "stage complete")

	got := out.String()
	if !bytes.Contains(out.Bytes(), []byte("✔ stage complete\n")) {
		t.Fatalf("missing success line in %q", got)
	}

	if !bytes.Contains(out.Bytes(), []byte("⏲ stage:")) {
		t.Fatalf("missing timing block in %q", got)
	}
}

func TestWriteMessage_TitleDefaultEmoji(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Verify distribution...",
		Writer:  &out,
	})

	got := out.String()
	want := "ℹ️ Verify distribution...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestWriteMessage_MultilineIndent(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	notify.Warningf(&out, "first\nsecond")

	got := out.String()
	want := "⚠ first\n  second\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}
