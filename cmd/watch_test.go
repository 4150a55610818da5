package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/delaylens/internal/console"
	"github.com/KaramelBytes/delaylens/internal/dataset"
	"github.com/KaramelBytes/delaylens/internal/report"
)

func newRefresher(t *testing.T, data, output string) *refresher {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	watchCmd.SetOut(&out)
	watchCmd.SetErr(&errOut)
	return &refresher{
		cmd:    watchCmd,
		log:    console.New(&out, &errOut, false),
		path:   data,
		dsOpt:  dataset.DefaultOptions(),
		repOpt: report.DefaultOptions(),
		output: output,
	}
}

func TestRefresherKeepsPreviousSessionOnBadData(t *testing.T) {
	home, data := setupHome(t)
	out := filepath.Join(home, "live.md")
	r := newRefresher(t, data, out)
	if err := r.refit("initial"); err != nil {
		t.Fatalf("refit: %v", err)
	}
	first := r.Session()
	if first == nil || first.Dataset().Len() != 12 {
		t.Fatalf("session not fitted")
	}
	if err := os.WriteFile(data, []byte("Planned_Time,Distraction\n1,x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.refit("file changed"); err == nil {
		t.Fatalf("expected refit error for missing column")
	}
	if r.Session() != first {
		t.Fatalf("failed refit replaced the session")
	}
}

func TestRunWatchRefitsOnWrite(t *testing.T) {
	home, data := setupHome(t)
	out := filepath.Join(home, "live.md")
	r := newRefresher(t, data, out)

	oldSettle := settle
	settle = 20 * time.Millisecond
	defer func() { settle = oldSettle }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, r, "@every 1h") }()

	waitFor(t, func() bool {
		b, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(b), "Rows: 12")
	})

	more := taskLog + "10,200,Gaming\n"
	if err := os.WriteFile(data, []byte(more), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		b, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(b), "Rows: 13")
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runWatch did not stop after cancel")
	}
}

func TestRunWatchRejectsBadSchedule(t *testing.T) {
	_, data := setupHome(t)
	r := newRefresher(t, data, "")
	err := runWatch(context.Background(), r, "not a schedule")
	if err == nil || !strings.Contains(err.Error(), "--every") {
		t.Fatalf("err = %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
