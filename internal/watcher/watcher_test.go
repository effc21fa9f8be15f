package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hwbot/internal/practicum"
	logx "hwbot/pkg/logx"
)

// scriptedSource returns one canned response (or error) per cycle and
// records every cursor it was asked for.
type scriptedSource struct {
	t       *testing.T
	replies []any // string (JSON body) or error
	cursors []int64
	calls   int
}

func (s *scriptedSource) Statuses(ctx context.Context, fromDate int64) (any, error) {
	s.cursors = append(s.cursors, fromDate)
	if s.calls >= len(s.replies) {
		s.t.Fatalf("unexpected extra poll #%d", s.calls+1)
	}
	r := s.replies[s.calls]
	s.calls++
	if err, ok := r.(error); ok {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(r.(string)), &v); err != nil {
		s.t.Fatalf("bad scripted body: %v", err)
	}
	return v, nil
}

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) Send(ctx context.Context, text string) {
	n.sent = append(n.sent, text)
}

func newTestWatcher(t *testing.T, src StatusSource, n Notifier) *Watcher {
	t.Helper()
	sched, err := ParseSchedule("10m")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	return New(sched, src, n, logx.Nop(), nil)
}

func TestFirstCycleUsesStartTime(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{`{"current_date": 100}`}}
	w := newTestWatcher(t, src, &recordingNotifier{})

	w.runCycle(context.Background())

	if len(src.cursors) != 1 || src.cursors[0] != w.startedAt.Unix() {
		t.Fatalf("cursors = %v, want [%d]", src.cursors, w.startedAt.Unix())
	}
}

func TestStatusChangeNotifiesAndAdvancesCursor(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "approved"}]}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "hw1") || !strings.Contains(n.sent[0], "всё понравилось") {
		t.Fatalf("message = %q", n.sent[0])
	}
	if w.state.cursor != 100 {
		t.Fatalf("cursor = %d, want 100", w.state.cursor)
	}
}

func TestUnchangedVerdictNotifiesOnce(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "reviewing"}]}`,
		`{"current_date": 150, "homeworks": [{"homework_name": "hw1", "status": "reviewing"}]}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())
	w.runCycle(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("sent %d notifications across two identical cycles, want 1", len(n.sent))
	}
	// Cursor still advances even though the second notification was suppressed.
	if w.state.cursor != 150 {
		t.Fatalf("cursor = %d, want 150", w.state.cursor)
	}
	if src.cursors[1] != 100 {
		t.Fatalf("second poll cursor = %d, want 100", src.cursors[1])
	}
}

func TestVerdictChangeNotifiesTwice(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "reviewing"}]}`,
		`{"current_date": 150, "homeworks": [{"homework_name": "hw1", "status": "approved"}]}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())
	w.runCycle(context.Background())

	if len(n.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(n.sent))
	}
	if n.sent[0] == n.sent[1] {
		t.Fatalf("expected two different messages, got %q twice", n.sent[0])
	}
}

func TestEmptyHomeworksKeepsCursor(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "approved"}]}`,
		`{"current_date": 200, "homeworks": []}`,
		`{"current_date": 300, "homeworks": []}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	for i := 0; i < 3; i++ {
		w.runCycle(context.Background())
	}

	// Only the first cycle had work: one notification, cursor pinned at 100,
	// and both empty cycles re-queried from 100.
	if len(n.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(n.sent))
	}
	if w.state.cursor != 100 {
		t.Fatalf("cursor = %d, want 100", w.state.cursor)
	}
	if src.cursors[1] != 100 || src.cursors[2] != 100 {
		t.Fatalf("empty cycles polled from %v, want 100 twice", src.cursors[1:])
	}
}

func TestRepeatedErrorNotifiesOnce(t *testing.T) {
	t.Parallel()
	failure := &practicum.StatusError{Code: 502}
	src := &scriptedSource{t: t, replies: []any{failure, failure}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())
	w.runCycle(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("sent %d error notifications, want 1", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "Сбой в работе программы") {
		t.Fatalf("diagnostic = %q", n.sent[0])
	}
}

func TestDifferentErrorNotifiesAgain(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		&practicum.StatusError{Code: 502},
		errors.New("connection refused"),
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())
	w.runCycle(context.Background())

	if len(n.sent) != 2 {
		t.Fatalf("sent %d error notifications, want 2", len(n.sent))
	}
	if n.sent[0] == n.sent[1] {
		t.Fatal("expected two distinct diagnostics")
	}
}

func TestUnknownVerdictSurfacesAsNotification(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "vanished"}]}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())

	if len(n.sent) != 1 || !strings.Contains(n.sent[0], "vanished") {
		t.Fatalf("sent = %q", n.sent)
	}
	// Cursor advanced before the verdict lookup failed: valid responses always
	// move the cursor forward.
	if w.state.cursor != 100 {
		t.Fatalf("cursor = %d, want 100", w.state.cursor)
	}
}

func TestMalformedThenRecovered(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{t: t, replies: []any{
		`{"homeworks": []}`,
		`{"current_date": 100, "homeworks": [{"homework_name": "hw1", "status": "approved"}]}`,
	}}
	n := &recordingNotifier{}
	w := newTestWatcher(t, src, n)

	w.runCycle(context.Background())
	w.runCycle(context.Background())

	// One diagnostic for the missing cursor, one status announcement.
	if len(n.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "current_date") {
		t.Fatalf("diagnostic = %q", n.sent[0])
	}
	if !strings.Contains(n.sent[1], "hw1") {
		t.Fatalf("announcement = %q", n.sent[1])
	}
}
