package interview

import (
	"testing"
	"time"
)

// fakeClock returns successive instants one second apart.
func fakeClock(start time.Time) func() time.Time {
	calls := 0
	return func() time.Time {
		t := start.Add(time.Duration(calls) * time.Second)
		calls++
		return t
	}
}

func TestCollector_TimestampsAreElapsedAndMonotonic(t *testing.T) {
	t.Parallel()

	c := NewCollector("room-1", "tpl-1", "Backend Basics", ModeStrict, "Ada")
	c.now = fakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	c.start = c.now()

	c.RecordInterviewerTurn("Tell me about yourself.", true, false)
	c.RecordCandidateTurn("I build services in Go.", 4.5)
	c.RecordInterviewerTurn("Can you elaborate?", false, true)

	data := c.Snapshot()
	if len(data.Transcript) != 3 {
		t.Fatalf("len(transcript)=%d, want 3", len(data.Transcript))
	}
	prev := -1.0
	for i, e := range data.Transcript {
		if e.Timestamp < prev {
			t.Fatalf("entry %d timestamp %.1f < previous %.1f", i, e.Timestamp, prev)
		}
		prev = e.Timestamp
	}
	if data.Transcript[1].Duration != 4.5 {
		t.Fatalf("candidate duration=%v, want 4.5", data.Transcript[1].Duration)
	}
	if data.QuestionCount != 1 || data.FollowUpCount != 1 {
		t.Fatalf("questions=%d followups=%d, want 1 and 1", data.QuestionCount, data.FollowUpCount)
	}
}

func TestCollector_EndSessionSetsEndedAtOnce(t *testing.T) {
	t.Parallel()

	c := NewCollector("room-2", "", "", ModeLearning, "")
	c.now = fakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	c.start = c.now()

	first := c.EndSession()
	if first.Metadata.EndedAt == nil {
		t.Fatalf("EndedAt not set")
	}
	second := c.EndSession()
	if !second.Metadata.EndedAt.Equal(*first.Metadata.EndedAt) {
		t.Fatalf("EndedAt changed on second call: %v vs %v", second.Metadata.EndedAt, first.Metadata.EndedAt)
	}
}

func TestCollector_RecordScoreClampsRange(t *testing.T) {
	t.Parallel()

	c := NewCollector("room-3", "", "", ModeStrict, "")
	c.RecordScore(1.7)
	c.RecordScore(-0.2)
	c.RecordScore(0.42)

	data := c.Snapshot()
	want := []float64{1, 0, 0.42}
	if len(data.Scores) != len(want) {
		t.Fatalf("len(scores)=%d, want %d", len(data.Scores), len(want))
	}
	for i, s := range data.Scores {
		if s != want[i] {
			t.Fatalf("scores[%d]=%v, want %v", i, s, want[i])
		}
	}
}

func TestCollector_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	c := NewCollector("room-4", "", "", ModeStrict, "")
	c.RecordCandidateTurn("one", 0)

	snap := c.Snapshot()
	snap.Transcript[0].Text = "mutated"
	snap.Scores = append(snap.Scores, 0.9)

	again := c.Snapshot()
	if again.Transcript[0].Text != "one" {
		t.Fatalf("collector data mutated through snapshot: %q", again.Transcript[0].Text)
	}
	if len(again.Scores) != 0 {
		t.Fatalf("len(scores)=%d, want 0", len(again.Scores))
	}
}

func TestCollector_TranscriptText(t *testing.T) {
	t.Parallel()

	c := NewCollector("room-5", "", "", ModeStrict, "")
	c.now = fakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	c.start = c.now()
	c.RecordInterviewerTurn("Hello.", false, false)
	c.RecordCandidateTurn("Hi.", 1)

	got := c.Snapshot().TranscriptText()
	want := "[1.0s] Interviewer: Hello.\n[2.0s] Candidate: Hi."
	if got != want {
		t.Fatalf("transcript text=%q, want %q", got, want)
	}
}
