package interview

import (
	"sync"
	"time"
)

// Collector accumulates the transcript, scores, and counters for one live
// session. It is an append-only log: entries are never edited or removed, and
// timestamps are assigned from the collector's own clock at record time, so
// they are monotonic non-decreasing under single-writer access. A mutex makes
// the clock read and the append atomic as a unit, guarding against re-entrant
// callers racing the timestamp.
type Collector struct {
	mu    sync.Mutex
	start time.Time
	now   func() time.Time
	ended bool
	data  SessionData
}

// NewCollector starts a session and returns its collector. templateID may be
// empty when the session runs without a template.
func NewCollector(roomName, templateID, templateTitle string, mode Mode, participantName string) *Collector {
	c := &Collector{now: time.Now}
	c.start = c.now()
	c.data = SessionData{
		Metadata: SessionMetadata{
			RoomName:        roomName,
			TemplateID:      templateID,
			TemplateTitle:   templateTitle,
			Mode:            mode,
			StartedAt:       c.start,
			ParticipantName: participantName,
		},
	}
	return c
}

// RecordInterviewerTurn appends an interviewer utterance. isQuestion and
// isFollowup only bump the session counters; they do not change the entry.
func (c *Collector) RecordInterviewerTurn(text string, isQuestion, isFollowup bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Transcript = append(c.data.Transcript, TranscriptEntry{
		Speaker:   SpeakerInterviewer,
		Text:      text,
		Timestamp: c.elapsedLocked(),
	})
	if isQuestion {
		c.data.QuestionCount++
	}
	if isFollowup {
		c.data.FollowUpCount++
	}
}

// RecordCandidateTurn appends a candidate utterance with its spoken duration.
func (c *Collector) RecordCandidateTurn(text string, durationSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Transcript = append(c.data.Transcript, TranscriptEntry{
		Speaker:   SpeakerCandidate,
		Text:      text,
		Timestamp: c.elapsedLocked(),
		Duration:  durationSeconds,
	})
}

// RecordScore appends one per-answer score, clamped to [0, 1].
func (c *Collector) RecordScore(score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Scores = append(c.data.Scores, clamp(score, 0, 1))
}

// EndSession marks the session ended and returns the accumulated data.
// The end time is set exactly once; later calls return the same snapshot.
func (c *Collector) EndSession() SessionData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ended {
		ended := c.now()
		c.data.Metadata.EndedAt = &ended
		c.ended = true
	}
	return c.snapshotLocked()
}

// Snapshot returns a copy of the data collected so far without ending the
// session. Useful for mid-session state machine decisions.
func (c *Collector) Snapshot() SessionData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsLearningMode reports whether the session runs with live coaching.
func (c *Collector) IsLearningMode() bool {
	return c.data.Metadata.Mode == ModeLearning
}

func (c *Collector) elapsedLocked() float64 {
	return c.now().Sub(c.start).Seconds()
}

func (c *Collector) snapshotLocked() SessionData {
	out := c.data
	out.Transcript = append([]TranscriptEntry(nil), c.data.Transcript...)
	out.Scores = append([]float64(nil), c.data.Scores...)
	if c.data.Metadata.EndedAt != nil {
		ended := *c.data.Metadata.EndedAt
		out.Metadata.EndedAt = &ended
	}
	return out
}
