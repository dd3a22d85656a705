package main

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hollowaylabs/interviewkit/interview"
)

// liveSession pairs a turn machine with the collector recording its
// transcript. All access goes through the session's own lock, so concurrent
// websocket reads for the same room serialize cleanly.
type liveSession struct {
	mu        sync.Mutex
	flow      *interview.Flow
	state     interview.FlowState
	collector *interview.Collector
	questions []string
	ended     bool
}

// answer feeds one candidate answer through the flow, records both sides of
// the exchange, and returns the interviewer's messages plus whether the flow
// has reached its end.
func (s *liveSession) answer(text string, durationSeconds float64) ([]interview.AgentMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, true, errors.New("session already ended")
	}
	if s.flow.Done(s.state) {
		return nil, true, nil
	}

	s.collector.RecordCandidateTurn(text, durationSeconds)

	var msgs []interview.AgentMessage
	s.state, msgs = s.flow.RunTurn(s.state, text)
	if n := len(s.state.Scores); n > 0 {
		s.collector.RecordScore(s.state.Scores[n-1])
	}
	recordInterviewerMessages(s.collector, msgs)

	return msgs, s.flow.Done(s.state), nil
}

// end closes the session and returns its final snapshot. Safe to call twice.
func (s *liveSession) end() interview.SessionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	return s.collector.EndSession()
}

func recordInterviewerMessages(c *interview.Collector, msgs []interview.AgentMessage) {
	for _, m := range msgs {
		isQuestion := m.Kind == interview.MessagePlain
		isFollowup := m.Kind == interview.MessageFollowUp
		c.RecordInterviewerTurn(m.Text, isQuestion, isFollowup)
	}
}

// sessionManager owns the set of live sessions keyed by room name.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[string]*liveSession)}
}

// create starts a session and returns it with the opening question messages.
// An empty room name gets a generated one.
func (m *sessionManager) create(roomName string, tpl interview.Template, mode interview.Mode, participant string) (string, *liveSession, []interview.AgentMessage, error) {
	if roomName == "" {
		roomName = "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[roomName]; exists {
		return "", nil, nil, errors.New("room already has a live session")
	}

	flow := interview.NewFlow(tpl.Questions, mode)
	collector := interview.NewCollector(roomName, tpl.ID, tpl.Title, mode, participant)

	state, msgs := flow.Begin()
	recordInterviewerMessages(collector, msgs)

	sess := &liveSession{
		flow:      flow,
		state:     state,
		collector: collector,
		questions: tpl.Questions,
	}
	m.sessions[roomName] = sess
	return roomName, sess, msgs, nil
}

func (m *sessionManager) get(roomName string) (*liveSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[roomName]
	return sess, ok
}

func (m *sessionManager) remove(roomName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, roomName)
}
