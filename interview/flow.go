package interview

import "strings"

// DefaultMaxQuestions caps how many questions a session may reach before the
// flow ends regardless of template length. Tuning constant, not a structural
// invariant.
const DefaultMaxQuestions = 10

// genericQuestion is asked when no template question is available.
const genericQuestion = "Tell me about a challenging project you've worked on."

// MessageKind tags an interviewer message for the voice-synthesis layer.
type MessageKind string

const (
	MessagePlain    MessageKind = "plain"
	MessageFeedback MessageKind = "feedback"
	MessageFollowUp MessageKind = "followup"
)

// AgentMessage is one interviewer-role utterance emitted by the flow.
type AgentMessage struct {
	Text string      `json:"text"`
	Kind MessageKind `json:"kind"`
}

// Stage identifies where a FlowState sits in the turn cycle.
type Stage int

const (
	// StageAskQuestion selects and emits the next question.
	StageAskQuestion Stage = iota
	// StageAwaitAnswer waits for an EventAnswer from the candidate.
	StageAwaitAnswer
	// StageEvaluateAnswer scores the last answer.
	StageEvaluateAnswer
	// StageFeedback emits coaching feedback (learning mode, low score only).
	StageFeedback
	// StageAdvance advances the question index or emits a follow-up, then
	// checks termination.
	StageAdvance
	// StageEnd is terminal.
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageAskQuestion:
		return "ask_question"
	case StageAwaitAnswer:
		return "await_answer"
	case StageEvaluateAnswer:
		return "evaluate_answer"
	case StageFeedback:
		return "feedback"
	case StageAdvance:
		return "advance"
	case StageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is an external input to the flow's transition function.
type Event interface{ isFlowEvent() }

// EventTick drives the flow through stages that need no external input.
type EventTick struct{}

// EventAnswer delivers the candidate's answer to a StageAwaitAnswer state.
type EventAnswer struct {
	Text string
}

func (EventTick) isFlowEvent()   {}
func (EventAnswer) isFlowEvent() {}

// FlowState is the evolving per-session state of the turn machine. It is a
// value: Step returns a new state and never mutates its input.
type FlowState struct {
	Stage              Stage
	QuestionIndex      int
	Messages           []AgentMessage
	Scores             []float64
	LastAnswer         string
	ShouldGiveFeedback bool
}

// Flow is the mode-aware interview turn state machine. Questions and mode
// are fixed for the session lifetime; all evolving state lives in FlowState,
// making Step a pure transition function.
type Flow struct {
	questions    []string
	mode         Mode
	maxQuestions int
}

// NewFlow builds a flow over a pre-fetched ordered question list. The list
// may be empty; the flow then falls back to a generic question and ends at
// the question cap.
func NewFlow(questions []string, mode Mode) *Flow {
	return &Flow{
		questions:    append([]string(nil), questions...),
		mode:         mode,
		maxQuestions: DefaultMaxQuestions,
	}
}

// Start returns the initial state: asking the first question.
func (f *Flow) Start() FlowState {
	return FlowState{Stage: StageAskQuestion}
}

// Step applies one stage transition and returns the successor state together
// with any messages emitted by that transition. The messages are also
// appended to the returned state's ordered Messages log.
func (f *Flow) Step(st FlowState, ev Event) (FlowState, []AgentMessage) {
	switch st.Stage {
	case StageAskQuestion:
		msg := AgentMessage{Text: f.questionAt(st.QuestionIndex), Kind: MessagePlain}
		st = emit(st, msg)
		st.Stage = StageAwaitAnswer
		return st, []AgentMessage{msg}

	case StageAwaitAnswer:
		answer, ok := ev.(EventAnswer)
		if !ok {
			return st, nil
		}
		st.LastAnswer = answer.Text
		st.Stage = StageEvaluateAnswer
		return st, nil

	case StageEvaluateAnswer:
		score := ScoreAnswer(st.LastAnswer)
		st.Scores = append(append([]float64(nil), st.Scores...), score)
		st.ShouldGiveFeedback = f.mode == ModeLearning && score < 0.6
		if st.ShouldGiveFeedback {
			st.Stage = StageFeedback
		} else {
			st.Stage = StageAdvance
		}
		return st, nil

	case StageFeedback:
		msg := AgentMessage{Text: feedbackFor(lastScore(st)), Kind: MessageFeedback}
		st = emit(st, msg)
		st.Stage = StageAdvance
		return st, []AgentMessage{msg}

	case StageAdvance:
		var emitted []AgentMessage
		if f.mode == ModeStrict || lastScore(st) >= 0.6 {
			st.QuestionIndex++
		} else {
			msg := AgentMessage{
				Text: "Can you elaborate more on that? Maybe share a specific example?",
				Kind: MessageFollowUp,
			}
			st = emit(st, msg)
			emitted = append(emitted, msg)
		}
		if f.done(st.QuestionIndex) {
			st.Stage = StageEnd
		} else {
			st.Stage = StageAskQuestion
		}
		return st, emitted

	default:
		return st, nil
	}
}

// RunTurn drives the flow from the current state through one full candidate
// turn: it delivers the answer, evaluates it, and advances until the flow is
// either waiting on the next answer (having asked a question) or has ended.
func (f *Flow) RunTurn(st FlowState, answer string) (FlowState, []AgentMessage) {
	var all []AgentMessage

	st, msgs := f.Step(st, EventAnswer{Text: answer})
	all = append(all, msgs...)

	for st.Stage != StageAwaitAnswer && st.Stage != StageEnd {
		st, msgs = f.Step(st, EventTick{})
		all = append(all, msgs...)
	}
	return st, all
}

// Begin drives the flow from Start to the first awaited answer, returning
// the opening question message(s).
func (f *Flow) Begin() (FlowState, []AgentMessage) {
	st := f.Start()
	var all []AgentMessage
	for st.Stage != StageAwaitAnswer && st.Stage != StageEnd {
		var msgs []AgentMessage
		st, msgs = f.Step(st, EventTick{})
		all = append(all, msgs...)
	}
	return st, all
}

// Done reports whether the state is terminal.
func (f *Flow) Done(st FlowState) bool { return st.Stage == StageEnd }

// Mode returns the flow's fixed session mode.
func (f *Flow) Mode() Mode { return f.mode }

func (f *Flow) questionAt(idx int) string {
	if idx >= 0 && idx < len(f.questions) {
		return f.questions[idx]
	}
	return genericQuestion
}

// done checks the termination condition after an advance: the template is
// exhausted, or the question cap is reached, whichever comes first.
func (f *Flow) done(questionIndex int) bool {
	if len(f.questions) > 0 && questionIndex >= len(f.questions) {
		return true
	}
	return questionIndex >= f.maxQuestions
}

// answerKeywords each add a small bonus to the live scoring heuristic.
var answerKeywords = []string{"experience", "project", "team", "result", "learned"}

// ScoreAnswer is the lightweight live-turn scoring heuristic: a 0.5 base
// with length bonuses at 20 and 50 words and a 0.05 bonus per matched
// keyword, clamped to [0, 1]. It is intentionally cheaper than the
// post-session semantic evaluation.
func ScoreAnswer(answer string) float64 {
	score := 0.5

	wordCount := len(strings.Fields(answer))
	if wordCount > 50 {
		score += 0.2
	} else if wordCount > 20 {
		score += 0.1
	}

	lower := strings.ToLower(answer)
	for _, kw := range answerKeywords {
		if strings.Contains(lower, kw) {
			score += 0.05
		}
	}

	return clamp(score, 0, 1)
}

func feedbackFor(score float64) string {
	switch {
	case score < 0.4:
		return "I noticed your answer was a bit brief. Try using the STAR method: " +
			"Situation, Task, Action, Result. This helps structure your response."
	case score < 0.6:
		return "Good start! Consider adding more specific examples or metrics " +
			"to make your answer more impactful."
	default:
		return "Nice answer! Let's move to the next question."
	}
}

func lastScore(st FlowState) float64 {
	if len(st.Scores) == 0 {
		return 0.5
	}
	return st.Scores[len(st.Scores)-1]
}

func emit(st FlowState, msg AgentMessage) FlowState {
	st.Messages = append(append([]AgentMessage(nil), st.Messages...), msg)
	return st
}
