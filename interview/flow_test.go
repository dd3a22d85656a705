package interview

import (
	"math"
	"strings"
	"testing"
)

const briefAnswer = "Yes."

// strongAnswer clears the 0.6 advance threshold via length and keywords.
const strongAnswer = "Our team delivered the project and the result taught us lessons we learned " +
	"while scaling the platform across regions with five services and careful planning throughout."

func TestScoreAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		want   float64
	}{
		{"brief answer scores base", briefAnswer, 0.5},
		{"length bonus at twenty words", wordsOfLen(25), 0.6},
		{"long answer with every keyword", wordsOfLen(51) + " experience project team result learned", 0.95},
		{"empty answer", "", 0.5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScoreAnswer(tt.answer)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ScoreAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestFlow_StrictModeAlwaysAdvances(t *testing.T) {
	t.Parallel()

	f := NewFlow([]string{"Q1?", "Q2?"}, ModeStrict)

	st, msgs := f.Begin()
	if st.Stage != StageAwaitAnswer {
		t.Fatalf("after Begin stage = %v, want await_answer", st.Stage)
	}
	if len(msgs) != 1 || msgs[0].Text != "Q1?" || msgs[0].Kind != MessagePlain {
		t.Fatalf("opening messages = %+v", msgs)
	}

	// A weak answer still advances in strict mode, with no coaching.
	st, msgs = f.RunTurn(st, briefAnswer)
	if st.QuestionIndex != 1 {
		t.Fatalf("QuestionIndex = %d, want 1", st.QuestionIndex)
	}
	if len(msgs) != 1 || msgs[0].Text != "Q2?" || msgs[0].Kind != MessagePlain {
		t.Fatalf("turn messages = %+v, want only the next question", msgs)
	}

	st, msgs = f.RunTurn(st, briefAnswer)
	if !f.Done(st) {
		t.Fatalf("flow not done after final question, stage = %v", st.Stage)
	}
	if len(msgs) != 0 {
		t.Fatalf("messages after final answer = %+v, want none", msgs)
	}
	if len(st.Scores) != 2 {
		t.Fatalf("Scores = %v, want one per answer", st.Scores)
	}
}

func TestFlow_LearningModeCoachesLowScores(t *testing.T) {
	t.Parallel()

	f := NewFlow([]string{"Q1?", "Q2?"}, ModeLearning)
	st, _ := f.Begin()

	// Low score: coaching feedback, then a follow-up on the same question.
	st, msgs := f.RunTurn(st, briefAnswer)
	if st.QuestionIndex != 0 {
		t.Fatalf("QuestionIndex = %d, want 0 (no advance on low score)", st.QuestionIndex)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want feedback + follow-up + re-ask: %+v", len(msgs), msgs)
	}
	if msgs[0].Kind != MessageFeedback {
		t.Fatalf("msgs[0].Kind = %v, want feedback", msgs[0].Kind)
	}
	if msgs[1].Kind != MessageFollowUp {
		t.Fatalf("msgs[1].Kind = %v, want followup", msgs[1].Kind)
	}
	if msgs[2].Kind != MessagePlain || msgs[2].Text != "Q1?" {
		t.Fatalf("msgs[2] = %+v, want the same question re-asked", msgs[2])
	}

	// A strong answer advances without coaching.
	st, msgs = f.RunTurn(st, strongAnswer)
	if st.QuestionIndex != 1 {
		t.Fatalf("QuestionIndex = %d, want 1", st.QuestionIndex)
	}
	if len(msgs) != 1 || msgs[0].Text != "Q2?" {
		t.Fatalf("turn messages = %+v, want only the next question", msgs)
	}
}

func TestFlow_ThreeQuestionTemplateEndsAfterThree(t *testing.T) {
	t.Parallel()

	questions := []string{"Q1?", "Q2?", "Q3?"}
	f := NewFlow(questions, ModeStrict)

	st, msgs := f.Begin()
	asked := []string{msgs[0].Text}

	turns := 0
	for !f.Done(st) {
		turns++
		if turns > 10 {
			t.Fatal("flow did not terminate")
		}
		var emitted []AgentMessage
		st, emitted = f.RunTurn(st, strongAnswer)
		for _, m := range emitted {
			if m.Kind == MessagePlain {
				asked = append(asked, m.Text)
			}
		}
	}

	if turns != 3 {
		t.Fatalf("took %d turns, want 3", turns)
	}
	if len(asked) != 3 || asked[0] != "Q1?" || asked[1] != "Q2?" || asked[2] != "Q3?" {
		t.Fatalf("asked = %v", asked)
	}
}

func TestFlow_EmptyTemplateUsesGenericQuestionAndCap(t *testing.T) {
	t.Parallel()

	f := NewFlow(nil, ModeStrict)
	st, msgs := f.Begin()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "challenging project") {
		t.Fatalf("opening messages = %+v, want generic question", msgs)
	}

	turns := 0
	for !f.Done(st) {
		turns++
		if turns > DefaultMaxQuestions {
			t.Fatal("flow ran past the question cap")
		}
		st, _ = f.RunTurn(st, strongAnswer)
	}
	if turns != DefaultMaxQuestions {
		t.Fatalf("took %d turns, want %d", turns, DefaultMaxQuestions)
	}
}

func TestFlow_StepDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	f := NewFlow([]string{"Q1?"}, ModeLearning)
	before := FlowState{
		Stage:      StageEvaluateAnswer,
		LastAnswer: briefAnswer,
		Scores:     []float64{0.9},
	}

	after, _ := f.Step(before, EventTick{})

	if before.Stage != StageEvaluateAnswer || len(before.Scores) != 1 {
		t.Fatalf("input state mutated: %+v", before)
	}
	if len(after.Scores) != 2 {
		t.Fatalf("after.Scores = %v, want appended score", after.Scores)
	}
}

func TestFlow_AwaitAnswerIgnoresTicks(t *testing.T) {
	t.Parallel()

	f := NewFlow([]string{"Q1?"}, ModeStrict)
	st := FlowState{Stage: StageAwaitAnswer}

	next, msgs := f.Step(st, EventTick{})
	if next.Stage != StageAwaitAnswer || len(msgs) != 0 {
		t.Fatalf("tick in await_answer moved the flow: %+v %+v", next, msgs)
	}
}

func TestFeedbackForBands(t *testing.T) {
	t.Parallel()

	if got := feedbackFor(0.3); !strings.Contains(got, "STAR method") {
		t.Fatalf("feedbackFor(0.3) = %q", got)
	}
	if got := feedbackFor(0.5); !strings.Contains(got, "Good start!") {
		t.Fatalf("feedbackFor(0.5) = %q", got)
	}
	if got := feedbackFor(0.7); !strings.Contains(got, "Nice answer!") {
		t.Fatalf("feedbackFor(0.7) = %q", got)
	}
}

func TestStageString(t *testing.T) {
	t.Parallel()

	if got := StageAskQuestion.String(); got != "ask_question" {
		t.Fatalf("got %q", got)
	}
	if got := StageEnd.String(); got != "end" {
		t.Fatalf("got %q", got)
	}
	if got := Stage(99).String(); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
