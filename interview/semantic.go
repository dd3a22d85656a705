package interview

import (
	"context"
	"fmt"
	"strings"
)

// questionPhrases mark an interviewer turn as question-like even without a
// question mark.
var questionPhrases = []string{"tell me", "describe", "explain", "how would"}

// starKeywords signal a structured (STAR-style) answer.
var starKeywords = []string{"situation", "task", "action", "result", "outcome", "achieved"}

// hedgingPhrases reduce the confidence read of an answer.
var hedgingPhrases = []string{"i think", "maybe", "probably", "i guess", "not sure"}

const answerSummaryMaxChars = 200

// AnswerEvaluator scores one question/answer pair. Implementations may call
// out to an LLM; the analyzer falls back to its built-in heuristic whenever
// an evaluator fails, so a flaky evaluator degrades quality, never the run.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question, answer string) (QuestionEvaluation, error)
}

// qaPair is one segmented question with its concatenated answer.
type qaPair struct {
	question string
	answer   string
	askedAt  float64
}

// SemanticAnalyzer segments a transcript into question/answer pairs, scores
// each answer, and rolls the evaluations up into a SWOT and resource
// recommendations.
type SemanticAnalyzer struct {
	evaluator AnswerEvaluator
}

// NewSemanticAnalyzer returns an analyzer using the given evaluator for
// per-answer scoring. A nil evaluator selects the deterministic heuristic.
func NewSemanticAnalyzer(evaluator AnswerEvaluator) *SemanticAnalyzer {
	return &SemanticAnalyzer{evaluator: evaluator}
}

// Analyze evaluates all question/answer pairs found in the transcript.
// knownQuestions is an optional pre-fetched question list; when present,
// interviewer turns matching a known question start a pair even if they
// carry no question-like phrasing.
func (a *SemanticAnalyzer) Analyze(ctx context.Context, entries []TranscriptEntry, knownQuestions []string) SemanticAnalysisResult {
	pairs := segmentQAPairs(entries, knownQuestions)

	evaluations := make([]QuestionEvaluation, 0, len(pairs))
	for _, p := range pairs {
		eval := a.evaluatePair(ctx, p)
		eval.AskedAt = p.askedAt
		evaluations = append(evaluations, eval)
	}

	overall := 0.5
	if len(evaluations) > 0 {
		sum := 0.0
		for _, e := range evaluations {
			sum += e.Score
		}
		overall = sum / float64(len(evaluations))
	}

	swot := buildSWOT(evaluations)

	return SemanticAnalysisResult{
		QuestionEvaluations:  evaluations,
		OverallScore:         round2(overall),
		SWOT:                 swot,
		RecommendedResources: recommendResources(swot.Weaknesses),
		Summary:              buildSummary(len(evaluations), overall),
	}
}

func (a *SemanticAnalyzer) evaluatePair(ctx context.Context, p qaPair) QuestionEvaluation {
	if a.evaluator != nil {
		eval, err := a.evaluator.Evaluate(ctx, p.question, p.answer)
		if err == nil {
			eval.Score = clamp(eval.Score, 0, 1)
			if eval.AnswerSummary == "" {
				eval.AnswerSummary = summarizeAnswer(p.answer)
			}
			return eval
		}
	}
	return evaluateAnswerHeuristic(p.question, p.answer)
}

// segmentQAPairs scans the transcript in order. An interviewer turn starts a
// new question when it looks like one; following candidate turns are
// concatenated as the answer until the next interviewer turn. A pending
// question with no answer is discarded when superseded; the final pending
// pair is flushed at end of transcript.
func segmentQAPairs(entries []TranscriptEntry, knownQuestions []string) []qaPair {
	var pairs []qaPair

	var currentQuestion string
	var currentAskedAt float64
	var currentAnswers []string

	flush := func() {
		if currentQuestion != "" && len(currentAnswers) > 0 {
			pairs = append(pairs, qaPair{
				question: currentQuestion,
				answer:   strings.Join(currentAnswers, " "),
				askedAt:  currentAskedAt,
			})
			currentQuestion = ""
			currentAnswers = nil
		}
	}

	for _, e := range entries {
		switch e.Speaker {
		case SpeakerInterviewer:
			flush()
			if isQuestionLike(e.Text, knownQuestions) {
				currentQuestion = e.Text
				currentAskedAt = e.Timestamp
				currentAnswers = nil
			}
		case SpeakerCandidate:
			if currentQuestion != "" {
				currentAnswers = append(currentAnswers, e.Text)
			}
		}
	}
	flush()

	return pairs
}

func isQuestionLike(text string, knownQuestions []string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range questionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, q := range knownQuestions {
		q = strings.TrimSpace(q)
		if q != "" && strings.Contains(text, q) {
			return true
		}
	}
	return false
}

// evaluateAnswerHeuristic scores one answer deterministically: a 0.6 base
// adjusted for answer length, STAR structure, quantifiable metrics, and
// hedging, with the final score clamped to [0.3, 1.0]. The 0.3 floor holds
// even when multiple penalties stack.
func evaluateAnswerHeuristic(question, answer string) QuestionEvaluation {
	score := 0.6
	var strengths []string
	var improvements []string

	answerLower := strings.ToLower(answer)

	wordCount := len(strings.Fields(answer))
	if wordCount > 50 {
		score += 0.1
		strengths = append(strengths, "Provided detailed response")
	} else if wordCount < 20 {
		score -= 0.1
		improvements = append(improvements, "Provide more detail in responses")
	}

	starHits := 0
	for _, kw := range starKeywords {
		if strings.Contains(answerLower, kw) {
			starHits++
		}
	}
	if starHits >= 2 {
		score += 0.15
		strengths = append(strengths, "Good use of structured response format")
	}

	if strings.ContainsAny(answer, "0123456789") {
		score += 0.1
		strengths = append(strengths, "Included specific metrics or numbers")
	} else {
		improvements = append(improvements, "Add quantifiable results when possible")
	}

	for _, phrase := range hedgingPhrases {
		if strings.Contains(answerLower, phrase) {
			score -= 0.1
			improvements = append(improvements, "Express answers with more confidence")
			break
		}
	}

	score = clamp(score, 0.3, 1.0)

	var feedback string
	switch {
	case score >= 0.8:
		feedback = "Excellent answer! Clear and well-structured."
	case score >= 0.6:
		feedback = "Good answer. Consider adding more specific examples."
	default:
		feedback = "Answer needs more depth. Use the STAR method for better structure."
	}

	return QuestionEvaluation{
		Question:      question,
		AnswerSummary: summarizeAnswer(answer),
		Score:         round2(score),
		Strengths:     strengths,
		Improvements:  improvements,
		Feedback:      feedback,
	}
}

func summarizeAnswer(answer string) string {
	if len(answer) > answerSummaryMaxChars {
		return answer[:answerSummaryMaxChars] + "..."
	}
	return answer
}

// buildSWOT derives the four lists from per-question strengths and
// improvements. Strengths and weaknesses are deduplicated in first-seen
// order and capped at five; opportunities are keyword-derived from the
// weaknesses; every list falls back to a fixed generic entry when empty.
func buildSWOT(evaluations []QuestionEvaluation) SWOT {
	var allStrengths, allWeaknesses []string
	for _, e := range evaluations {
		allStrengths = append(allStrengths, e.Strengths...)
		allWeaknesses = append(allWeaknesses, e.Improvements...)
	}

	strengths := capStrings(dedupeStrings(allStrengths), 5)
	weaknesses := capStrings(dedupeStrings(allWeaknesses), 5)

	var opportunities, threats []string
	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		switch {
		case strings.Contains(lower, "detail"):
			opportunities = append(opportunities, "Practice elaborating with specific examples")
		case strings.Contains(lower, "confidence"):
			opportunities = append(opportunities, "Build confidence through more mock interviews")
		case strings.Contains(lower, "quantif"):
			opportunities = append(opportunities, "Prepare metrics and numbers from past projects")
		}
	}

	if len(strengths) == 0 {
		threats = append(threats, "Need more preparation for competitive interviews")
	}

	if len(opportunities) == 0 {
		opportunities = []string{"Continue practicing to maintain skills"}
	}
	if len(threats) == 0 {
		threats = []string{"Industry competition may require deeper specialization"}
	}
	if len(strengths) == 0 {
		strengths = []string{"Shows willingness to learn"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"Could improve response depth"}
	}

	return SWOT{
		Strengths:     strengths,
		Weaknesses:    weaknesses,
		Opportunities: opportunities,
		Threats:       threats,
	}
}

// resourceRule maps a weakness keyword to a recommended resource. Rules are
// ordered so recommendations are deterministic.
type resourceRule struct {
	keyword  string
	resource Resource
}

var resourceRules = []resourceRule{
	{"detail", Resource{
		Title:  "Master the Art of Storytelling in Interviews",
		Type:   "Article",
		URL:    "https://example.com/interview-storytelling",
		Reason: "Helps with providing detailed, engaging responses",
	}},
	{"confidence", Resource{
		Title:  "Building Interview Confidence",
		Type:   "Video",
		URL:    "https://example.com/interview-confidence",
		Reason: "Techniques for confident communication",
	}},
	{"star", Resource{
		Title:  "STAR Method Interview Guide",
		Type:   "Course",
		URL:    "https://example.com/star-method",
		Reason: "Structured approach to behavioral questions",
	}},
	{"quantif", Resource{
		Title:  "Using Metrics in Your Interview Answers",
		Type:   "Article",
		URL:    "https://example.com/interview-metrics",
		Reason: "How to quantify your achievements",
	}},
}

// recommendResources matches weaknesses against the resource rules,
// preserving first-match order, deduplicated, capped at three. Whenever
// nothing matches, one fixed generic resource is returned.
func recommendResources(weaknesses []string) []Resource {
	var resources []Resource
	seen := make(map[string]struct{})
	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		for _, rule := range resourceRules {
			if !strings.Contains(lower, rule.keyword) {
				continue
			}
			if _, ok := seen[rule.resource.Title]; ok {
				continue
			}
			seen[rule.resource.Title] = struct{}{}
			resources = append(resources, rule.resource)
		}
	}

	if len(resources) == 0 {
		resources = append(resources, Resource{
			Title:  "Complete Interview Preparation Guide",
			Type:   "Course",
			URL:    "https://example.com/interview-prep",
			Reason: "Comprehensive interview preparation",
		})
	}
	return capResources(resources, 3)
}

func buildSummary(pairCount int, score float64) string {
	if pairCount == 0 {
		return "No responses were analyzed in this interview session."
	}
	performance := "needs improvement"
	switch {
	case score >= 0.8:
		performance = "excellent"
	case score >= 0.6:
		performance = "good"
	}
	return fmt.Sprintf(
		"Overall interview performance: %s (%d%%). Analyzed %d question-answer exchanges. "+
			"Focus on the improvement suggestions in each question for better results.",
		performance, int(score*100), pairCount,
	)
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func capStrings(in []string, max int) []string {
	if max <= 0 || len(in) <= max {
		return in
	}
	return in[:max]
}

func capResources(in []Resource, max int) []Resource {
	if max <= 0 || len(in) <= max {
		return in
	}
	return in[:max]
}
