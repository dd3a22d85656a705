package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReportGenerator fans the three analyzers out over one completed session
// snapshot and merges their results into a single InterviewReport.
type ReportGenerator struct {
	speech   *SpeechAnalyzer
	behavior *BehavioralAnalyzer
	semantic *SemanticAnalyzer

	now   func() time.Time
	newID func() string
}

// NewReportGenerator wires the generator with explicit analyzers. Nil
// arguments select the default analyzer for that signal (heuristic semantic
// evaluation, estimate-mode behavioral analysis).
func NewReportGenerator(speech *SpeechAnalyzer, behavior *BehavioralAnalyzer, semantic *SemanticAnalyzer) *ReportGenerator {
	if speech == nil {
		speech = NewSpeechAnalyzer()
	}
	if behavior == nil {
		behavior = NewBehavioralAnalyzer(nil)
	}
	if semantic == nil {
		semantic = NewSemanticAnalyzer(nil)
	}
	return &ReportGenerator{
		speech:   speech,
		behavior: behavior,
		semantic: semantic,
		now:      time.Now,
		newID:    newReportID,
	}
}

// Generate runs the analyzers concurrently over the session snapshot, waits
// for all three, and merges their results. A report is always returned; when
// an analyzer panics, its documented degraded default is substituted and the
// returned error (errors.Join of the failures) flags the partial-result
// condition. knownQuestions is an optional pre-fetched question list for
// semantic segmentation.
func (g *ReportGenerator) Generate(ctx context.Context, data SessionData, frames []Frame, knownQuestions []string) (InterviewReport, error) {
	durationSeconds := data.DurationSeconds()

	var (
		speechResult   SpeechAnalysisResult
		frameResult    FrameAnalysisResult
		semanticResult SemanticAnalysisResult

		speechErr   error
		frameErr    error
		semanticErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		speechErr = runIsolated("speech analyzer", func() {
			speechResult = g.speech.Analyze(data.Transcript, durationSeconds)
		})
	}()
	go func() {
		defer wg.Done()
		frameErr = runIsolated("behavioral analyzer", func() {
			frameResult = g.behavior.AnalyzeFrames(frames)
		})
	}()
	go func() {
		defer wg.Done()
		semanticErr = runIsolated("semantic analyzer", func() {
			semanticResult = g.semantic.Analyze(ctx, data.Transcript, knownQuestions)
		})
	}()
	wg.Wait()

	// Degraded defaults keep the report complete when an analyzer failed.
	if speechErr != nil {
		speechResult = SpeechAnalysisResult{TotalDurationSeconds: durationSeconds, FluencyScore: 0.5, ClarityScore: 0.5}
	}
	if frameErr != nil {
		frameResult = neutralFrameResult()
	}
	if semanticErr != nil {
		semanticResult = SemanticAnalysisResult{
			OverallScore: 0.5,
			SWOT:         buildSWOT(nil),
			Summary:      "No responses were analyzed in this interview session.",
		}
	}

	report := InterviewReport{
		ID:   g.newID(),
		Date: g.now().Format(time.RFC3339),

		OverallScore:    overallScore(speechResult, frameResult, semanticResult),
		HardSkillsScore: int(math.Round(semanticResult.OverallScore * 100)),
		SoftSkillsScore: int(math.Round((speechResult.FluencyScore + frameResult.Behavioral.ConfidenceScore) / 2 * 100)),

		Duration: formatDuration(durationSeconds),

		RadarData:    radarData(speechResult, frameResult, semanticResult),
		TimelineData: timelineData(semanticResult.QuestionEvaluations),

		Questions:  questionFeedback(semanticResult.QuestionEvaluations),
		Transcript: formatTranscript(data.Transcript),

		FillerWordsAnalysis: speechResult.FillerWords,
		PacingAnalysis:      speechResult.PacingData,

		BehavioralAnalysis: BehavioralSummary{
			EyeContact:  string(frameResult.Behavioral.EyeContact),
			FillerWords: string(fillerLevel(speechResult.FillerWordPercentage)),
			Pace:        string(paceLevel(speechResult.AverageWPM)),
			Clarity:     string(clarityLevel(speechResult.ClarityScore)),
		},

		SWOT:      semanticResult.SWOT,
		Resources: semanticResult.RecommendedResources,
	}

	return report, errors.Join(speechErr, frameErr, semanticErr)
}

// runIsolated converts a panic inside one analyzer into an error so the
// other analyzers and the merge still complete.
func runIsolated(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	fn()
	return nil
}

// overallScore is the weighted composite: semantic 50%, speech 30%
// (clarity and fluency averaged), behavioral confidence 20%.
func overallScore(speech SpeechAnalysisResult, frame FrameAnalysisResult, semantic SemanticAnalysisResult) int {
	semanticWeight := semantic.OverallScore * 50
	speechWeight := (speech.ClarityScore + speech.FluencyScore) / 2 * 30
	behaviorWeight := frame.Behavioral.ConfidenceScore * 20
	return int(math.Round(semanticWeight + speechWeight + behaviorWeight))
}

func radarData(speech SpeechAnalysisResult, frame FrameAnalysisResult, semantic SemanticAnalysisResult) []RadarPoint {
	return []RadarPoint{
		{Subject: "Technical", Value: int(math.Round(semantic.OverallScore * 100)), FullMark: 100},
		{Subject: "Communication", Value: int(math.Round(speech.ClarityScore * 100)), FullMark: 100},
		{Subject: "Problem Solving", Value: int(math.Round(semantic.OverallScore*90 + 10)), FullMark: 100},
		{Subject: "Confidence", Value: int(math.Round(frame.Behavioral.ConfidenceScore * 100)), FullMark: 100},
		{Subject: "Engagement", Value: int(math.Round(frame.Behavioral.EngagementScore * 100)), FullMark: 100},
	}
}

// timelineData places one point per evaluated question at the MM:SS offset
// the question was asked.
func timelineData(evaluations []QuestionEvaluation) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(evaluations))
	for _, e := range evaluations {
		points = append(points, TimelinePoint{
			Time:  formatClock(e.AskedAt),
			Score: int(math.Round(e.Score * 100)),
		})
	}
	return points
}

func questionFeedback(evaluations []QuestionEvaluation) []QuestionFeedback {
	out := make([]QuestionFeedback, 0, len(evaluations))
	for i, e := range evaluations {
		out = append(out, QuestionFeedback{
			ID:                i + 1,
			Question:          e.Question,
			UserAnswerSummary: e.AnswerSummary,
			AIFeedback:        e.Feedback,
			Score:             int(math.Round(e.Score * 100)),
			Improvements:      e.Improvements,
		})
	}
	return out
}

func formatTranscript(entries []TranscriptEntry) []TranscriptLine {
	out := make([]TranscriptLine, 0, len(entries))
	for _, e := range entries {
		speaker := "You"
		if e.Speaker == SpeakerInterviewer {
			speaker = "Interviewer"
		}
		out = append(out, TranscriptLine{
			Speaker:   speaker,
			Text:      e.Text,
			Timestamp: formatClock(e.Timestamp),
		})
	}
	return out
}

func fillerLevel(percentage float64) Level {
	switch {
	case percentage < 3:
		return LevelLow
	case percentage < 7:
		return LevelModerate
	default:
		return LevelHigh
	}
}

func paceLevel(wpm int) Pace {
	switch {
	case wpm < 110:
		return PaceSlow
	case wpm < 160:
		return PaceGood
	default:
		return PaceFast
	}
}

func clarityLevel(score float64) Level {
	switch {
	case score >= 0.75:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}

func newReportID() string {
	return "rep_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
