// Package interview implements the analysis pipeline and turn-taking logic for
// recorded mock-interview sessions: a session collector, three independent
// analyzers (speech, behavioral, semantic), a report aggregator, and the
// interviewer turn state machine.
package interview

import (
	"fmt"
	"strings"
	"time"
)

// SpeakerRole identifies who produced a transcript entry.
type SpeakerRole string

const (
	SpeakerInterviewer SpeakerRole = "interviewer"
	SpeakerCandidate   SpeakerRole = "candidate"
)

// Mode selects the interviewer's behavior for a session.
type Mode string

const (
	// ModeLearning enables live coaching feedback and follow-up questions.
	ModeLearning Mode = "learning"
	// ModeStrict simulates a real interview: no coaching until the report.
	ModeStrict Mode = "strict"
)

// Rating is a three-level label for behavioral metrics.
type Rating string

const (
	RatingPoor      Rating = "Poor"
	RatingGood      Rating = "Good"
	RatingExcellent Rating = "Excellent"
)

// Level is a three-level label for speech metrics.
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
)

// Pace is a three-level label for speaking rate.
type Pace string

const (
	PaceSlow Pace = "Slow"
	PaceGood Pace = "Good"
	PaceFast Pace = "Fast"
)

// TranscriptEntry is a single utterance in the session transcript.
// Entries are immutable once appended; Timestamp is seconds from session start.
type TranscriptEntry struct {
	Speaker   SpeakerRole `json:"speaker"`
	Text      string      `json:"text"`
	Timestamp float64     `json:"timestamp"`
	Duration  float64     `json:"duration"`
}

// SessionMetadata describes one interview session.
type SessionMetadata struct {
	RoomName        string     `json:"room_name"`
	TemplateID      string     `json:"template_id,omitempty"`
	TemplateTitle   string     `json:"template_title,omitempty"`
	Mode            Mode       `json:"mode"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ParticipantName string     `json:"participant_name,omitempty"`
}

// SessionData is the complete artifact collected for one session. It is
// mutated only by the Collector; analyzers and the report generator treat it
// as a read-only snapshot.
type SessionData struct {
	Metadata      SessionMetadata   `json:"metadata"`
	Transcript    []TranscriptEntry `json:"transcript"`
	Scores        []float64         `json:"scores"`
	QuestionCount int               `json:"question_count"`
	FollowUpCount int               `json:"follow_up_count"`
}

// DurationSeconds returns the wall-clock session length, or 0 when the
// session never ended (or never started).
func (d SessionData) DurationSeconds() float64 {
	if d.Metadata.EndedAt == nil || d.Metadata.StartedAt.IsZero() {
		return 0
	}
	return d.Metadata.EndedAt.Sub(d.Metadata.StartedAt).Seconds()
}

// TranscriptText renders the transcript as human-readable lines.
func (d SessionData) TranscriptText() string {
	lines := make([]string, 0, len(d.Transcript))
	for _, e := range d.Transcript {
		speaker := "Candidate"
		if e.Speaker == SpeakerInterviewer {
			speaker = "Interviewer"
		}
		lines = append(lines, fmt.Sprintf("[%.1fs] %s: %s", e.Timestamp, speaker, e.Text))
	}
	return strings.Join(lines, "\n")
}

// Template is a pre-fetched ordered question list for a session.
type Template struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Questions []string `json:"questions"`
}

// FillerWordCount is one ranked filler-word entry.
type FillerWordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// PacingSample is the speaking rate within one time bucket, labeled with the
// MM:SS offset of the bucket start.
type PacingSample struct {
	Time string `json:"time"`
	WPM  int    `json:"wpm"`
}

// SpeechAnalysisResult holds all speech-signal metrics for a session.
type SpeechAnalysisResult struct {
	TotalWords           int               `json:"total_words"`
	TotalDurationSeconds float64           `json:"total_duration_seconds"`
	AverageWPM           int               `json:"average_wpm"`
	FillerWords          []FillerWordCount `json:"filler_words"`
	FillerWordPercentage float64           `json:"filler_word_percentage"`
	PacingData           []PacingSample    `json:"pacing_data"`
	ClarityScore         float64           `json:"clarity_score"`
	FluencyScore         float64           `json:"fluency_score"`
}

// BehavioralAnalysis holds the aggregated behavioral ratings for a session.
type BehavioralAnalysis struct {
	EyeContact      Rating  `json:"eye_contact"`
	ConfidenceScore float64 `json:"confidence_score"`
	EngagementScore float64 `json:"engagement_score"`
	PostureQuality  Rating  `json:"posture_quality"`
}

// FrameAnalysisResult wraps a BehavioralAnalysis with frame-level statistics.
type FrameAnalysisResult struct {
	Behavioral              BehavioralAnalysis `json:"behavioral"`
	FrameCount              int                `json:"frame_count"`
	AnalysisDurationSeconds float64            `json:"analysis_duration_seconds"`
	FaceDetectedPercentage  float64            `json:"face_detected_percentage"`
}

// QuestionEvaluation is the scored assessment of one question/answer pair.
type QuestionEvaluation struct {
	Question      string   `json:"question"`
	AnswerSummary string   `json:"answer_summary"`
	Score         float64  `json:"score"`
	Strengths     []string `json:"strengths,omitempty"`
	Improvements  []string `json:"improvements,omitempty"`
	Feedback      string   `json:"feedback"`

	// AskedAt is the transcript timestamp at which the question was posed.
	AskedAt float64 `json:"asked_at"`
}

// SWOT is the strengths/weaknesses/opportunities/threats rollup.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Resource is a recommended learning resource.
type Resource struct {
	Title  string `json:"title"`
	Type   string `json:"type"`
	URL    string `json:"url"`
	Reason string `json:"reason,omitempty"`
}

// SemanticAnalysisResult holds the content-quality assessment for a session.
type SemanticAnalysisResult struct {
	QuestionEvaluations  []QuestionEvaluation `json:"question_evaluations"`
	OverallScore         float64              `json:"overall_score"`
	SWOT                 SWOT                 `json:"swot"`
	RecommendedResources []Resource           `json:"recommended_resources"`
	Summary              string               `json:"summary"`
}

// RadarPoint is one axis of the skills radar chart.
type RadarPoint struct {
	Subject  string `json:"subject"`
	Value    int    `json:"A"`
	FullMark int    `json:"fullMark"`
}

// TimelinePoint is one question's score placed on the session timeline.
type TimelinePoint struct {
	Time  string `json:"time"`
	Score int    `json:"score"`
}

// QuestionFeedback is a presentation-ready per-question report block.
type QuestionFeedback struct {
	ID                int      `json:"id"`
	Question          string   `json:"question"`
	UserAnswerSummary string   `json:"userAnswerSummary"`
	AIFeedback        string   `json:"aiFeedback"`
	Score             int      `json:"score"`
	Improvements      []string `json:"improvements"`
}

// TranscriptLine is a presentation-ready transcript row.
type TranscriptLine struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// BehavioralSummary maps speech and behavioral metrics to display labels.
type BehavioralSummary struct {
	EyeContact  string `json:"eyeContact"`
	FillerWords string `json:"fillerWords"`
	Pace        string `json:"pace"`
	Clarity     string `json:"clarity"`
}

// InterviewReport is the terminal aggregate handed to persistence and API
// layers. Field names are a presentation contract.
type InterviewReport struct {
	ID   string `json:"id"`
	Date string `json:"date"`

	OverallScore    int `json:"overallScore"`
	HardSkillsScore int `json:"hardSkillsScore"`
	SoftSkillsScore int `json:"softSkillsScore"`

	Duration string `json:"duration"`

	RadarData    []RadarPoint    `json:"radarData"`
	TimelineData []TimelinePoint `json:"timelineData"`

	Questions  []QuestionFeedback `json:"questions"`
	Transcript []TranscriptLine   `json:"transcript"`

	FillerWordsAnalysis []FillerWordCount `json:"fillerWordsAnalysis"`
	PacingAnalysis      []PacingSample    `json:"pacingAnalysis"`

	BehavioralAnalysis BehavioralSummary `json:"behavioralAnalysis"`

	SWOT      SWOT       `json:"swot"`
	Resources []Resource `json:"resources"`
}
