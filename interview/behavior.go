package interview

import (
	"math"
	"sync"
)

// frameRate is the assumed capture rate used to convert frame counts into an
// analyzed duration.
const frameRate = 30.0

// Frame is an opaque video frame buffer handed in by the capture layer.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
}

// Point is a face landmark in normalized frame coordinates, where (0.5, 0.5)
// is the frame center.
type Point struct {
	X float64
	Y float64
}

// FaceLandmarks are the named landmarks the behavioral analyzer reads.
type FaceLandmarks struct {
	LeftIris  Point
	RightIris Point
	NoseTip   Point
	Chin      Point
	Forehead  Point
	UpperLip  Point
	LowerLip  Point
}

// LandmarkProcessor detects face landmarks in a single frame. Implementations
// wrap whatever face-mesh runtime is available; Detect reports ok=false when
// no face was found in the frame.
type LandmarkProcessor interface {
	Detect(frame Frame) (landmarks FaceLandmarks, ok bool)
	Close() error
}

// BehavioralAnalyzer derives eye-contact, confidence, engagement, and posture
// ratings from video frames. When constructed without a landmark processor it
// produces a documented estimate instead of failing; an empty frame sequence
// always yields the fixed neutral default.
type BehavioralAnalyzer struct {
	processor LandmarkProcessor
	closeOnce sync.Once
	closeErr  error
}

// NewBehavioralAnalyzer returns an analyzer using the given processor.
// A nil processor selects the estimate fallback path.
func NewBehavioralAnalyzer(processor LandmarkProcessor) *BehavioralAnalyzer {
	return &BehavioralAnalyzer{processor: processor}
}

// AnalyzeFrames scores the given frames and aggregates per-frame metrics by
// arithmetic mean across frames with a detected face. No frame buffer is
// retained after the call returns.
func (a *BehavioralAnalyzer) AnalyzeFrames(frames []Frame) FrameAnalysisResult {
	if len(frames) == 0 {
		return neutralFrameResult()
	}
	if a.processor == nil {
		return estimatedFrameResult(len(frames))
	}

	var (
		eyeScores        []float64
		confidenceScores []float64
		engagementScores []float64
		postureScores    []float64
		facesDetected    int
	)
	for _, frame := range frames {
		landmarks, ok := a.processor.Detect(frame)
		if !ok {
			continue
		}
		facesDetected++
		eyeScores = append(eyeScores, eyeContactScore(landmarks))
		confidenceScores = append(confidenceScores, confidenceScore(landmarks))
		engagementScores = append(engagementScores, engagementScore(landmarks))
		postureScores = append(postureScores, postureScore(landmarks))
	}

	facePct := float64(facesDetected) / float64(len(frames)) * 100

	return FrameAnalysisResult{
		Behavioral: BehavioralAnalysis{
			EyeContact:      scoreToRating(meanOrDefault(eyeScores, 0.5)),
			ConfidenceScore: round2(meanOrDefault(confidenceScores, 0.5)),
			EngagementScore: round2(meanOrDefault(engagementScores, 0.5)),
			PostureQuality:  scoreToRating(meanOrDefault(postureScores, 0.5)),
		},
		FrameCount:              len(frames),
		AnalysisDurationSeconds: float64(len(frames)) / frameRate,
		FaceDetectedPercentage:  math.Round(facePct*10) / 10,
	}
}

// Close releases the landmark processor. Safe to call more than once; the
// processor is closed at most once.
func (a *BehavioralAnalyzer) Close() error {
	a.closeOnce.Do(func() {
		if a.processor != nil {
			a.closeErr = a.processor.Close()
		}
	})
	return a.closeErr
}

// eyeContactScore is the inverse of horizontal iris deviation from frame
// center, both eyes averaged: zero deviation scores 1 and a deviation of 0.5
// or more scores 0.
func eyeContactScore(lm FaceLandmarks) float64 {
	leftDev := math.Abs(lm.LeftIris.X - 0.5)
	rightDev := math.Abs(lm.RightIris.X - 0.5)
	avgDev := (leftDev + rightDev) / 2
	return math.Max(0, 1-avgDev*2)
}

// confidenceScore uses the vertical facial span as a proximity/posture proxy,
// penalized by head tilt, clamped to [0.3, 1.0].
func confidenceScore(lm FaceLandmarks) float64 {
	headTilt := math.Abs(lm.NoseTip.Y - 0.5)
	verticalRange := math.Abs(lm.Chin.Y - lm.Forehead.Y)

	confidence := math.Min(1.0, verticalRange*3+0.3)
	confidence -= headTilt * 0.5
	return clamp(confidence, 0.3, 1.0)
}

// engagementScore treats mouth opening as an active-speaking proxy with a
// base offset biasing toward engaged.
func engagementScore(lm FaceLandmarks) float64 {
	mouthOpening := math.Abs(lm.UpperLip.Y - lm.LowerLip.Y)
	return math.Min(1.0, mouthOpening*10+0.4)
}

// postureScore is the inverse of the nose point's combined deviation from
// frame center, with a 0.3 floor.
func postureScore(lm FaceLandmarks) float64 {
	dev := (math.Abs(lm.NoseTip.X-0.5) + math.Abs(lm.NoseTip.Y-0.5)) / 2
	return math.Max(0.3, 1-dev*2)
}

func scoreToRating(score float64) Rating {
	switch {
	case score >= 0.75:
		return RatingExcellent
	case score >= 0.5:
		return RatingGood
	default:
		return RatingPoor
	}
}

func meanOrDefault(scores []float64, fallback float64) float64 {
	if len(scores) == 0 {
		return fallback
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// neutralFrameResult is returned for an empty frame sequence regardless of
// processor availability.
func neutralFrameResult() FrameAnalysisResult {
	return FrameAnalysisResult{
		Behavioral: BehavioralAnalysis{
			EyeContact:      RatingGood,
			ConfidenceScore: 0.6,
			EngagementScore: 0.6,
			PostureQuality:  RatingGood,
		},
	}
}

// estimatedFrameResult is the documented fallback when no landmark processor
// is available: neutral defaults scaled to the session length with an 85%
// assumed face-detection rate. It is an estimate, not a measurement.
func estimatedFrameResult(frameCount int) FrameAnalysisResult {
	return FrameAnalysisResult{
		Behavioral: BehavioralAnalysis{
			EyeContact:      RatingGood,
			ConfidenceScore: 0.65,
			EngagementScore: 0.70,
			PostureQuality:  RatingGood,
		},
		FrameCount:              frameCount,
		AnalysisDurationSeconds: float64(frameCount) / frameRate,
		FaceDetectedPercentage:  85.0,
	}
}
