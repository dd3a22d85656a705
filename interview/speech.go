package interview

import (
	"math"
	"regexp"
	"strings"
)

// DefaultPacingBucketSeconds is the width of each pacing bucket. It is a
// tuning constant, not a structural invariant.
const DefaultPacingBucketSeconds = 300

// defaultFillerLexicon lists filler terms in ranking-tiebreak order. Single
// words are matched on word boundaries; multi-word phrases as substrings.
var defaultFillerLexicon = []string{
	"um", "uh", "like", "you know", "i mean", "kind of", "sort of",
	"basically", "actually", "literally", "honestly", "right", "so",
	"well", "stuff", "things",
}

// SpeechAnalyzer derives pacing, filler-word, clarity, and fluency metrics
// from candidate transcript text. It is a pure function over its inputs and
// holds no per-session state.
type SpeechAnalyzer struct {
	lexicon       []string
	bucketSeconds int
}

// NewSpeechAnalyzer returns an analyzer with the default filler lexicon and
// pacing bucket width.
func NewSpeechAnalyzer() *SpeechAnalyzer {
	return &SpeechAnalyzer{
		lexicon:       defaultFillerLexicon,
		bucketSeconds: DefaultPacingBucketSeconds,
	}
}

// Analyze computes speech metrics over all candidate entries in the
// transcript. A zero or negative duration yields zero WPM and no pacing
// samples rather than an error.
func (a *SpeechAnalyzer) Analyze(entries []TranscriptEntry, totalDurationSeconds float64) SpeechAnalysisResult {
	var candidateTexts []string
	for _, e := range entries {
		if e.Speaker == SpeakerCandidate {
			candidateTexts = append(candidateTexts, e.Text)
		}
	}
	fullText := strings.ToLower(strings.Join(candidateTexts, " "))

	totalWords := len(strings.Fields(fullText))

	averageWPM := 0
	if minutes := totalDurationSeconds / 60; minutes > 0 {
		averageWPM = int(float64(totalWords) / minutes)
	}

	fillers := a.countFillerWords(fullText)
	totalFillers := 0
	for _, fw := range fillers {
		totalFillers += fw.Count
	}
	fillerPct := 0.0
	if totalWords > 0 {
		fillerPct = float64(totalFillers) / float64(totalWords) * 100
	}

	pacing := a.pacing(entries, totalDurationSeconds)

	return SpeechAnalysisResult{
		TotalWords:           totalWords,
		TotalDurationSeconds: totalDurationSeconds,
		AverageWPM:           averageWPM,
		FillerWords:          fillers,
		FillerWordPercentage: round2(fillerPct),
		PacingData:           pacing,
		ClarityScore:         round2(clarityScore(fillerPct, averageWPM)),
		FluencyScore:         round2(fluencyScore(pacing, fillerPct)),
	}
}

// countFillerWords counts case-insensitive occurrences of each lexicon term
// in the already-lowercased text, keeping only terms that occur at least
// once, sorted by count descending. The sort is stable, so ties keep lexicon
// order.
func (a *SpeechAnalyzer) countFillerWords(textLower string) []FillerWordCount {
	var counts []FillerWordCount
	for _, filler := range a.lexicon {
		var n int
		if strings.Contains(filler, " ") {
			n = strings.Count(textLower, filler)
		} else {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(filler) + `\b`)
			n = len(re.FindAllString(textLower, -1))
		}
		if n > 0 {
			counts = append(counts, FillerWordCount{Word: filler, Count: n})
		}
	}
	// Insertion sort keeps the pass stable without pulling in sort.SliceStable
	// for a handful of entries.
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Count > counts[j-1].Count; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}
	return counts
}

// pacing partitions the session into fixed buckets from time 0 and computes
// the candidate WPM within each. The final partial bucket is normalized by
// the time it actually covers.
func (a *SpeechAnalyzer) pacing(entries []TranscriptEntry, totalSeconds float64) []PacingSample {
	if totalSeconds <= 0 {
		return nil
	}
	bucket := a.bucketSeconds
	if bucket <= 0 {
		bucket = DefaultPacingBucketSeconds
	}

	var samples []PacingSample
	for start := 0; start < int(totalSeconds); start += bucket {
		end := float64(start + bucket)

		words := 0
		for _, e := range entries {
			if e.Speaker != SpeakerCandidate {
				continue
			}
			ts := e.Timestamp
			if ts < 0 || math.IsNaN(ts) {
				ts = 0
			}
			if ts >= float64(start) && ts < end {
				words += len(strings.Fields(e.Text))
			}
		}

		covered := math.Min(float64(bucket), totalSeconds-float64(start))
		minutes := covered / 60
		wpm := 0
		if minutes > 0 {
			wpm = int(float64(words) / minutes)
		}
		samples = append(samples, PacingSample{Time: formatClock(float64(start)), WPM: wpm})
	}
	return samples
}

// clarityScore penalizes filler density (up to 0.5) and deviation from a
// 140 WPM target (up to 0.3), clamped to [0, 1].
func clarityScore(fillerPct float64, wpm int) float64 {
	fillerPenalty := math.Min(fillerPct/10, 0.5)

	const optimalWPM = 140.0
	deviation := math.Abs(float64(wpm)-optimalWPM) / optimalWPM
	pacingPenalty := math.Min(deviation*0.3, 0.3)

	return clamp(1.0-fillerPenalty-pacingPenalty, 0, 1)
}

// fluencyScore blends pacing consistency (60%) with filler impact (40%).
// Sessions too short to show at least two active pacing buckets get a fixed
// default.
func fluencyScore(pacing []PacingSample, fillerPct float64) float64 {
	var wpms []float64
	for _, p := range pacing {
		if p.WPM > 0 {
			wpms = append(wpms, float64(p.WPM))
		}
	}
	if len(wpms) < 2 {
		return 0.7
	}

	mean := 0.0
	for _, w := range wpms {
		mean += w
	}
	mean /= float64(len(wpms))

	variance := 0.0
	for _, w := range wpms {
		variance += (w - mean) * (w - mean)
	}
	variance /= float64(len(wpms))
	stdDev := math.Sqrt(variance)

	consistency := math.Max(0, 1-stdDev/50)
	fillerImpact := math.Max(0, 1-fillerPct/20)
	return consistency*0.6 + fillerImpact*0.4
}
