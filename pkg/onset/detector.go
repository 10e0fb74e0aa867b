// Package onset finds percussive hits in a mono sample buffer.
//
// The detector works on a coarse peak envelope: frames of hop samples are
// reduced to their peak level, smoothed, and combined with the positive slope
// of the envelope into a per-frame score. Local maxima of the score above an
// adaptive threshold become hits, subject to a minimum spacing.
package onset

import (
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultHopMs    = 10.0
	DefaultMinGapMs = 90.0

	envelopeWeight = 0.6
	slopeWeight    = 0.4
	smoothWidth    = 3

	thresholdPercentile = 92.0
	thresholdFloor      = 0.08

	// maxGapFrames bounds MinGapFrames so an infinite gap stays an int.
	maxGapFrames = math.MaxInt32
)

// HitEvent is one detected hit. Strength is relative to the strongest hit of
// the same detection run.
type HitEvent struct {
	T        float64 `json:"t"`
	Strength float64 `json:"strength"`
}

// Options tunes the frame size and minimum spacing of hits.
type Options struct {
	HopMs    float64
	MinGapMs float64
}

// DefaultOptions returns a 10ms hop and a 90ms minimum gap.
func DefaultOptions() Options {
	return Options{HopMs: DefaultHopMs, MinGapMs: DefaultMinGapMs}
}

// sanitized replaces values the frame formulas cannot use. A non-positive
// hop would divide by zero; a zero or negative gap is kept and clamps to a
// single frame in MinGapFrames.
func (o Options) sanitized() Options {
	if !(o.HopMs > 0) || math.IsInf(o.HopMs, 1) {
		o.HopMs = DefaultHopMs
	}
	if math.IsNaN(o.MinGapMs) {
		o.MinGapMs = DefaultMinGapMs
	}
	return o
}

// HopSamples is the frame length in samples for the given rate.
func (o Options) HopSamples(sampleRate int) int {
	o = o.sanitized()
	return max(1, int(math.Round(float64(sampleRate)*o.HopMs/1000.0)))
}

// MinGapFrames is the minimum distance between hits, in frames.
func (o Options) MinGapFrames() int {
	o = o.sanitized()
	frames := math.Round(o.MinGapMs / o.HopMs)
	if frames > maxGapFrames {
		return maxGapFrames
	}
	return max(1, int(frames))
}

// Detect returns the hits found in samples, ordered by time. It never fails:
// empty, silent or constant input simply yields no hits, as does a
// non-positive sample rate.
func Detect(samples []float32, sampleRate int, opts Options) []HitEvent {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}
	opts = opts.sanitized()
	hop := opts.HopSamples(sampleRate)

	score := Score(samples, hop)
	m := len(score)
	threshold := math.Max(percentile(score, thresholdPercentile), thresholdFloor)
	minGap := opts.MinGapFrames()

	var (
		hits    []HitEvent
		raw     []float64
		lastIdx int
		started bool
	)
	for i := 1; i < m-1; i++ {
		s := score[i]
		if s < threshold {
			continue
		}
		if s < score[i-1] || s < score[i+1] {
			continue
		}

		if started && i-lastIdx < minGap {
			// too close to the previous hit: keep its time, take the larger score
			if len(raw) > 0 && s > raw[len(raw)-1] {
				raw[len(raw)-1] = s
				lastIdx = i
			}
			continue
		}

		hits = append(hits, HitEvent{T: float64(i*hop) / float64(sampleRate)})
		raw = append(raw, s)
		lastIdx = i
		started = true
	}

	if len(hits) == 0 {
		return nil
	}

	lo, hi := floats.Min(raw), floats.Max(raw)
	for i := range hits {
		if hi > lo {
			hits[i].Strength = (raw[i] - lo) / (hi - lo)
		} else {
			hits[i].Strength = 1.0
		}
	}
	return hits
}

// DetectChannels runs Detect on interleaved multi-channel samples after
// mixing them down to mono. Detection is only defined on a single channel.
func DetectChannels(samples []float32, channels, sampleRate int, opts Options) []HitEvent {
	return Detect(Downmix(samples, channels), sampleRate, opts)
}

// Downmix averages interleaved channels into one. A trailing partial frame
// is dropped.
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	n := len(samples) / channels
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Envelope is the peak absolute level of each hop-sized frame. The last frame
// may be shorter than hop.
func Envelope(samples []float32, hop int) []float64 {
	if hop < 1 {
		hop = 1
	}
	n := len(samples)
	m := (n + hop - 1) / hop
	env := make([]float64, m)
	for i := 0; i < m; i++ {
		a := i * hop
		b := min(n, a+hop)
		var peak float64
		for _, v := range samples[a:b] {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
		env[i] = peak
	}
	return env
}

// Score is the per-frame onset score: a weighted sum of the smoothed
// envelope and its rising slope.
func Score(samples []float32, hop int) []float64 {
	env := smooth(Envelope(samples, hop))
	score := make([]float64, len(env))
	for i, e := range env {
		var d float64
		if i > 0 {
			d = math.Max(0, e-env[i-1])
		}
		score[i] = envelopeWeight*e + slopeWeight*d
	}
	return score
}

// smooth is a centered moving average over smoothWidth frames, treating the
// frames beyond either end as silence. Shorter envelopes are returned as is.
func smooth(env []float64) []float64 {
	m := len(env)
	if m < smoothWidth {
		return env
	}
	out := make([]float64, m)
	half := smoothWidth / 2
	for i := range env {
		var sum float64
		for j := i - half; j <= i+half; j++ {
			if j >= 0 && j < m {
				sum += env[j]
			}
		}
		out[i] = sum / smoothWidth
	}
	return out
}

// percentile interpolates linearly between the two closest ranks, p in [0,100].
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := (p / 100.0) * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
