package audio

import (
	"time"

	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/utils"
)

// Buffer is decoded audio: normalized samples in [-1, 1], interleaved when
// there is more than one channel.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels < 1 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Seconds returns the length in seconds.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Duration returns the length as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Mono returns the channel mean. A mono buffer is returned as is.
func (b *Buffer) Mono() *Buffer {
	if b == nil || b.Channels <= 1 {
		return b
	}
	return &Buffer{
		Samples:    onset.Downmix(b.Samples, b.Channels),
		SampleRate: b.SampleRate,
		Channels:   1,
	}
}

// Truncate keeps at most seconds of audio. Non-positive values keep all.
func (b *Buffer) Truncate(seconds float64) {
	if seconds <= 0 || b.SampleRate <= 0 || b.Channels < 1 {
		return
	}
	frames := int(seconds * float64(b.SampleRate))
	if frames < b.Frames() {
		b.Samples = b.Samples[:frames*b.Channels]
	}
}

// Normalize scales the samples so the peak is 1. Silence is left alone.
func (b *Buffer) Normalize() {
	var peak float32
	for _, v := range b.Samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return
	}
	for i := range b.Samples {
		b.Samples[i] /= peak
	}
}

// PCM16 encodes the samples as little-endian signed 16-bit PCM.
func (b *Buffer) PCM16() []byte {
	out := make([]byte, 2*len(b.Samples))
	for i, v := range b.Samples {
		s := int16(utils.Clamp(v, -1, 1) * 32767)
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
