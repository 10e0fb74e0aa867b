package audio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/oto"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// PlaybackState enumerates whether the track is playing, paused, or stopped.
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
)

// writeChunk bounds how much PCM is handed to the output per Write, so a
// pause takes effect quickly.
const writeChunk = 4096

// ErrNotLoaded is returned by transport calls before a buffer is loaded.
var ErrNotLoaded = errors.New("no audio loaded")

// Output is where PCM bytes go. Close stops playback immediately.
type Output interface {
	io.Writer
	Close() error
}

// Backend opens outputs for a given format.
type Backend interface {
	Open(sampleRate, channels int) (Output, error)
}

// Player plays a Buffer and reports its position from the clock.
type Player struct {
	mutex   sync.Mutex
	clock   clock.PassiveClock
	backend Backend
	log     logrus.FieldLogger

	pcm        []byte
	sampleRate int
	channels   int
	duration   time.Duration

	state     PlaybackState
	offset    time.Duration // position when playback last started or stopped
	startedAt time.Time

	out  Output
	stop chan struct{}
	done chan struct{}
}

// NewPlayer returns a player writing to backend. A nil clock uses the real one.
func NewPlayer(backend Backend, clk clock.PassiveClock, log logrus.FieldLogger) *Player {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Player{clock: clk, backend: backend, log: log}
}

// Load replaces the current track and rewinds. Playback is stopped.
func (p *Player) Load(buf *Buffer) error {
	if buf == nil || buf.Frames() == 0 || buf.SampleRate <= 0 {
		return ErrNotLoaded
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.halt()
	p.pcm = buf.PCM16()
	p.sampleRate = buf.SampleRate
	p.channels = buf.Channels
	p.duration = buf.Duration()
	p.offset = 0
	p.state = StateStopped
	return nil
}

// Play starts or resumes playback. At the end of the track it restarts from
// the beginning.
func (p *Player) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pcm == nil {
		return ErrNotLoaded
	}
	p.refresh()
	if p.state == StatePlaying {
		return nil
	}
	if p.offset >= p.duration {
		p.offset = 0
	}
	return p.start()
}

// Pause halts playback but retains the current track position for potential resume.
func (p *Player) Pause() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.refresh()
	if p.state != StatePlaying {
		return nil
	}
	p.offset = p.position()
	p.halt()
	p.state = StatePaused
	return nil
}

// Stop fully resets playback and position.
func (p *Player) Stop() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.halt()
	p.state = StateStopped
	p.offset = 0
	return nil
}

// Toggle pauses while playing and plays otherwise.
func (p *Player) Toggle() error {
	if p.Playing() {
		return p.Pause()
	}
	return p.Play()
}

// Seek moves the playhead, clamped to the track. Playback continues from the
// new position if it was running.
func (p *Player) Seek(pos time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pcm == nil {
		return ErrNotLoaded
	}
	if pos < 0 {
		pos = 0
	}
	if pos > p.duration {
		pos = p.duration
	}

	p.refresh()
	wasPlaying := p.state == StatePlaying
	p.halt()
	p.offset = pos
	if wasPlaying {
		return p.start()
	}
	if p.state == StateStopped && pos > 0 {
		p.state = StatePaused
	}
	return nil
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.refresh()
	return p.position()
}

// Duration returns the total duration of the loaded track.
func (p *Player) Duration() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.duration
}

// Loaded reports whether a track is loaded.
func (p *Player) Loaded() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pcm != nil
}

// Playing reports whether the track is playing.
func (p *Player) Playing() bool {
	return p.State() == StatePlaying
}

// State returns whether the player is playing, paused, or stopped.
func (p *Player) State() PlaybackState {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.refresh()
	return p.state
}

// Close stops playback and releases the output.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.halt()
	p.state = StateStopped
	return nil
}

func (p *Player) position() time.Duration {
	pos := p.offset
	if p.state == StatePlaying {
		pos += p.clock.Since(p.startedAt)
	}
	if pos > p.duration {
		pos = p.duration
	}
	return pos
}

// refresh moves a finished track to the stopped state, keeping the playhead
// at the end.
func (p *Player) refresh() {
	if p.state == StatePlaying && p.clock.Since(p.startedAt)+p.offset >= p.duration {
		p.halt()
		p.offset = p.duration
		p.state = StateStopped
	}
}

func (p *Player) start() error {
	if p.backend == nil {
		return fmt.Errorf("no audio output")
	}
	out, err := p.backend.Open(p.sampleRate, p.channels)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}

	frame := 2 * p.channels
	from := int(p.offset.Seconds()*float64(p.sampleRate)) * frame
	if from > len(p.pcm) {
		from = len(p.pcm)
	}

	p.out = out
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.write(out, p.pcm[from:], p.stop, p.done)

	p.state = StatePlaying
	p.startedAt = p.clock.Now()
	return nil
}

// halt stops the writer goroutine and closes the output.
func (p *Player) halt() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	if err := p.out.Close(); err != nil {
		p.log.WithError(err).Debug("closing audio output")
	}
	<-p.done
	p.stop, p.done, p.out = nil, nil, nil
}

func (p *Player) write(out Output, data []byte, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for len(data) > 0 {
		select {
		case <-stop:
			return
		default:
		}
		n := writeChunk
		if n > len(data) {
			n = len(data)
		}
		if _, err := out.Write(data[:n]); err != nil {
			select {
			case <-stop:
			default:
				p.log.WithError(err).Warn("audio output write failed")
			}
			return
		}
		data = data[n:]
	}
}

// RenderTrackBar draws a simple text-based progress bar for the track's current position.
func (p *Player) RenderTrackBar(width int) string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pcm == nil || p.duration <= 0 {
		return ""
	}

	p.refresh()
	position := p.position()
	progress := float64(position) / float64(p.duration)

	barWidth := width - 20
	if barWidth < 1 {
		barWidth = 1
	}
	completed := int(float64(barWidth) * progress)

	var bar strings.Builder
	bar.WriteString("[")

	for i := 0; i < barWidth; i++ {
		if i < completed {
			bar.WriteString("━")
		} else if i == completed {
			if p.state == StatePlaying {
				bar.WriteString("⭘")
			} else {
				bar.WriteString("□")
			}
		} else {
			bar.WriteString("─")
		}
	}

	bar.WriteString(fmt.Sprintf("] %s/%s", formatDuration(position), formatDuration(p.duration)))
	return bar.String()
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// OtoBackend plays through the system audio device. oto allows a single
// context per process, so the context is reused while the format matches.
type OtoBackend struct {
	mu         sync.Mutex
	context    *oto.Context
	sampleRate int
	channels   int
}

func (b *OtoBackend) Open(sampleRate, channels int) (Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.context != nil && (b.sampleRate != sampleRate || b.channels != channels) {
		if err := b.context.Close(); err != nil {
			return nil, fmt.Errorf("failed to close audio context: %w", err)
		}
		b.context = nil
	}
	if b.context == nil {
		ctx, err := oto.NewContext(sampleRate, channels, 2, 8192)
		if err != nil {
			return nil, fmt.Errorf("failed to create audio context: %w", err)
		}
		b.context, b.sampleRate, b.channels = ctx, sampleRate, channels
	}
	return b.context.NewPlayer(), nil
}

// Close releases the audio device.
func (b *OtoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context == nil {
		return nil
	}
	err := b.context.Close()
	b.context = nil
	return err
}
