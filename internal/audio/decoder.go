package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/sirupsen/logrus"
)

// DecodeOptions controls what Load produces.
type DecodeOptions struct {
	// TargetRate is the rate requested from the transcoder. Native decoders
	// keep the file's own rate.
	TargetRate int
	// Mono averages all channels into one.
	Mono bool
	// MaxSeconds truncates the result when > 0.
	MaxSeconds float64
}

// Loader turns a file into a normalized sample buffer.
type Loader interface {
	Load(path string, opts DecodeOptions) (*Buffer, error)
}

// Decoder reads WAV and MP3 natively and hands every other format to ffmpeg.
type Decoder struct {
	FFmpeg string
	log    logrus.FieldLogger
}

func NewDecoder(ffmpeg string, log logrus.FieldLogger) *Decoder {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Decoder{FFmpeg: ffmpeg, log: log}
}

// Load decodes path. The result is peak normalized, truncated to
// opts.MaxSeconds and downmixed when opts.Mono is set. Every failure is a
// *DecodeError.
func (d *Decoder) Load(path string, opts DecodeOptions) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, decodeError(path, KindMissing, err)
	}
	if info.IsDir() {
		return nil, decodeError(path, KindMissing, fmt.Errorf("is a directory"))
	}

	var buf *Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		buf, err = d.loadNative(path, decodeWAVFile)
	case ".mp3":
		buf, err = d.loadNative(path, decodeMP3File)
	default:
		buf, err = d.transcode(path, opts)
	}
	if err != nil {
		return nil, err
	}

	if opts.Mono {
		buf = buf.Mono()
	}
	buf.Truncate(opts.MaxSeconds)
	if buf.Frames() == 0 {
		return nil, decodeError(path, KindEmpty, nil)
	}
	buf.Normalize()

	d.logger().WithFields(logrus.Fields{
		"path":        path,
		"sample_rate": buf.SampleRate,
		"channels":    buf.Channels,
		"seconds":     buf.Seconds(),
	}).Debug("decoded")
	return buf, nil
}

func (d *Decoder) loadNative(path string, decode func(io.ReadSeeker) (*Buffer, error)) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeError(path, KindMissing, err)
	}
	defer f.Close()

	buf, err := decode(f)
	if err != nil {
		return nil, decodeError(path, KindUnsupported, err)
	}
	return buf, nil
}

// transcode runs ffmpeg into a temporary 16-bit WAV and decodes that.
func (d *Decoder) transcode(path string, opts DecodeOptions) (*Buffer, error) {
	bin, err := exec.LookPath(d.FFmpeg)
	if err != nil {
		return nil, decodeError(path, KindUnsupported,
			fmt.Errorf("%s needs %s, which was not found", filepath.Ext(path), d.FFmpeg))
	}

	tmp, err := os.CreateTemp("", "rhythmsignal-*.wav")
	if err != nil {
		return nil, decodeError(path, KindTranscoder, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y", "-i", path, "-vn"}
	if opts.TargetRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.TargetRate))
	}
	if opts.Mono {
		args = append(args, "-ac", "1")
	}
	if opts.MaxSeconds > 0 {
		args = append(args, "-t", strconv.FormatFloat(opts.MaxSeconds, 'f', 3, 64))
	}
	args = append(args, "-acodec", "pcm_s16le", tmpPath)

	var stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, decodeError(path, KindTranscoder, errors.New(msg))
	}

	buf, err := d.loadNative(tmpPath, decodeWAVFile)
	if err != nil {
		if de, ok := AsDecodeError(err); ok {
			return nil, decodeError(path, KindTranscoder, de.Err)
		}
		return nil, decodeError(path, KindTranscoder, err)
	}
	return buf, nil
}

func (d *Decoder) logger() logrus.FieldLogger {
	if d.log == nil {
		return logrus.StandardLogger()
	}
	return d.log
}

func decodeWAVFile(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate <= 0 {
		return nil, errors.New("missing WAV format")
	}

	bitDepth := int(dec.SampleBitDepth())
	if bitDepth <= 0 {
		return nil, errors.New("unknown WAV bit depth")
	}
	scale := float32(int64(1) << (bitDepth - 1))

	channels := pcm.Format.NumChannels
	n := len(pcm.Data) - len(pcm.Data)%channels
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = float32(pcm.Data[i]) / scale
	}
	return &Buffer{Samples: samples, SampleRate: pcm.Format.SampleRate, Channels: channels}, nil
}

// decodeMP3File reads the whole stream. go-mp3 always yields 16-bit stereo.
func decodeMP3File(r io.ReadSeeker) (*Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to init mp3 decoder: %w", err)
	}

	const frameSize = 4
	var samples []float32
	if l := dec.Length(); l > 0 {
		samples = make([]float32, 0, l/2)
	}

	buf := make([]byte, 8192)
	var pending []byte
	for {
		n, readErr := dec.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			frames := len(pending) / frameSize
			for i := 0; i < frames; i++ {
				left := int16(uint16(pending[i*4+0]) | uint16(pending[i*4+1])<<8)
				right := int16(uint16(pending[i*4+2]) | uint16(pending[i*4+3])<<8)
				samples = append(samples, float32(left)/32768, float32(right)/32768)
			}
			pending = pending[frames*frameSize:]
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("decode mp3 read error: %w", readErr)
		}
	}

	return &Buffer{Samples: samples, SampleRate: dec.SampleRate(), Channels: 2}, nil
}
