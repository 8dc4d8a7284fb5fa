package sample

import (
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"
)

// 16-bit stereo
const precision = 2

type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *frameStreamer) Err() error {
	return nil
}

// Streamer replays frames once.
func Streamer(frames [][2]float64) beep.Streamer {
	return &frameStreamer{frames: frames}
}

func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: precision}
}

// EncodeWAV writes frames as a 16-bit stereo WAV.
func EncodeWAV(w io.WriteSeeker, frames [][2]float64, rate beep.SampleRate) error {
	if err := wav.Encode(w, Streamer(frames), Format(rate)); err != nil {
		return errors.Wrap(err, "encode wav")
	}
	return nil
}
