package timeline

import (
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/jsphweid/loopgen/file"
	"github.com/jsphweid/loopgen/sample"
)

// TailPolicy decides what happens to clip audio running past the loop end.
type TailPolicy int

const (
	// TailDrop discards audio past the loop end.
	TailDrop TailPolicy = iota
	// TailWrap folds it back onto the loop start.
	TailWrap
)

// Loop is a fixed-length stereo buffer. It starts silent and only grows
// louder through Overlay.
type Loop struct {
	Frames [][2]float64
	Rate   beep.SampleRate
	Tail   TailPolicy
}

func NewLoop(ms float64, rate beep.SampleRate, tail TailPolicy) *Loop {
	return &Loop{
		Frames: make([][2]float64, FramesAt(ms, rate)),
		Rate:   rate,
		Tail:   tail,
	}
}

func (l *Loop) Len() int {
	return len(l.Frames)
}

func (l *Loop) DurationMs() float64 {
	return float64(len(l.Frames)) * 1000 / float64(l.Rate)
}

// Overlay adds clip into the loop starting at frame offset.
func (l *Loop) Overlay(clip [][2]float64, offset int) {
	n := len(l.Frames)
	if n == 0 || offset < 0 || offset >= n {
		return
	}
	for j, f := range clip {
		i := offset + j
		if i >= n {
			if l.Tail != TailWrap {
				return
			}
			i %= n
		}
		l.Frames[i][0] += f[0]
		l.Frames[i][1] += f[1]
	}
}

// Peak returns the largest absolute sample value.
func (l *Loop) Peak() float64 {
	var peak float64
	for _, f := range l.Frames {
		for _, v := range f {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

func (l *Loop) Encode(w io.WriteSeeker) error {
	return sample.EncodeWAV(w, l.Frames, l.Rate)
}

// WriteFile encodes the loop to path atomically.
func (l *Loop) WriteFile(path string) error {
	return file.WriteAtomic(path, func(f *os.File) error {
		return l.Encode(f)
	})
}
