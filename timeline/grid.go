package timeline

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/jsphweid/loopgen/constants"
	"github.com/pkg/errors"
)

// Grid is the step time base of a loop.
type Grid struct {
	BPM   float64
	Steps int
}

func NewGrid(bpm float64, steps int) (Grid, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return Grid{}, errors.Errorf("bpm must be positive, got %v", bpm)
	}
	if steps < 0 {
		return Grid{}, errors.Errorf("step count must not be negative, got %d", steps)
	}
	return Grid{BPM: bpm, Steps: steps}, nil
}

func (g Grid) BeatMs() float64 {
	return 60000 / g.BPM
}

// StepMs is one 16th note.
func (g Grid) StepMs() float64 {
	return g.BeatMs() / constants.StepsPerBeat
}

func (g Grid) TotalMs() float64 {
	return float64(g.Steps) * g.StepMs()
}

func (g Grid) StepOffsetMs(step int) float64 {
	return float64(step) * g.StepMs()
}

// FramesAt converts a millisecond position to a frame index at rate.
func FramesAt(ms float64, rate beep.SampleRate) int {
	return int(math.Round(ms * float64(rate) / 1000))
}
