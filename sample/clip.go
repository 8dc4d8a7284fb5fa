package sample

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/jsphweid/loopgen/model"
	"github.com/pkg/errors"
)

const resampleQuality = 4

// Clip is a fully decoded stereo clip at a fixed sample rate.
type Clip struct {
	Frames [][2]float64
	Rate   beep.SampleRate
}

func (c *Clip) Len() int {
	return len(c.Frames)
}

func decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, errors.Errorf("unsupported audio format %q", filepath.Ext(f.Name()))
	}
}

// LoadClip decodes path and resamples it to rate.
func LoadClip(path string, rate beep.SampleRate) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open clip")
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(resampleQuality, format.SampleRate, rate, s)
	}
	frames, err := ReadAll(s)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	return &Clip{Frames: frames, Rate: rate}, nil
}

// ReadAll drains s into memory.
func ReadAll(s beep.Streamer) ([][2]float64, error) {
	var res [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		res = append(res, buf[:n]...)
		if !ok {
			break
		}
	}
	return res, s.Err()
}

// LoadClips decodes every distinct clip referenced by assets. Clips that fail
// to load are reported as *model.SampleReadError and left out of the result.
func LoadClips(assets []model.SampleAsset, rate beep.SampleRate) (map[string]*Clip, []error) {
	clips := make(map[string]*Clip)
	var diags []error
	failed := make(map[string]bool)
	for _, a := range assets {
		if _, ok := clips[a.Path]; ok || failed[a.Path] {
			continue
		}
		clip, err := LoadClip(a.Path, rate)
		if err != nil {
			failed[a.Path] = true
			diags = append(diags, &model.SampleReadError{Role: a.Role, Path: a.Path, Cause: err})
			continue
		}
		clips[a.Path] = clip
	}
	return clips, diags
}
