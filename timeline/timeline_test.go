package timeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2/wav"
	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/pattern"
	"github.com/jsphweid/loopgen/sample"
	"github.com/jsphweid/loopgen/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one frame per millisecond keeps the arithmetic readable
const testRate = 1000

func constClip(frames int, v float64) *sample.Clip {
	data := make([][2]float64, frames)
	for i := range data {
		data[i] = [2]float64{v, v}
	}
	return &sample.Clip{Frames: data, Rate: testRate}
}

func mustGrid(t *testing.T, bpm float64) Grid {
	t.Helper()
	g, err := NewGrid(bpm, 64)
	require.NoError(t, err)
	return g
}

func makeVoice(role model.Role, path string, bits ...int) model.Voice {
	p := make(model.StepPattern, len(bits))
	for i, b := range bits {
		p[i] = b != 0
	}
	return model.Voice{
		Role:    role,
		Pattern: pattern.Normalize(p, 64),
		Sample:  model.SampleAsset{Path: path, Role: role},
	}
}

func TestGridTimeBase(t *testing.T) {
	g := mustGrid(t, 120)
	assert := assert.New(t)
	assert.Equal(500.0, g.BeatMs())
	assert.Equal(125.0, g.StepMs())
	assert.Equal(8000.0, g.TotalMs())
	assert.Equal(375.0, g.StepOffsetMs(3))
}

func TestGridTotalForAnyTempo(t *testing.T) {
	for _, bpm := range []float64{60, 90, 120, 128, 140, 174.5} {
		g := mustGrid(t, bpm)
		assert.InDelta(t, 64*(60000/bpm/4), g.TotalMs(), 1e-9)
	}
}

func TestNewGridRejectsBadTempo(t *testing.T) {
	for _, bpm := range []float64{0, -120} {
		_, err := NewGrid(bpm, 64)
		assert.Error(t, err)
	}
	_, err := NewGrid(120, -1)
	assert.Error(t, err)
}

func TestFramesAt(t *testing.T) {
	assert.Equal(t, 352800, FramesAt(8000, 44100))
	assert.Equal(t, 5513, FramesAt(125, 44100))
	assert.Equal(t, 0, FramesAt(0, 44100))
}

func TestOverlayIsAdditive(t *testing.T) {
	l := NewLoop(10, testRate, TailDrop)
	l.Overlay(constClip(4, 0.25).Frames, 2)
	l.Overlay(constClip(2, 0.5).Frames, 3)

	assert := assert.New(t)
	assert.Equal(10, l.Len())
	assert.Equal([2]float64{0, 0}, l.Frames[1])
	assert.Equal([2]float64{0.25, 0.25}, l.Frames[2])
	assert.Equal([2]float64{0.75, 0.75}, l.Frames[3])
	assert.Equal([2]float64{0.75, 0.75}, l.Frames[4])
	assert.Equal([2]float64{0.25, 0.25}, l.Frames[5])
	assert.Equal([2]float64{0, 0}, l.Frames[6])
	assert.Equal(0.75, l.Peak())
}

func TestOverlayTailPolicies(t *testing.T) {
	drop := NewLoop(10, testRate, TailDrop)
	drop.Overlay(constClip(5, 1).Frames, 8)
	assert.Equal(t, 10, drop.Len())
	assert.Equal(t, [2]float64{0, 0}, drop.Frames[0])
	assert.Equal(t, [2]float64{1, 1}, drop.Frames[9])

	wrap := NewLoop(10, testRate, TailWrap)
	wrap.Overlay(constClip(5, 1).Frames, 8)
	assert.Equal(t, 10, wrap.Len())
	assert.Equal(t, [2]float64{1, 1}, wrap.Frames[0])
	assert.Equal(t, [2]float64{1, 1}, wrap.Frames[2])
	assert.Equal(t, [2]float64{0, 0}, wrap.Frames[3])
}

func TestOverlayIgnoresOutOfRangeOffset(t *testing.T) {
	l := NewLoop(4, testRate, TailWrap)
	l.Overlay(constClip(2, 1).Frames, 4)
	l.Overlay(constClip(2, 1).Frames, -1)
	assert.Equal(t, 0.0, l.Peak())

	empty := NewLoop(0, testRate, TailWrap)
	empty.Overlay(constClip(2, 1).Frames, 0)
	assert.Equal(t, 0, empty.Len())
}

func TestRenderMixDurationIndependentOfVoices(t *testing.T) {
	r := NewRenderer(mustGrid(t, 120), testRate, TailDrop, 2)
	clips := map[string]*sample.Clip{"k": constClip(10, 0.1), "s": constClip(10, 0.1)}

	cases := []voice.Voices{
		{},
		{model.Kick: makeVoice(model.Kick, "k", 1, 0, 0, 0)},
		{
			model.Kick:  makeVoice(model.Kick, "k", 1, 0, 0, 0),
			model.Snare: makeVoice(model.Snare, "s", 0, 0, 0, 0, 1, 0, 0, 0),
			model.Clap:  makeVoice(model.Clap, "missing", 1),
		},
	}
	for _, voices := range cases {
		loop := r.RenderMix(voices, clips)
		assert.Equal(t, 8000, loop.Len())
		assert.Equal(t, 8000.0, loop.DurationMs())
	}
}

func TestRenderMixPlacesHitsOnSteps(t *testing.T) {
	r := NewRenderer(mustGrid(t, 120), testRate, TailDrop, 1)
	clips := map[string]*sample.Clip{"k": constClip(3, 0.5)}
	voices := voice.Voices{model.Kick: makeVoice(model.Kick, "k", 1, 0, 0, 0)}

	loop := r.RenderMix(voices, clips)
	assert := assert.New(t)
	for bar := 0; bar < 16; bar++ {
		start := bar * 500
		assert.Equal([2]float64{0.5, 0.5}, loop.Frames[start])
		assert.Equal([2]float64{0.5, 0.5}, loop.Frames[start+2])
		assert.Equal([2]float64{0, 0}, loop.Frames[start+3])
	}
	assert.Len(r.Schedule(voices, clips), 16)
}

func TestRenderMixSkipsVoicesWithoutClip(t *testing.T) {
	r := NewRenderer(mustGrid(t, 120), testRate, TailDrop, 1)
	voices := voice.Voices{model.Kick: makeVoice(model.Kick, "gone", 1)}
	loop := r.RenderMix(voices, map[string]*sample.Clip{})
	assert.Equal(t, 0.0, loop.Peak())
	assert.Empty(t, r.Schedule(voices, nil))
}

func TestStemsMatchMix(t *testing.T) {
	r := NewRenderer(mustGrid(t, 97), testRate, TailDrop, 3)
	clips := map[string]*sample.Clip{
		"k": constClip(200, 0.3),
		"s": constClip(50, 0.2),
		"h": constClip(700, 0.1),
	}
	voices := voice.Voices{
		model.Kick:  makeVoice(model.Kick, "k", 1, 0, 0, 1, 0, 0, 1, 0),
		model.Snare: makeVoice(model.Snare, "s", 0, 0, 0, 0, 1, 0, 0, 0),
		model.HiHat: makeVoice(model.HiHat, "h", 1, 1, 0),
	}

	mix := r.RenderMix(voices, clips)
	stems, err := r.RenderStems(context.Background(), voices, clips)
	require.NoError(t, err)
	require.Len(t, stems, 3)

	var stemEvents []Event
	for _, role := range voices.Roles() {
		stem := stems[role]
		assert.Equal(t, mix.Len(), stem.Len())
		stemEvents = append(stemEvents, r.Events(voices[role])...)
	}
	assert.Equal(t, r.Schedule(voices, clips), stemEvents)

	for i := range mix.Frames {
		var sum [2]float64
		for _, role := range voices.Roles() {
			sum[0] += stems[role].Frames[i][0]
			sum[1] += stems[role].Frames[i][1]
		}
		require.InDelta(t, mix.Frames[i][0], sum[0], 1e-9, "frame %d", i)
		require.InDelta(t, mix.Frames[i][1], sum[1], 1e-9, "frame %d", i)
	}
}

func TestRenderStemsSkipsMissingClips(t *testing.T) {
	r := NewRenderer(mustGrid(t, 120), testRate, TailDrop, 2)
	voices := voice.Voices{
		model.Kick: makeVoice(model.Kick, "k", 1),
		model.Clap: makeVoice(model.Clap, "bad", 1),
	}
	stems, err := r.RenderStems(context.Background(), voices, map[string]*sample.Clip{"k": constClip(1, 1)})
	require.NoError(t, err)
	assert.Len(t, stems, 1)
	assert.Contains(t, stems, model.Kick)
}

func TestRenderStemsHonorsCancellation(t *testing.T) {
	r := NewRenderer(mustGrid(t, 120), testRate, TailDrop, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	voices := voice.Voices{model.Kick: makeVoice(model.Kick, "k", 1)}
	_, err := r.RenderStems(ctx, voices, map[string]*sample.Clip{"k": constClip(1, 1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteStems(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(mustGrid(t, 120), 8000, TailDrop, 2)
	clip := &sample.Clip{Frames: constClip(10, 0.5).Frames, Rate: 8000}
	voices := voice.Voices{
		model.Snare: makeVoice(model.Snare, "s", 1),
		model.Kick:  makeVoice(model.Kick, "k", 1),
	}
	stems, err := r.RenderStems(context.Background(), voices, map[string]*sample.Clip{"s": clip, "k": clip})
	require.NoError(t, err)

	paths := WriteStems(dir, stems, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, []string{filepath.Join(dir, "Kick.wav"), filepath.Join(dir, "Snare.wav")}, paths)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	s, format, err := wav.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, 64000, s.Len())
}
