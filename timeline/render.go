package timeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/gopxl/beep/v2"
	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/sample"
	"github.com/jsphweid/loopgen/util"
	"github.com/jsphweid/loopgen/voice"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Event is one clip trigger on the loop.
type Event struct {
	Role   model.Role
	Step   int
	Offset int
	Path   string
}

type Renderer struct {
	grid    Grid
	rate    beep.SampleRate
	tail    TailPolicy
	workers int
}

func NewRenderer(grid Grid, rate beep.SampleRate, tail TailPolicy, workers int) *Renderer {
	if workers < 1 {
		workers = 1
	}
	return &Renderer{grid: grid, rate: rate, tail: tail, workers: workers}
}

func (r *Renderer) Grid() Grid {
	return r.grid
}

// Events lists the triggers of one voice in step order.
func (r *Renderer) Events(v model.Voice) []Event {
	var res []Event
	for _, step := range v.Pattern.Steps() {
		res = append(res, Event{
			Role:   v.Role,
			Step:   step,
			Offset: FramesAt(r.grid.StepOffsetMs(step), r.rate),
			Path:   v.Sample.Path,
		})
	}
	return res
}

// Schedule lists the triggers of every voice that has a decoded clip.
func (r *Renderer) Schedule(voices voice.Voices, clips map[string]*sample.Clip) []Event {
	var res []Event
	for _, role := range voices.Roles() {
		v := voices[role]
		if _, ok := clips[v.Sample.Path]; !ok {
			continue
		}
		res = append(res, r.Events(v)...)
	}
	return res
}

// RenderMix overlays every voice onto one loop of the grid's total length.
// Voices whose clip is missing from clips are skipped.
func (r *Renderer) RenderMix(voices voice.Voices, clips map[string]*sample.Clip) *Loop {
	loop := NewLoop(r.grid.TotalMs(), r.rate, r.tail)
	for _, ev := range r.Schedule(voices, clips) {
		loop.Overlay(clips[ev.Path].Frames, ev.Offset)
	}
	return loop
}

// RenderStem renders v alone on its own loop, sized from its pattern length.
func (r *Renderer) RenderStem(v model.Voice, clip *sample.Clip) *Loop {
	loop := NewLoop(float64(len(v.Pattern))*r.grid.StepMs(), r.rate, r.tail)
	for _, ev := range r.Events(v) {
		loop.Overlay(clip.Frames, ev.Offset)
	}
	return loop
}

// RenderStems renders every voice with a decoded clip concurrently. Each
// stem owns its buffer; clips are only read.
func (r *Renderer) RenderStems(ctx context.Context, voices voice.Voices, clips map[string]*sample.Clip) (map[model.Role]*Loop, error) {
	roles := voices.Roles()
	stems := make([]*Loop, len(roles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(util.Min(r.workers, len(model.AllRoles)))
	for i, role := range roles {
		i, v := i, voices[role]
		clip, ok := clips[v.Sample.Path]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stems[i] = r.RenderStem(v, clip)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "render stems")
	}

	res := make(map[model.Role]*Loop)
	for i, role := range roles {
		if stems[i] != nil {
			res[role] = stems[i]
		}
	}
	return res, nil
}

// StemFilename is the archive name of a role's stem.
func StemFilename(role model.Role) string {
	return role.String() + ".wav"
}

// WriteStems writes each stem to dir as <Role>.wav and returns the written
// paths in role order. A stem that fails to write is logged and skipped.
func WriteStems(dir string, stems map[model.Role]*Loop, logger *slog.Logger) []string {
	var res []string
	for _, role := range util.GetSortedKeys(stems) {
		path := filepath.Join(dir, StemFilename(role))
		if err := stems[role].WriteFile(path); err != nil {
			logger.Warn("could not write stem", "role", role, "path", path, "err", err)
			continue
		}
		res = append(res, path)
	}
	return res
}
