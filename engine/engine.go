package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/jsphweid/loopgen/archive"
	"github.com/jsphweid/loopgen/constants"
	"github.com/jsphweid/loopgen/db"
	"github.com/jsphweid/loopgen/file"
	"github.com/jsphweid/loopgen/library"
	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/sample"
	"github.com/jsphweid/loopgen/timeline"
	"github.com/jsphweid/loopgen/voice"
	"github.com/pkg/errors"
)

// Recorder receives a record of every successful render.
type Recorder interface {
	PutRender(ctx context.Context, rec db.RenderRecord) error
}

type Engine struct {
	lib      *library.Library
	pool     voice.SamplePool
	rate     beep.SampleRate
	tail     timeline.TailPolicy
	workers  int
	logger   *slog.Logger
	recorder Recorder
	seed     func() int64
	packager *archive.Packager
}

type Option func(*Engine)

func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		e.rate = beep.SampleRate(rate)
	}
}

func WithTailPolicy(tail timeline.TailPolicy) Option {
	return func(e *Engine) {
		e.tail = tail
	}
}

func WithStemWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithSeedSource sets where seeds come from for requests without one.
func WithSeedSource(seed func() int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func New(lib *library.Library, pool voice.SamplePool, opts ...Option) *Engine {
	e := &Engine{
		lib:     lib,
		pool:    pool,
		rate:    constants.DefaultSampleRate,
		tail:    timeline.TailDrop,
		workers: 4,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed:    func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.packager = archive.NewPackager(e.logger)
	return e
}

func (e *Engine) Library() *library.Library {
	return e.lib
}

// Result describes a finished render.
type Result struct {
	ID          string
	Genre       string
	Style       string
	Entry       model.PatternEntry
	BPM         float64
	Seed        int64
	Roles       []model.Role
	LoopPath    string
	ArchivePath string
	DurationMs  float64
	Diagnostics []error
}

// Render selects voices for req, writes the mixed loop to req.OutputPath and
// packs per-role stems into <output-basename>.zip next to it. Lookup failures
// return before anything touches the disk.
func (e *Engine) Render(ctx context.Context, req model.RenderRequest) (*Result, error) {
	if req.OutputPath == "" {
		return nil, errors.New("output path is required")
	}
	bpm := req.BPM
	if bpm == 0 {
		bpm = constants.DefaultBPM
	}
	grid, err := timeline.NewGrid(bpm, constants.StepCount)
	if err != nil {
		return nil, err
	}
	seed := req.Seed
	if seed == 0 {
		seed = e.seed()
	}

	// each render owns its randomness
	rng := rand.New(rand.NewSource(seed))
	sel, err := voice.NewSelector(e.lib, e.pool, rng).Select(req.Genre, req.Style, req.InspiredBy)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	logger := e.logger.With("render", id)
	logger.Info("selected pattern",
		"genre", sel.Genre, "style", sel.Style, "pattern_id", sel.Entry.ID,
		"inspired_by", sel.Entry.InspiredBy, "roles", len(sel.Voices), "seed", seed)

	var assets []model.SampleAsset
	for _, role := range sel.Voices.Roles() {
		assets = append(assets, sel.Voices[role].Sample)
	}
	clips, diags := sample.LoadClips(assets, e.rate)
	for _, d := range diags {
		logger.Warn("dropping voice", "err", d)
	}

	renderer := timeline.NewRenderer(grid, e.rate, e.tail, e.workers)
	mix := renderer.RenderMix(sel.Voices, clips)
	if peak := mix.Peak(); peak > 1 {
		logger.Debug("mix exceeds full scale and will clip", "peak", peak)
	}
	stems, err := renderer.RenderStems(ctx, sel.Voices, clips)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "render")
	}

	if err := mix.WriteFile(req.OutputPath); err != nil {
		return nil, errors.Wrap(err, "write loop")
	}
	logger.Info("wrote loop", "path", req.OutputPath, "duration_ms", mix.DurationMs())

	res := &Result{
		ID:          id,
		Genre:       sel.Genre,
		Style:       sel.Style,
		Entry:       sel.Entry,
		BPM:         bpm,
		Seed:        seed,
		Roles:       rolesOf(stems),
		LoopPath:    req.OutputPath,
		DurationMs:  mix.DurationMs(),
		Diagnostics: diags,
	}
	res.ArchivePath = e.writeArchive(logger, req.OutputPath, id, stems, res)
	e.record(ctx, logger, res)
	return res, nil
}

func rolesOf(stems map[model.Role]*timeline.Loop) []model.Role {
	var res []model.Role
	for _, role := range model.AllRoles {
		if _, ok := stems[role]; ok {
			res = append(res, role)
		}
	}
	return res
}

// writeArchive is best effort: failures are logged and recorded as
// diagnostics on res.
func (e *Engine) writeArchive(logger *slog.Logger, loopPath, id string, stems map[model.Role]*timeline.Loop, res *Result) string {
	if len(stems) == 0 {
		return ""
	}
	dir := filepath.Dir(loopPath)
	scratch := filepath.Join(dir, constants.StemsDirPrefix+id)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		logger.Warn("could not create stems dir", "dir", scratch, "err", err)
		return ""
	}

	paths := timeline.WriteStems(scratch, stems, logger)
	if len(paths) == 0 {
		os.Remove(scratch)
		return ""
	}

	zipPath := filepath.Join(dir, file.StripExt(loopPath)+".zip")
	archivePath, err := e.packager.Package(paths, zipPath, scratch)
	if err != nil {
		logger.Warn("archive omitted", "err", err)
		res.Diagnostics = append(res.Diagnostics, err)
		return ""
	}
	logger.Info("wrote stems archive", "path", archivePath, "stems", len(paths))
	return archivePath
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, res *Result) {
	if e.recorder == nil {
		return
	}
	roles := make([]string, 0, len(res.Roles))
	for _, r := range res.Roles {
		roles = append(roles, r.String())
	}
	rec := db.RenderRecord{
		ID:         res.ID,
		Genre:      res.Genre,
		Style:      res.Style,
		PatternID:  res.Entry.ID,
		InspiredBy: res.Entry.InspiredBy,
		BPM:        res.BPM,
		Seed:       res.Seed,
		Roles:      roles,
		Loop:       res.LoopPath,
		Archive:    res.ArchivePath,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.recorder.PutRender(ctx, rec); err != nil {
		logger.Warn("could not record render", "err", err)
	}
}
