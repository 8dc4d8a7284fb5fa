package library

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/util"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Raw is the on-disk shape: genre -> style -> entries.
type Raw = map[string]map[string][]model.PatternEntry

type Style struct {
	Name    string
	Entries []model.PatternEntry
}

type Genre struct {
	Name   string
	styles map[string]*Style
}

// Library is a read-only pattern library indexed by case-folded genre and
// style keys.
type Library struct {
	genres map[string]*Genre
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// New indexes raw. Keys that differ only in case are merged under the first
// spelling in sorted order.
func New(raw Raw) *Library {
	l := &Library{genres: make(map[string]*Genre)}
	for _, genreName := range util.GetSortedKeys(raw) {
		g, ok := l.genres[key(genreName)]
		if !ok {
			g = &Genre{Name: genreName, styles: make(map[string]*Style)}
			l.genres[key(genreName)] = g
		}
		styles := raw[genreName]
		for _, styleName := range util.GetSortedKeys(styles) {
			s, ok := g.styles[key(styleName)]
			if !ok {
				s = &Style{Name: styleName}
				g.styles[key(styleName)] = s
			}
			s.Entries = append(s.Entries, styles[styleName]...)
		}
	}
	return l
}

func Parse(r io.Reader) (*Library, error) {
	var raw Raw
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode pattern library")
	}
	return New(raw), nil
}

func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pattern library")
	}
	defer f.Close()
	return Parse(f)
}

// Genre resolves name case-insensitively.
func (l *Library) Genre(name string) (*Genre, error) {
	g, ok := l.genres[key(name)]
	if !ok {
		return nil, &model.UnknownGenreError{Genre: name}
	}
	return g, nil
}

// Style resolves a genre and one of its styles case-insensitively.
func (l *Library) Style(genre, style string) (*Genre, *Style, error) {
	g, err := l.Genre(genre)
	if err != nil {
		return nil, nil, err
	}
	s, ok := g.styles[key(style)]
	if !ok {
		return nil, nil, &model.UnknownStyleError{Genre: g.Name, Style: style}
	}
	return g, s, nil
}

// Genres returns all genres sorted by name.
func (l *Library) Genres() []*Genre {
	res := make([]*Genre, 0, len(l.genres))
	for _, k := range util.GetSortedKeys(l.genres) {
		res = append(res, l.genres[k])
	}
	return res
}

// Styles returns the genre's styles sorted by name.
func (g *Genre) Styles() []*Style {
	res := make([]*Style, 0, len(g.styles))
	for _, k := range util.GetSortedKeys(g.styles) {
		res = append(res, g.styles[k])
	}
	return res
}

// Raw rebuilds the on-disk shape using the canonical spellings.
func (l *Library) Raw() Raw {
	res := make(Raw, len(l.genres))
	for _, g := range l.genres {
		styles := make(map[string][]model.PatternEntry, len(g.styles))
		for _, s := range g.styles {
			styles[s.Name] = slices.Clone(s.Entries)
		}
		res[g.Name] = styles
	}
	return res
}

// Summaries lists genres and styles with their entry counts.
func (l *Library) Summaries() []model.GenreSummary {
	var res []model.GenreSummary
	for _, g := range l.Genres() {
		gs := model.GenreSummary{Name: g.Name}
		for _, s := range g.Styles() {
			gs.Styles = append(gs.Styles, model.StyleSummary{Name: s.Name, Entries: len(s.Entries)})
		}
		res = append(res, gs)
	}
	return res
}
