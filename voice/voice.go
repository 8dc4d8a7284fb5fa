package voice

import (
	"strings"

	"github.com/jsphweid/loopgen/constants"
	"github.com/jsphweid/loopgen/library"
	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/pattern"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Rand is the randomness a Selector draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// SamplePool lists the clips available for a role within a genre.
type SamplePool interface {
	Samples(role model.Role, genre string) []model.SampleAsset
}

// Voices holds one voice per resolved role. Unresolved roles are absent.
type Voices map[model.Role]model.Voice

// Roles returns the resolved roles in their fixed order.
func (v Voices) Roles() []model.Role {
	roles := maps.Keys(v)
	slices.Sort(roles)
	return roles
}

// Selection is the outcome of one Select call.
type Selection struct {
	Genre  string
	Style  string
	Entry  model.PatternEntry
	Voices Voices
}

type Selector struct {
	lib   *library.Library
	pool  SamplePool
	rand  Rand
	steps int
}

func NewSelector(lib *library.Library, pool SamplePool, r Rand) *Selector {
	return &Selector{lib: lib, pool: pool, rand: r, steps: constants.StepCount}
}

// FilterByInspiration keeps entries whose inspiration contains filter,
// ignoring case. An empty filter, or one matching nothing, yields entries.
func FilterByInspiration(entries []model.PatternEntry, filter string) []model.PatternEntry {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return entries
	}
	var filtered []model.PatternEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.InspiredBy), filter) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return entries
	}
	return filtered
}

// Resolve turns entry into voices for genre. Roles without a pattern or
// without any clip are left out.
func (s *Selector) Resolve(entry model.PatternEntry, genre string) Voices {
	res := make(Voices)
	for _, role := range model.AllRoles {
		p := entry.Pattern(role)
		if len(p) == 0 {
			continue
		}
		candidates := s.pool.Samples(role, genre)
		if len(candidates) == 0 {
			continue
		}
		res[role] = model.Voice{
			Role:    role,
			Pattern: pattern.Normalize(p, s.steps),
			Sample:  candidates[s.rand.Intn(len(candidates))],
		}
	}
	return res
}

// Select picks one entry of genre/style, optionally narrowed by inspiration,
// and resolves its voices.
func (s *Selector) Select(genre, style, inspiration string) (*Selection, error) {
	g, st, err := s.lib.Style(genre, style)
	if err != nil {
		return nil, err
	}
	candidates := FilterByInspiration(st.Entries, inspiration)
	if len(candidates) == 0 {
		return nil, &model.NoVoicesSelectedError{Genre: g.Name, Style: st.Name}
	}
	entry := candidates[s.rand.Intn(len(candidates))]

	voices := s.Resolve(entry, g.Name)
	if len(voices) == 0 {
		return nil, &model.NoVoicesSelectedError{Genre: g.Name, Style: st.Name, EntryID: entry.ID}
	}
	return &Selection{Genre: g.Name, Style: st.Name, Entry: entry, Voices: voices}, nil
}
