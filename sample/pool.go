package sample

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/util"
)

type poolKey struct {
	genre string
	role  model.Role
}

// Pool indexes clips laid out as <root>/<genre>/<role-folder>/<clip>.
// It is built once and read-only afterwards.
type Pool struct {
	root   string
	index  map[poolKey][]model.SampleAsset
	genres map[string]string
}

// NewPool scans root. A missing root yields an empty pool.
func NewPool(root string) (*Pool, error) {
	p := &Pool{
		root:   root,
		index:  make(map[poolKey][]model.SampleAsset),
		genres: make(map[string]string),
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return p, nil
	}

	paths, err := util.GatherAudioPaths(root)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			continue
		}
		role, ok := model.RoleForFolder(parts[1])
		if !ok {
			continue
		}
		genre := strings.ToLower(parts[0])
		if _, ok := p.genres[genre]; !ok {
			p.genres[genre] = parts[0]
		}
		k := poolKey{genre: genre, role: role}
		p.index[k] = append(p.index[k], model.SampleAsset{Path: path, Role: role, Genre: parts[0]})
	}
	return p, nil
}

func (p *Pool) Root() string {
	return p.root
}

// Samples returns every clip for role within genre, in path order.
func (p *Pool) Samples(role model.Role, genre string) []model.SampleAsset {
	return p.index[poolKey{genre: strings.ToLower(genre), role: role}]
}

// Count returns how many clips exist for role within genre.
func (p *Pool) Count(role model.Role, genre string) int {
	return len(p.Samples(role, genre))
}

// Genres returns the genre directory names found on disk, sorted.
func (p *Pool) Genres() []string {
	res := make([]string, 0, len(p.genres))
	for _, k := range util.GetSortedKeys(p.genres) {
		res = append(res, p.genres[k])
	}
	return res
}
