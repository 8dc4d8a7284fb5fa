package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Role identifies one drum instrument of a loop.
type Role uint8

const (
	Kick Role = iota
	Snare
	HiHat
	OpenHat
	Clap
	Percussion
)

// AllRoles is the fixed processing order used everywhere roles are iterated.
var AllRoles = []Role{Kick, Snare, HiHat, OpenHat, Clap, Percussion}

type roleInfo struct {
	name   string
	key    string
	folder string
}

var roles = map[Role]roleInfo{
	Kick:       {name: "Kick", key: "Kick", folder: "kicks"},
	Snare:      {name: "Snare", key: "Snare", folder: "snares"},
	HiHat:      {name: "HiHat", key: "HiHat", folder: "hi-hats"},
	OpenHat:    {name: "OpenHat", key: "OpenHat", folder: "open-hats"},
	Clap:       {name: "Clap", key: "Clap", folder: "claps"},
	Percussion: {name: "Percussion", key: "percussion", folder: "percussions"},
}

func (r Role) String() string {
	if info, ok := roles[r]; ok {
		return info.name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Key is the field name used for this role in the pattern library.
func (r Role) Key() string {
	return roles[r].key
}

// Folder is the sample pool directory holding clips for this role.
func (r Role) Folder() string {
	return roles[r].folder
}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// ParseRole matches a role by name or library key, ignoring case.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		info := roles[r]
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.key) {
			return r, true
		}
	}
	return 0, false
}

// RoleForFolder maps a sample pool directory name back to its role.
func RoleForFolder(folder string) (Role, bool) {
	for _, r := range AllRoles {
		if strings.EqualFold(folder, roles[r].folder) {
			return r, true
		}
	}
	return 0, false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, errors.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, ok := ParseRole(string(text))
	if !ok {
		return errors.Errorf("unknown role %q", string(text))
	}
	*r = parsed
	return nil
}
