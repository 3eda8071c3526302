// Package blocktype provides the block type registry consumed by the codec:
// the name↔id mapping and the per-type flags that change the wire layout.
//
// The registry is read-only once loaded. [Default] returns the table
// embedded in the binary; [LoadFile] and [Load] read a replacement table in
// the same TOML format.
package blocktype

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/structio/pkg/errors"
)

//go:embed types.toml
var defaultTable []byte

// Type describes one block type id.
type Type struct {
	ID              uint8
	Name            string
	NonInteractable bool
	Custom          bool
	Math            bool
}

// Registry maps block type ids to names and flags.
type Registry struct {
	types  [256]Type
	known  [256]bool
	byName map[string]uint8
	mathID int // -1 when the table names no math type
	sum    [sha256.Size]byte
}

type table struct {
	Math            *int    `toml:"math"`
	NonInteractable []int   `toml:"non_interactable"`
	Custom          []int   `toml:"custom"`
	Types           []entry `toml:"type"`
}

type entry struct {
	ID              int    `toml:"id"`
	Name            string `toml:"name"`
	NonInteractable bool   `toml:"non_interactable"`
	Custom          bool   `toml:"custom"`
}

var defaultRegistry = func() *Registry {
	r, err := parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("blocktype: embedded table: %v", err))
	}
	return r
}()

// Default returns the embedded registry.
func Default() *Registry {
	return defaultRegistry
}

// Load reads a TOML type table from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read type table: %w", err)
	}
	return parse(data)
}

// LoadFile reads a TOML type table from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "type table %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	reg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func parse(data []byte) (*Registry, error) {
	var t table
	if _, err := toml.Decode(string(data), &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode type table")
	}

	r := &Registry{byName: make(map[string]uint8), mathID: -1, sum: sha256.Sum256(data)}
	for _, id := range t.NonInteractable {
		if err := checkID(id); err != nil {
			return nil, err
		}
		r.mark(uint8(id)).NonInteractable = true
	}
	for _, id := range t.Custom {
		if err := checkID(id); err != nil {
			return nil, err
		}
		r.mark(uint8(id)).Custom = true
	}
	if t.Math != nil {
		if err := checkID(*t.Math); err != nil {
			return nil, err
		}
		r.mark(uint8(*t.Math)).Math = true
		r.mathID = *t.Math
	}
	for _, e := range t.Types {
		if err := checkID(e.ID); err != nil {
			return nil, err
		}
		typ := r.mark(uint8(e.ID))
		typ.NonInteractable = typ.NonInteractable || e.NonInteractable
		typ.Custom = typ.Custom || e.Custom
		if e.Name == "" {
			continue
		}
		if prev, dup := r.byName[e.Name]; dup && prev != uint8(e.ID) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "type name %q used by ids %d and %d", e.Name, prev, e.ID)
		}
		typ.Name = e.Name
		r.byName[e.Name] = uint8(e.ID)
	}
	return r, nil
}

func checkID(id int) error {
	if id < 0 || id > 255 {
		return errors.New(errors.ErrCodeInvalidInput, "type id %d out of range 0..255", id)
	}
	return nil
}

func (r *Registry) mark(id uint8) *Type {
	r.known[id] = true
	r.types[id].ID = id
	return &r.types[id]
}

// NonInteractable reports whether blocks of type id omit their interactive
// fields on the wire.
func (r *Registry) NonInteractable(id uint8) bool { return r.types[id].NonInteractable }

// Custom reports whether type id range-quantizes its metadata vectors.
func (r *Registry) Custom(id uint8) bool { return r.types[id].Custom }

// IsMath reports whether type id carries math block settings.
func (r *Registry) IsMath(id uint8) bool { return r.types[id].Math }

// MathID returns the math type id, if the table defines one.
func (r *Registry) MathID() (uint8, bool) {
	if r.mathID < 0 {
		return 0, false
	}
	return uint8(r.mathID), true
}

// Lookup returns the id registered under name.
func (r *Registry) Lookup(name string) (uint8, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the registered name of id, or "#<id>" for unnamed types.
func (r *Registry) Name(id uint8) string {
	if n := r.types[id].Name; n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// Get returns the entry for id. ok is false for ids the table never mentions;
// such ids behave as plain interactable types.
func (r *Registry) Get(id uint8) (Type, bool) {
	return r.types[id], r.known[id]
}

// Types returns every id the table mentions, ordered by id.
func (r *Registry) Types() []Type {
	var out []Type
	for id := range r.types {
		if r.known[id] {
			out = append(out, r.types[id])
		}
	}
	return out
}

// Fingerprint identifies the table the registry was loaded from. Cached
// artifacts that depend on type flags include it in their keys.
func (r *Registry) Fingerprint() string {
	return hex.EncodeToString(r.sum[:8])
}
