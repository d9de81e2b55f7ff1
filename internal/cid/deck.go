// Package cid reads and writes CANDE Level 3 input decks (.cid). Node,
// element and material records are parsed into a cande.Model; every other
// line is carried through unchanged. A deck remembers its source lines so
// that saving writes untouched records back byte for byte.
package cid

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"candedit/internal/cande"
)

// Deck is a model together with the layout of the file it came from.
type Deck struct {
	Model *cande.Model
	Log   *slog.Logger

	records []record
	eol     string

	// what the records currently hold, for change detection on save
	nodes     map[cande.NodeID]bool
	materials [2]map[cande.MaterialID]bool
	elements  map[cande.ElementID]written
}

type written struct {
	nodes    []cande.NodeID
	material cande.MaterialID
	step     int
}

func (w written) matches(e cande.Element) bool {
	return w.material == e.Material && w.step == e.Step && slices.Equal(w.nodes, e.Nodes)
}

// Option configures a Deck.
type Option func(*Deck)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Deck) {
		if l != nil {
			d.Log = l
		}
	}
}

func newDeck(m *cande.Model, opts []Option) *Deck {
	d := &Deck{
		Model:     m,
		Log:       slog.Default(),
		eol:       "\n",
		nodes:     make(map[cande.NodeID]bool),
		materials: [2]map[cande.MaterialID]bool{make(map[cande.MaterialID]bool), make(map[cande.MaterialID]bool)},
		elements:  make(map[cande.ElementID]written),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// New wraps a model that has no source file. Encoding it writes the node,
// element and material groups in canonical layout.
func New(m *cande.Model, opts ...Option) *Deck {
	return newDeck(m, opts)
}

// Load reads and decodes the deck at path.
func Load(path string, opts ...Option) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	d.Log.Info("deck loaded", slog.String("path", path),
		slog.Int("nodes", d.Model.NodeCount()), slog.Int("elements", d.Model.ElementCount()),
		slog.Int("materials", d.Model.MaterialCount()))
	return d, nil
}

// Save encodes the deck to a temporary file next to path and renames it
// over path. On success the deck treats the saved content as its source.
func (d *Deck) Save(path string) error {
	recs := d.render()
	var buf bytes.Buffer
	if err := d.write(&buf, recs); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if fi, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp.Name(), fi.Mode().Perm())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	d.rebase(recs)
	d.Log.Info("deck saved", slog.String("path", path), slog.Int("lines", len(recs)))
	return nil
}

// rebase records recs as the deck's source.
func (d *Deck) rebase(recs []record) {
	d.records = recs
	clear(d.nodes)
	clear(d.materials[0])
	clear(d.materials[1])
	clear(d.elements)
	for _, r := range recs {
		switch r.kind {
		case recNode:
			d.nodes[cande.NodeID(r.id)] = true
		case recMaterial:
			if mat, ok := d.materialAt(r); ok {
				d.materials[mat.Kind][mat.ID] = true
			}
		case recElement:
			if e, ok := d.Model.Element(cande.ElementID(r.id)); ok {
				d.elements[e.ID] = written{nodes: slices.Clone(e.Nodes), material: e.Material, step: e.Step}
			}
		}
	}
}

func (d *Deck) materialAt(r record) (cande.Material, bool) {
	return d.Model.Material(r.table, cande.MaterialID(r.id))
}
