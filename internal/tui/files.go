package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"candedit/internal/cid"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".cid") {
			continue
		}
		desc := ""
		if fi, err := e.Info(); err == nil {
			desc = fmt.Sprintf("%d bytes", fi.Size())
		}
		items = append(items, fileItem{title: name, desc: desc, path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no .cid decks in current directory"
	}
}

// loadPath opens a deck and resets the view onto it. On error the current
// deck stays open.
func (m *Model) loadPath(p string) {
	d, err := cid.Load(p, cid.WithLogger(m.log))
	if err != nil {
		m.status = "load error: " + err.Error()
		m.log.Warn("load failed", slog.String("path", p), slog.Any("err", err))
		return
	}
	m.deck = d
	m.selPath = p
	m.bbox = d.Model.Bounds().Pad(0.05)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	m.sel.Clear()
	m.dirty = false
	m.quitArmed = false
	m.hoverElem = elementHit{}
	m.status = "loaded: " + filepath.Base(p) +
		fmt.Sprintf("  nodes=%d elements=%d materials=%d", d.Model.NodeCount(), d.Model.ElementCount(), d.Model.MaterialCount())
	if m.showTable {
		m.refreshTable()
	}
}

// save writes the deck to path, or to the path it was opened from.
func (m *Model) save(path string) error {
	if m.deck == nil {
		return fmt.Errorf("no deck open")
	}
	if path == "" {
		path = m.selPath
	}
	if err := m.deck.Save(path); err != nil {
		return err
	}
	m.selPath = path
	m.dirty = false
	m.quitArmed = false
	m.status = "wrote " + filepath.Base(path)
	m.refreshDir()
	return nil
}
