package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"candedit/internal/cande"
	"candedit/internal/script"
	"candedit/internal/selection"
	"candedit/internal/synth"
)

// runCommand executes one prompt line. Model errors leave the deck as it
// was and come back for the status line.
func (m *Model) runCommand(line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	switch f[0] {
	case "w", "write":
		path := ""
		if len(f) > 1 {
			path = f[1]
		}
		return m.save(path)
	case "e", "open":
		if len(f) != 2 {
			return fmt.Errorf("usage: open PATH")
		}
		m.loadPath(f[1])
		return nil
	case "all":
		return m.withDeck(func(mesh *cande.Model) error {
			if len(m.visibleKinds()) == 0 {
				return fmt.Errorf("all layers hidden")
			}
			n := m.sel.Filter(mesh, selection.ModeReplace, cande.MatchKinds(m.visibleKinds()...))
			m.status = fmt.Sprintf("selected %d elements", n)
			return nil
		})
	case "none":
		m.sel.Clear()
		m.status = "selection cleared"
		return nil
	}

	return m.withDeck(func(mesh *cande.Model) error {
		switch f[0] {
		case "material", "step":
			v, err := intArg(f, 1)
			if err != nil {
				return err
			}
			opt := cande.SetStep(v)
			if f[0] == "material" {
				opt = cande.SetMaterial(cande.MaterialID(v))
			}
			ids := m.sel.IDs()
			if len(ids) == 0 {
				return fmt.Errorf("nothing selected")
			}
			n, err := mesh.Assign(ids, opt)
			if err != nil {
				return err
			}
			if n > 0 {
				m.changed()
			}
			m.status = fmt.Sprintf("%s %d set on %d elements", f[0], v, n)
		case "friction":
			if len(f) < 2 {
				return fmt.Errorf("usage: friction F")
			}
			fr, err := strconv.ParseFloat(f[1], 64)
			if err != nil {
				return fmt.Errorf("friction: %q is not a number", f[1])
			}
			ids, err := synth.New(m.log).CreateInterfaces(mesh, m.sel.IDs(), fr)
			if err != nil {
				return err
			}
			m.friction = fr
			if len(ids) > 0 {
				m.changed()
			}
			m.status = fmt.Sprintf("created %d interfaces", len(ids))
		case "select", "s":
			return m.selectCommand(mesh, f[1:])
		case "run", "source":
			if len(f) != 2 {
				return fmt.Errorf("usage: run SCRIPT")
			}
			return m.runScript(mesh, f[1])
		default:
			return fmt.Errorf("unknown command %q", f[0])
		}
		return nil
	})
}

func (m *Model) withDeck(fn func(*cande.Model) error) error {
	if m.deck == nil {
		return fmt.Errorf("no deck open")
	}
	return fn(m.deck.Model)
}

// changed marks the deck modified after an edit.
func (m *Model) changed() {
	m.dirty = true
	m.quitArmed = false
	m.sel.Prune(m.deck.Model)
	if m.showTable {
		m.refreshTable()
	}
}

func (m *Model) selectCommand(mesh *cande.Model, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: select material N | step N | kind 1D|2D|Interface")
	}
	var filter cande.Filter
	switch args[0] {
	case "material", "mat":
		v, err := intArg(args, 1)
		if err != nil {
			return err
		}
		filter = cande.MatchMaterial(cande.MaterialID(v))
	case "step":
		v, err := intArg(args, 1)
		if err != nil {
			return err
		}
		filter = cande.MatchStep(v)
	case "kind":
		var kinds []cande.Kind
		for _, a := range args[1:] {
			k, err := cande.ParseKind(a)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
		filter = cande.MatchKinds(kinds...)
	default:
		return fmt.Errorf("cannot select by %q", args[0])
	}
	n := m.sel.Filter(mesh, selection.ModeReplace, filter)
	m.status = fmt.Sprintf("selected %d elements", n)
	return nil
}

// runScript runs a script file against the open deck and adopts its result.
func (m *Model) runScript(mesh *cande.Model, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	r := &script.Runner{Log: m.log}
	res, err := r.Run(context.Background(), mesh, string(src))
	if err != nil {
		return err
	}
	m.deck.Model = res.Model
	m.sel.Replace(res.Selected...)
	m.changed()
	m.log.Info("script applied", slog.String("path", path), slog.Int("created", len(res.Created)))
	m.status = fmt.Sprintf("script ok => %s (%d selected, %d interfaces created)", res.Value, len(res.Selected), len(res.Created))
	return nil
}

func intArg(f []string, i int) (int, error) {
	if len(f) <= i {
		return 0, fmt.Errorf("%s: missing number", f[0])
	}
	v, err := strconv.Atoi(f[i])
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", f[0], f[i])
	}
	return v, nil
}
