package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"candedit/internal/cande"
	"candedit/internal/geom"
	"candedit/internal/selection"
)

const sidebarWidth = 28

type elementHit struct {
	id cande.ElementID
	ok bool
}

// mapArea is where the mesh is drawn on screen, in cells.
type mapArea struct {
	x, y, w, h int
}

func (a mapArea) contains(cx, cy int) bool {
	return cx >= a.x && cx < a.x+a.w && cy >= a.y && cy < a.y+a.h
}

// layout must match View.
func (m Model) layout() (area mapArea, contentW, contentH int) {
	headerHeight := 1
	footerHeight := 2
	contentH = max(4, m.height-headerHeight-footerHeight)
	contentW = max(10, m.width)
	sw := 0
	if m.showSidebar {
		sw = sidebarWidth + 1
	}
	area = mapArea{x: sw, y: headerHeight, w: max(10, contentW-sw-1), h: contentH}
	return area, contentW, contentH
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		_, _, ch := m.layout()
		m.l.SetSize(sidebarWidth-2, ch-2)
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.prompting {
			return m.updatePrompt(msg)
		}
		if m.showTable {
			switch msg.String() {
			case "esc", "t":
				m.showTable = false
				return m, nil
			case "enter", " ":
				if id, ok := m.tableElement(); ok {
					m.sel.Toggle(id)
					m.refreshTable()
					m.status = fmt.Sprintf("selection: %d elements", m.sel.Len())
				}
				return m, nil
			case "ctrl+c", "q", ":":
			default:
				var cmd tea.Cmd
				m.tbl, cmd = m.tbl.Update(msg)
				return m, cmd
			}
		}
		return m.updateKey(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		m.input.Blur()
		return m, nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.prompting = false
		m.input.Blur()
		switch line {
		case "q", "quit":
			if m.dirty {
				m.status = "unsaved changes: :wq to save, :q! to discard"
				return m, nil
			}
			return m, tea.Quit
		case "q!":
			return m, tea.Quit
		case "wq":
			if err := m.save(""); err != nil {
				m.status = "error: " + err.Error()
				return m, nil
			}
			return m, tea.Quit
		}
		if err := m.runCommand(line); err != nil {
			m.status = "error: " + err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.quitArmed = false
	}
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			m.status = "unsaved changes: w to save, q again to quit"
			return m, nil
		}
		return m, tea.Quit
	case ":":
		m.prompting = true
		m.infoPopup = ""
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "1":
		m.showBeams = !m.showBeams
		m.status = fmt.Sprintf("1D: %v", m.showBeams)
	case "2":
		m.showSoil = !m.showSoil
		m.status = fmt.Sprintf("2D: %v", m.showSoil)
	case "3":
		m.showIfaces = !m.showIfaces
		m.status = fmt.Sprintf("interfaces: %v", m.showIfaces)
	case "+", "=":
		if m.zoom < 256 {
			m.zoom *= 1.2
			m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
		}
	case "-", "_":
		if m.zoom > 0.05 {
			m.zoom /= 1.2
			m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
		}
	case "0":
		m.zoom = 1.0
		m.offsetX, m.offsetY = 0, 0
		m.status = "view reset"
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
			_, _, ch := m.layout()
			m.l.SetSize(sidebarWidth-2, ch-2)
		}
		return m, nil
	case "h":
		m.helpVisible = !m.helpVisible
	case "t":
		m.showTable = !m.showTable
		if m.showTable {
			m.refreshTable()
		}
	case "i":
		if m.infoPopup != "" {
			m.infoPopup = ""
		} else {
			m.infoPopup = m.info()
		}
	case "a":
		if err := m.runCommand("all"); err != nil {
			m.status = "error: " + err.Error()
		}
	case "esc":
		m.infoPopup = ""
		m.sel.Clear()
		m.status = "selection cleared"
	case "w":
		if err := m.save(""); err != nil {
			m.status = "error: " + err.Error()
		}
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.loadPath(it.path)
			}
		}
		return m, nil
	case "up":
		m.offsetY += 1
	case "down":
		m.offsetY -= 1
	case "left":
		m.offsetX += 2
	case "right":
		m.offsetX -= 2
	}
	// Sidebar navigation keys fall through to the list
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// pickMode maps mouse modifiers to a selection mode: shift adds, ctrl
// toggles, alt removes.
func pickMode(msg tea.MouseMsg) selection.Mode {
	switch {
	case msg.Shift:
		return selection.ModeAdd
	case msg.Ctrl:
		return selection.ModeToggle
	case msg.Alt:
		return selection.ModeRemove
	}
	return selection.ModeReplace
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	area, _, _ := m.layout()
	cx, cy := msg.X-area.x, msg.Y-area.y
	inside := area.contains(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		if m.zoom < 256 {
			m.zoom *= 1.2
		}
		return
	case msg.Button == tea.MouseButtonWheelDown && inside:
		if m.zoom > 0.05 {
			m.zoom /= 1.2
		}
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside && !m.showTable {
			m.dragging = true
			m.dragX0, m.dragY0 = cx, cy
			m.dragX1, m.dragY1 = cx, cy
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.dragX1 = min(max(cx, 0), area.w-1)
			m.dragY1 = min(max(cy, 0), area.h-1)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.pick(pickMode(msg), area)
		}
	}
	m.hover(cx, cy, inside, area)
}

// pick applies a click or a finished drag to the selection.
func (m *Model) pick(mode selection.Mode, area mapArea) {
	if m.deck == nil {
		return
	}
	mesh := m.deck.Model
	kinds := m.visibleKinds()
	if len(kinds) == 0 {
		m.status = "all layers hidden"
		return
	}
	if m.dragX0 == m.dragX1 && m.dragY0 == m.dragY1 {
		pt, ok := m.cellToWorld(m.dragX0, m.dragY0, area.w, area.h)
		if !ok {
			return
		}
		id, hit := selection.HitPoint(mesh, pt, m.cellTolerance(area.w, area.h), kinds...)
		switch {
		case hit:
			m.sel.Apply(mode, []cande.ElementID{id})
		case mode == selection.ModeReplace:
			m.sel.Clear()
		}
		m.status = m.selectionSummary()
	} else {
		a, ok1 := m.cellToWorld(m.dragX0, m.dragY0, area.w, area.h)
		b, ok2 := m.cellToWorld(m.dragX1, m.dragY1, area.w, area.h)
		if !ok1 || !ok2 {
			return
		}
		policy := selection.PolicyForDrag(a.X, b.X)
		ids := selection.HitBox(mesh, geom.BoxFromCorners(a, b), policy, kinds...)
		m.sel.Apply(mode, ids)
		m.status = fmt.Sprintf("%s box: %d elements", policy, len(ids))
	}
	if m.showTable {
		m.refreshTable()
	}
}

func (m *Model) hover(cx, cy int, inside bool, area mapArea) {
	m.hovering = false
	m.hoverElem = elementHit{}
	if !inside || m.deck == nil {
		return
	}
	pt, ok := m.cellToWorld(cx, cy, area.w, area.h)
	if !ok {
		return
	}
	m.hovering = true
	m.hoverX, m.hoverY = pt.X, pt.Y
	if kinds := m.visibleKinds(); len(kinds) > 0 {
		id, hit := selection.HitPoint(m.deck.Model, pt, m.cellTolerance(area.w, area.h), kinds...)
		m.hoverElem = elementHit{id: id, ok: hit}
	}
}

func (m Model) selectionSummary() string {
	if m.deck == nil || m.sel.Len() == 0 {
		return "nothing selected"
	}
	c := m.sel.Count(m.deck.Model)
	return fmt.Sprintf("selected %d: 1D=%d 2D=%d Interface=%d",
		m.sel.Len(), c[cande.KindBeam], c[cande.KindSoil], c[cande.KindInterface])
}

// info builds the popup text.
func (m Model) info() string {
	if m.deck == nil {
		return "no deck open"
	}
	mesh := m.deck.Model
	name := filepath.Base(m.selPath)
	b := mesh.Bounds()
	modified := ""
	if m.dirty {
		modified = " (modified)"
	}
	lines := []string{
		fmt.Sprintf("deck: %s%s", name, modified),
		fmt.Sprintf("nodes: %d  elements: %d", mesh.NodeCount(), mesh.ElementCount()),
		fmt.Sprintf("1D: %d  2D: %d  interfaces: %d",
			len(mesh.ElementsBy(cande.MatchKinds(cande.KindBeam))),
			len(mesh.ElementsBy(cande.MatchKinds(cande.KindSoil))),
			len(mesh.ElementsBy(cande.MatchKinds(cande.KindInterface)))),
		fmt.Sprintf("max step: %d", mesh.MaxStep()),
		fmt.Sprintf("extents: x %.3f..%.3f  y %.3f..%.3f", b.MinX, b.MaxX, b.MinY, b.MaxY),
		fmt.Sprintf("friction: %.3f", m.friction),
		m.selectionSummary(),
		"",
		"materials:",
	}
	for _, mat := range mesh.Materials() {
		if mat.Kind == cande.MaterialInterface {
			lines = append(lines, fmt.Sprintf("  %s I%-3d %s  f=%.3f a=%.1f", swatch(int(mat.ID)), mat.ID, mat.Name, mat.Friction, mat.Angle))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %-4d %s", swatch(int(mat.ID)), mat.ID, mat.Name))
	}
	return strings.Join(lines, "\n")
}
