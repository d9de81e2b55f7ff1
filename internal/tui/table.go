package tui

import (
	"fmt"
	"strings"

	table "github.com/charmbracelet/bubbles/table"

	"candedit/internal/cande"
)

func interfaceColumns() []table.Column {
	return []table.Column{
		{Title: " ", Width: 1},
		{Title: "ID", Width: 6},
		{Title: "Mat", Width: 4},
		{Title: "Step", Width: 4},
		{Title: "Nodes", Width: 22},
		{Title: "Friction", Width: 8},
		{Title: "Angle", Width: 8},
		{Title: "Beam", Width: 6},
		{Title: "Soil", Width: 6},
	}
}

// interfaceRows lists every interface element; the first cell marks the
// selected ones.
func (m *Model) interfaceRows() []table.Row {
	if m.deck == nil {
		return nil
	}
	mesh := m.deck.Model
	var rows []table.Row
	for _, id := range mesh.ElementsBy(cande.MatchKinds(cande.KindInterface)) {
		e, _ := mesh.Element(id)
		in, _ := e.Interface()
		nodes := make([]string, len(e.Nodes))
		for i, n := range e.Nodes {
			nodes[i] = fmt.Sprint(n)
		}
		mark := ""
		if m.sel.Contains(id) {
			mark = "*"
		}
		bridge := func(id cande.ElementID) string {
			if id == 0 {
				return "-"
			}
			return fmt.Sprint(id)
		}
		rows = append(rows, table.Row{
			mark,
			fmt.Sprint(e.ID),
			fmt.Sprint(e.Material),
			fmt.Sprint(e.Step),
			strings.Join(nodes, " "),
			fmt.Sprintf("%.3f", in.Friction),
			fmt.Sprintf("%.3f", in.Angle),
			bridge(in.Beam),
			bridge(in.Soil),
		})
	}
	return rows
}

// refreshTable rebuilds the table rows, keeping the cursor where it can.
func (m *Model) refreshTable() {
	rows := m.interfaceRows()
	cur := m.tbl.Cursor()
	// clear rows first so the cursor never points past the new set
	m.tbl.SetRows(nil)
	m.tbl.SetRows(rows)
	if cur < len(rows) {
		m.tbl.SetCursor(cur)
	}
	if len(rows) == 0 {
		m.status = "no interface elements"
	}
}

// tableElement returns the element under the table cursor.
func (m *Model) tableElement() (cande.ElementID, bool) {
	row := m.tbl.SelectedRow()
	if len(row) < 2 {
		return 0, false
	}
	var id int
	if _, err := fmt.Sscan(row[1], &id); err != nil {
		return 0, false
	}
	return cande.ElementID(id), true
}
