// Package tui is the terminal editor: a braille mesh view with mouse
// selection, a command prompt, a deck browser and an interface table.
package tui

import (
	"log/slog"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"candedit/internal/cid"
	"candedit/internal/geom"
	"candedit/internal/selection"
)

const defaultFriction = 0.3

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string
	log    *slog.Logger

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	// Data
	deck     *cid.Deck
	bbox     geom.BBox
	sel      *selection.Set
	dirty    bool
	friction float64 // last value given to the friction command

	// command prompt
	prompting bool
	input     textinput.Model

	// layer visibility
	showBeams  bool
	showSoil   bool
	showIfaces bool

	// info popup
	infoPopup string

	// hover state
	hovering  bool
	hoverX    float64
	hoverY    float64
	hoverElem elementHit

	// drag state, in screen cells
	dragging bool
	dragX0   int
	dragY0   int
	dragX1   int
	dragY1   int

	// interface table
	showTable bool
	tbl       table.Model

	quitArmed bool
}

// Option configures a new Model.
type Option func(*Model)

// WithLogger sets where the editor logs; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithDir sets the directory the file sidebar lists.
func WithDir(dir string) Option {
	return func(m *Model) { m.cwd = dir }
}

func New(opts ...Option) Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		status:      "candedit ready",
		log:         slog.New(slog.DiscardHandler),
		bbox:        geom.EmptyBBox(),
		sel:         selection.New(),
		friction:    defaultFriction,
		showBeams:   true,
		showSoil:    true,
		showIfaces:  true,
	}
	m.cwd, _ = os.Getwd()
	for _, o := range opts {
		o(&m)
	}
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Decks"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// prompt setup
	m.input = textinput.New()
	m.input.Prompt = ":"
	m.input.Placeholder = "material N | step N | friction F | select ... | write [path]"
	m.input.CharLimit = 256
	// interface table setup
	m.tbl = table.New(table.WithColumns(interfaceColumns()), table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath opens a deck at launch.
func NewWithPath(path string, opts ...Option) Model {
	m := New(opts...)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }
