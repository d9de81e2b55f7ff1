package script

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
	"time"

	"candedit/internal/cande"
	"candedit/internal/cande/candetest"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(select-material 2)", "(select_material 2)"},
		{"(select-all) ; everything", "(select_all) // everything"},
		{";; header\n(clear-selection)", "// header\n(clear_selection)"},
		{`(select-kind "1D")`, `(select_kind "1D")`},
		{`(select-kind "a-b")`, `(select_kind "a-b")`},
		{"(select-kind :interface)", `(select_kind "__kw_interface")`},
		{"(- 3 1)", "(- 3 1)"},
		{"(def x-1 2)", "(def x-1 2)"},
		{"(def a 1) (- a 1)", "(def a 1) (- a 1)"},
	}
	for _, tt := range tests {
		if got := preprocess(tt.in); got != tt.want {
			t.Errorf("preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func run(t *testing.T, m *cande.Model, src string) (*Result, error) {
	t.Helper()
	r := &Runner{Timeout: 10 * time.Second}
	return r.Run(context.Background(), m, src)
}

func TestRunCreatesInterfaces(t *testing.T) {
	m := candetest.Grid()
	res, err := run(t, m, `
; pipe beams get interfaces
(select-kind "1D")
(create-interfaces 0.3)
(selected-count)
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Created) != 8 {
		t.Errorf("created %d interfaces, want 8", len(res.Created))
	}
	if res.Model.ElementCount() != 14 {
		t.Errorf("result has %d elements, want 14", res.Model.ElementCount())
	}
	if m.ElementCount() != 6 {
		t.Errorf("input model changed: %d elements", m.ElementCount())
	}
	if res.Value != "2" {
		t.Errorf("Value = %q, want 2", res.Value)
	}
	if !slices.Equal(res.Selected, []cande.ElementID{5, 6}) {
		t.Errorf("Selected = %v", res.Selected)
	}
}

func TestRunAssign(t *testing.T) {
	m := candetest.Grid()
	res, err := run(t, m, `
(select-material 1)
(select-ids 5 [6])
(assign-step 7)
(clear-selection)
(select-kind :soil)
(assign-material 3)
(element-count "2D")
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []cande.ElementID{1, 2, 5, 6} {
		if e, _ := res.Model.Element(id); e.Step != 7 {
			t.Errorf("element %d step = %d, want 7", id, e.Step)
		}
	}
	for _, id := range []cande.ElementID{1, 2, 3, 4} {
		if e, _ := res.Model.Element(id); e.Material != 3 {
			t.Errorf("element %d material = %d, want 3", id, e.Material)
		}
	}
	if res.Value != "4" {
		t.Errorf("Value = %q, want 4", res.Value)
	}
	if e, _ := m.Element(1); e.Step != 1 || e.Material != 1 {
		t.Errorf("input model changed: %+v", e)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(error) bool
	}{
		{"unknown material", "(select-ids 1)\n(assign-material 99)", func(err error) bool {
			var ref *cande.InvalidReferenceError
			return errors.As(err, &ref)
		}},
		{"unknown element", "(select-ids 77)", func(err error) bool {
			var unk *cande.UnknownElementError
			return errors.As(err, &unk) && unk.ID == 77
		}},
		{"bad friction", "(select-all)\n(create-interfaces 3)", func(err error) bool {
			var v *cande.ValidationError
			return errors.As(err, &v)
		}},
		{"unknown kind", `(select-kind "3D")`, func(err error) bool {
			var v *cande.ValidationError
			return errors.As(err, &v)
		}},
		{"unknown builtin", "(no-such-thing 1)", func(err error) bool {
			var se *Error
			return errors.As(err, &se) && se.Err == nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := candetest.Grid()
			res, err := run(t, m, tt.src)
			if err == nil {
				t.Fatalf("expected error, got result %+v", res)
			}
			var se *Error
			if !errors.As(err, &se) {
				t.Errorf("expected *Error, got %T: %v", err, err)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if res != nil {
				t.Errorf("failed run returned a result")
			}
			if m.ElementCount() != 6 {
				t.Errorf("input model changed")
			}
		})
	}
}

func TestRunEmpty(t *testing.T) {
	m := candetest.Grid()
	res, err := run(t, m, "  \n ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model == m {
		t.Errorf("result should be a copy")
	}
	if res.Model.ElementCount() != 6 || len(res.Selected) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestWaitTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := wait(ctx, make(chan runResult))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if _, err := wait(ctx, make(chan runResult)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStartCopiesModelFirst(t *testing.T) {
	m := candetest.Grid()
	ch := start(m, "(element-count)", slog.New(slog.DiscardHandler))
	if _, err := m.AddNode(0, 5, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddElement(cande.Element{Nodes: []cande.NodeID{1, 2}, Material: 3, Step: 1, Data: cande.Beam{}}); err != nil {
		t.Fatal(err)
	}
	rr := <-ch
	if rr.err != nil {
		t.Fatalf("unexpected error: %v", rr.err)
	}
	if rr.res.Value != "6" || rr.res.Model.NodeCount() != 9 {
		t.Errorf("script saw value %s and %d nodes, want the model as it was at start", rr.res.Value, rr.res.Model.NodeCount())
	}
}

func TestErrorMessage(t *testing.T) {
	s := &session{err: cande.Validationf("boom")}
	err := s.fail(errors.New("Error on line 3: assign-step: boom"))
	var se *Error
	if !errors.As(err, &se) || se.Line != 3 || se.Msg != "assign-step: boom" {
		t.Fatalf("fail() = %#v", err)
	}
	if se.Error() != "script line 3: assign-step: boom" {
		t.Errorf("Error() = %q", se.Error())
	}
	var v *cande.ValidationError
	if !errors.As(err, &v) {
		t.Errorf("model error not wrapped")
	}
}
