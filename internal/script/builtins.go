package script

import (
	"fmt"
	"log/slog"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"candedit/internal/cande"
	"candedit/internal/selection"
	"candedit/internal/synth"
)

// session is the state builtins share during one run.
type session struct {
	m       *cande.Model
	sel     *selection.Set
	synth   *synth.Synthesizer
	log     *slog.Logger
	created []cande.ElementID
	err     error // last builtin error
}

func (s *session) result(v zygo.Sexp) *Result {
	return &Result{
		Model:    s.m,
		Selected: s.sel.IDs(),
		Created:  s.created,
		Value:    v.SexpString(nil),
	}
}

type builtin func(args []zygo.Sexp) (zygo.Sexp, error)

// register installs the editing builtins. Select builtins add to the
// selection and return its size; clear_selection empties it.
func (s *session) register(env *zygo.Zlisp) {
	fns := map[string]builtin{
		"select_ids":        s.selectIDs,
		"select_material":   s.selectBy(func(v int) cande.Filter { return cande.MatchMaterial(cande.MaterialID(v)) }),
		"select_step":       s.selectBy(cande.MatchStep),
		"select_kind":       s.selectKind,
		"select_all":        func([]zygo.Sexp) (zygo.Sexp, error) { return s.selectFiltered() },
		"clear_selection":   s.clearSelection,
		"selected_count":    func([]zygo.Sexp) (zygo.Sexp, error) { return count(s.sel.Len()), nil },
		"assign_material":   s.assign(func(v int) cande.AssignOption { return cande.SetMaterial(cande.MaterialID(v)) }),
		"assign_step":       s.assign(cande.SetStep),
		"create_interfaces": s.createInterfaces,
		"element_count":     s.elementCount,
	}
	for name, fn := range fns {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := fn(args)
			if err != nil {
				s.err = err
				return zygo.SexpNull, fmt.Errorf("%s: %w", strings.ReplaceAll(name, "_", "-"), err)
			}
			return v, nil
		})
	}
}

func count(n int) zygo.Sexp { return &zygo.SexpInt{Val: int64(n)} }

func (s *session) selectFiltered(filters ...cande.Filter) (zygo.Sexp, error) {
	s.sel.Filter(s.m, selection.ModeAdd, filters...)
	return count(s.sel.Len()), nil
}

func (s *session) selectIDs(args []zygo.Sexp) (zygo.Sexp, error) {
	vals, err := intArgs(args)
	if err != nil {
		return nil, err
	}
	ids := make([]cande.ElementID, 0, len(vals))
	for _, v := range vals {
		id := cande.ElementID(v)
		if _, ok := s.m.Element(id); !ok {
			return nil, &cande.UnknownElementError{ID: id}
		}
		ids = append(ids, id)
	}
	s.sel.Add(ids...)
	return count(s.sel.Len()), nil
}

func (s *session) selectBy(filter func(int) cande.Filter) builtin {
	return func(args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := oneInt(args)
		if err != nil {
			return nil, err
		}
		return s.selectFiltered(filter(v))
	}
}

func (s *session) selectKind(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one kind")
	}
	kinds := make([]cande.Kind, 0, len(args))
	for _, a := range args {
		name, err := toName(a)
		if err != nil {
			return nil, err
		}
		k, err := cande.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return s.selectFiltered(cande.MatchKinds(kinds...))
}

func (s *session) clearSelection(args []zygo.Sexp) (zygo.Sexp, error) {
	s.sel.Clear()
	return count(0), nil
}

func (s *session) assign(opt func(int) cande.AssignOption) builtin {
	return func(args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := oneInt(args)
		if err != nil {
			return nil, err
		}
		n, err := s.m.Assign(s.sel.IDs(), opt(v))
		if err != nil {
			return nil, err
		}
		return count(n), nil
	}
}

func (s *session) createInterfaces(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected a friction value, got %d arguments", len(args))
	}
	f, err := toFloat64(args[0])
	if err != nil {
		return nil, err
	}
	ids, err := s.synth.CreateInterfaces(s.m, s.sel.IDs(), f)
	if err != nil {
		return nil, err
	}
	s.created = append(s.created, ids...)
	return count(len(ids)), nil
}

func (s *session) elementCount(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 0 {
		return count(s.m.ElementCount()), nil
	}
	name, err := toName(args[0])
	if err != nil {
		return nil, err
	}
	k, err := cande.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return count(len(s.m.ElementsBy(cande.MatchKinds(k)))), nil
}

// intArgs flattens integer arguments and lists or arrays of them.
func intArgs(args []zygo.Sexp) ([]int, error) {
	var out []int
	for _, a := range args {
		switch v := a.(type) {
		case *zygo.SexpInt:
			out = append(out, int(v.Val))
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := toSlice(v)
			if err != nil {
				return nil, err
			}
			sub, err := intArgs(items)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		default:
			return nil, fmt.Errorf("expected integer, got %s", a.SexpString(nil))
		}
	}
	return out, nil
}

func oneInt(args []zygo.Sexp) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one integer, got %d arguments", len(args))
	}
	v, ok := args[0].(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %s", args[0].SexpString(nil))
	}
	return int(v.Val), nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

// toName accepts a string or a :keyword.
func toName(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected string or keyword, got %s", s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	}
	return nil, fmt.Errorf("expected list or array, got %s", s.SexpString(nil))
}
