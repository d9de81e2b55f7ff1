package cid

import (
	"fmt"
	"strconv"
	"strings"

	"candedit/internal/cande"
)

type recKind int

const (
	recOpaque   recKind = iota
	recHeader           // C-1
	recControl          // C-2
	recNode             // C-3
	recElement          // C-4
	recLoadStep         // C-5
	recMaterial         // D-1
	recProperty         // D-2 and later lines of a material
)

// record is one line of a deck. text excludes the line terminator.
type record struct {
	text  string
	eol   string
	kind  recKind
	id    int
	table cande.MaterialKind // material records only
	last  bool               // flag column held 'L' when read
}

const (
	nodePrefix     = "                   C-3.L3!!"
	elementPrefix  = "                   C-4.L3!!"
	materialPrefix = "                      D-1!!"
	ifacePrefix    = "            D-2.Interface!!"
)

// Element classes in the last C-4 field.
const (
	classNormal    = 0
	classInterface = 1
)

// marker splits a line at "!!" and returns the trimmed record tag and the
// text after the marker.
func marker(line string) (tag, rest string, ok bool) {
	i := strings.Index(line, "!!")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), line[i+2:], true
}

// flagged splits the flag column off a record body.
func flagged(rest string) (last bool, body string) {
	if rest == "" {
		return false, ""
	}
	return rest[0] == 'L', rest[1:]
}

// withFlag rewrites the flag column of a flagged record.
func withFlag(text string, last bool) string {
	i := strings.Index(text, "!!")
	if i < 0 || i+2 >= len(text) {
		return text
	}
	f := " "
	if last {
		f = "L"
	}
	return text[:i+2] + f + text[i+3:]
}

func flagChar(last bool) string {
	if last {
		return "L"
	}
	return " "
}

// fixed cuts s into fields of the given widths, trimming blanks. Missing
// trailing fields come back empty.
func fixed(s string, widths ...int) []string {
	out := make([]string, len(widths))
	pos := 0
	for i, w := range widths {
		if pos >= len(s) {
			break
		}
		end := min(pos+w, len(s))
		out[i] = strings.TrimSpace(s[pos:end])
		pos = end
	}
	return out
}

// ints parses every field as a base-10 integer.
func ints(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %q is not an integer", i+1, f)
		}
		out[i] = v
	}
	return out, nil
}

func floats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %q is not a number", i+1, f)
		}
		out[i] = v
	}
	return out, nil
}
