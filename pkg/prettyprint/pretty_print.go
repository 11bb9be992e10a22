package prettyprint

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Loosely based on http://homepages.inf.ed.ac.uk/wadler/papers/prettier/prettier.pdf,
// without the layout search: everything renders on the lines it's given.

type Doc interface {
	// String returns the rendered representation.
	String() string
	// Debug returns a representation of the doc tree.
	Debug() string
}

// Text

type text struct {
	str string
}

var _ Doc = &text{}

func Text(s string) Doc {
	return &text{
		str: s,
	}
}

func Textf(format string, args ...interface{}) Doc {
	return Text(fmt.Sprintf(format, args...))
}

func (s *text) String() string {
	return s.str
}

func (s *text) Debug() string {
	return fmt.Sprintf("Text(%#v)", s.str)
}

// Nest

type nest struct {
	doc    Doc
	nestBy int
}

// Nest indents every line of d by `by` spaces.
func Nest(by int, d Doc) Doc {
	return &nest{
		doc:    d,
		nestBy: by,
	}
}

func (n *nest) String() string {
	indent := strings.Repeat(" ", n.nestBy)
	lines := strings.Split(n.doc.String(), "\n")
	buf := bytes.NewBufferString("")
	for idx, line := range lines {
		if idx > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(indent)
		buf.WriteString(line)
	}
	return buf.String()
}

func (n *nest) Debug() string {
	return fmt.Sprintf("Nest(%d, %s)", n.nestBy, n.doc.Debug())
}

// Empty

type empty struct{}

var Empty Doc = &empty{}

func (e *empty) String() string {
	return ""
}

func (empty) Debug() string {
	return "Empty"
}

// Seq

type concat struct {
	docs []Doc
}

func Seq(docs ...Doc) Doc {
	return &concat{
		docs: docs,
	}
}

func (c *concat) String() string {
	buf := bytes.NewBufferString("")
	for _, doc := range c.docs {
		buf.WriteString(doc.String())
	}
	return buf.String()
}

func (c *concat) Debug() string {
	docStrs := make([]string, len(c.docs))
	for idx := range c.docs {
		docStrs[idx] = c.docs[idx].Debug()
	}
	return fmt.Sprintf("Seq(%s)", strings.Join(docStrs, ", "))
}

// Newline

type newline struct{}

var Newline Doc = &newline{}

func (newline) String() string {
	return "\n"
}

func (newline) Debug() string {
	return "Newline"
}

// Combinators

func Join(docs []Doc, sep Doc) Doc {
	var out []Doc
	for idx, doc := range docs {
		if idx > 0 {
			out = append(out, sep)
		}
		out = append(out, doc)
	}
	return Seq(out...)
}

var Comma = Text(",")

var CommaSpace = Text(", ")

// Call renders `name(arg1,arg2)`.
func Call(name string, args []Doc) Doc {
	return Seq(Text(name), Text("("), Join(args, Comma), Text(")"))
}

// List renders `[a, b, c]`.
func List(docs []Doc) Doc {
	return Seq(Text("["), Join(docs, CommaSpace), Text("]"))
}

// Table renders a header row and body rows with columns padded to equal
// width, separated by " | ".
func Table(header []string, rows [][]string) Doc {
	widths := make([]int, len(header))
	for idx, col := range header {
		widths[idx] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for idx, cell := range row {
			if idx < len(widths) && utf8.RuneCountInString(cell) > widths[idx] {
				widths[idx] = utf8.RuneCountInString(cell)
			}
		}
	}

	renderRow := func(cells []string) Doc {
		padded := make([]Doc, len(cells))
		for idx, cell := range cells {
			width := 0
			if idx < len(widths) {
				width = widths[idx]
			}
			padded[idx] = Text(pad(cell, width))
		}
		return Text(strings.TrimRight(Join(padded, Text(" | ")).String(), " "))
	}

	lines := []Doc{renderRow(header)}
	rules := make([]string, len(widths))
	for idx, width := range widths {
		rules[idx] = strings.Repeat("-", width)
	}
	lines = append(lines, Text(strings.Join(rules, "-+-")))
	for _, row := range rows {
		lines = append(lines, renderRow(row))
	}
	return Join(lines, Newline)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
