package parse

import (
	"bufio"
	"io"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
	"github.com/pkg/errors"
	"github.com/vilterp/logicdb/pkg/lang"
)

var (
	kbLexer = lexer.Must(
		lexer.Regexp(`(\s+)` +
			`|(?P<Name>[A-Z]+)` +
			`|(?P<Const>[a-z]+)` +
			`|(?P<Arrow><-)` +
			`|(?P<Punct>[?(),;])`,
		),
	)
	lineParser = participle.MustBuild(&Line{}, kbLexer)
)

// Line is either a fact (or question) `NAME(t,...)` or a rule
// `NAME(t,...) <- NAME(t,...); ...`.
type Line struct {
	Head *Atom   `@@`
	Body []*Atom `[ "<-" @@ { ";" @@ } ]`
}

type Atom struct {
	Name  string  `@Name`
	Terms []*Term `"(" @@ { "," @@ } ")"`
}

type Term struct {
	Wildcard bool   `  @"?"`
	Constant string `| @Const`
}

func (l *Line) IsRule() bool {
	return len(l.Body) > 0
}

func (a *Atom) toPredicate() lang.Predicate {
	terms := make([]lang.Term, len(a.Terms))
	for idx, term := range a.Terms {
		if term.Wildcard {
			terms[idx] = lang.Wildcard
			continue
		}
		terms[idx] = lang.Constant(term.Constant)
	}
	return lang.NewPredicate(a.Name, terms)
}

// ParseLine parses a fact, rule, or question into its syntax tree.
func ParseLine(text string) (*Line, error) {
	result := &Line{}
	if err := lineParser.ParseString(text, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseQuestion parses a predicate whose terms may be `?`.
func ParseQuestion(text string) (lang.Predicate, error) {
	line, err := ParseLine(text)
	if err != nil {
		return lang.Predicate{}, err
	}
	if line.IsRule() {
		return lang.Predicate{}, ErrRuleNotAllowed
	}
	return line.Head.toPredicate(), nil
}

// ParseFact parses a ground predicate.
func ParseFact(text string) (lang.Predicate, error) {
	line, err := ParseLine(text)
	if err != nil {
		return lang.Predicate{}, err
	}
	return line.toFact()
}

func ParseRule(text string) (lang.Rule, error) {
	line, err := ParseLine(text)
	if err != nil {
		return lang.Rule{}, err
	}
	if !line.IsRule() {
		return lang.Rule{}, ErrNotARule
	}
	return line.toRule()
}

func (l *Line) toFact() (lang.Predicate, error) {
	if l.IsRule() {
		return lang.Predicate{}, ErrRuleNotAllowed
	}
	fact := l.Head.toPredicate()
	if !fact.IsGround() {
		return lang.Predicate{}, &lang.WildcardNotAllowedError{Predicate: fact.String(), Where: "fact"}
	}
	return fact, nil
}

func (l *Line) toRule() (lang.Rule, error) {
	body := make([]lang.Predicate, len(l.Body))
	for idx, atom := range l.Body {
		body[idx] = atom.toPredicate()
	}
	return lang.NewRule(l.Head.toPredicate(), body)
}

// MaxLineSize is the longest knowledge base line ParseKnowledgeBase accepts.
const MaxLineSize = 4 * 1024 * 1024

// ParseKnowledgeBase reads one fact or rule per line. Blank lines are
// skipped; any other line that doesn't parse aborts the whole load with a
// *LineError.
func ParseKnowledgeBase(r io.Reader) (*lang.KnowledgeBase, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, &LineError{Line: len(lines) + 1, Err: err}
		}
		return nil, errors.Wrap(err, "reading knowledge base")
	}
	return ParseKnowledgeBaseLines(lines)
}

func ParseKnowledgeBaseLines(lines []string) (*lang.KnowledgeBase, error) {
	var facts []lang.Predicate
	var rules []lang.Rule
	for idx, text := range lines {
		if strings.TrimSpace(text) == "" {
			continue
		}
		line, err := ParseLine(text)
		if err != nil {
			return nil, &LineError{Line: idx + 1, Text: text, Err: err}
		}
		if line.IsRule() {
			rule, err := line.toRule()
			if err != nil {
				return nil, &LineError{Line: idx + 1, Text: text, Err: err}
			}
			rules = append(rules, rule)
			continue
		}
		fact, err := line.toFact()
		if err != nil {
			return nil, &LineError{Line: idx + 1, Text: text, Err: err}
		}
		facts = append(facts, fact)
	}
	return lang.NewKnowledgeBase(facts, rules)
}
