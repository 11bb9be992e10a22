package lang

import (
	pp "github.com/vilterp/logicdb/pkg/prettyprint"
)

// KnowledgeBase is an ordered, read-only collection of facts and rules.
// It may be shared between goroutines.
type KnowledgeBase struct {
	facts []Predicate
	rules []Rule

	factsByName map[string][]Predicate
	rulesByName map[string][]Rule
	arities     map[string]int
}

// NewKnowledgeBase indexes facts and rules by predicate name. Every fact
// must be ground, and every use of a name must agree on its arity.
func NewKnowledgeBase(facts []Predicate, rules []Rule) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		facts:       make([]Predicate, len(facts)),
		rules:       make([]Rule, len(rules)),
		factsByName: map[string][]Predicate{},
		rulesByName: map[string][]Rule{},
		arities:     map[string]int{},
	}
	copy(kb.facts, facts)
	copy(kb.rules, rules)

	for _, fact := range kb.facts {
		if !fact.IsGround() {
			return nil, &WildcardNotAllowedError{Predicate: fact.String(), Where: "fact"}
		}
		if err := kb.recordArity(fact, "fact "+fact.String()); err != nil {
			return nil, err
		}
		kb.factsByName[fact.name] = append(kb.factsByName[fact.name], fact)
	}
	for _, rule := range kb.rules {
		where := "rule " + rule.String()
		if err := kb.recordArity(rule.head, where); err != nil {
			return nil, err
		}
		for _, pred := range rule.body {
			if err := kb.recordArity(pred, where); err != nil {
				return nil, err
			}
		}
		kb.rulesByName[rule.head.name] = append(kb.rulesByName[rule.head.name], rule)
	}
	return kb, nil
}

func (kb *KnowledgeBase) recordArity(pred Predicate, where string) error {
	arity, ok := kb.arities[pred.name]
	if !ok {
		kb.arities[pred.name] = pred.Arity()
		return nil
	}
	if arity != pred.Arity() {
		return &ArityMismatchError{
			Name:   pred.name,
			Wanted: arity,
			Got:    pred.Arity(),
			In:     where,
		}
	}
	return nil
}

func (kb *KnowledgeBase) Facts() []Predicate {
	out := make([]Predicate, len(kb.facts))
	copy(out, kb.facts)
	return out
}

func (kb *KnowledgeBase) Rules() []Rule {
	out := make([]Rule, len(kb.rules))
	copy(out, kb.rules)
	return out
}

// FactsNamed returns the stored facts with the given name, in load order.
// The returned slice must not be modified.
func (kb *KnowledgeBase) FactsNamed(name string) []Predicate {
	return kb.factsByName[name]
}

// RulesFor returns the rules whose head has the given name, in load order.
// The returned slice must not be modified.
func (kb *KnowledgeBase) RulesFor(name string) []Rule {
	return kb.rulesByName[name]
}

// Arity returns the arity every use of name agrees on, and whether the name
// appears anywhere in the knowledge base.
func (kb *KnowledgeBase) Arity(name string) (int, bool) {
	arity, ok := kb.arities[name]
	return arity, ok
}

func (kb *KnowledgeBase) Format() pp.Doc {
	facts := make([]pp.Doc, len(kb.facts))
	for idx, fact := range kb.facts {
		facts[idx] = fact.Format()
	}
	rules := make([]pp.Doc, len(kb.rules))
	for idx, rule := range kb.rules {
		rules[idx] = rule.Format()
	}
	return pp.Seq(
		pp.Text("facts:"), pp.Newline, pp.Nest(2, pp.Join(facts, pp.Newline)), pp.Newline,
		pp.Text("rules:"), pp.Newline, pp.Nest(2, pp.Join(rules, pp.Newline)),
	)
}
