// Package rule holds the symbolic condition-tree and rule representation
// shared by the executor (which builds rules during learn) and the
// reasoner (which proves against them). Kept separate from both so
// neither needs to import the other. Grounded on the teacher's
// wfs_types.go / slg_wfs.go tagged-node style for representing
// well-founded-semantics condition trees (Conj/Disj/Negation nodes over
// goals), generalized here to sys2's fact/And/Or/Not vocabulary.
package rule

// Condition is a node in an antecedent condition tree: a Fact leaf, or
// an And/Or/Not combinator over other Conditions (spec.md §3 "Rule").
type Condition interface {
	conditionNode()
}

// Fact is a leaf condition: an operator applied to argument names, where
// an argument beginning with "?" denotes a free variable bound during
// unification.
type Fact struct {
	Operator string
	Args     []string
}

func (*Fact) conditionNode() {}

// And requires both branches to hold; the reasoner tracks which KB
// entries each branch consumed to disallow reuse within one AND
// satisfaction (spec.md §4.7).
type And struct {
	A, B Condition
}

func (*And) conditionNode() {}

// Or requires either branch to hold.
type Or struct {
	A, B Condition
}

func (*Or) conditionNode() {}

// Not inverts its inner condition under CWA.
type Not struct {
	Inner Condition
}

func (*Not) conditionNode() {}

// FreeVars returns every distinct "?name" token appearing in a
// condition tree, in first-encountered order.
func FreeVars(c Condition) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(Condition)
	walk = func(node Condition) {
		switch n := node.(type) {
		case *Fact:
			for _, a := range n.Args {
				if isFreeVar(a) && !seen[a] {
					seen[a] = true
					out = append(out, a)
				}
			}
		case *And:
			walk(n.A)
			walk(n.B)
		case *Or:
			walk(n.A)
			walk(n.B)
		case *Not:
			walk(n.Inner)
		}
	}
	walk(c)
	return out
}

func isFreeVar(arg string) bool {
	return len(arg) > 0 && arg[0] == '?'
}

// Rule is an Implies: antecedent condition tree, consequent fact
// template, and the free variables connecting them.
type Rule struct {
	Index             int
	Antecedent        Condition
	Consequent        *Fact
	FreeVars          []string
	SourceStatementID int
}

// Store is the session's append-only rule list (spec.md §3: "Rules list
// is append-only during learn; on failure the whole learn call is
// rolled back").
type Store struct {
	rules []*Rule
}

// New creates an empty rule Store.
func New() *Store { return &Store{} }

// Add appends a rule and returns it.
func (s *Store) Add(antecedent Condition, consequent *Fact, sourceStatementID int) *Rule {
	r := &Rule{
		Index:             len(s.rules),
		Antecedent:        antecedent,
		Consequent:        consequent,
		FreeVars:          FreeVars(antecedent),
		SourceStatementID: sourceStatementID,
	}
	s.rules = append(s.rules, r)
	return r
}

// All returns every rule in insertion order.
func (s *Store) All() []*Rule {
	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s *Store) Len() int { return len(s.rules) }

// Snapshot captures the current rule count for rollback.
type Snapshot struct{ count int }

// Mark returns a Snapshot of the current rule count.
func (s *Store) Mark() Snapshot { return Snapshot{count: len(s.rules)} }

// Rollback truncates the rule list back to a prior Snapshot.
func (s *Store) Rollback(snap Snapshot) {
	if snap.count < len(s.rules) {
		s.rules = s.rules[:snap.count]
	}
}
