package session

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"

	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/kb"
)

// DumpFormatMajor/Minor version the dump() wire format (spec.md §6:
// "format versioning carries (major, minor) and the strategy tag").
const (
	DumpFormatMajor = 1
	DumpFormatMinor = 0
)

// FactRecord is one KB entry in dump()'s serializable form. Vectors
// are intentionally omitted: they are byte-for-byte rederivable from
// (operator, args) against the same vocabulary/strategy/geometry, and
// the HDC substrate's own hash tables (not this wire format) are the
// source of truth for them, matching spec.md §9's "vocabulary carries
// persistence, not raw vector bytes" framing.
type FactRecord struct {
	Operator          string   `json:"operator"`
	Args              []string `json:"args"`
	Polarity          string   `json:"polarity"`
	SourceStatementID int      `json:"sourceStatementId"`
}

// RuleRecord is one rule store entry in dump()'s serializable form.
// The antecedent condition tree is rendered to its DSL-like textual
// shape rather than a structurally typed tree, since dump()'s contract
// is "serializable session state" for external inspection/persistence,
// not a guarantee of round-tripping back into a live *rule.Rule.
type RuleRecord struct {
	Antecedent        string   `json:"antecedent"`
	ConsequentOp      string   `json:"consequentOperator"`
	ConsequentArgs    []string `json:"consequentArgs"`
	FreeVars          []string `json:"freeVars"`
	SourceStatementID int      `json:"sourceStatementId"`
}

// Dump is the full serializable session snapshot returned by dump().
type Dump struct {
	FormatMajor int          `json:"formatMajor"`
	FormatMinor int          `json:"formatMinor"`
	Strategy    string       `json:"strategy"`
	Dimensions  int          `json:"dimensions"`
	SessionID   string       `json:"sessionId"`
	Vocabulary  []string     `json:"vocabulary"`
	Facts       []FactRecord `json:"facts"`
	Rules       []RuleRecord `json:"rules"`
}

// Dump builds a serializable snapshot of the session's vocabulary, KB,
// and rule store, per spec.md §6's dump() verb.
func (s *Session) Dump() *Dump {
	d := &Dump{
		FormatMajor: DumpFormatMajor,
		FormatMinor: DumpFormatMinor,
		Strategy:    string(s.Config.HDCStrategy),
		Dimensions:  int(s.Config.Dimensions),
		SessionID:   s.ID,
		Vocabulary:  s.Vocab.Names(),
	}
	for _, e := range s.KB.All() {
		d.Facts = append(d.Facts, FactRecord{
			Operator:          e.Operator,
			Args:              e.Args,
			Polarity:          polarityName(e.Polarity),
			SourceStatementID: e.SourceStatementID,
		})
	}
	for _, r := range s.Rules.All() {
		d.Rules = append(d.Rules, RuleRecord{
			Antecedent:        renderCondition(r.Antecedent),
			ConsequentOp:      r.Consequent.Operator,
			ConsequentArgs:    r.Consequent.Args,
			FreeVars:          r.FreeVars,
			SourceStatementID: r.SourceStatementID,
		})
	}
	return d
}

func polarityName(p kb.Polarity) string {
	if p == kb.Positive {
		return "positive"
	}
	return "negative"
}

// MarshalJSON encodes a Dump via goccy/go-json, the wire-format library
// SPEC_FULL.md §10 designates for every serialization boundary in this
// module.
func (d *Dump) MarshalJSON() ([]byte, error) {
	type alias Dump
	return json.Marshal((*alias)(d))
}

// DumpJSON returns the session's dump() snapshot already encoded.
func (s *Session) DumpJSON() ([]byte, error) {
	data, err := json.Marshal(s.Dump())
	if err != nil {
		return nil, errs.Wrap(errs.KindResource, "DumpEncodeFailed", "encoding session dump", err)
	}
	return data, nil
}

// Inspect returns a human-debuggable rendering of a named entity:
// every KB fact/rule touching name as an operator, or its vocabulary
// vector's presence, per spec.md §6's "inspect(name) -> vocabulary/kb/
// rule snapshot". Rendered with go-spew so nested slices/structs print
// legibly without hand-rolled formatting, the same role spew plays in
// the pack's test-debugging conventions.
func (s *Session) Inspect(name string) string {
	var out struct {
		Name       string
		InVocab    bool
		FactsAsOp  []FactRecord
		RulesAsOp  []RuleRecord
	}
	out.Name = name
	out.InVocab = s.Vocab.Has(name)
	for _, e := range s.KB.ByOperator(name) {
		out.FactsAsOp = append(out.FactsAsOp, FactRecord{
			Operator: e.Operator, Args: e.Args, Polarity: polarityName(e.Polarity), SourceStatementID: e.SourceStatementID,
		})
	}
	for _, r := range s.Rules.All() {
		if r.Consequent.Operator == name {
			out.RulesAsOp = append(out.RulesAsOp, RuleRecord{
				Antecedent: renderCondition(r.Antecedent), ConsequentOp: r.Consequent.Operator,
				ConsequentArgs: r.Consequent.Args, FreeVars: r.FreeVars, SourceStatementID: r.SourceStatementID,
			})
		}
	}
	return spew.Sdump(out)
}
