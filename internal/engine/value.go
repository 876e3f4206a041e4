package engine

import "strconv"

// ValueKind discriminates the shapes a resolved selection value can take.
type ValueKind string

const (
	ValueItem   ValueKind = "ITEM"
	ValueList   ValueKind = "LIST"
	ValueText   ValueKind = "TEXT"
	ValueNumber ValueKind = "NUMBER"
)

// Value is one resolved selection binding. It is a plain record: every field
// survives a JSON round trip, so collected arguments can cross a network
// boundary and come back intact.
type Value struct {
	Kind ValueKind   `json:"kind"`
	Item Candidate   `json:"item,omitempty"`
	List []Candidate `json:"list,omitempty"`
	Text string      `json:"text,omitempty"`
	Num  int         `json:"num,omitempty"`
}

func itemValue(c Candidate) Value     { return Value{Kind: ValueItem, Item: c} }
func listValue(cs []Candidate) Value  { return Value{Kind: ValueList, List: cs} }
func textValue(s string) Value        { return Value{Kind: ValueText, Text: s} }
func numberValue(n int) Value         { return Value{Kind: ValueNumber, Num: n} }

// IDs returns the canonical identifiers bound in v, one for ITEM, each list
// member for LIST, and the text/number rendering otherwise.
func (v Value) IDs() []string {
	switch v.Kind {
	case ValueItem:
		return []string{v.Item.ID}
	case ValueList:
		out := make([]string, 0, len(v.List))
		for _, c := range v.List {
			out = append(out, c.ID)
		}
		return out
	case ValueText:
		return []string{v.Text}
	case ValueNumber:
		return []string{strconv.Itoa(v.Num)}
	}
	return nil
}

// Args maps selection name to its resolved value.
type Args map[string]Value

func (a Args) clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
