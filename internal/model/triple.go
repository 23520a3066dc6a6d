package model

// Triple is one subject-predicate-object fact. Multiple triples may
// share (subject, predicate); list-valued properties explode into one
// triple per element and keep multiset semantics.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Datatype  string `json:"datatype,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

// Key is the (subject, predicate) grouping key used by the semantic
// differ and by conflict detection.
func (t Triple) Key() string {
	return t.Subject + " " + t.Predicate
}

// ObjectKey identifies the object value including datatype and
// language tag, so "1"^^xsd:int and "1"@en stay distinct.
func (t Triple) ObjectKey() string {
	return t.Object + "\x00" + t.Datatype + "\x00" + t.Lang
}
