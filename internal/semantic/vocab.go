package semantic

// Well-known IRIs used by the extractor.
const (
	// RDFType is emitted for every @type marker.
	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// DefaultSubject names the document itself when no @id is declared.
	DefaultSubject = "_:doc"
)
