package model

// FactType categorizes the nature of an extracted fact
type FactType string

const (
	FactAuthorAffiliation FactType = "author_affiliation" // Who wrote it, where they work
	FactResearchQuestion  FactType = "research_question"  // The question the paper asks
	FactDataSample        FactType = "data_sample"        // Data sources and sample
	FactMethod            FactType = "method"             // Identification / study design
	FactFinding           FactType = "finding"            // A result
	FactMechanism         FactType = "mechanism"          // Channel explaining a result
	FactImplication       FactType = "implication"        // Policy implication
	FactCaveat            FactType = "caveat"             // Limitation or scope warning
	FactFigure            FactType = "figure"             // Figure or table reference
)

// Evidence anchors a claim to a verbatim source quote.
// Quote must be a substring (after normalization) of the paragraph range
// it points at; facts that fail this check are dropped.
type Evidence struct {
	Quote     string `json:"quote"`      // Verbatim excerpt, <=60 characters
	ParaRange string `json:"para_range"` // "p3-p7" notation
}

// Fact is one atomic, quote-backed statement extracted from a chunk
type Fact struct {
	Type     FactType `json:"type"`
	Claim    string   `json:"claim"`             // Short declarative statement
	Numbers  []string `json:"numbers,omitempty"` // Numeric/date tokens appearing in the chunk
	Evidence Evidence `json:"evidence"`
}

// ChunkFacts is the map-stage output for one chunk
type ChunkFacts struct {
	ChunkID string `json:"chunk_id"`
	DocID   string `json:"doc_id"`
	Facts   []Fact `json:"facts"`
	Error   string `json:"error,omitempty"` // Set when extraction was exhausted for this chunk
}
