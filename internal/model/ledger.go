package model

// MethodAndData summarizes how the paper got its results
type MethodAndData struct {
	Setting     string   `json:"setting,omitempty"`      // Research setting
	DataSources []string `json:"data_sources,omitempty"` // Datasets used
	Design      string   `json:"design,omitempty"`       // DID, RCT, structural model, ...
	TimeRange   string   `json:"time_range,omitempty"`   // Study period
	SampleSize  string   `json:"sample_size,omitempty"`  // If stated
}

// Finding is one evidence-backed result in a ledger
type Finding struct {
	Finding  string   `json:"finding"`           // Core result, short declarative
	Type     string   `json:"type,omitempty"`    // descriptive, causal, mechanism, policy
	Numbers  []string `json:"numbers,omitempty"` // Key numbers
	Evidence Evidence `json:"evidence"`
}

// Mechanism is an evidence-backed channel explanation
type Mechanism struct {
	Mechanism string   `json:"mechanism"`
	Evidence  Evidence `json:"evidence"`
}

// Implication is an evidence-backed policy implication
type Implication struct {
	Implication string   `json:"implication"`
	Evidence    Evidence `json:"evidence"`
}

// FigureRef points at a figure or table in the source document
type FigureRef struct {
	FigureID  string `json:"figure_id"`        // "Figure 1", "Table 2"
	Caption   string `json:"caption_or_topic"` // What it shows
	ParaRange string `json:"para_range"`
}

// Limitation is an evidence-backed caveat
type Limitation struct {
	Item     string   `json:"item"`
	Evidence Evidence `json:"evidence"`
}

// CoverageMeta records how much of the document fed the ledger
type CoverageMeta struct {
	ChunksTotal     int `json:"chunks_total"`
	ChunksProcessed int `json:"chunks_processed"` // Chunks that yielded at least one fact
}

// EvidenceLedger is the canonical, quote-backed factual summary of one
// document, produced by merging all of its chunk facts. Read-only input
// to every downstream stage.
type EvidenceLedger struct {
	DocID            string        `json:"doc_id"`
	Title            string        `json:"title"`
	Filename         string        `json:"filename,omitempty"`
	Authors          []string      `json:"authors,omitempty"`
	OneSentenceClaim string        `json:"one_sentence_claim,omitempty"`
	ResearchQuestion string        `json:"research_question,omitempty"`
	MethodAndData    MethodAndData `json:"method_and_data"`
	KeyFindings      []Finding     `json:"key_findings"`
	Mechanisms       []Mechanism   `json:"mechanisms_or_channels,omitempty"`
	Implications     []Implication `json:"policy_implications,omitempty"`
	Figures          []FigureRef   `json:"figures,omitempty"`
	Limitations      []Limitation  `json:"risk_or_limitations,omitempty"`
	Keywords         []string      `json:"keywords,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Coverage         CoverageMeta  `json:"coverage"`
}
