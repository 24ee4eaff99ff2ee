package model

// OutlineSectionCount is the fixed number of body sections in every
// episode outline, including the fallback path.
const OutlineSectionCount = 3

// EvidencePlanRef names which ledger findings a section may draw on
type EvidencePlanRef struct {
	DocID       string `json:"doc_id"`
	UseFindings []int  `json:"use_findings"` // Indices into the ledger's key_findings
}

// OutlineSection is one of the three planned body sections
type OutlineSection struct {
	SectionID          string            `json:"section_id"` // S1, S2, S3
	Title              string            `json:"section_title"`
	Goal               string            `json:"goal"` // What this section must establish
	EvidencePlan       []EvidencePlanRef `json:"evidence_plan"`
	FigurePlaceholders []string          `json:"figure_placeholders,omitempty"`
	TargetChars        int               `json:"target_length_chars"` // Character budget for the section
}

// Outline is the narrative plan for one episode: a fixed three-section
// structure with evidence assignments and length budgets. Created once
// per task from all ledgers.
type Outline struct {
	EpisodeTitle string           `json:"episode_title"`
	SpeakerIntro []string         `json:"speaker_intro"` // Two fixed intro paragraphs
	Hook         string           `json:"hook"`          // Opening line(s)
	CoreThesis   string           `json:"core_thesis"`   // One-sentence thread, no numbers required
	Sections     []OutlineSection `json:"structure"`
	Closing      string           `json:"closing"`
	Fallback     bool             `json:"fallback,omitempty"` // True when planning degraded to the generic outline
}
