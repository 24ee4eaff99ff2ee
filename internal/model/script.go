package model

// ClaimEntry ties one factual sentence of the draft to its evidence.
// The claim checklist is the only acceptable justification for factual
// sentences; generic transitions without numbers need no entry.
type ClaimEntry struct {
	Claim  string `json:"claim"`
	Source string `json:"source"` // Pointer "docID:field[index]", e.g. "doc1:key_findings[0]"
	Quote  string `json:"quote"`  // The evidence quote the claim leans on
}

// SectionClaims groups checklist entries by outline section
type SectionClaims struct {
	SectionID string       `json:"section_id"`
	Claims    []ClaimEntry `json:"claims"`
}

// Draft is the writer's output: the full script plus its claim checklist
type Draft struct {
	Script    string          `json:"final_script"`
	Checklist []SectionClaims `json:"claim_checklist"`
}

// ClaimStatus classifies how well a claim matches its evidence
type ClaimStatus string

const (
	ClaimSupported   ClaimStatus = "SUPPORTED"
	ClaimUnsupported ClaimStatus = "UNSUPPORTED"
	ClaimOverstated  ClaimStatus = "OVERSTATED"
	ClaimAmbiguous   ClaimStatus = "AMBIGUOUS"
)

// IssueSeverity ranks verification issues
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityMajor    IssueSeverity = "major"
	SeverityMinor    IssueSeverity = "minor"
)

// FixAction says how to repair a non-supported claim
type FixAction string

const (
	FixDelete  FixAction = "DELETE"  // Remove the offending sentence
	FixReplace FixAction = "REPLACE" // Substitute safer wording
)

// Fix is the proposed repair for one issue
type Fix struct {
	Action          FixAction `json:"action"`
	ReplacementText string    `json:"replacement_text,omitempty"`
	ReplacementSrc  string    `json:"replacement_source,omitempty"`
}

// Issue is one verification finding against the draft script
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Location string        `json:"location"` // e.g. "S2 paragraph 1"
	Claim    string        `json:"claim"`    // The sentence as written
	Status   ClaimStatus   `json:"status"`
	Reason   string        `json:"why"`
	Fix      Fix           `json:"fix"`
}

// Verdict is the overall verification outcome
type Verdict string

const (
	VerdictPass Verdict = "PASS" // No critical or major issues
	VerdictFail Verdict = "FAIL"
)

// Verification is the verifier's output. A FAIL verdict is not fatal:
// the patched script is still released together with the issue list.
type Verification struct {
	Verdict       Verdict `json:"verdict"`
	Issues        []Issue `json:"issues"`
	PatchedScript string  `json:"patched_script"`
	Degraded      bool    `json:"degraded,omitempty"` // True when verification itself failed and the original script was returned
}
