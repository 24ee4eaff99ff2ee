package ledger

const systemPrompt = `You are a rigorous research-content processing assistant. Rules:
- Merge only the facts you are given; never invent new ones.
- Deduplicate overlapping facts and keep the better-evidenced, more informative variant.
- Every finding, mechanism and implication must carry an evidence quote and paragraph range.
- Output must be parseable JSON with no extra explanation text.`

// mergePrompt is the reduce-stage request: all chunk facts of one
// document merged into a single canonical evidence ledger
const mergePrompt = `Merge all chunk facts below into one Evidence Ledger JSON. The fields must match exactly:
{
  "doc_id": "%s",
  "title": "document title",
  "authors": ["full institution + name + title"],
  "one_sentence_claim": "one-sentence summary (at most 40 characters)",
  "research_question": "the research question",
  "method_and_data": {
    "setting": "research setting",
    "data_sources": ["data sources"],
    "design": "DID/RCT/DDD/structural model/etc.",
    "time_range": "study period",
    "sample_size": "sample size (if stated)"
  },
  "key_findings": [
    {
      "finding": "core result (at most 45 characters)",
      "type": "descriptive|causal|mechanism|policy",
      "numbers": ["key numbers"],
      "evidence": {"quote": "source excerpt (at most 60 characters)", "para_range": "p..-p.."}
    }
  ],
  "mechanisms_or_channels": [
    {"mechanism": "channel explanation", "evidence": {"quote": "...", "para_range": "p..-p.."}}
  ],
  "policy_implications": [
    {"implication": "policy implication", "evidence": {"quote": "...", "para_range": "p..-p.."}}
  ],
  "figures": [
    {"figure_id": "Figure 1", "caption_or_topic": "what it shows", "para_range": "p..-p.."}
  ],
  "risk_or_limitations": [
    {"item": "limitation", "evidence": {"quote": "...", "para_range": "p..-p.."}}
  ],
  "keywords": ["3-8 keywords"],
  "notes": "scope warnings, external validity, causal vs. descriptive"
}

Rules:
- Deduplicate synonymous facts; keep the version with more information and clearer evidence.
- key_findings keeps the 2-4 most important results (when present in the input).
- Every finding/mechanism/implication must have evidence.quote and para_range taken from the input facts.

All chunk facts:
%s

Return the JSON directly, with no explanation:`
