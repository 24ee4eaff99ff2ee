package writer

const systemPrompt = `You are a narration scriptwriter for research briefings. Rules:
- Use only the ledger entries named in each section's evidence_plan.
- Every concrete factual sentence must come from an evidence quote.
- A few generic transition sentences are allowed, but they must not contain numbers or firm causal claims.
- Output JSON containing the script text and the claim checklist.`

const draftPrompt = `Write the full narration script from the outline and evidence ledgers below.

Outline:
%s

Evidence Ledgers:
%s

Style:
- Spoken register a general audience can follow, but professionally precise; short sentences; clear transitions.
- Paragraph lengths follow each section's target_length_chars.
- If a section has figure_placeholders, insert each placeholder on its own line.

Output JSON (follow exactly):
{
  "final_script": "the complete script text with natural paragraph breaks\n\nIt must contain:\n- the title line (%s)\n- the speaker intro (two paragraphs)\n- hook and core thesis\n- the three sections, each opening with its heading\n- figure placeholder lines (if any)\n- the closing",
  "claim_checklist": [
    {
      "section_id": "S1",
      "claims": [
        {
          "claim": "the factual sentence as written",
          "source": "doc1:key_findings[0]",
          "quote": "the evidence quote it relies on"
        }
      ]
    },
    {"section_id": "S2", "claims": []},
    {"section_id": "S3", "claims": []}
  ]
}

Hard constraints:
- Every factual sentence in final_script must come from an entry named in that section's evidence_plan.
- Every checklist claim must be supported by an evidence quote from the ledgers.
- Generic transition sentences are allowed, but never with specific numbers.

Return the JSON directly, with no explanation:`
