package extract

// systemPrompt enforces the provenance contract on the provider side.
// The extractor still verifies every quote locally; this only raises
// the odds of usable output on the first attempt.
const systemPrompt = `You are a rigorous research-content processing assistant. Rules:
- Work only from the input text and its evidence; never invent anything.
- Every number, year, causal or comparative statement must be findable verbatim in the evidence quote.
- Each fact needs an evidence quote (at most 60 characters) and a paragraph range like "p3-p7".
- Output must be parseable JSON with no extra explanation text.`

// chunkFactsPrompt is the map-stage request: atomic facts with verbatim
// evidence from a single chunk
const chunkFactsPrompt = `Extract only objective facts from the text block below. Output JSON in exactly this shape:
{
  "chunk_id": "%s",
  "facts": [
    {
      "type": "author_affiliation|research_question|data_sample|method|finding|mechanism|implication|caveat|figure",
      "claim": "verifiable statement (at most 45 characters)",
      "numbers": ["2011-2018", "3.1%%"],
      "evidence": {
        "quote": "verbatim excerpt from the text (at most 60 characters)",
        "para_range": "%s"
      }
    }
  ]
}

Hard constraints:
- Extract only information that explicitly appears in this chunk; no inference.
- "numbers" holds only numbers, years, percentages or ratios that appear in the chunk.
- "evidence.quote" must be copied verbatim from the text (at most 60 characters).
- Author facts must name the actual institution and person; placeholders are forbidden.

Text block:
[Chunk %s, paragraph range: %s]
%s

Return the JSON directly, with no explanation:`
