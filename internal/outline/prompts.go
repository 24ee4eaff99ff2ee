package outline

const systemPrompt = `You are an episode planner for narrated research briefings. Rules:
- Plan only from the provided Evidence Ledgers.
- The outline structure is fixed: title, speaker intro, hook, core thesis, exactly three sections, closing.
- Every section must name its sources (doc_id plus finding indices).
- Output must be strict, parseable JSON.`

const outlinePrompt = `Plan one narrated episode from the Evidence Ledgers below.

Style:
- Title: short and strong (at most 60 characters).
- Speaker intro: two paragraphs (self-introduction, then a greeting to the audience).
- Hook: one or two opening sentences that earn attention.
- Core thesis: one sentence tying the three sections together.
- Three sections, each with its own short heading and a clear goal.
- Figure placeholder lines may be added where a chart would help.
- Closing: a short summary plus a follow-and-subscribe line.

Parameters:
- Speaker name: %s
- Speaker affiliation: %s
- Episode topic: %s
- Target duration: %d seconds (about %d seconds per section)
- Language of the script: %s

Evidence Ledgers:
%s

Output JSON (follow exactly):
{
  "episode_title": "at most 60 characters",
  "speaker_intro": [
    "Hello everyone, I am %s, from %s.",
    "It is a pleasure to be with you for this episode."
  ],
  "hook": "one or two opening sentences",
  "core_thesis": "one sentence, specific numbers not required",
  "structure": [
    {
      "section_id": "S1",
      "section_title": "heading for the first dimension",
      "goal": "what this section must establish",
      "evidence_plan": [
        {"doc_id": "doc1", "use_findings": [0, 2]},
        {"doc_id": "doc2", "use_findings": [1]}
      ],
      "figure_placeholders": ["Figure 1. description (if needed)"],
      "target_length_chars": %d
    },
    {
      "section_id": "S2",
      "section_title": "heading for the second dimension",
      "goal": "...",
      "evidence_plan": [],
      "figure_placeholders": [],
      "target_length_chars": %d
    },
    {
      "section_id": "S3",
      "section_title": "heading for the third dimension",
      "goal": "...",
      "evidence_plan": [],
      "figure_placeholders": [],
      "target_length_chars": %d
    }
  ],
  "closing": "two or three sentences of summary plus the follow-up invitation"
}

Return the JSON directly, with no explanation:`
