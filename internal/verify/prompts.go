package verify

const systemPrompt = `You are a fact-consistency reviewer for narration scripts. Rules:
- Check strictly whether each claim is supported by its ledger evidence quote.
- Every UNSUPPORTED or OVERSTATED claim needs a DELETE or REPLACE fix.
- Output JSON containing the verdict and the issue list.`

const verifyPrompt = `Review the script below for factual consistency.

Script:
%s

Claim checklist (the claims to verify):
%s

Evidence ledgers (the only source of truth):
%s

Task, for every claim in the checklist:
1. Resolve the "source" pointer (e.g. "doc1:key_findings[0]") to its ledger entry.
2. Check the claim against that entry's evidence quote: numbers, direction, subject, causality.
3. If it does not match, or no support can be found, mark it UNSUPPORTED or OVERSTATED.
4. Propose a fix: DELETE the sentence, or REPLACE it with more conservative wording.

Output JSON (follow exactly):
{
  "verdict": "PASS|FAIL",
  "issues": [
    {
      "severity": "critical|major|minor",
      "location": "S1 paragraph 2",
      "claim": "the sentence as it appears in the script",
      "status": "UNSUPPORTED|OVERSTATED|AMBIGUOUS",
      "why": "what does not match (number mismatch, causal overreach, ...)",
      "fix": {
        "action": "DELETE|REPLACE",
        "replacement_text": "revised wording (when action is REPLACE)",
        "replacement_source": "a better-fitting source pointer (if one exists)"
      }
    }
  ]
}

Passing standard:
- verdict PASS: zero critical or major issues.
- verdict FAIL: at least one critical or major issue.
- Supported claims produce no issue entry.

Return the JSON directly, with no explanation:`
