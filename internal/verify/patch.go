package verify

import (
	"strings"
	"unicode"

	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/textmatch"
)

// ApplyFixes builds the patched script by applying every issue's fix to
// the draft: DELETE removes the claim's sentence, REPLACE substitutes
// the replacement text in its place. Claims are located by normalized
// containment, so provider-side whitespace jitter does not break
// patching.
func ApplyFixes(script string, issues []model.Issue) string {
	for _, issue := range issues {
		if issue.Claim == "" {
			continue
		}
		switch issue.Fix.Action {
		case model.FixDelete:
			script = rewriteSentence(script, issue.Claim, "")
		case model.FixReplace:
			if issue.Fix.ReplacementText != "" {
				script = rewriteSentence(script, issue.Claim, issue.Fix.ReplacementText)
			}
		}
	}
	return collapseBlankLines(script)
}

// rewriteSentence finds the sentence containing the claim and replaces
// it with the given text (empty text deletes it). Only the first match
// is rewritten; a claim the script repeats verbatim produces one issue
// per occurrence from the verifier.
func rewriteSentence(script, claim, replacement string) string {
	lines := strings.Split(script, "\n")
	for li, line := range lines {
		sentences := splitSentences(line)
		for si, sentence := range sentences {
			if !matchesClaim(sentence, claim) {
				continue
			}
			if replacement == "" {
				sentences = append(sentences[:si], sentences[si+1:]...)
			} else {
				sentences[si] = replacement
			}
			lines[li] = strings.TrimSpace(strings.Join(sentences, " "))
			return strings.Join(lines, "\n")
		}
	}
	return script
}

// matchesClaim accepts exact containment or normalized containment in
// either direction, since the verifier may quote the sentence with
// slightly different punctuation than the writer produced
func matchesClaim(sentence, claim string) bool {
	if strings.Contains(sentence, claim) {
		return true
	}
	return textmatch.Contains(sentence, claim) || textmatch.Contains(claim, sentence)
}

const latinTerminators = ".!?"
const cjkTerminators = "。！？"

// splitSentences cuts a line into sentences, keeping each terminator
// attached to its sentence. A Latin terminator only ends a sentence at
// end of line or before whitespace, so decimals like "3.1%" stay whole.
func splitSentences(line string) []string {
	runes := []rune(line)
	var sentences []string
	var sb strings.Builder

	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			sentences = append(sentences, s)
		}
		sb.Reset()
	}

	for i, r := range runes {
		sb.WriteRune(r)
		switch {
		case strings.ContainsRune(cjkTerminators, r):
			flush()
		case strings.ContainsRune(latinTerminators, r):
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	return sentences
}

// collapseBlankLines removes the empty lines deletions leave behind
func collapseBlankLines(script string) string {
	lines := strings.Split(script, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
