package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/narravox/narravox/internal/model"
)

// ResolvePointer looks up an evidence source pointer of the form
// "docID:field[index]" against the ledgers and returns the evidence it
// names. Supported fields are key_findings, mechanisms_or_channels,
// policy_implications and risk_or_limitations.
func ResolvePointer(source string, ledgers []model.EvidenceLedger) (*model.Evidence, error) {
	docID, field, idx, err := splitPointer(source)
	if err != nil {
		return nil, err
	}

	var led *model.EvidenceLedger
	for i := range ledgers {
		if ledgers[i].DocID == docID {
			led = &ledgers[i]
			break
		}
	}
	if led == nil {
		return nil, fmt.Errorf("pointer %q: unknown document %q", source, docID)
	}

	switch field {
	case "key_findings":
		if idx >= len(led.KeyFindings) {
			return nil, fmt.Errorf("pointer %q: index out of range", source)
		}
		return &led.KeyFindings[idx].Evidence, nil
	case "mechanisms_or_channels":
		if idx >= len(led.Mechanisms) {
			return nil, fmt.Errorf("pointer %q: index out of range", source)
		}
		return &led.Mechanisms[idx].Evidence, nil
	case "policy_implications":
		if idx >= len(led.Implications) {
			return nil, fmt.Errorf("pointer %q: index out of range", source)
		}
		return &led.Implications[idx].Evidence, nil
	case "risk_or_limitations":
		if idx >= len(led.Limitations) {
			return nil, fmt.Errorf("pointer %q: index out of range", source)
		}
		return &led.Limitations[idx].Evidence, nil
	default:
		return nil, fmt.Errorf("pointer %q: unknown field %q", source, field)
	}
}

// splitPointer parses "doc1:key_findings[0]" into its parts
func splitPointer(source string) (docID, field string, idx int, err error) {
	parts := strings.SplitN(source, ":", 2)
	if len(parts) != 2 {
		return "", "", 0, fmt.Errorf("pointer %q: want docID:field[index]", source)
	}
	docID = strings.TrimSpace(parts[0])

	path := strings.TrimSpace(parts[1])
	open := strings.Index(path, "[")
	closing := strings.Index(path, "]")
	if open < 0 || closing < open {
		return "", "", 0, fmt.Errorf("pointer %q: missing index", source)
	}

	field = path[:open]
	idx, err = strconv.Atoi(path[open+1 : closing])
	if err != nil || idx < 0 {
		return "", "", 0, fmt.Errorf("pointer %q: bad index", source)
	}
	return docID, field, idx, nil
}
