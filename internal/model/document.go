package model

// ParagraphType classifies the structural role of a paragraph
type ParagraphType string

const (
	ParagraphHeading  ParagraphType = "heading"   // Section heading
	ParagraphBody     ParagraphType = "body"      // Regular prose paragraph
	ParagraphTableRow ParagraphType = "table-row" // Flattened table row
)

// Paragraph is one ordered unit of a parsed document
type Paragraph struct {
	ID           int           `json:"paragraph_id"`            // 0-based position in the document
	Text         string        `json:"text"`                    // Paragraph text, whitespace-normalized
	Type         ParagraphType `json:"type"`                    // heading, body, table-row
	HeadingLevel int           `json:"heading_level,omitempty"` // 1-6 for headings, 0 otherwise
}

// Document represents one parsed source document.
// Immutable once produced by a document provider.
type Document struct {
	ID         string      `json:"doc_id"`    // Stable id assigned at submission (doc1, doc2, ...)
	Filename   string      `json:"filename"`  // Original upload filename
	Title      string      `json:"title"`     // Extracted title (first heading or filename stem)
	Paragraphs []Paragraph `json:"paragraphs"`
}

// TotalParagraphs returns the paragraph count
func (d *Document) TotalParagraphs() int {
	return len(d.Paragraphs)
}
