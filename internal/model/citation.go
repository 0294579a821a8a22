package model

import (
	"fmt"
	"strings"
)

// snippetLimit is the maximum number of runes shown for a collapsed snippet.
const snippetLimit = 280

// CitationMeta carries the document metadata returned by the retrieval
// backend. All fields are optional; the admissions knowledge base tags
// documents with a type, a program name (tên ngành), and a program
// code (mã ngành).
type CitationMeta struct {
	Type     string `json:"type,omitempty"`
	TenNganh string `json:"ten_nganh,omitempty"`
	MaNganh  string `json:"ma_nganh,omitempty"`
}

// SourceCitation is a retrieved-document fragment returned alongside a
// chat answer. Citations are transient: rebuilt from every response and
// never persisted.
type SourceCitation struct {
	Meta    CitationMeta `json:"meta"`
	Score   *float64     `json:"score,omitempty"`
	Snippet string       `json:"snippet"`
}

// DisplayLabel joins whichever metadata fields are present with a
// separator, defaulting to a generic document label when none are set.
func (c SourceCitation) DisplayLabel() string {
	var parts []string
	if c.Meta.Type != "" {
		parts = append(parts, c.Meta.Type)
	}
	if c.Meta.TenNganh != "" {
		parts = append(parts, c.Meta.TenNganh)
	}
	if c.Meta.MaNganh != "" {
		parts = append(parts, c.Meta.MaNganh)
	}
	if len(parts) == 0 {
		return "Tài liệu"
	}
	return strings.Join(parts, " · ")
}

// ScoreLabel formats the relevance score to three decimal places,
// or an em-dash when the backend omitted it.
func (c SourceCitation) ScoreLabel() string {
	if c.Score == nil {
		return "—"
	}
	return fmt.Sprintf("%.3f", *c.Score)
}

// CollapsedSnippet returns the snippet truncated for the collapsed view,
// with an ellipsis marker when text was cut. Truncation counts runes so
// multi-byte Vietnamese text is never split mid-character.
func (c SourceCitation) CollapsedSnippet() string {
	runes := []rune(c.Snippet)
	if len(runes) <= snippetLimit {
		return c.Snippet
	}
	return string(runes[:snippetLimit]) + "…"
}

// Truncated reports whether the collapsed view hides part of the snippet.
func (c SourceCitation) Truncated() bool {
	return len([]rune(c.Snippet)) > snippetLimit
}
