package extraction

import "strings"

// DocumentText holds the per-page text of one SBC document.
// The full text is the pages joined with newlines.
type DocumentText struct {
	pages []string
	full  string
}

// NewDocumentText copies pages so later changes by the caller do not leak in
func NewDocumentText(pages []string) DocumentText {
	copied := make([]string, len(pages))
	copy(copied, pages)
	return DocumentText{
		pages: copied,
		full:  strings.Join(copied, "\n"),
	}
}

// Pages returns a copy of the page texts
func (d DocumentText) Pages() []string {
	out := make([]string, len(d.pages))
	copy(out, d.pages)
	return out
}

// PageCount returns the number of pages
func (d DocumentText) PageCount() int {
	return len(d.pages)
}

// Full returns all pages joined with newlines
func (d DocumentText) Full() string {
	return d.full
}

// FirstPage returns the first page text, or "" for an empty document
func (d DocumentText) FirstPage() string {
	if len(d.pages) == 0 {
		return ""
	}
	return d.pages[0]
}

// Blank reports whether no page carries any non-whitespace text
func (d DocumentText) Blank() bool {
	return strings.TrimSpace(d.full) == ""
}
