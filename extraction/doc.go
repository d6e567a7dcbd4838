// Package extraction classifies Summary of Benefits and Coverage documents.
//
// Given the per-page text of an SBC it resolves the issuing company, answers
// the Minimum Essential Coverage and Minimum Value Standards questions as
// Yes, No or Unknown, and renders a compliance narrative for each answer.
// Every extraction is an ordered cascade of strategies; a miss falls through
// to a weaker strategy and finally to a fixed default, so processing text
// never fails.
package extraction
