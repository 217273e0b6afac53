// Package summarizer turns dense legal prose into plain-English
// explanations using an LLM provider.
package summarizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/clauselens/clauselens/internal/llm"
)

// Style selects the register of a summary.
type Style string

const (
	StyleStudentFriendly Style = "student-friendly"
	StyleExecutive       Style = "executive"
	StyleBulletPoints    Style = "bullet-points"
	StyleTechnical       Style = "technical"
)

// Focus narrows a summary to one aspect of the text.
type Focus string

const (
	FocusNone        Focus = ""
	FocusRisks       Focus = "risks"
	FocusObligations Focus = "obligations"
	FocusDeadlines   Focus = "deadlines"
)

// DetectStyle infers the summary style from the phrasing of a query.
func DetectStyle(query string) Style {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "executive") || strings.Contains(q, "business"):
		return StyleExecutive
	case strings.Contains(q, "bullet") || strings.Contains(q, "points"):
		return StyleBulletPoints
	default:
		return StyleStudentFriendly
	}
}

// DetectFocus infers the focus area from the phrasing of a query.
func DetectFocus(query string) Focus {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "risk"):
		return FocusRisks
	case strings.Contains(q, "obligation"):
		return FocusObligations
	case strings.Contains(q, "deadline"):
		return FocusDeadlines
	default:
		return FocusNone
	}
}

// Summarizer rewrites legal text through an LLM provider.
type Summarizer struct {
	provider    llm.Provider
	temperature float64
}

// New creates a Summarizer backed by the given provider.
func New(provider llm.Provider) *Summarizer {
	return &Summarizer{provider: provider, temperature: 0.3}
}

// Summarize rewrites the given legal text in the requested style.
func (s *Summarizer) Summarize(ctx context.Context, text string, style Style, focus Focus) (string, error) {
	return s.complete(ctx, BuildPrompt(text, style, focus))
}

// CompareClauses explains the differences between two clauses of the
// same type.
func (s *Summarizer) CompareClauses(ctx context.Context, clause1, clause2, clauseType string) (string, error) {
	return s.complete(ctx, buildComparePrompt(clause1, clause2, clauseType))
}

// ExtractObligations lists the duties and requirements the text imposes
// on each party.
func (s *Summarizer) ExtractObligations(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, buildObligationsPrompt(text))
}

// IdentifyRisks lists the liabilities and negative consequences the
// text exposes the reader to.
func (s *Summarizer) IdentifyRisks(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, buildRisksPrompt(text))
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return CleanResponse(resp.Content), nil
}

var (
	prefixPlainEnglish = regexp.MustCompile(`(?i)^(What this means in plain English|In plain English):\s*`)
	missingSpacePunct  = regexp.MustCompile(`([.!?,])([A-Z])`)
	missingSpaceDigit  = regexp.MustCompile(`(\d)([A-Z])`)
	runsOfBlanks       = regexp.MustCompile(`[ \t]+`)
	runsOfNewlines     = regexp.MustCompile(`\n\s*\n`)
)

// CleanResponse strips boilerplate prefixes and repairs spacing
// artifacts in model output.
func CleanResponse(text string) string {
	if text == "" {
		return text
	}
	text = prefixPlainEnglish.ReplaceAllString(text, "")
	text = missingSpacePunct.ReplaceAllString(text, "$1 $2")
	text = missingSpaceDigit.ReplaceAllString(text, "$1 $2")
	text = runsOfBlanks.ReplaceAllString(text, " ")
	text = runsOfNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
