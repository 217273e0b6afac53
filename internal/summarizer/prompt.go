package summarizer

import "fmt"

const basePromptFormat = `You are a legal expert helping students and non-lawyers understand legal documents.

CRITICAL: Generate clean, properly formatted text with correct spacing between all words. Do NOT generate text with missing spaces between words.

Legal Text to Analyze:
%s

`

const studentFriendlyInstruction = `
Please provide a student-friendly explanation that:
1. Uses simple, everyday language
2. Avoids legal jargon or explains it when necessary
3. Uses examples or analogies when helpful
4. Highlights key points that would matter to someone without legal training
5. Explains the practical implications
6. Uses proper markdown formatting with clear sections

Format your response as:
[Your simplified explanation directly, without any "What this means in plain English" prefix]

**Key points to remember:**
- [Important point 1]
- [Important point 2]
- [etc.]

Make sure to:
- Use proper spacing between sentences
- Format currency amounts clearly (e.g., $150,000)
- Use bullet points for lists
- Keep paragraphs short and readable
- Avoid run-on sentences
`

const executiveInstruction = `
Please provide an executive summary that:
1. Focuses on business implications and risks
2. Highlights financial and operational impacts
3. Identifies key decision points
4. Uses professional but accessible language
5. Prioritizes actionable information

Format your response as:
**Executive Summary:**
[Brief overview]

**Key Business Implications:**
- [Implication 1]
- [Implication 2]

**Action Items/Considerations:**
- [Action 1]
- [Action 2]
`

const bulletPointsInstruction = `
Please create a bullet-point summary that:
1. Breaks down the text into digestible points
2. Uses clear, concise language
3. Organizes information logically
4. Highlights the most important elements

Format your response as bullet points with clear categories.
`

const technicalInstruction = `
Please provide a technical analysis that:
1. Maintains legal precision while improving clarity
2. Explains the legal mechanics
3. Identifies potential issues or ambiguities
4. Provides context for legal standards

Format your response with clear sections and explanations.
`

const defaultInstruction = `
Please provide a clear, accessible explanation of this legal text.
Focus on making it understandable for a general audience.
`

// BuildPrompt assembles the summarization prompt for the given style
// and optional focus.
func BuildPrompt(text string, style Style, focus Focus) string {
	prompt := fmt.Sprintf(basePromptFormat, text)

	switch style {
	case StyleStudentFriendly:
		prompt += studentFriendlyInstruction
	case StyleExecutive:
		prompt += executiveInstruction
	case StyleBulletPoints:
		prompt += bulletPointsInstruction
	case StyleTechnical:
		prompt += technicalInstruction
	default:
		prompt += defaultInstruction
	}

	if focus != FocusNone {
		prompt += fmt.Sprintf("\nSpecial Focus: Pay particular attention to aspects related to '%s' in your analysis.", focus)
	}
	return prompt
}

func buildComparePrompt(clause1, clause2, clauseType string) string {
	return fmt.Sprintf(`You are a legal expert comparing two clauses for students to understand.

Clause Type: %s

CLAUSE 1:
%s

CLAUSE 2:
%s

Please provide a student-friendly comparison that:
1. Explains what each clause means in plain English
2. Highlights the key differences between them
3. Explains which might be more favorable and why
4. Uses simple language and practical examples

Format your response as:
**Clause 1 Summary:**
[Plain English explanation]

**Clause 2 Summary:**
[Plain English explanation]

**Key Differences:**
- [Difference 1]
- [Difference 2]

**Practical Impact:**
[Explanation of what these differences mean in practice]
`, clauseType, clause1, clause2)
}

func buildObligationsPrompt(text string) string {
	return fmt.Sprintf(`You are a legal expert helping students understand their obligations from a legal document.

Legal Text:
%s

Please identify and explain all obligations, duties, and requirements mentioned in this text.

Format your response as:
**Your Obligations (What you must do):**
- [Obligation 1 in plain English]
- [Obligation 2 in plain English]

**Other Party's Obligations (What they must do):**
- [Their obligation 1]
- [Their obligation 2]

**Important Deadlines or Timeframes:**
- [Any time-sensitive requirements]

**Consequences of Not Complying:**
- [What happens if obligations aren't met]

Use simple language that a student would understand.
`, text)
}

func buildRisksPrompt(text string) string {
	return fmt.Sprintf(`You are a legal expert helping students understand the risks in a legal document.

Legal Text:
%s

Please identify and explain all potential risks, liabilities, and negative consequences mentioned in this text.

Format your response as:
**Potential Risks for You:**
- [Risk 1 explained simply]
- [Risk 2 explained simply]

**Financial Risks:**
- [Any monetary risks or penalties]

**Legal Risks:**
- [Legal consequences you might face]

**How to Minimize These Risks:**
- [Practical advice for risk mitigation]

Use everyday language that clearly explains what could go wrong and why it matters.
`, text)
}
