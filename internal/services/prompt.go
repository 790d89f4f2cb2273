package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScreeningPrompt embeds the job description and resume verbatim in the
// fixed scoring instructions.
func (pb *PromptBuilder) BuildScreeningPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Evaluate the following resume against this job description. Score the match out of 100 and explain why.

Job Description:
%s

Resume:
%s

Return a JSON object with:
- "score": integer
- "reasoning": list of 2-3 sentences
- "missing": list of skills or experiences missing
Respond only with valid JSON.`,
		jobDescription, resumeText)
}
