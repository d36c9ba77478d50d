package composer

import (
	"fmt"
	"strings"

	"github.com/trezcool/mwalimu/core/followup"
)

const (
	composeSystemRole = "You are a professional teacher's assistant."
	analyzeSystemRole = "You are an insightful educational analyst."

	// fixed exemplar paragraph anchoring tone and style of drafts
	exampleOutput = `"Vittoria had an excellent first session, settling in quickly and showing great enthusiasm. ` +
		`She demonstrated strong linguistic skills by repeating instructions and vocabulary in full sentences, ` +
		`which is a wonderful milestone for her age. She was particularly captivated by the 'Wobbly Tooth' story ` +
		`and engaged deeply with both the 'tooth fairy and Tooth' game and the prepositions activities. ` +
		`Her joy was evident throughout the class, and she successfully balanced having fun with active learning. ` +
		`It was a 'very good' first day that set a very positive tone for her future lessons."`
)

func buildFollowupPrompt(req ComposeRequest) string {
	return fmt.Sprintf(`You are a professional teacher's assistant.

Target Language: %s (IMPORTANT: Write the entire message in this language)

Context:
- Student Name: %s
- Grade: %s
- Message Category: %s
- Desired Tone: %s

Teacher's Keywords/Observations: "%s"
Teacher's Specific Instructions: "%s"

Task: Write a complete follow-up message.
Use the Category and Tone to guide the structure and value.
Incorporate the specific Keywords/Observations naturally.
Follow any Specific Instructions provided.

Style Guide:
- Detailed, narrative style.
- Specific and personal.
- Balanced between fun/engagement and learning milestones.

Example of desired output style:
%s

Do not add placeholders.`,
		req.Language, req.StudentName, req.Grade, req.Category, req.Tone,
		req.Remarks, req.CustomInstruction, exampleOutput)
}

func buildHistoryPrompt(studentName string, history []followup.Followup) string {
	lines := make([]string, 0, len(history))
	for _, f := range history {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.CreatedAt.Format("2006-01-02"), f.Content))
	}

	return fmt.Sprintf(`Analyze the following progress updates for student '%s'.
Identify key trends in behavior, academic performance, and areas of improvement over time.

History:
%s

Output a bulleted summary of:
1. Strengths
2. Recurring Challenges
3. Overall Trajectory (Improving/Declining/Stable)`,
		studentName, strings.Join(lines, "\n"))
}
