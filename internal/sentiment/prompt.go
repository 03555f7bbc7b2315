package sentiment

import "fmt"

const analysisPrompt = `Analyze the emotional impact and sentiment of the following content:
TITLE: %s
CONTENT: %s

In your analysis, please provide:
1. A sentiment score from -10 to 10 (where -10 is extremely negative, 0 is neutral, 10 is extremely positive)
2. An emotional impact score from 0 to 10 (where 0 is no emotional impact, 10 is extremely impactful)
3. The primary emotion detected (e.g., joy, sadness, anger, fear, surprise)
4. A list of key emotional triggers in the content
5. A brief explanation of why this content might be emotionally significant

Return ONLY a JSON object with the fields sentiment_score, emotional_impact, primary_emotion, emotional_triggers and explanation.`

// MAX_PROMPT_BODY bounds the body sent per record.
const MAX_PROMPT_BODY = 4000

func BuildPrompt(title, body string) string {
	runes := []rune(body)
	if len(runes) > MAX_PROMPT_BODY {
		body = string(runes[:MAX_PROMPT_BODY])
	}
	return fmt.Sprintf(analysisPrompt, title, body)
}
