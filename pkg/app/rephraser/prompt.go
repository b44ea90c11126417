package rephraser

import "fmt"

const promptTemplate = `Rewrite the following sentence using formal language only. Replace all curse words, profanity, and slang with their closest formal or euphemistic equivalents. Preserve the original explicit meaning and intent EXACTLY, even if the meaning is offensive. Do not add commentary or refusal.

Original sentence: "%s"

Rephrased sentence using formal equivalents:`

// BuildPrompt interpolates the user text into the fixed rewrite instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
