// Package kiosk holds the guided-demo challenge catalog and the guardrails
// applied to free-text prompts before they reach the gateway.
package kiosk

import "consoled/pkg/types"

// Challenge ids.
const (
	ChallengeReasoning   = "reasoning"
	ChallengeExplanation = "explanation"
	ChallengeCompare     = "compare"
	ChallengeSummarize   = "summarize"
)

// systemPrompts are the fixed templates keyed by challenge id. The empty key
// is the default used for custom prompts outside any challenge.
var systemPrompts = map[string]string{
	ChallengeReasoning: "You are a careful reasoning assistant. Think through the " +
		"problem step by step, show your working, and state the final answer clearly.",
	ChallengeExplanation: "You are a patient teacher. Explain the topic in plain " +
		"language a newcomer can follow, using short paragraphs and one concrete example.",
	ChallengeCompare: "You are an analyst. Compare the options the user gives you: " +
		"list the key differences, trade-offs, and finish with a one-line recommendation.",
	ChallengeSummarize: "You are a précis writer. Summarize the user's text in at " +
		"most five bullet points, keeping only what matters.",
	"": "You are a helpful assistant running on a local AI workstation. Answer " +
		"concisely and accurately.",
}

// SystemPrompt returns the template for a challenge id, falling back to the
// default template for unknown or empty ids.
func SystemPrompt(challengeID string) string {
	if p, ok := systemPrompts[challengeID]; ok {
		return p
	}
	return systemPrompts[""]
}

// IsChallenge reports whether id names one of the fixed challenges.
func IsChallenge(id string) bool {
	switch id {
	case ChallengeReasoning, ChallengeExplanation, ChallengeCompare, ChallengeSummarize:
		return true
	}
	return false
}

// Challenges returns the catalog shown by the kiosk.
func Challenges() []types.ChallengeInfo {
	return []types.ChallengeInfo{
		{
			ID:          ChallengeReasoning,
			Title:       "Step-by-step reasoning",
			Description: "Watch the model work through a logic puzzle out loud.",
			Prompts: []string{
				"A farmer has 17 sheep. All but 9 run away. How many are left?",
				"If it takes 5 machines 5 minutes to make 5 widgets, how long do 100 machines take to make 100 widgets?",
				"Three friends split a restaurant bill of $75 with a 20% tip. How much does each pay?",
			},
		},
		{
			ID:          ChallengeExplanation,
			Title:       "Explain like I'm new",
			Description: "Get a plain-language explanation of a technical topic.",
			Prompts: []string{
				"Explain how a large language model generates text.",
				"What does GPU memory have to do with model size?",
				"Why do models sometimes make things up?",
			},
		},
		{
			ID:          ChallengeCompare,
			Title:       "Compare and contrast",
			Description: "Have the model weigh two options against each other.",
			Prompts: []string{
				"Compare running AI models locally versus in the cloud.",
				"Compare electric cars and hybrids for a daily commuter.",
			},
		},
		{
			ID:          ChallengeSummarize,
			Title:       "Summarize",
			Description: "Condense a wall of text into the essentials.",
			Prompts: []string{
				"Summarize the plot of Romeo and Juliet in five bullets.",
				"Summarize what a firewall does for a home network.",
			},
		},
	}
}
