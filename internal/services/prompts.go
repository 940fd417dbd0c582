package services

import "math/rand"

var GratitudePrompts = []string{
	"What is one small thing that brought you joy today?",
	"Describe a recent challenge you overcame and what you learned from it.",
	"Who is someone you're grateful for right now, and why?",
	"What is a quality you admire in yourself?",
	"Think of a favorite memory. What makes it so special to you?",
	"What are you looking forward to this week, no matter how small?",
	"Describe a moment today when you felt completely at peace.",
	"What skill are you glad to have?",
	"What is something beautiful you saw recently?",
}

// RandomPrompt picks one of the gratitude prompts.
func RandomPrompt() string {
	return GratitudePrompts[rand.Intn(len(GratitudePrompts))]
}
