package llm

import (
	"github.com/PabloGalante/agronova/internal/domain"
)

// HistoryWindow is how many trailing transcript entries are sent with each turn.
const HistoryWindow = 6

const baseSystemPrompt = `You are AgroNova, an expert AI agricultural assistant helping farmers worldwide.
You provide practical, actionable farming advice based on scientific principles and regional best practices.

Your expertise includes:
- Crop recommendations based on location, season, soil type, and climate
- Pest and disease identification and management (organic and chemical solutions)
- Weather-based farming advice and planning
- Soil health and fertilizer recommendations
- Sustainable and organic farming practices

Always provide:
1. Clear, structured responses with practical steps
2. Region-specific advice when location is mentioned
3. Both organic and conventional solutions when applicable
4. Safety warnings for chemical applications
5. Preventive measures alongside treatments

Format your responses with:
- Clear headings using **bold** for main points
- Bullet points for lists
- Emojis for visual appeal (🌾 🐛 💧 🌱 etc.)
- Specific measurements and timings
- Action-oriented language

Keep responses concise but comprehensive, typically 200-400 words unless detailed technical information is requested.`

// primingAck is the assistant half of the priming pair. It asserts the persona
// and must not answer anything.
const primingAck = "I understand. I'm AgroNova, your agricultural assistant. " +
	"I'll provide practical, region-specific farming advice with clear formatting and actionable steps."

// SystemPrompt returns the framing for a topic. Unknown or empty ids yield the base framing.
func SystemPrompt(topics domain.TopicLookup, topicID domain.TopicID) string {
	if topics == nil || topicID == "" {
		return baseSystemPrompt
	}
	if t, ok := topics.Lookup(topicID); ok {
		return baseSystemPrompt + t.Instruction
	}
	return baseSystemPrompt
}

// BuildContext assembles the invocation context for one turn:
// framing (user), acknowledgment (assistant), the last HistoryWindow entries of
// history, and the new user message.
//
// It does no I/O and is deterministic. Callers reject blank messages before calling it.
func BuildContext(
	topics domain.TopicLookup,
	userMessage string,
	topicID domain.TopicID,
	history []domain.Message,
) domain.InvocationContext {
	window := history
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}

	entries := make([]domain.Message, 0, len(window)+3)
	entries = append(entries,
		domain.Message{Role: domain.RoleUser, Content: SystemPrompt(topics, topicID)},
		domain.Message{Role: domain.RoleAssistant, Content: primingAck},
	)

	for _, m := range window {
		entries = append(entries, domain.Message{
			Role:    mapRole(m.Role),
			Content: m.Content,
		})
	}

	entries = append(entries, domain.Message{Role: domain.RoleUser, Content: userMessage})

	return domain.InvocationContext{Entries: entries}
}

func mapRole(r domain.Role) domain.Role {
	switch r {
	case domain.RoleUser:
		return domain.RoleUser
	case domain.RoleAssistant:
		return domain.RoleAssistant
	default:
		return domain.RoleAssistant
	}
}
