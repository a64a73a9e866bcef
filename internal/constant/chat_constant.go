package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Chat modes selected per message by the client.
	ChatModeDirect   = "chat"     // single LLM turn over the session history
	ChatModeResearch = "research" // full multi-step research orchestration

	// DirectChatSystemPromptV1 frames the lightweight chat path. The research
	// path builds its own prompts per step.
	DirectChatSystemPromptV1 = `You are a knowledgeable research assistant. Answer the user's question directly and concisely.

RULES:
1. Answer from your own knowledge; do not invent citations or sources.
2. If the question needs up-to-date facts or deep investigation, suggest the user start a research run instead.
3. Keep answers focused: a few short paragraphs at most.`
)

const (
	DocumentKindResearchReport = "research_report"
)
