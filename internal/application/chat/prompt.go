package chat

import (
	"strings"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/infrastructure/llm"
	"github.com/secondbrain/backend/internal/infrastructure/tokenizer"
)

const systemInstruction = `You are SecondBrain, a personal knowledge assistant.
Answer the user's question using the source context below when it is relevant.
If the context does not contain the answer, say so and answer from general knowledge.
Be concise and use Markdown for lists and code.`

// messageOverhead 每条消息的格式开销（role 与分隔符）
const messageOverhead = 4

// PromptBuilder 按 token 预算组装提示词
type PromptBuilder struct {
	counter tokenizer.Counter
	budget  int
}

// NewPromptBuilder 创建提示词构建器，budget <= 0 表示不限制
func NewPromptBuilder(counter tokenizer.Counter, budget int) *PromptBuilder {
	return &PromptBuilder{counter: counter, budget: budget}
}

// Build 组装 system、历史对话与问题
// 超出预算时先从最早的历史开始丢弃，再从末尾裁剪上下文，问题始终保留
func (b *PromptBuilder) Build(contexts []string, history []*domainChat.Message, question string) []llm.Message {
	contexts = append([]string(nil), contexts...)

	for {
		msgs := b.assemble(contexts, history, question)
		if b.budget <= 0 || b.count(msgs) <= b.budget {
			return msgs
		}
		switch {
		case len(history) > 0:
			history = history[1:]
		case len(contexts) > 1:
			contexts = contexts[:len(contexts)-1]
		case len(contexts) == 1:
			contexts[0] = b.shrink(contexts[0], b.count(msgs)-b.budget)
			if contexts[0] == "" {
				contexts = nil
			}
		default:
			return msgs
		}
	}
}

func (b *PromptBuilder) assemble(contexts []string, history []*domainChat.Message, question string) []llm.Message {
	system := systemInstruction
	if len(contexts) > 0 {
		system += "\n\nSource context:\n" + strings.Join(contexts, "\n---\n")
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == domainChat.RoleAI {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: question})
	return msgs
}

func (b *PromptBuilder) count(msgs []llm.Message) int {
	total := 0
	for _, m := range msgs {
		total += b.counter.Count(m.Content) + messageOverhead
	}
	return total
}

// shrink 按超出的 token 比例裁掉文本末尾
func (b *PromptBuilder) shrink(text string, excess int) string {
	runes := []rune(text)
	tokens := b.counter.Count(text)
	if tokens <= excess || len(runes) == 0 {
		return ""
	}
	keep := len(runes) * (tokens - excess) / tokens
	// 至少裁掉一个字符，保证循环收敛
	if keep >= len(runes) {
		keep = len(runes) - 1
	}
	return strings.TrimSpace(string(runes[:keep]))
}
