package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"biochat/internal/app/chat"
)

const (
	// HistoryWindow is how many trailing messages are sent as context.
	HistoryWindow = 5

	// UnconfiguredReply is returned when no oracle credential is configured.
	UnconfiguredReply = "..."

	// FailedReply is returned when the oracle call fails.
	FailedReply = "Haha, totally."
)

// ReplyOracle produces simulated peer replies. It is safe for concurrent use.
type ReplyOracle struct {
	gen    TextGenerator
	logger zerolog.Logger
}

// NewReplyOracle returns a reply oracle backed by gen. A nil gen means fallback-only.
func NewReplyOracle(gen TextGenerator) *ReplyOracle {
	return &ReplyOracle{
		gen:    gen,
		logger: oracleLogger(gen),
	}
}

// Generate returns one in-character reply from peerName to the conversation so far.
// One attempt, no retries; failures return a static filler.
func (o *ReplyOracle) Generate(ctx context.Context, topic chat.Topic, history []chat.Message, peerName string) string {
	if o.gen == nil {
		return UnconfiguredReply
	}

	reply, err := o.gen.Generate(ctx, BuildReplyPrompt(topic, history, peerName))
	if err != nil {
		o.logger.Warn().Err(err).Str("topic", string(topic)).Msg("Failed to generate reply, using filler")
		return FailedReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FailedReply
	}

	return reply
}

// RecentHistory returns the last HistoryWindow messages in their original order.
func RecentHistory(history []chat.Message) []chat.Message {
	if len(history) <= HistoryWindow {
		return history
	}
	return history[len(history)-HistoryWindow:]
}

// FormatHistory renders messages as "sender: text" lines.
func FormatHistory(messages []chat.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.SenderName+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// BuildReplyPrompt builds the role-play instruction for one peer reply.
func BuildReplyPrompt(topic chat.Topic, history []chat.Message, peerName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are roleplaying as a medical student named %q in an anonymous chat room.\n", peerName)
	fmt.Fprintf(&b, "The topic of the room is: %q.\n\n", string(topic))
	b.WriteString("Current conversation history:\n")
	b.WriteString(FormatHistory(RecentHistory(history)))
	b.WriteString("\n\nRespond to the last message as a peer.\n")
	b.WriteString("Keep it casual, short (under 40 words), and relevant to the medical student lifestyle.\n")

	switch topic {
	case chat.TopicMentalHealth:
		b.WriteString("Be supportive but act like a student peer, not a robot.\n")
	case chat.TopicUnserious:
		b.WriteString("Be funny or sarcastic.\n")
	}

	b.WriteString("\nReturn ONLY your reply text.")

	return b.String()
}
