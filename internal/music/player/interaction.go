package player

import "context"

// MessageRef points at a message previously sent through an Interaction.
type MessageRef struct {
	ID       string
	Followup bool
}

type Embed struct {
	Title       string
	Description string
	ImageURL    string
}

// Interaction is where a play request reports back to the user.
type Interaction interface {
	Send(ctx context.Context, content string) (*MessageRef, error)
	SendEmbed(ctx context.Context, embed Embed) (*MessageRef, error)
	// Post always writes a plain channel message. Messages edited for longer
	// than the interaction token lives go through Post.
	Post(ctx context.Context, content string) (*MessageRef, error)
	Edit(ctx context.Context, msg *MessageRef, content string) error
}
