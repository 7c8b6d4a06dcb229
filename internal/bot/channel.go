package bot

import (
	"context"
	"sync"
	"time"

	"github.com/keshon/domme-music/internal/music/player"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// EditInterval is the minimum spacing of progress edits.
const EditInterval = time.Second

// InteractionChannel reports playback progress for one slash command. The
// first message answers the deferred interaction; later ones go to the
// channel because the interaction token expires after 15 minutes.
type InteractionChannel struct {
	followup     func(params *discordgo.WebhookParams) (*discordgo.Message, error)
	editFollowup func(messageID, content string) error
	send         func(content string) (*discordgo.Message, error)
	sendEmbed    func(embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	editMessage  func(messageID, content string) error

	limiter *rate.Limiter

	mu       sync.Mutex
	answered bool
}

func NewInteractionChannel(s *discordgo.Session, i *discordgo.InteractionCreate) *InteractionChannel {
	channelID := i.ChannelID
	return &InteractionChannel{
		followup: func(params *discordgo.WebhookParams) (*discordgo.Message, error) {
			return s.FollowupMessageCreate(i.Interaction, true, params)
		},
		editFollowup: func(messageID, content string) error {
			_, err := s.FollowupMessageEdit(i.Interaction, messageID, &discordgo.WebhookEdit{Content: &content})
			return err
		},
		send: func(content string) (*discordgo.Message, error) {
			return s.ChannelMessageSend(channelID, content)
		},
		sendEmbed: func(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
			return s.ChannelMessageSendEmbed(channelID, embed)
		},
		editMessage: func(messageID, content string) error {
			_, err := s.ChannelMessageEdit(channelID, messageID, content)
			return err
		},
		limiter: rate.NewLimiter(rate.Every(EditInterval), 1),
	}
}

// claimFollowup reports whether this call is the one answering the
// interaction.
func (c *InteractionChannel) claimFollowup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.answered {
		return false
	}
	c.answered = true
	return true
}

func (c *InteractionChannel) Send(ctx context.Context, content string) (*player.MessageRef, error) {
	if c.claimFollowup() {
		m, err := c.followup(&discordgo.WebhookParams{Content: content})
		if err != nil {
			return nil, err
		}
		return &player.MessageRef{ID: m.ID, Followup: true}, nil
	}
	m, err := c.send(content)
	if err != nil {
		return nil, err
	}
	return &player.MessageRef{ID: m.ID}, nil
}

// Post always writes to the channel, so the message stays editable after
// the interaction token has expired.
func (c *InteractionChannel) Post(ctx context.Context, content string) (*player.MessageRef, error) {
	m, err := c.send(content)
	if err != nil {
		return nil, err
	}
	return &player.MessageRef{ID: m.ID}, nil
}

func (c *InteractionChannel) SendEmbed(ctx context.Context, e player.Embed) (*player.MessageRef, error) {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       EmbedColor,
	}
	if e.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}

	if c.claimFollowup() {
		m, err := c.followup(&discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}})
		if err != nil {
			return nil, err
		}
		return &player.MessageRef{ID: m.ID, Followup: true}, nil
	}
	m, err := c.sendEmbed(embed)
	if err != nil {
		return nil, err
	}
	return &player.MessageRef{ID: m.ID}, nil
}

// Edit waits for the edit limiter, then updates msg in place.
func (c *InteractionChannel) Edit(ctx context.Context, msg *player.MessageRef, content string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if msg.Followup {
		return c.editFollowup(msg.ID, content)
	}
	return c.editMessage(msg.ID, content)
}

// Fail reports an error line. Before anything else was sent it answers
// the interaction.
func (c *InteractionChannel) Fail(ctx context.Context, content string) error {
	if c.claimFollowup() {
		_, err := c.followup(&discordgo.WebhookParams{Content: content, Flags: discordgo.MessageFlagsEphemeral})
		return err
	}
	_, err := c.send(content)
	return err
}
