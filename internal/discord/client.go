// Package discord resolves chat channels by name on a discordgo session.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"poapFeed/internal/dispatch"
	"poapFeed/internal/model"
)

// Client is a logged-in bot session.
type Client struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// Open logs the bot in and waits for the gateway handshake.
func Open(token string, logger *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord bot logged in", zap.String("user", r.User.String()), zap.Int("guilds", len(r.Guilds)))
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("open discord session: %w", err)
	}

	return &Client{session: session, logger: logger}, nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	return c.session.Close()
}

// ResolveChannel finds a text channel by name in the session's guild cache.
func (c *Client) ResolveChannel(name string) (dispatch.Channel, bool) {
	ch := findTextChannel(c.session.State, name)
	if ch == nil {
		return nil, false
	}
	return &textChannel{session: c.session, id: ch.ID, name: ch.Name}, true
}

func findTextChannel(state *discordgo.State, name string) *discordgo.Channel {
	if state == nil || name == "" {
		return nil
	}
	state.RLock()
	defer state.RUnlock()

	for _, guild := range state.Guilds {
		for _, ch := range guild.Channels {
			if ch.Name != name {
				continue
			}
			if ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews {
				return ch
			}
		}
	}
	return nil
}

type textChannel struct {
	session *discordgo.Session
	id      string
	name    string
}

func (c *textChannel) Name() string {
	return c.name
}

func (c *textChannel) Send(ctx context.Context, n model.Notification) error {
	if _, err := c.session.ChannelMessageSendEmbed(c.id, toEmbed(n), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send to %s: %w", c.name, err)
	}
	return nil
}

func toEmbed(n model.Notification) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	embed := &discordgo.MessageEmbed{
		Type:      discordgo.EmbedTypeRich,
		Title:     n.Title,
		URL:       n.URL,
		Color:     n.Color,
		Fields:    fields,
		Timestamp: n.Timestamp.Format(time.RFC3339),
		Author: &discordgo.MessageEmbedAuthor{
			Name: n.Author.Name,
			URL:  n.Author.URL,
		},
	}
	if n.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: n.Thumbnail}
	}
	return embed
}
