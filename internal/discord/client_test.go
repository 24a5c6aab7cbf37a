package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"poapFeed/internal/model"
)

func TestFindTextChannel(t *testing.T) {
	state := discordgo.NewState()
	err := state.GuildAdd(&discordgo.Guild{
		ID: "g1",
		Channels: []*discordgo.Channel{
			{ID: "voice", GuildID: "g1", Name: "poap-feed", Type: discordgo.ChannelTypeGuildVoice},
			{ID: "text", GuildID: "g1", Name: "poap-feed", Type: discordgo.ChannelTypeGuildText},
			{ID: "other", GuildID: "g1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		},
	})
	if err != nil {
		t.Fatalf("guild add: %v", err)
	}

	ch := findTextChannel(state, "poap-feed")
	if ch == nil || ch.ID != "text" {
		t.Fatalf("expected the text channel, got %+v", ch)
	}
	if findTextChannel(state, "missing") != nil {
		t.Fatalf("unknown name should not resolve")
	}
	if findTextChannel(state, "") != nil {
		t.Fatalf("empty name should not resolve")
	}
	if findTextChannel(nil, "poap-feed") != nil {
		t.Fatalf("nil state should not resolve")
	}
}

func TestToEmbed(t *testing.T) {
	ts := time.Date(2021, 4, 20, 12, 0, 0, 0, time.UTC)
	embed := toEmbed(model.Notification{
		Title:     "MINT: Avastars Birthday Party WINNER POAP ",
		Color:     0x48a9a9,
		URL:       "https://poap.gallery/event/1710/?utm_share=discordfeed",
		Fields:    []model.NotificationField{{Name: "Token ID", Value: "#168570", Inline: true}},
		Author:    model.NotificationAuthor{Name: "vitalik.eth", URL: "https://app.poap.xyz/scan/0xabc/?utm_share=discordfeed"},
		Thumbnail: "https://example/img.png",
		Timestamp: ts,
	})

	if embed.Title != "MINT: Avastars Birthday Party WINNER POAP " || embed.Color != 0x48a9a9 {
		t.Fatalf("embed header mismatch: %+v", embed)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline || embed.Fields[0].Value != "#168570" {
		t.Fatalf("fields mismatch: %+v", embed.Fields)
	}
	if embed.Author == nil || embed.Author.Name != "vitalik.eth" {
		t.Fatalf("author mismatch: %+v", embed.Author)
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://example/img.png" {
		t.Fatalf("thumbnail mismatch: %+v", embed.Thumbnail)
	}
	if embed.Timestamp != "2021-04-20T12:00:00Z" {
		t.Fatalf("timestamp mismatch: %s", embed.Timestamp)
	}
}
