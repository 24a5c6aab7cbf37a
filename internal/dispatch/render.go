package dispatch

import (
	"fmt"
	"strings"
	"time"

	"poapFeed/internal/model"
)

const (
	galleryURL = "https://poap.gallery/event/%d/?utm_share=discordfeed"
	scanURL    = "https://app.poap.xyz/scan/%s/?utm_share=discordfeed"
)

// Icons for the power tiers, lowest first.
const (
	IconNew   = "🆕"
	IconTier1 = "🟢"
	IconTier2 = "🟡"
	IconTier3 = "🔴"
	IconTier4 = "🔥"
)

// PowerIcon picks the icon for a holder's collection count.
func PowerIcon(power int) string {
	switch {
	case power <= 5:
		return IconNew
	case power <= 10:
		return IconTier1
	case power <= 20:
		return IconTier2
	case power <= 50:
		return IconTier3
	default:
		return IconTier4
	}
}

// Color is the accent color of a network.
func Color(network model.Network) int {
	if network == model.NetworkMainnet {
		return 0x5762cf
	}
	return 0x48a9a9
}

// Render builds the message for one enriched event.
func Render(rec model.EnrichedRecord, action model.Action, tokenID string, network model.Network, now time.Time) model.Notification {
	return model.Notification{
		Network: network,
		TokenID: tokenID,
		Title:   fmt.Sprintf("%s: %s ", action, rec.DescriptorName),
		Color:   Color(network),
		URL:     fmt.Sprintf(galleryURL, rec.DescriptorID),
		Fields: []model.NotificationField{
			{Name: "POAP Power", Value: fmt.Sprintf("%s  %d", PowerIcon(rec.Power), rec.Power), Inline: true},
			{Name: "Token ID", Value: "#" + tokenID, Inline: true},
			{Name: "Event ID", Value: fmt.Sprintf("#%d", rec.DescriptorID), Inline: true},
		},
		Author: model.NotificationAuthor{
			Name: rec.AuthorName(),
			URL:  fmt.Sprintf(scanURL, strings.ToLower(rec.Holder)),
		},
		Thumbnail: rec.ImageURL,
		Timestamp: now.UTC(),
	}
}
