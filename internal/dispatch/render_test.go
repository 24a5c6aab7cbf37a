package dispatch

import (
	"testing"
	"time"

	"poapFeed/internal/model"
)

func TestPowerIconTiers(t *testing.T) {
	cases := []struct {
		power int
		want  string
	}{
		{0, IconNew},
		{5, IconNew},
		{6, IconTier1},
		{10, IconTier1},
		{11, IconTier2},
		{20, IconTier2},
		{21, IconTier3},
		{50, IconTier3},
		{51, IconTier4},
		{5000, IconTier4},
	}
	for _, tc := range cases {
		if got := PowerIcon(tc.power); got != tc.want {
			t.Fatalf("power %d: got %s want %s", tc.power, got, tc.want)
		}
	}
}

func TestPowerIconMonotonic(t *testing.T) {
	rank := map[string]int{IconNew: 0, IconTier1: 1, IconTier2: 2, IconTier3: 3, IconTier4: 4}
	prev := 0
	for power := 0; power <= 100; power++ {
		r := rank[PowerIcon(power)]
		if r < prev {
			t.Fatalf("tier decreased at power %d", power)
		}
		prev = r
	}
}

func TestRender(t *testing.T) {
	rec := model.EnrichedRecord{
		DescriptorID:   1710,
		DescriptorName: "Avastars Birthday Party WINNER POAP",
		ImageURL:       "https://storage.googleapis.com/poapmedia/avastars.png",
		Holder:         "0x4AF37E995EB4FADC77A5EE355AE0A80EDC5D1F04",
		Power:          3,
	}
	now := time.Date(2021, 4, 20, 12, 0, 0, 0, time.UTC)

	msg := Render(rec, model.ActionMint, "168570", model.NetworkXDAI, now)

	if msg.Title != "MINT: Avastars Birthday Party WINNER POAP " {
		t.Fatalf("title mismatch: %q", msg.Title)
	}
	if msg.Color != 0x48a9a9 {
		t.Fatalf("color mismatch: %x", msg.Color)
	}
	if msg.URL != "https://poap.gallery/event/1710/?utm_share=discordfeed" {
		t.Fatalf("url mismatch: %s", msg.URL)
	}
	if len(msg.Fields) != 3 {
		t.Fatalf("fields mismatch: %+v", msg.Fields)
	}
	if msg.Fields[0].Value != IconNew+"  3" || msg.Fields[1].Value != "#168570" || msg.Fields[2].Value != "#1710" {
		t.Fatalf("field values mismatch: %+v", msg.Fields)
	}
	for _, f := range msg.Fields {
		if !f.Inline {
			t.Fatalf("field %s should be inline", f.Name)
		}
	}
	if msg.Author.Name != "0x4af37e995eb4fadc77a5ee355ae0a80edc5d1f04" {
		t.Fatalf("author mismatch: %s", msg.Author.Name)
	}
	if msg.Thumbnail != rec.ImageURL || !msg.Timestamp.Equal(now) {
		t.Fatalf("thumbnail/timestamp mismatch: %+v", msg)
	}
}

func TestRenderPrefersAlias(t *testing.T) {
	rec := model.EnrichedRecord{DescriptorID: 1, DescriptorName: "x", Holder: "0xABC", Alias: "poap.eth", Power: 60}
	msg := Render(rec, model.ActionTransfer, "1", model.NetworkMainnet, time.Now())

	if msg.Author.Name != "poap.eth" {
		t.Fatalf("author mismatch: %s", msg.Author.Name)
	}
	if msg.Color != 0x5762cf {
		t.Fatalf("color mismatch: %x", msg.Color)
	}
	if msg.Title != "TRANSFER: x " {
		t.Fatalf("title mismatch: %q", msg.Title)
	}
}
