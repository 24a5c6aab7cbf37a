package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"poapFeed/internal/model"
)

type fakeChannel struct {
	name string
	err  error

	mu   sync.Mutex
	sent []model.Notification
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(_ context.Context, n model.Notification) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	c.sent = append(c.sent, n)
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type fakeResolver map[string]*fakeChannel

func (r fakeResolver) ResolveChannel(name string) (Channel, bool) {
	ch, ok := r[name]
	if !ok {
		return nil, false
	}
	return ch, true
}

type fakeMirror struct {
	published []model.Notification
}

func (m *fakeMirror) Publish(_ context.Context, n model.Notification) error {
	m.published = append(m.published, n)
	return nil
}

var testConfig = Config{
	PrimaryChannel:    "poap-feed",
	RestrictedChannel: "poap-mainnet",
	RestrictedNetwork: model.NetworkMainnet,
}

var testRecord = model.EnrichedRecord{
	DescriptorID:   1710,
	DescriptorName: "Avastars Birthday Party WINNER POAP",
	ImageURL:       "https://example/img.png",
	Holder:         "0x4af37e995eb4fadc77a5ee355ae0a80edc5d1f04",
	Power:          3,
}

func TestDispatchRestrictedNetworkSendsTwice(t *testing.T) {
	primary := &fakeChannel{name: "poap-feed"}
	restricted := &fakeChannel{name: "poap-mainnet"}
	d := NewDispatcher(testConfig, fakeResolver{"poap-feed": primary, "poap-mainnet": restricted}, nil, nil)

	sent := d.Dispatch(context.Background(), testRecord, model.ActionMint, "168570", model.NetworkMainnet)

	require.Equal(t, 2, sent)
	require.Equal(t, 1, primary.count())
	require.Equal(t, 1, restricted.count())
	require.Equal(t, primary.sent[0].Title, restricted.sent[0].Title)
}

func TestDispatchOtherNetworkSendsPrimaryOnly(t *testing.T) {
	primary := &fakeChannel{name: "poap-feed"}
	restricted := &fakeChannel{name: "poap-mainnet"}
	d := NewDispatcher(testConfig, fakeResolver{"poap-feed": primary, "poap-mainnet": restricted}, nil, nil)

	sent := d.Dispatch(context.Background(), testRecord, model.ActionMint, "168570", model.NetworkXDAI)

	require.Equal(t, 1, sent)
	require.Equal(t, 1, primary.count())
	require.Equal(t, 0, restricted.count())
}

func TestDispatchMissingChannelsIsSilent(t *testing.T) {
	d := NewDispatcher(testConfig, fakeResolver{}, nil, nil)

	require.NotPanics(t, func() {
		sent := d.Dispatch(context.Background(), testRecord, model.ActionBurn, "1", model.NetworkMainnet)
		require.Equal(t, 0, sent)
	})
}

func TestDispatchNilResolver(t *testing.T) {
	mirror := &fakeMirror{}
	d := NewDispatcher(testConfig, nil, nil, nil, mirror)

	sent := d.Dispatch(context.Background(), testRecord, model.ActionMint, "1", model.NetworkXDAI)

	require.Equal(t, 0, sent)
	require.Len(t, mirror.published, 1)
}

func TestDispatchSendFailureDoesNotBlockOtherChannel(t *testing.T) {
	primary := &fakeChannel{name: "poap-feed", err: errors.New("rate limited")}
	restricted := &fakeChannel{name: "poap-mainnet"}
	mirror := &fakeMirror{}
	d := NewDispatcher(testConfig, fakeResolver{"poap-feed": primary, "poap-mainnet": restricted}, nil, nil, mirror)

	sent := d.Dispatch(context.Background(), testRecord, model.ActionMint, "168570", model.NetworkMainnet)

	require.Equal(t, 1, sent)
	require.Equal(t, 1, restricted.count())
	require.Len(t, mirror.published, 1)
	require.Equal(t, "MINT: Avastars Birthday Party WINNER POAP ", mirror.published[0].Title)
}
