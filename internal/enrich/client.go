// Package enrich resolves a token id into the off-chain record shown in a notification.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"poapFeed/internal/model"
)

const DefaultBaseURL = "https://api.poap.xyz"

const maxBodyBytes = 4 << 20

// Config controls the lookup client.
type Config struct {
	BaseURL string
	// Timeout bounds each individual lookup. A timeout counts as a failed lookup.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client chains the descriptor, alias and power lookups.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    httpClient,
		logger:  logger,
	}
}

// Descriptor is the event a token was issued for.
type Descriptor struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type tokenResponse struct {
	Event *Descriptor `json:"event"`
	Owner string      `json:"owner"`
}

type aliasResponse struct {
	ENS *string `json:"ens"`
}

// Enrich runs the three lookups in order. Any failure short-circuits the chain
// and is returned as a *LookupError; no partial record is produced.
func (c *Client) Enrich(ctx context.Context, tokenID string) (model.EnrichedRecord, error) {
	desc, owner, err := c.LookupDescriptor(ctx, tokenID)
	if err != nil {
		return model.EnrichedRecord{}, c.fail(StageDescriptor, tokenID, err)
	}

	alias, _, err := c.LookupAlias(ctx, owner)
	if err != nil {
		return model.EnrichedRecord{}, c.fail(StageAlias, tokenID, err)
	}

	power, err := c.LookupPower(ctx, owner)
	if err != nil {
		return model.EnrichedRecord{}, c.fail(StagePower, tokenID, err)
	}

	return model.EnrichedRecord{
		DescriptorID:   desc.ID,
		DescriptorName: desc.Name,
		ImageURL:       desc.ImageURL,
		Holder:         owner,
		Alias:          alias,
		Power:          power,
	}, nil
}

// LookupDescriptor resolves a token into its descriptor and current holder.
func (c *Client) LookupDescriptor(ctx context.Context, tokenID string) (Descriptor, string, error) {
	var resp tokenResponse
	if err := c.getJSON(ctx, "/token/"+url.PathEscape(tokenID), &resp); err != nil {
		return Descriptor{}, "", err
	}
	if resp.Event == nil {
		return Descriptor{}, "", errors.New("response has no event")
	}
	if resp.Owner == "" {
		return Descriptor{}, "", errors.New("response has no owner")
	}
	if resp.Event.ImageURL == "" {
		return Descriptor{}, "", errors.New("event has no image url")
	}
	return *resp.Event, resp.Owner, nil
}

// LookupAlias resolves a holder to its registered name. A holder without a name
// is a successful lookup with ok == false.
func (c *Client) LookupAlias(ctx context.Context, address string) (alias string, ok bool, err error) {
	var resp aliasResponse
	if err := c.getJSON(ctx, "/actions/ens_lookup/"+url.PathEscape(address), &resp); err != nil {
		return "", false, err
	}
	if resp.ENS == nil || *resp.ENS == "" {
		return "", false, nil
	}
	return *resp.ENS, true, nil
}

// LookupPower counts the tokens held by address.
func (c *Client) LookupPower(ctx context.Context, address string) (int, error) {
	var tokens []json.RawMessage
	if err := c.getJSON(ctx, "/actions/scan/"+url.PathEscape(address), &tokens); err != nil {
		return 0, err
	}
	return len(tokens), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) fail(stage Stage, tokenID string, err error) error {
	c.logger.Warn("lookup failed",
		zap.String("stage", string(stage)),
		zap.String("token_id", tokenID),
		zap.Error(err),
	)
	return &LookupError{Stage: stage, TokenID: tokenID, Err: err}
}
