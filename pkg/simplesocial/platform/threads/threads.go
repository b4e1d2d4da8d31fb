// Package threads publishes bundles through the Threads Graph API: a media
// container is created, then published. Text-only posts are supported
// directly; image posts reuse the instagram MediaHost contract for public
// URLs.
package threads

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

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/platform/instagram"
)

const (
	defaultGraphURL  = "https://graph.threads.net/v1.0"
	defaultTextLimit = 500
)

// Config holds Threads Graph API settings.
type Config struct {
	AccessToken string
	UserID      string

	// TextLimit overrides the default 500 character limit.
	TextLimit int

	// Limits carries the shared media constraints.
	Limits simplesocial.Limits

	// GraphURL overrides the API base URL, for tests.
	GraphURL string
}

// Platform is the Threads implementation of simplesocial.Platform. Threads
// posts carry text and at most one image; carousels and video are not
// supported by this adapter.
type Platform struct {
	httpClient  *http.Client
	graphURL    string
	accessToken string
	userID      string
	limits      simplesocial.Limits
	host        instagram.MediaHost
}

// New creates a Threads platform adapter. host may be nil for text-only use.
func New(cfg Config, host instagram.MediaHost) (*Platform, error) {
	if cfg.AccessToken == "" || cfg.UserID == "" {
		return nil, errors.New("threads: access token and user id are required")
	}

	limits := cfg.Limits
	limits.TextLimit = cfg.TextLimit
	if limits.TextLimit == 0 {
		limits.TextLimit = defaultTextLimit
	}
	limits.MaxImages = 1

	graphURL := cfg.GraphURL
	if graphURL == "" {
		graphURL = defaultGraphURL
	}

	return &Platform{
		httpClient:  &http.Client{Timeout: time.Minute},
		graphURL:    strings.TrimRight(graphURL, "/"),
		accessToken: cfg.AccessToken,
		userID:      cfg.UserID,
		limits:      limits,
		host:        host,
	}, nil
}

func (p *Platform) Name() string { return "threads" }

// Validate checks the bundle against Threads limits.
func (p *Platform) Validate(ctx context.Context, bundle *simplesocial.PostBundle) error {
	if bundle.Video != "" {
		return errors.New("threads adapter does not support video")
	}
	if len(bundle.Images) > 0 && p.host == nil {
		return errors.New("threads image posts require a media host")
	}
	return simplesocial.ValidateBundle(bundle, p.limits)
}

// Post creates a text or single-image container and publishes it.
func (p *Platform) Post(ctx context.Context, bundle *simplesocial.PostBundle) error {
	if err := p.Validate(ctx, bundle); err != nil {
		return err
	}

	params := url.Values{
		"media_type": {"TEXT"},
		"text":       {bundle.MainText},
	}
	if len(bundle.Images) > 0 {
		imageURL, err := p.host.HostFile(ctx, bundle.Images[0])
		if err != nil {
			return fmt.Errorf("host image: %w", err)
		}
		params.Set("media_type", "IMAGE")
		params.Set("image_url", imageURL)
		if bundle.AltText != "" {
			params.Set("alt_text", bundle.AltText)
		}
	}

	containerID, err := p.createContainer(ctx, params)
	if err != nil {
		return err
	}
	return p.publish(ctx, containerID)
}

type graphIDResponse struct {
	ID string `json:"id"`
}

func (p *Platform) createContainer(ctx context.Context, params url.Values) (string, error) {
	var out graphIDResponse
	if err := p.post(ctx, fmt.Sprintf("%s/%s/threads", p.graphURL, p.userID), params, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("container response missing id")
	}
	return out.ID, nil
}

func (p *Platform) publish(ctx context.Context, containerID string) error {
	var out graphIDResponse
	err := p.post(ctx, fmt.Sprintf("%s/%s/threads_publish", p.graphURL, p.userID), url.Values{
		"creation_id": {containerID},
	}, &out)
	if err != nil {
		return err
	}
	if out.ID == "" {
		return errors.New("publish response missing id")
	}
	return nil
}

func (p *Platform) post(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("threads api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
