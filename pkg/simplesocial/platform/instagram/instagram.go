// Package instagram publishes bundles through the Instagram Content
// Publishing Graph API: media containers are created from publicly reachable
// URLs and then published. Local files are made reachable through a MediaHost
// collaborator.
package instagram

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
)

const (
	defaultGraphURL  = "https://graph.facebook.com/v21.0"
	defaultTextLimit = 2200
	carouselLimit    = 10

	defaultVideoPollInterval = 3 * time.Second
	defaultVideoPollAttempts = 20
)

// MediaHost makes a local media file reachable at a public URL. The S3
// archive backend implements this; any HTTP-served directory works too.
type MediaHost interface {
	HostFile(ctx context.Context, path string) (string, error)
}

// Config holds Instagram Graph API settings.
type Config struct {
	// AccessToken is a long-lived user token with content publishing scope.
	AccessToken string

	// UserID is the Instagram professional account ID.
	UserID string

	// TextLimit overrides the default 2200 character caption limit.
	TextLimit int

	// Limits carries the shared media constraints.
	Limits simplesocial.Limits

	// GraphURL overrides the API base URL, for tests.
	GraphURL string

	// VideoPollInterval and VideoPollAttempts override how long to wait for
	// a video container to finish processing, for tests. Zero values use the
	// defaults.
	VideoPollInterval time.Duration
	VideoPollAttempts int
}

// Platform is the Instagram implementation of simplesocial.Platform.
type Platform struct {
	httpClient   *http.Client
	graphURL     string
	accessToken  string
	userID       string
	limits       simplesocial.Limits
	host         MediaHost
	pollInterval time.Duration
	pollAttempts int
}

// New creates an Instagram platform adapter.
func New(cfg Config, host MediaHost) (*Platform, error) {
	if cfg.AccessToken == "" || cfg.UserID == "" {
		return nil, errors.New("instagram: access token and user id are required")
	}
	if host == nil {
		return nil, errors.New("instagram: a media host is required")
	}

	limits := cfg.Limits
	limits.TextLimit = cfg.TextLimit
	if limits.TextLimit == 0 {
		limits.TextLimit = defaultTextLimit
	}
	if limits.MaxImages == 0 || limits.MaxImages > carouselLimit {
		limits.MaxImages = carouselLimit
	}

	graphURL := cfg.GraphURL
	if graphURL == "" {
		graphURL = defaultGraphURL
	}

	pollInterval := cfg.VideoPollInterval
	if pollInterval == 0 {
		pollInterval = defaultVideoPollInterval
	}
	pollAttempts := cfg.VideoPollAttempts
	if pollAttempts == 0 {
		pollAttempts = defaultVideoPollAttempts
	}

	return &Platform{
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
		graphURL:     strings.TrimRight(graphURL, "/"),
		accessToken:  cfg.AccessToken,
		userID:       cfg.UserID,
		limits:       limits,
		host:         host,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
	}, nil
}

func (p *Platform) Name() string { return "instagram" }

// Validate checks the bundle against Instagram limits. Instagram cannot post
// bare text, so a media-less bundle is rejected here too.
func (p *Platform) Validate(ctx context.Context, bundle *simplesocial.PostBundle) error {
	if !bundle.HasMedia() {
		return errors.New("instagram requires image or video content")
	}
	return simplesocial.ValidateBundle(bundle, p.limits)
}

// Post hosts the bundle's media, builds the right container shape (single
// image, carousel, or video) and publishes it.
func (p *Platform) Post(ctx context.Context, bundle *simplesocial.PostBundle) error {
	if err := p.Validate(ctx, bundle); err != nil {
		return err
	}

	containerID, err := p.createContainer(ctx, bundle)
	if err != nil {
		return err
	}

	return p.publish(ctx, containerID)
}

func (p *Platform) createContainer(ctx context.Context, bundle *simplesocial.PostBundle) (string, error) {
	if bundle.Video != "" {
		videoURL, err := p.host.HostFile(ctx, bundle.Video)
		if err != nil {
			return "", fmt.Errorf("host video: %w", err)
		}
		id, err := p.createMedia(ctx, url.Values{
			"media_type": {"REELS"},
			"video_url":  {videoURL},
			"caption":    {bundle.MainText},
		})
		if err != nil {
			return "", err
		}
		if err := p.waitForContainer(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}

	if len(bundle.Images) == 1 {
		imageURL, err := p.host.HostFile(ctx, bundle.Images[0])
		if err != nil {
			return "", fmt.Errorf("host image: %w", err)
		}
		return p.createMedia(ctx, url.Values{
			"image_url": {imageURL},
			"caption":   {bundle.MainText},
		})
	}

	// Carousel: one child container per image, then the parent.
	var children []string
	for _, image := range bundle.Images {
		imageURL, err := p.host.HostFile(ctx, image)
		if err != nil {
			return "", fmt.Errorf("host image: %w", err)
		}
		id, err := p.createMedia(ctx, url.Values{
			"image_url":        {imageURL},
			"is_carousel_item": {"true"},
		})
		if err != nil {
			return "", err
		}
		children = append(children, id)
	}
	return p.createMedia(ctx, url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
		"caption":    {bundle.MainText},
	})
}

type graphIDResponse struct {
	ID string `json:"id"`
}

func (p *Platform) createMedia(ctx context.Context, params url.Values) (string, error) {
	var out graphIDResponse
	if err := p.post(ctx, fmt.Sprintf("%s/%s/media", p.graphURL, p.userID), params, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("media container response missing id")
	}
	return out.ID, nil
}

func (p *Platform) publish(ctx context.Context, containerID string) error {
	var out graphIDResponse
	err := p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.graphURL, p.userID), url.Values{
		"creation_id": {containerID},
	}, &out)
	if err != nil {
		return err
	}
	if out.ID == "" {
		return errors.New("publish response missing media id")
	}
	return nil
}

type containerStatus struct {
	StatusCode string `json:"status_code"`
}

// waitForContainer polls a video container until processing finishes. Video
// containers cannot be published while status_code is IN_PROGRESS.
func (p *Platform) waitForContainer(ctx context.Context, containerID string) error {
	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		statusURL := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
			p.graphURL, containerID, url.QueryEscape(p.accessToken))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return err
		}
		var status containerStatus
		if err := p.do(req, &status); err != nil {
			return err
		}

		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return fmt.Errorf("video container %s entered state %s", containerID, status.StatusCode)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
	return fmt.Errorf("video container %s not ready after %d attempts", containerID, p.pollAttempts)
}

func (p *Platform) post(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return p.do(req, out)
}

func (p *Platform) do(req *http.Request, out interface{}) error {
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
		return fmt.Errorf("graph api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
