// Package x publishes bundles to X (Twitter) using OAuth1 request signing,
// the v1.1 media upload endpoints and the v2 tweet endpoint. Images go
// through the simple upload; video goes through the chunked
// INIT/APPEND/FINALIZE flow the API requires for it.
package x

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

const (
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
	metadataPath     = "/1.1/media/metadata/create.json"

	defaultTextLimit = 280
	maxImagesPerPost = 4

	videoChunkSize = 4 * 1024 * 1024

	defaultVideoPollInterval = 3 * time.Second
	defaultVideoPollAttempts = 20
)

// Config holds X API credentials and content limits.
type Config struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string

	// TextLimit overrides the default 280 character limit.
	TextLimit int

	// Limits carries the shared media constraints (max image/video size).
	Limits simplesocial.Limits

	// UploadBaseURL and TweetURL override the API endpoints, for tests.
	UploadBaseURL string
	TweetURL      string

	// VideoPollInterval and VideoPollAttempts override how long to wait for
	// an uploaded video to finish processing, for tests. Zero values use the
	// defaults.
	VideoPollInterval time.Duration
	VideoPollAttempts int
}

// Platform is the X implementation of simplesocial.Platform.
type Platform struct {
	httpClient   *http.Client
	uploadURL    string
	tweetURL     string
	limits       simplesocial.Limits
	pollInterval time.Duration
	pollAttempts int
}

// New creates an X platform adapter. All four OAuth1 credentials are
// required.
func New(cfg Config) (*Platform, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil, errors.New("x: api key, api secret, access token and access token secret are required")
	}

	oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)

	limits := cfg.Limits
	limits.TextLimit = cfg.TextLimit
	if limits.TextLimit == 0 {
		limits.TextLimit = defaultTextLimit
	}
	if limits.MaxImages == 0 || limits.MaxImages > maxImagesPerPost {
		limits.MaxImages = maxImagesPerPost
	}

	uploadURL := cfg.UploadBaseURL
	if uploadURL == "" {
		uploadURL = defaultUploadURL
	}
	tweetURL := cfg.TweetURL
	if tweetURL == "" {
		tweetURL = defaultTweetURL
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
		httpClient:   oauthCfg.Client(oauth1.NoContext, token),
		uploadURL:    uploadURL,
		tweetURL:     tweetURL,
		limits:       limits,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
	}, nil
}

func (p *Platform) Name() string { return "x" }

// Validate checks the bundle against X limits.
func (p *Platform) Validate(ctx context.Context, bundle *simplesocial.PostBundle) error {
	return simplesocial.ValidateBundle(bundle, p.limits)
}

// Post uploads the bundle's media, attaches alt text, and creates the tweet.
func (p *Platform) Post(ctx context.Context, bundle *simplesocial.PostBundle) error {
	if err := p.Validate(ctx, bundle); err != nil {
		return err
	}

	var mediaIDs []string
	for _, path := range bundle.Images {
		id, err := p.uploadMedia(ctx, path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
		if bundle.AltText != "" {
			if err := p.setAltText(ctx, id, bundle.AltText); err != nil {
				return fmt.Errorf("set alt text for %s: %w", filepath.Base(path), err)
			}
		}
		mediaIDs = append(mediaIDs, id)
	}

	if bundle.Video != "" {
		// Alt text metadata applies to images only.
		id, err := p.uploadVideo(ctx, bundle.Video)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(bundle.Video), err)
		}
		mediaIDs = append(mediaIDs, id)
	}

	return p.createTweet(ctx, bundle.MainText, mediaIDs)
}

type processingInfo struct {
	State string `json:"state"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type uploadResponse struct {
	MediaIDString  string          `json:"media_id_string"`
	ProcessingInfo *processingInfo `json:"processing_info"`
}

func (p *Platform) uploadMedia(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out uploadResponse
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if out.MediaIDString == "" {
		return "", errors.New("upload response missing media id")
	}
	return out.MediaIDString, nil
}

// uploadVideo runs the chunked INIT/APPEND/FINALIZE flow. The simple upload
// rejects video beyond a few megabytes, so video always goes through here.
func (p *Platform) uploadVideo(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType = "video/mp4"
	}

	var initOut uploadResponse
	err = p.uploadCommand(ctx, url.Values{
		"command":        {"INIT"},
		"total_bytes":    {strconv.FormatInt(info.Size(), 10)},
		"media_type":     {mediaType},
		"media_category": {"tweet_video"},
	}, &initOut)
	if err != nil {
		return "", fmt.Errorf("init: %w", err)
	}
	if initOut.MediaIDString == "" {
		return "", errors.New("init response missing media id")
	}
	mediaID := initOut.MediaIDString

	buf := make([]byte, videoChunkSize)
	for segment := 0; ; segment++ {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			if err := p.appendChunk(ctx, mediaID, segment, buf[:n]); err != nil {
				return "", fmt.Errorf("append segment %d: %w", segment, err)
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}

	var finOut uploadResponse
	err = p.uploadCommand(ctx, url.Values{
		"command":  {"FINALIZE"},
		"media_id": {mediaID},
	}, &finOut)
	if err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}

	if finOut.ProcessingInfo != nil {
		switch finOut.ProcessingInfo.State {
		case "succeeded":
		case "failed":
			return "", fmt.Errorf("video processing failed: %s", finOut.ProcessingInfo.Error.Message)
		default:
			if err := p.waitForProcessing(ctx, mediaID); err != nil {
				return "", err
			}
		}
	}

	return mediaID, nil
}

func (p *Platform) appendChunk(ctx context.Context, mediaID string, segment int, chunk []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range map[string]string{
		"command":       "APPEND",
		"media_id":      mediaID,
		"segment_index": strconv.Itoa(segment),
	} {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("media", "chunk")
	if err != nil {
		return err
	}
	if _, err := part.Write(chunk); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return p.do(req, nil)
}

// waitForProcessing polls the STATUS command until the uploaded video leaves
// the pending/in_progress states.
func (p *Platform) waitForProcessing(ctx context.Context, mediaID string) error {
	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		statusURL := fmt.Sprintf("%s?command=STATUS&media_id=%s", p.uploadURL, url.QueryEscape(mediaID))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return err
		}
		var out uploadResponse
		if err := p.do(req, &out); err != nil {
			return err
		}

		if out.ProcessingInfo == nil || out.ProcessingInfo.State == "succeeded" {
			return nil
		}
		if out.ProcessingInfo.State == "failed" {
			return fmt.Errorf("video processing failed: %s", out.ProcessingInfo.Error.Message)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
	return fmt.Errorf("video %s not processed after %d attempts", mediaID, p.pollAttempts)
}

func (p *Platform) uploadCommand(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return p.do(req, out)
}

func (p *Platform) setAltText(ctx context.Context, mediaID, altText string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"media_id": mediaID,
		"alt_text": map[string]string{"text": altText},
	})
	if err != nil {
		return err
	}

	metadataURL := strings.TrimSuffix(p.uploadURL, "/1.1/media/upload.json") + metadataPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, metadataURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.do(req, nil)
}

type tweetRequest struct {
	Text  string      `json:"text,omitempty"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *Platform) createTweet(ctx context.Context, text string, mediaIDs []string) error {
	tr := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		tr.Media = &tweetMedia{MediaIDs: mediaIDs}
	}
	payload, err := json.Marshal(tr)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tweetURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var out tweetResponse
	if err := p.do(req, &out); err != nil {
		return err
	}
	if out.Data.ID == "" {
		return errors.New("tweet response missing id")
	}
	return nil
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
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
