package x

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

func testConfig(srv *httptest.Server) Config {
	return Config{
		APIKey:            "k",
		APISecret:         "s",
		AccessToken:       "t",
		AccessTokenSecret: "ts",
		UploadBaseURL:     srv.URL + "/1.1/media/upload.json",
		TweetURL:          srv.URL + "/2/tweets",
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestPostImageBundle(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "sunset-1.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpegdata"), 0644))

	var uploads, tweets int
	var altPayload map[string]interface{}
	var tweetPayload map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		uploads++
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("media")
		require.NoError(t, err)
		w.Write([]byte(`{"media_id_string":"111"}`))
	})
	mux.HandleFunc("/1.1/media/metadata/create.json", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &altPayload))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		tweets++
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &tweetPayload))
		w.Write([]byte(`{"data":{"id":"t1"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	platform, err := New(testConfig(srv))
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{
		Basename: "sunset",
		MainText: "golden hour",
		AltText:  "a warm sunset",
		Images:   []string{image},
	}
	require.NoError(t, platform.Post(context.Background(), bundle))

	assert.Equal(t, 1, uploads)
	assert.Equal(t, 1, tweets)
	assert.Equal(t, "111", altPayload["media_id"])
	assert.Equal(t, "golden hour", tweetPayload["text"])

	media := tweetPayload["media"].(map[string]interface{})
	assert.Equal(t, []interface{}{"111"}, media["media_ids"].([]interface{}))
}

func TestPostTextOnly(t *testing.T) {
	var tweetPayload map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &tweetPayload))
		w.Write([]byte(`{"data":{"id":"t2"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	platform, err := New(testConfig(srv))
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{Basename: "haiku", MainText: "five seven five"}
	require.NoError(t, platform.Post(context.Background(), bundle))

	assert.Equal(t, "five seven five", tweetPayload["text"])
	_, hasMedia := tweetPayload["media"]
	assert.False(t, hasMedia)
}

func TestPostVideoBundleChunked(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "storm.mp4")
	payload := bytes.Repeat([]byte("v"), 10_000)
	require.NoError(t, os.WriteFile(video, payload, 0644))

	var initParams url.Values
	var segments []string
	var appendedBytes int64
	var finalized bool
	var statusCalls int
	var tweetPayload map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statusCalls++
			w.Write([]byte(`{"media_id_string":"222","processing_info":{"state":"succeeded"}}`))
			return
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			require.NoError(t, r.ParseMultipartForm(8<<20))
			assert.Equal(t, "APPEND", r.FormValue("command"))
			assert.Equal(t, "222", r.FormValue("media_id"))
			segments = append(segments, r.FormValue("segment_index"))
			file, _, err := r.FormFile("media")
			require.NoError(t, err)
			n, err := io.Copy(io.Discard, file)
			require.NoError(t, err)
			appendedBytes += n
			w.WriteHeader(http.StatusOK)
			return
		}
		require.NoError(t, r.ParseForm())
		switch r.FormValue("command") {
		case "INIT":
			initParams = r.Form
			w.Write([]byte(`{"media_id_string":"222"}`))
		case "FINALIZE":
			finalized = true
			w.Write([]byte(`{"media_id_string":"222","processing_info":{"state":"pending","check_after_secs":1}}`))
		default:
			t.Errorf("unexpected upload command %q", r.FormValue("command"))
		}
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &tweetPayload))
		w.Write([]byte(`{"data":{"id":"t3"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv)
	cfg.VideoPollInterval = time.Millisecond
	platform, err := New(cfg)
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{
		Basename: "storm",
		MainText: "thunder rolling in",
		Video:    video,
	}
	require.NoError(t, platform.Post(context.Background(), bundle))

	assert.Equal(t, "10000", initParams.Get("total_bytes"))
	assert.Equal(t, "video/mp4", initParams.Get("media_type"))
	assert.Equal(t, "tweet_video", initParams.Get("media_category"))
	assert.Equal(t, []string{"0"}, segments)
	assert.Equal(t, int64(len(payload)), appendedBytes)
	assert.True(t, finalized)
	assert.GreaterOrEqual(t, statusCalls, 1)

	media := tweetPayload["media"].(map[string]interface{})
	assert.Equal(t, []interface{}{"222"}, media["media_ids"].([]interface{}))
}

func TestPostVideoProcessingFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "storm.mp4")
	require.NoError(t, os.WriteFile(video, []byte("vid"), 0644))

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.FormValue("command") == "FINALIZE" {
			w.Write([]byte(`{"media_id_string":"222","processing_info":{"state":"failed","error":{"message":"unsupported codec"}}}`))
			return
		}
		w.Write([]byte(`{"media_id_string":"222"}`))
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no tweet expected when video processing fails")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	platform, err := New(testConfig(srv))
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{Basename: "storm", Video: video}
	err = platform.Post(context.Background(), bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported codec")
}

func TestPostRejectsOverlongText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for invalid content")
	}))
	defer srv.Close()

	platform, err := New(testConfig(srv))
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{Basename: "long", MainText: strings.Repeat("a", 281)}
	err = platform.Post(context.Background(), bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main text exceeds 280")
}

func TestPostSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"duplicate"}]}`, http.StatusForbidden)
	}))
	defer srv.Close()

	platform, err := New(testConfig(srv))
	require.NoError(t, err)

	bundle := &simplesocial.PostBundle{Basename: "haiku", MainText: "again"}
	err = platform.Post(context.Background(), bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
