// Command envgen converts a config.json with platform credentials into a
// .env file readable by the simple-social executables. The output file is
// written with 0600 permissions since it carries secrets.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

type fileConfig struct {
	X struct {
		Enabled           bool   `json:"enabled"`
		APIKey            string `json:"api_key"`
		APISecret         string `json:"api_secret"`
		AccessToken       string `json:"access_token"`
		AccessTokenSecret string `json:"access_token_secret"`
	} `json:"x"`
	Instagram struct {
		Enabled     bool   `json:"enabled"`
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	} `json:"instagram"`
	Threads struct {
		Enabled     bool   `json:"enabled"`
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	} `json:"threads"`
	Content struct {
		PostsDirectory string `json:"posts_directory"`
	} `json:"content"`
}

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	outPath := flag.String("out", ".env", "path to output .env file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	raw, err := os.ReadFile(*configPath)
	if err != nil {
		logger.Error("Failed to read config file", "path", *configPath, "err", err)
		os.Exit(1)
	}

	var cfg fileConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		logger.Error("Failed to parse config file", "path", *configPath, "err", err)
		os.Exit(1)
	}

	var lines []string
	add := func(key, value string) {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}

	if cfg.Content.PostsDirectory != "" {
		add("POSTS_DIRECTORY", cfg.Content.PostsDirectory)
	}
	if cfg.X.Enabled {
		add("X_ENABLED", "true")
		add("X_API_KEY", cfg.X.APIKey)
		add("X_API_SECRET", cfg.X.APISecret)
		add("X_ACCESS_TOKEN", cfg.X.AccessToken)
		add("X_ACCESS_TOKEN_SECRET", cfg.X.AccessTokenSecret)
	}
	if cfg.Instagram.Enabled {
		add("INSTAGRAM_ENABLED", "true")
		add("INSTAGRAM_ACCESS_TOKEN", cfg.Instagram.AccessToken)
		add("INSTAGRAM_USER_ID", cfg.Instagram.UserID)
	}
	if cfg.Threads.Enabled {
		add("THREADS_ENABLED", "true")
		add("THREADS_ACCESS_TOKEN", cfg.Threads.AccessToken)
		add("THREADS_USER_ID", cfg.Threads.UserID)
	}

	var out string
	for _, line := range lines {
		out += line + "\n"
	}

	if err := os.WriteFile(*outPath, []byte(out), 0600); err != nil {
		logger.Error("Failed to write env file", "path", *outPath, "err", err)
		os.Exit(1)
	}

	logger.Info("Wrote env file", "path", *outPath, "entries", len(lines))
}
