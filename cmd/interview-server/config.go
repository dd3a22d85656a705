package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
)

type Config struct {
	Addr          string
	DBPath        string
	TemplatesPath string
	Model         string
	APIKey        string
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("missing -addr")
	}
	if c.DBPath == "" {
		return errors.New("missing -db")
	}
	return nil
}

func defaultConfig() Config {
	addr := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	return Config{
		Addr:   addr,
		DBPath: "interview.sqlite",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address (default from PORT env var, else :3000)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path for sessions and reports")
	fs.StringVar(&cfg.TemplatesPath, "templates", cfg.TemplatesPath, "Optional JSON file with an array of interview templates")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for answer evaluation (empty = built-in heuristic)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DBPath = filepath.Clean(cfg.DBPath)
	if cfg.TemplatesPath != "" {
		cfg.TemplatesPath = filepath.Clean(cfg.TemplatesPath)
	}
	return cfg, nil
}
