package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	InPath       string
	OutPath      string
	TemplatePath string
	Model        string
	APIKey       string
	DBPath       string
	Pretty       bool
	Overwrite    bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Pretty: true,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to a session JSON file")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the report JSON (default: <in>.report.json)")
	fs.StringVar(&cfg.TemplatePath, "template", cfg.TemplatePath, "Optional template JSON with the session's question list")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for answer evaluation (empty = built-in heuristic)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Optional SQLite database to also persist the session and report")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print the report JSON")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite an existing report file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPath = cleanPath(cfg.InPath)
	cfg.OutPath = cleanPath(cfg.OutPath)
	cfg.TemplatePath = cleanPath(cfg.TemplatePath)
	cfg.DBPath = cleanPath(cfg.DBPath)
	if cfg.OutPath == "" && cfg.InPath != "" {
		cfg.OutPath = deriveOutPath(cfg.InPath)
	}
	return cfg, nil
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

func deriveOutPath(inPath string) string {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	return base + ".report.json"
}
