package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hollowaylabs/interviewkit/interview"
)

type Config struct {
	TemplatePath    string
	AnswersPath     string
	OutPath         string
	Mode            string
	RoomName        string
	ParticipantName string
	Pretty          bool
}

func (c Config) Validate() error {
	if c.AnswersPath == "" {
		return errors.New("missing -answers")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	switch interview.Mode(c.Mode) {
	case interview.ModeLearning, interview.ModeStrict:
	default:
		return fmt.Errorf("invalid -mode %q (want learning or strict)", c.Mode)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Mode:   string(interview.ModeStrict),
		Pretty: true,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.TemplatePath, "template", cfg.TemplatePath, "Optional template JSON with the question list (empty = generic question)")
	fs.StringVar(&cfg.AnswersPath, "answers", cfg.AnswersPath, "Path to a text file with one scripted answer per line")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the session JSON")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Session mode: learning or strict")
	fs.StringVar(&cfg.RoomName, "room", cfg.RoomName, "Room name for the simulated session (default: generated)")
	fs.StringVar(&cfg.ParticipantName, "participant", cfg.ParticipantName, "Participant name stored in the session metadata")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print the session JSON")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.TemplatePath != "" {
		cfg.TemplatePath = filepath.Clean(cfg.TemplatePath)
	}
	if cfg.AnswersPath != "" {
		cfg.AnswersPath = filepath.Clean(cfg.AnswersPath)
	}
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	return cfg, nil
}
