// Command interview-server hosts live interview sessions over websockets:
// POST /sessions starts a session, /ws/:room runs the turn loop, and ended
// sessions are analyzed and persisted so reports can be fetched later.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hollowaylabs/interviewkit/interview"
	"github.com/hollowaylabs/interviewkit/interview/fileutils"
	"github.com/hollowaylabs/interviewkit/interview/provider"
	"github.com/hollowaylabs/interviewkit/interview/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer db.Close()

	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	evaluator, err := buildEvaluator(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	generator := interview.NewReportGenerator(nil, nil, interview.NewSemanticAnalyzer(evaluator))
	srv := newServer(db, generator, templates)

	app := fiber.New()
	app.Use(logger.New())
	srv.routes(app)

	log.Printf("interview server listening on %s (db=%s templates=%d)", cfg.Addr, cfg.DBPath, len(templates))
	log.Fatal(app.Listen(cfg.Addr))
}

func loadTemplates(path string) ([]interview.Template, error) {
	if path == "" {
		return nil, nil
	}
	var templates []interview.Template
	if err := fileutils.ReadJSONFile(path, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func buildEvaluator(cfg Config) (interview.AnswerEvaluator, error) {
	if cfg.Model == "" {
		return nil, nil
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY (or pass -api-key) for -model %s", cfg.Model)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	ev, err := provider.NewEvaluator(&client, cfg.Model)
	if err != nil {
		return nil, err
	}
	return ev, nil
}
