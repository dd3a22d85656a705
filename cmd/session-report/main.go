// Command session-report turns a recorded interview session file into a full
// analysis report: speech metrics, behavioral estimates, per-question
// evaluations, SWOT, and resource recommendations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hollowaylabs/interviewkit/interview"
	"github.com/hollowaylabs/interviewkit/interview/fileutils"
	"github.com/hollowaylabs/interviewkit/interview/provider"
	"github.com/hollowaylabs/interviewkit/interview/store"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var data interview.SessionData
	if err := fileutils.ReadJSONFile(cfg.InPath, &data); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	questions, err := loadQuestions(cfg.TemplatePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	evaluator, err := buildEvaluator(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if !cfg.Overwrite && fileutils.FileExists(cfg.OutPath) {
		fmt.Fprintf(os.Stderr, "report already exists: %s (use -overwrite)\n", cfg.OutPath)
		os.Exit(2)
	}

	gen := interview.NewReportGenerator(nil, nil, interview.NewSemanticAnalyzer(evaluator))
	report, genErr := gen.Generate(ctx, data, nil, questions)
	if genErr != nil {
		// Partial result: degraded defaults were substituted for the failed
		// analyzers, so the report is still worth writing.
		fmt.Fprintf(os.Stderr, "warning: %v\n", genErr)
	}

	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, report, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if cfg.DBPath != "" {
		if err := persistToDB(cfg.DBPath, data, report); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stdout, "report=%s id=%s overall=%d questions=%d duration=%s\n",
		cfg.OutPath, report.ID, report.OverallScore, len(report.Questions), report.Duration)
}

// loadQuestions reads the template's question list, used as segmentation
// hints for the semantic analyzer. An empty path means no hints.
func loadQuestions(templatePath string) ([]string, error) {
	if templatePath == "" {
		return nil, nil
	}
	var tpl interview.Template
	if err := fileutils.ReadJSONFile(templatePath, &tpl); err != nil {
		return nil, err
	}
	return tpl.Questions, nil
}

// buildEvaluator returns the OpenAI evaluator when a model is configured,
// or nil to select the built-in heuristic.
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

func persistToDB(dbPath string, data interview.SessionData, report interview.InterviewReport) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveSession(data); err != nil {
		return err
	}
	return db.SaveReport(data.Metadata.RoomName, report)
}
