package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/spendwise/internal/advice"
	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/config"
	"github.com/dvloznov/spendwise/internal/gcs"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/pipeline"
	"github.com/dvloznov/spendwise/internal/report"
	"github.com/dvloznov/spendwise/internal/statement"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithConfig(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(cfg, log)
	case "categorize":
		runCategorize(cfg, log)
	case "categories":
		runCategories()
	case "upload":
		runUpload(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Spendwise CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze     Analyze a Date,Description,Amount CSV from disk or GCS")
	fmt.Println("  categorize  Categorize descriptions given as arguments")
	fmt.Println("  categories  List the categories and their keywords")
	fmt.Println("  upload      Upload a CSV file to GCS")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a local CSV file")
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the CSV file")
	asJSON := fs.Bool("json", false, "Print the dashboard as JSON")
	noAdvice := fs.Bool("no-advice", false, "Skip advice generation")
	fs.Parse(os.Args[2:])

	if (*filePath == "") == (*gcsURI == "") {
		log.Fatal().Msg("Usage: cli analyze (-file PATH | -gcs-uri URI) [-json] [-no-advice]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if *noAdvice {
		cfg.AdviceEnabled = false
	}

	analyzer := pipeline.New(pipeline.Deps{
		Categorizer: categorizer.New(newStrategy(ctx, cfg, log), cfg.ClassifierWorkers, log),
		Advisor:     newAdvisor(ctx, cfg, log),
		Fetcher:     gcs.NewClient(cfg.GCSCredentialsFile, cfg.MaxUploadBytes),
	})

	var (
		res *pipeline.Result
		err error
	)
	if *filePath != "" {
		f, openErr := os.Open(*filePath)
		if openErr != nil {
			log.Fatal().Err(openErr).Str("file", *filePath).Msg("Failed to open file")
		}
		defer f.Close()
		res, err = analyzer.Analyze(ctx, f)
	} else {
		res, err = analyzer.AnalyzeFromGCS(ctx, *gcsURI)
	}
	if err != nil {
		var ve *statement.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(os.Stderr, ve.Message)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	var formatter report.OutputFormatter = report.TextFormatter{}
	if *asJSON {
		formatter = report.NewJSONFormatter(true)
	}

	out, err := formatter.Format(res.Dashboard)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to format dashboard")
	}
	os.Stdout.Write(out)
	if !strings.HasSuffix(string(out), "\n") {
		fmt.Println()
	}
}

func runCategorize(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	useRules := fs.Bool("rules", false, "Use the keyword table instead of the configured classifier")
	fs.Parse(os.Args[2:])

	descriptions := fs.Args()
	if len(descriptions) == 0 {
		log.Fatal().Msg("Usage: cli categorize [-rules] DESCRIPTION...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	normalized := categorizer.NormalizeAll(descriptions)

	if *useRules {
		for i, d := range descriptions {
			fmt.Printf("%s → %s\n", d, categorizer.CategorizeByRules(normalized[i]))
		}
		return
	}

	c := categorizer.New(newStrategy(ctx, cfg, log), cfg.ClassifierWorkers, log)
	for i, cat := range c.CategorizeAll(ctx, normalized) {
		fmt.Printf("%s → %s\n", descriptions[i], cat)
	}
}

func runCategories() {
	for _, rule := range categorizer.DefaultRules() {
		if len(rule.Keywords) == 0 {
			fmt.Printf("%-14s (fallback)\n", rule.Category)
			continue
		}
		fmt.Printf("%-14s %s\n", rule.Category, strings.Join(rule.Keywords, ", "))
	}
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local CSV file")
	gcsURI := fs.String("gcs-uri", "", "Destination GCS URI (gs://bucket/object)")
	fs.Parse(os.Args[2:])

	if *filePath == "" || *gcsURI == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH -gcs-uri gs://BUCKET/OBJECT")
	}
	if !strings.EqualFold(filepath.Ext(*filePath), ".csv") {
		log.Fatal().Str("file", *filePath).Msg("Please upload a valid CSV file")
	}

	ctx := logger.WithContext(context.Background(), log)

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to open file")
	}
	defer f.Close()

	log.Info().Str("file", *filePath).Str("gcs_uri", *gcsURI).Msg("Uploading file to GCS")

	if err := gcs.NewClient(cfg.GCSCredentialsFile, 0).Upload(ctx, *gcsURI, f); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, *gcsURI)
}

func newStrategy(ctx context.Context, cfg *config.Config, log zerolog.Logger) categorizer.Strategy {
	return categorizer.NewStrategy(ctx, categorizer.StrategyConfig{
		Mode:    cfg.ClassifierMode,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.ClassifierModel,
		Timeout: cfg.ClassifierTimeout,
	}, log)
}

func newAdvisor(ctx context.Context, cfg *config.Config, log zerolog.Logger) advice.Generator {
	if !cfg.AdviceEnabled {
		return advice.Disabled{}
	}
	gen, err := advice.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AdviceModel)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize advice generator")
		return advice.Unavailable{Reason: err}
	}
	return gen
}
