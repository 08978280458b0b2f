// Command pageglot runs a full page translation sweep over an HTML
// file, annotating translatable fragments in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/pageglot/pageglot"
	"github.com/pageglot/pageglot/cache"
	"github.com/pageglot/pageglot/engine"
)

// envConfig is process configuration read from PAGEGLOT_* variables.
type envConfig struct {
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	Model        string `envconfig:"MODEL"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"warn"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pageglot", flag.ContinueOnError)
	fs.SetOutput(stderr)

	targetLang := fs.String("lang", "", "Target language tag (e.g., es, ja, pt-BR)")
	sourceLang := fs.String("source", pageglot.AutoDetect, "Source language tag, or 'auto'")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	apiKey := fs.String("api-key", "", "OpenAI API key (default: PAGEGLOT_OPENAI_API_KEY env)")
	model := fs.String("model", "", "OpenAI model to use")
	cacheTTL := fs.Int("cache-ttl", 3600, "Result cache TTL in seconds (0 to disable)")
	delay := fs.Duration("delay", pageglot.DefaultFragmentDelay, "Pause between fragment translations")
	envFile := fs.String("env", "", "Path to a .env file to load")
	dryRun := fs.Bool("dry-run", false, "List translatable fragments without calling the engine")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", pageglot.Name, pageglot.Version)
		if pageglot.GitCommit != "unknown" && pageglot.GitCommit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", pageglot.GitCommit)
		}
		if pageglot.BuildDate != "unknown" && pageglot.BuildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", pageglot.BuildDate)
		}
		return nil
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
	}

	var env envConfig
	if err := envconfig.Process("pageglot", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	input, inputName, err := readInput(fs)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	selector := pageglot.NewSelector()

	if *dryRun {
		return runDryRun(selector, doc, inputName, *targetLang, stdout, *jsonOutput)
	}

	key := *apiKey
	if key == "" {
		key = env.OpenAIAPIKey
	}
	if key == "" {
		return fmt.Errorf("OpenAI API key required (--api-key or PAGEGLOT_OPENAI_API_KEY env)")
	}
	if *model == "" {
		*model = env.Model
	}

	factory := engine.NewOpenAIFactory(engine.OpenAIConfig{
		APIKey: key,
		Model:  *model,
	})

	opts := []pageglot.GatewayOption{
		pageglot.WithDetectorFactory(engine.NewLinguaDetectorFactory()),
		pageglot.WithGatewayLogger(log),
	}
	if *cacheTTL > 0 {
		opts = append(opts, pageglot.WithCache(cache.NewMemoryCache(*cacheTTL, 0)))
	}

	gw := pageglot.NewGateway(factory, opts...)
	defer gw.Close()

	sessionOpts := []pageglot.SessionOption{
		pageglot.WithSelector(selector),
		pageglot.WithSessionLogger(log),
		pageglot.WithFragmentDelay(*delay),
	}
	if !*quiet {
		sessionOpts = append(sessionOpts, pageglot.WithProgressSink(&cliProgress{out: stderr}))
	}

	session := pageglot.NewSession(doc, gw, sessionOpts...)

	start := time.Now()
	result, err := session.StartFullSweep(context.Background(), pageglot.LanguagePreference{
		SourceLanguage: *sourceLang,
		TargetLanguage: *targetLang,
	})
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	content, err := doc.Html()
	if err != nil {
		return fmt.Errorf("serializing HTML: %w", err)
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *jsonOutput {
		return outputJSON(out, content, result, elapsed)
	}

	fmt.Fprint(out, content)

	if !*quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Fragments found: %d\n", result.Total)
		fmt.Fprintf(stderr, "  Translated:      %d\n", result.Translated)
		fmt.Fprintf(stderr, "  Failed:          %d\n", result.Failed)
	}

	return nil
}

func readInput(fs *flag.FlagSet) (string, string, error) {
	if fs.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	inputPath := fs.Arg(0)
	data, err := os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(inputPath), nil
}

// runDryRun lists what would be translated without engine calls.
func runDryRun(selector *pageglot.Selector, doc *goquery.Document, inputName, targetLang string, stdout io.Writer, jsonOut bool) error {
	frags := selector.Collect(doc)

	if jsonOut {
		type dryRunOutput struct {
			InputFile     string   `json:"input_file"`
			TargetLang    string   `json:"target_lang"`
			FragmentCount int      `json:"fragment_count"`
			Texts         []string `json:"texts"`
		}

		texts := make([]string, len(frags))
		for i, frag := range frags {
			texts[i] = frag.Text
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dryRunOutput{
			InputFile:     inputName,
			TargetLang:    targetLang,
			FragmentCount: len(frags),
			Texts:         texts,
		})
	}

	fmt.Fprintf(stdout, "Dry run: %s -> %s\n", inputName, targetLang)
	fmt.Fprintf(stdout, "Found %d translatable fragments:\n\n", len(frags))

	for i, frag := range frags {
		text := frag.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, text)
	}

	return nil
}

// cliProgress renders sweep progress on stderr.
type cliProgress struct {
	out io.Writer
}

func (p *cliProgress) SweepStarted(total int) {
	fmt.Fprintf(p.out, "Translating %d fragments...\n", total)
}

func (p *cliProgress) SweepProgress(done, total int) {
	fmt.Fprintf(p.out, "\r  %d/%d", done, total)
}

func (p *cliProgress) SweepFinished(result pageglot.SweepResult) {
	fmt.Fprintln(p.out)
}

func (p *cliProgress) Notify(message string) {
	fmt.Fprintln(p.out, message)
}

// jsonResult is the JSON output format.
type jsonResult struct {
	Content    string `json:"content"`
	Total      int    `json:"total_fragments"`
	Translated int    `json:"translated_count"`
	Failed     int    `json:"failed_count"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

func outputJSON(w io.Writer, content string, result pageglot.SweepResult, elapsed time.Duration) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{
		Content:    content,
		Total:      result.Total,
		Translated: result.Translated,
		Failed:     result.Failed,
		ElapsedMs:  elapsed.Milliseconds(),
	})
}
