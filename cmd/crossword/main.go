package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/clue"
	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/gen"
	"github.com/PaulSz7/crossword-generator/internal/layout"
	"github.com/PaulSz7/crossword-generator/internal/store"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

var log = logrus.New()

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "gen":
		runGen(ctx, os.Args[2:])
	case "preprocess":
		runPreprocess(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: crossword <gen|preprocess> [flags]")
}

func runGen(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	var (
		height     = fs.Int("height", 10, "grid height")
		width      = fs.Int("width", 15, "grid width")
		difficulty = fs.String("difficulty", "MEDIUM", "difficulty tier: EASY, MEDIUM or HARD")
		language   = fs.String("language", "Romanian", "puzzle language tag")
		seed       = fs.Uint64("seed", 1, "generation seed")
		dictPath   = fs.String("dict", "local_db/dex_words.tsv", "dictionary TSV path")
		topic      = fs.String("theme", "", "theme topic for the theme source")
		words      = fs.String("words", "", "comma-separated user theme words")
		wordsOnly  = fs.Bool("words-only", false, "place only the given words, no coverage minimum")
		useGemini  = fs.Bool("gemini", false, "use Gemini for theme words and clues")
		attempts   = fs.Int("attempts", 20, "max generation attempts")
		timeout    = fs.Duration("solver-timeout", 30*time.Second, "fill solver deadline per attempt")
		workers    = fs.Int("solver-workers", 4, "fill solver worker count")
		phase2     = fs.Bool("allow-phase2", true, "allow relaxed EASY filtering after strict retries")
		blockerH   = fs.Int("blocker-height", 0, "blocker height (0 = random)")
		blockerW   = fs.Int("blocker-width", 0, "blocker width (0 = random)")
		blockerR   = fs.Int("blocker-row", -1, "blocker row anchor (-1 = random)")
		blockerC   = fs.Int("blocker-col", -1, "blocker col anchor (-1 = random)")
		noBlocker  = fs.Bool("no-blocker", false, "generate without a blocker zone")
		dbURL      = fs.String("db", "", "postgres URL to persist the result (optional)")
		logFile    = fs.String("log-file", "", "rotating log file (optional)")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	fs.Parse(args)

	setupLogging(*verbose, *logFile)

	tier, err := dict.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatal(err)
	}
	d, err := dict.Load(dict.Config{Path: *dictPath, Difficulty: tier})
	if err != nil {
		log.Fatal("unable to load dictionary: ", err)
	}
	log.Infof("dictionary ready, %d entries", d.Size())

	cfg := gen.Config{
		Height:        *height,
		Width:         *width,
		Difficulty:    tier,
		Language:      *language,
		Seed:          *seed,
		Topic:         *topic,
		WordsOnly:     *wordsOnly,
		MaxAttempts:   *attempts,
		SolverTimeout: *timeout,
		SolverWorkers: *workers,
		AllowPhase2:   *phase2,
	}
	if !*noBlocker {
		spec := &layout.BlockerSpec{Height: *blockerH, Width: *blockerW}
		if *blockerR >= 0 && *blockerC >= 0 {
			r, c := *blockerR, *blockerC
			spec.Row, spec.Col = &r, &c
		}
		cfg.Blocker = spec
	}

	opts := buildCollaborators(ctx, *words, *useGemini, *seed)
	generator, err := gen.New(cfg, d, opts...)
	if err != nil {
		log.Fatal(err)
	}

	result, genErr := generator.Generate(ctx)

	if *dbURL != "" {
		persist(ctx, *dbURL, cfg, result, genErr)
	}
	if genErr != nil {
		log.Fatal(genErr)
	}

	fmt.Print(render(result))
	printStats(result)
}

func buildCollaborators(ctx context.Context, words string, useGemini bool, seed uint64) []gen.Option {
	var opts []gen.Option
	switch {
	case words != "":
		var list []string
		for _, w := range strings.Split(words, ",") {
			if w = strings.TrimSpace(w); w != "" {
				list = append(list, w)
			}
		}
		opts = append(opts, gen.WithThemeSource(theme.UserSource(list)))
	case useGemini:
		src, err := theme.NewGemini(ctx, "")
		if err != nil {
			log.Warn("gemini theme source unavailable, using static buckets: ", err)
			opts = append(opts, gen.WithThemeSource(theme.NewStatic(seed)))
		} else {
			opts = append(opts, gen.WithThemeSource(src))
		}
	default:
		opts = append(opts, gen.WithThemeSource(theme.NewStatic(seed)))
	}
	if useGemini {
		emitter, err := clue.NewGemini(ctx, "")
		if err != nil {
			log.Warn("gemini clue emitter unavailable, using templates: ", err)
		} else {
			opts = append(opts, gen.WithClueEmitter(emitter))
		}
	}
	return opts
}

func persist(ctx context.Context, dbURL string, cfg gen.Config, result *gen.Result, genErr error) {
	st, err := store.Open(ctx, dbURL)
	if err != nil {
		log.Error("unable to open store: ", err)
		return
	}
	defer st.Close()
	if result != nil {
		if id, err := st.SaveResult(ctx, cfg, result); err != nil {
			log.Error("unable to save crossword: ", err)
		} else {
			log.Info("saved crossword ", id)
		}
		return
	}
	var ge *gen.Error
	if e, ok := genErr.(*gen.Error); ok {
		ge = e
	} else {
		ge = &gen.Error{Kind: gen.KindGenerationFailed, Detail: genErr.Error()}
	}
	if id, err := st.SaveFailure(ctx, cfg, ge); err != nil {
		log.Error("unable to save failure: ", err)
	} else {
		log.Info("saved failure ", id)
	}
}

func printStats(result *gen.Result) {
	h := result.Histogram
	log.WithFields(logrus.Fields{
		"attempt":    result.Attempt,
		"phase":      result.Phase,
		"slots":      len(result.Slots),
		"theme":      result.Theme.Placed,
		"fill_easy":  h.FillEasy,
		"fill_med":   h.FillMedium,
		"fill_hard":  h.FillHard,
		"avg_score":  fmt.Sprintf("%.3f", h.FillAvgScore),
		"fill_ratio": fmt.Sprintf("%.2f", result.FilledRatio),
	}).Info("crossword sealed")
}

func runPreprocess(args []string) {
	fs := flag.NewFlagSet("preprocess", flag.ExitOnError)
	var (
		source  = fs.String("source", "local_db/dex_words.tsv", "raw dictionary TSV")
		output  = fs.String("output", "", "processed cache path (default <source>_processed.tsv)")
		logFile = fs.String("log-file", "", "rotating log file (optional)")
	)
	fs.Parse(args)
	setupLogging(false, *logFile)

	dest := *output
	if dest == "" {
		dest = strings.TrimSuffix(*source, ".tsv") + "_processed.tsv"
	}
	records, err := dict.Preprocess(*source, dest)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("processed %d unique words -> %s\n", len(records), dest)
}
