package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pfcrack/internal/ngram"
	"pfcrack/internal/playfair"
	"pfcrack/internal/storage"
	pfapi "pfcrack/pkg/pfcrack"
)

const benchmarksDir = "benchmarks"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "crack":
		return runCrack(ctx, args[1:])
	case "encrypt":
		return runEncrypt(ctx, args[1:])
	case "decrypt":
		return runDecrypt(ctx, args[1:])
	case "ngrams":
		return runNgrams(ctx, args[1:])
	case "validate":
		return runValidate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: pfcrackctl <crack|encrypt|decrypt|ngrams|validate|runs|fitness|top|plot> [flags]", msg)
}

func runCrack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("crack", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	cipherPath := fs.String("cipher", "", "ciphertext file path")
	referencePath := fs.String("reference", "", "reference n-gram table path")
	n := fs.Int("n", 4, "n-gram width of the reference table")
	population := fs.Int("pop", 500, "population size")
	generations := fs.Int("gens", 500, "generation count")
	numChildren := fs.Int("children", 200, "crossover children per generation")
	newRandom := fs.Int("new-random", 20, "fresh random keys injected per generation")
	mutationRate := fs.Float64("mutation-rate", 0.2, "per-individual inversion mutation probability")
	mutationType := fs.String("mutation-type", "inversion", "mutation operator: swap|inversion")
	killWorst := fs.Int("kill-worst", 50, "lowest-scoring members culled per generation")
	keepBest := fs.Int("keep-best", 5, "top members carried unchanged per generation")
	scoreGoal := fs.Int64("score-goal", 0, "early-stop best score goal (0 disables)")
	seedKeyword := fs.String("keyword", "", "optional keyword seeding the initial population")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "fitness evaluation worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pfcrack.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = pfapi.RunRequest{
			RunID:         *runID,
			CipherPath:    *cipherPath,
			ReferencePath: *referencePath,
			NgramWidth:    *n,
			Population:    *population,
			Generations:   *generations,
			NumChildren:   *numChildren,
			NewRandom:     *newRandom,
			MutationRate:  *mutationRate,
			MutationType:  *mutationType,
			KillWorst:     *killWorst,
			KeepBest:      *keepBest,
			ScoreGoal:     *scoreGoal,
			SeedKeyword:   *seedKeyword,
			Seed:          *seed,
			Workers:       *workers,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":        *runID,
			"cipher":        *cipherPath,
			"reference":     *referencePath,
			"n":             *n,
			"pop":           *population,
			"gens":          *generations,
			"children":      *numChildren,
			"new-random":    *newRandom,
			"mutation-rate": *mutationRate,
			"mutation-type": *mutationType,
			"kill-worst":    *killWorst,
			"keep-best":     *keepBest,
			"score-goal":    *scoreGoal,
			"keyword":       *seedKeyword,
			"seed":          *seed,
			"workers":       *workers,
		})
	}
	if req.NgramWidth > 5 {
		fmt.Fprintf(os.Stderr, "warning: n=%d enumerates very sparse distributions; widths above 5 are rarely useful\n", req.NgramWidth)
	}

	client, err := pfapi.New(pfapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s gens=%d seed=%d best_score=%d best_key=%s\n",
		summary.RunID, summary.Generations, req.Seed, summary.BestScore, summary.BestKey)
	fmt.Println(summary.Plaintext)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runEncrypt(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "encryption keyword")
	inputPath := fs.String("in", "", "plaintext file path")
	opts, err := keyOptionFlags(fs, args)
	if err != nil {
		return err
	}
	if *inputPath == "" {
		return errors.New("encrypt requires --in")
	}

	client, err := pfapi.New(pfapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	cipher, err := client.Encrypt(pfapi.EncryptRequest{Keyword: *keyword, InputPath: *inputPath, KeyOptions: opts})
	if err != nil {
		return err
	}
	fmt.Println(string(cipher))
	return nil
}

func runDecrypt(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "decryption keyword")
	inputPath := fs.String("in", "", "ciphertext file path")
	opts, err := keyOptionFlags(fs, args)
	if err != nil {
		return err
	}
	if *inputPath == "" {
		return errors.New("decrypt requires --in")
	}

	client, err := pfapi.New(pfapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	plain, err := client.Decrypt(pfapi.EncryptRequest{Keyword: *keyword, InputPath: *inputPath, KeyOptions: opts})
	if err != nil {
		return err
	}
	fmt.Println(string(plain))
	return nil
}

func runNgrams(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("ngrams", flag.ContinueOnError)
	corpusPath := fs.String("corpus", "", "raw corpus file path")
	tablePath := fs.String("out", "", "reference table output path")
	n := fs.Int("n", 4, "n-gram width")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" || *tablePath == "" {
		return errors.New("ngrams requires --corpus and --out")
	}
	if *n > 5 {
		fmt.Fprintf(os.Stderr, "warning: n=%d tables grow very large; widths above 5 are rarely useful\n", *n)
	}

	client, err := pfapi.New(pfapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.BuildReference(*corpusPath, *tablePath, *n); err != nil {
		return err
	}
	fmt.Printf("reference written path=%s n=%d\n", *tablePath, *n)
	return nil
}

func runValidate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	tablePath := fs.String("reference", "", "reference table path")
	n := fs.Int("n", 4, "n-gram width")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tablePath == "" {
		return errors.New("validate requires --reference")
	}

	f, err := os.Open(*tablePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ngram.ValidateTable(f, *n); err != nil {
		return fmt.Errorf("%s: %w", *tablePath, err)
	}
	fmt.Printf("reference valid path=%s n=%d\n", *tablePath, *n)
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := pfapi.New(pfapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	entries, err := client.Runs(*limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s cipher=%s n=%d seed=%d pop=%d gens=%d best_score=%d best_key=%s\n",
			e.RunID,
			e.CreatedAtUTC,
			e.CipherPath,
			e.NgramWidth,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.BestScore,
			e.BestKey,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show score history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit score history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pfcrack.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := pfapi.New(pfapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.ScoreHistory(ctx, *runID, *latest)
	if err != nil {
		return err
	}
	if *limit > 0 && len(history) > *limit {
		history = history[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	for i, best := range history {
		fmt.Printf("generation=%d best_score=%d\n", i+1, best)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top keys for the most recent run")
	limit := fs.Int("limit", 5, "max top keys to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top keys as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pfcrack.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := pfapi.New(pfapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopKeys(ctx, *runID, *latest, *limit)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		fmt.Println("no top keys")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(top)
	}
	for _, item := range top {
		fmt.Printf("rank=%d score=%d key=%s\n", item.Rank, item.Score, item.Key)
	}
	return nil
}

func runPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "plot the most recent run")
	outPath := fs.String("out", "", "output image path (extension selects the format)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return errors.New("plot requires --out")
	}

	client, err := pfapi.New(pfapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.PlotScoreHistory(ctx, *runID, *latest, *outPath); err != nil {
		return err
	}
	fmt.Printf("plot written path=%s\n", *outPath)
	return nil
}

// keyOptionFlags registers the pad and alphabet letter flags shared by
// encrypt and decrypt, parses args, and builds the key options.
func keyOptionFlags(fs *flag.FlagSet, args []string) (playfair.Options, error) {
	doubleFill := fs.String("double-fill", "X", "pad letter inserted between doubled letters")
	extraFill := fs.String("extra-fill", "X", "pad letter appended to odd-length text")
	omit := fs.String("omit", "J", "letter omitted from the square")
	replace := fs.String("replace", "I", "letter replacing the omitted one")
	if err := fs.Parse(args); err != nil {
		return playfair.Options{}, err
	}
	opts := playfair.Options{}
	if *doubleFill != "" {
		opts.DoubleFill = (*doubleFill)[0]
	}
	if *extraFill != "" {
		opts.ExtraFill = (*extraFill)[0]
	}
	if *omit != "" {
		opts.Omit = (*omit)[0]
	}
	if *replace != "" {
		opts.Replace = (*replace)[0]
	}
	return opts, nil
}
