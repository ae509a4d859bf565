package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"recyvoice/internal/asr"
	"recyvoice/internal/catalog"
	"recyvoice/internal/config"
	"recyvoice/internal/extract"
	"recyvoice/internal/listener"
	"recyvoice/internal/pipeline"
	"recyvoice/internal/storage"
	"recyvoice/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "voice:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		audioPath := fs.String("audio", "", "path to recorded audio")
		role := fs.String("role", "customer", "catalog role")
		out := fs.String("out", "", "optional output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*audioPath) == "" {
			must(fmt.Errorf("--audio is required"))
		}
		audio, err := os.ReadFile(*audioPath)
		must(err)

		orch := buildOrchestrator(cfg, db)
		run, err := orch.Process(context.Background(), audio, *role)
		must(err)
		printRun(run)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportRowsToXLSX(pipeline.ExportRows(run.Verified), *out))
			fmt.Printf("exported %d rows to %s\n", len(run.Verified), *out)
		}
	case "transcript:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		text := fs.String("text", "", "transcript text")
		role := fs.String("role", "customer", "catalog role")
		out := fs.String("out", "", "optional output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*text) == "" {
			must(fmt.Errorf("--text is required"))
		}

		orch := buildOrchestrator(cfg, db)
		run, err := orch.ProcessTranscript(context.Background(), *text, *role)
		must(err)
		printRun(run)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportRowsToXLSX(pipeline.ExportRows(run.Verified), *out))
			fmt.Printf("exported %d rows to %s\n", len(run.Verified), *out)
		}
	case "catalog:refresh":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		role := fs.String("role", "customer", "catalog role")
		_ = fs.Parse(os.Args[2:])

		cache := catalog.NewCache(catalog.NewClient(cfg), time.Duration(cfg.CatalogTTLSec)*time.Second)
		idx, err := cache.Get(context.Background(), *role)
		must(err)
		fmt.Printf("catalog refreshed role=%s items=%d keys=%d\n", *role, len(idx.Items), len(idx.ByExactKey))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int("runId", 0, "internal run id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *runID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--runId and --out are required"))
		}
		rows, err := db.GetExportRows(*runID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for runId=%d", *runID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRecentRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("run id=%d trace=%s role=%s status=%s createdAt=%s\n", r.ID, r.TraceID, r.Role, r.Status, r.CreatedAt)
		}
	case "voice:listen":
		orch := buildOrchestrator(cfg, db)
		svc := listener.NewService(cfg, orch)
		must(svc.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func buildOrchestrator(cfg config.Config, db *storage.DB) *pipeline.Orchestrator {
	must(cfg.Require("OPENAI_API_KEY", cfg.OpenAIAPIKey))

	llmTimeout := time.Duration(cfg.LLMTimeoutMs) * time.Millisecond
	transcriber := asr.NewWhisper(cfg.OpenAIAPIKey, cfg.TranscribeModel, llmTimeout)
	completer := extract.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.ExtractModel, llmTimeout)
	extractor := extract.New(completer, vocab.Default(), cfg.VocabThreshold)

	cache := catalog.NewCache(catalog.NewClient(cfg), time.Duration(cfg.CatalogTTLSec)*time.Second)
	resolver := pipeline.NewResolver(cfg, cache)

	return pipeline.NewOrchestrator(transcriber, extractor, resolver).WithStore(db)
}

func printRun(run *pipeline.RunResult) {
	fmt.Printf("run trace=%s status=%s\n", run.TraceID, run.Status)
	if run.Transcript != "" {
		fmt.Printf("transcript: %s\n", run.Transcript)
	}
	for _, v := range run.Verified {
		mark := "not found, add manually"
		if v.Available {
			mark = fmt.Sprintf("matched %q similarity=%.0f", v.MatchedItem.EnglishName(), v.MatchSimilarity)
		}
		fmt.Printf("  %s x%g %s — %s\n", v.Material, v.Quantity, v.Unit, mark)
	}
}

func usage() {
	fmt.Println("usage: recyvoice <command>")
	fmt.Println("commands:")
	fmt.Println("  voice:process --audio=./note.m4a --role=customer [--out=./out/run.xlsx]")
	fmt.Println("  transcript:process --text=\"3 كيلو بلاستيك\" --role=customer [--out=...]")
	fmt.Println("  catalog:refresh --role=customer")
	fmt.Println("  export:xlsx --runId=1 --out=./out/result.xlsx")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  voice:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
