package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
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
	must(cfg.Require("OPENAI_API_KEY", cfg.OpenAIAPIKey))

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	llmTimeout := time.Duration(cfg.LLMTimeoutMs) * time.Millisecond
	transcriber := asr.NewWhisper(cfg.OpenAIAPIKey, cfg.TranscribeModel, llmTimeout)
	completer := extract.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.ExtractModel, llmTimeout)
	extractor := extract.New(completer, vocab.Default(), cfg.VocabThreshold)
	cache := catalog.NewCache(catalog.NewClient(cfg), time.Duration(cfg.CatalogTTLSec)*time.Second)
	resolver := pipeline.NewResolver(cfg, cache)
	orch := pipeline.NewOrchestrator(transcriber, extractor, resolver).WithStore(db)

	svc := listener.NewService(cfg, orch)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
