// Package listener polls a drop directory for recorded voice notes and runs
// each one through the pipeline. Processed files move to done/ or failed/
// next to the drop directory so a crashed cycle never reprocesses silently.
package listener

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recyvoice/internal/config"
	"recyvoice/internal/pipeline"
)

var audioExtensions = map[string]struct{}{
	".wav": {}, ".mp3": {}, ".m4a": {}, ".ogg": {}, ".webm": {},
}

type Service struct {
	cfg  config.Config
	orch *pipeline.Orchestrator
}

func NewService(cfg config.Config, orch *pipeline.Orchestrator) *Service {
	return &Service{cfg: cfg, orch: orch}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.VoiceDropDir, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(s.cfg.VoiceDropDir)
	if err != nil {
		return err
	}

	processed, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := audioExtensions[ext]; !ok {
			continue
		}

		path := filepath.Join(s.cfg.VoiceDropDir, entry.Name())
		if err := s.processFile(ctx, path, entry.Name()); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			failed++
			fmt.Printf("listener failed file=%s: %v\n", entry.Name(), err)
			s.moveTo(path, "failed", entry.Name())
			continue
		}
		processed++
		s.moveTo(path, "done", entry.Name())
	}

	if processed > 0 || failed > 0 {
		fmt.Printf("listener cycle done processed=%d failed=%d\n", processed, failed)
	}
	return nil
}

func (s *Service) processFile(ctx context.Context, path, name string) error {
	audio, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	run, err := s.orch.Process(ctx, audio, s.cfg.ListenerRole)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport && len(run.Verified) > 0 {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		out := filepath.Join(s.cfg.OutputDir, "listener", fmt.Sprintf("%s_%s.xlsx", run.TraceID, base))
		if err := pipeline.ExportRowsToXLSX(pipeline.ExportRows(run.Verified), out); err != nil {
			return err
		}
	}

	fmt.Printf("listener processed file=%s trace=%s extracted=%d verified=%d\n",
		name, run.TraceID, len(run.Extracted), len(run.Verified))
	return nil
}

func (s *Service) moveTo(path, bucket, name string) {
	dir := filepath.Join(s.cfg.VoiceDropDir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	_ = os.Rename(path, filepath.Join(dir, name))
}
