package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"recyvoice/internal"
	"recyvoice/internal/asr"
	"recyvoice/internal/storage"
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusTranscribing Status = "transcribing"
	StatusExtracting   Status = "extracting"
	StatusVerifying    Status = "verifying"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
)

type MaterialExtractor interface {
	Extract(ctx context.Context, transcript string) ([]internal.ExtractedMaterial, error)
}

type MaterialVerifier interface {
	Verify(ctx context.Context, materials []internal.ExtractedMaterial, role string) ([]internal.VerifiedMaterial, error)
}

// Orchestrator runs one invocation through transcription, extraction and
// verification in strict order. It does not retry and does not deduplicate
// concurrent invocations; each Process call owns its RunResult.
type Orchestrator struct {
	transcriber asr.Transcriber
	extractor   MaterialExtractor
	verifier    MaterialVerifier
	store       *storage.DB
}

func NewOrchestrator(t asr.Transcriber, e MaterialExtractor, v MaterialVerifier) *Orchestrator {
	return &Orchestrator{transcriber: t, extractor: e, verifier: v}
}

// WithStore enables run history persistence. A nil store disables it.
func (o *Orchestrator) WithStore(db *storage.DB) *Orchestrator {
	o.store = db
	return o
}

type RunResult struct {
	TraceID    string
	Role       string
	Status     Status
	Transcript string
	Extracted  []internal.ExtractedMaterial
	Verified   []internal.VerifiedMaterial
	Timings    map[string]float64
	RunID      int64
}

func (o *Orchestrator) Process(ctx context.Context, audio []byte, role string) (*RunResult, error) {
	run := newRun(role)

	run.Status = StatusTranscribing
	start := time.Now()
	transcript, err := o.transcriber.Transcribe(ctx, audio)
	run.Timings["transcribeMs"] = ms(start)
	if err != nil {
		return o.terminate(ctx, run, &internal.TranscriptionError{Err: err})
	}
	run.Transcript = transcript

	return o.processTranscript(ctx, run)
}

// ProcessTranscript skips the ASR stage; the CLI transcript path and the
// tests come in here.
func (o *Orchestrator) ProcessTranscript(ctx context.Context, transcript, role string) (*RunResult, error) {
	run := newRun(role)
	run.Transcript = transcript
	return o.processTranscript(ctx, run)
}

func (o *Orchestrator) processTranscript(ctx context.Context, run *RunResult) (*RunResult, error) {
	run.Status = StatusExtracting
	start := time.Now()
	extracted, err := o.extractor.Extract(ctx, run.Transcript)
	run.Timings["extractMs"] = ms(start)
	if err != nil {
		return o.terminate(ctx, run, err)
	}
	run.Extracted = extracted

	run.Status = StatusVerifying
	start = time.Now()
	verified, err := o.verifier.Verify(ctx, extracted, run.Role)
	run.Timings["verifyMs"] = ms(start)
	if err != nil {
		return o.terminate(ctx, run, err)
	}
	run.Verified = verified

	run.Status = StatusDone
	o.record(run)
	return run, nil
}

// terminate decides between the two terminal failure states. A cancelled
// context is its own terminal state, not a failure, and is not recorded.
func (o *Orchestrator) terminate(ctx context.Context, run *RunResult, err error) (*RunResult, error) {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)) {
		run.Status = StatusCancelled
		return run, context.Canceled
	}
	run.Status = StatusFailed
	o.record(run)
	return run, err
}

func (o *Orchestrator) record(run *RunResult) {
	if o.store == nil {
		return
	}
	counts := map[string]int{
		"extracted": len(run.Extracted),
		"verified":  len(run.Verified),
		"available": 0,
	}
	for _, v := range run.Verified {
		if v.Available {
			counts["available"]++
		}
	}

	runID, err := o.store.InsertRun(run.TraceID, run.Role, string(run.Status), run.Transcript, run.Timings, counts)
	if err != nil {
		fmt.Printf("run history write failed trace=%s: %v\n", run.TraceID, err)
		return
	}
	run.RunID = runID
	_ = o.store.InsertExtractions(runID, run.Extracted)
	_ = o.store.InsertVerifications(runID, run.Verified)
}

func newRun(role string) *RunResult {
	return &RunResult{
		TraceID: traceID(),
		Role:    role,
		Status:  StatusIdle,
		Timings: map[string]float64{},
	}
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func ms(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
