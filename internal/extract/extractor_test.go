package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recyvoice/internal"
	"recyvoice/internal/vocab"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestExtractor(c Completer) *Extractor {
	return New(c, vocab.Default(), 80)
}

func TestExtractMixedTranscript(t *testing.T) {
	fake := &fakeCompleter{response: `{"items":[
		{"material":"Plastics","quantity":3,"unit":"KG"},
		{"material":"كرسي","quantity":2,"unit":"PIECE"}
	]}`}
	got, err := newTestExtractor(fake).Extract(context.Background(), "عندي 3 كيلو بلاستيك و كرسيين")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("materials=%+v", got)
	}
	if got[0].Material != "Plastics" || got[0].Quantity != 3 || got[0].Unit != internal.UnitKG {
		t.Fatalf("first=%+v", got[0])
	}
	if got[1].Material != "Chair" || got[1].Quantity != 2 || got[1].Unit != internal.UnitPiece {
		t.Fatalf("second=%+v", got[1])
	}
	if fake.lastUser != "عندي 3 كيلو بلاستيك و كرسيين" {
		t.Fatalf("transcript should pass through untouched, got %q", fake.lastUser)
	}
}

func TestExtractEmptyTranscript(t *testing.T) {
	fake := &fakeCompleter{response: `{"items":[]}`}
	got, err := newTestExtractor(fake).Extract(context.Background(), "   ")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("materials=%+v", got)
	}
	if fake.calls != 0 {
		t.Fatalf("blank transcript should not hit the model, calls=%d", fake.calls)
	}
}

func TestExtractTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	fake := &fakeCompleter{err: cause}
	_, err := newTestExtractor(fake).Extract(context.Background(), "3 kilo plastic")
	if err == nil {
		t.Fatal("expected error")
	}
	var ee *internal.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should unwrap")
	}
}

func TestExtractMalformedOutputDegrades(t *testing.T) {
	cases := []string{
		"I'm sorry, I cannot parse that transcript.",
		`{"note":"nothing to report"}`,
		`{"items":[`,
		"",
	}
	for _, raw := range cases {
		fake := &fakeCompleter{response: raw}
		got, err := newTestExtractor(fake).Extract(context.Background(), "some transcript")
		if err != nil {
			t.Fatalf("response %q: unexpected error %v", raw, err)
		}
		if len(got) != 0 {
			t.Fatalf("response %q: materials=%+v", raw, got)
		}
	}
}

func TestExtractFencedAndWrappedOutput(t *testing.T) {
	cases := []string{
		"```json\n{\"items\":[{\"material\":\"Iron\",\"quantity\":5,\"unit\":\"KG\"}]}\n```",
		"Here you go: {\"items\":[{\"material\":\"Iron\",\"quantity\":5,\"unit\":\"KG\"}]} hope that helps",
		`[{"material":"Iron","quantity":5,"unit":"KG"}]`,
		`{"materials":[{"name":"Iron","quantity":5,"unit":"KG"}]}`,
	}
	for _, raw := range cases {
		fake := &fakeCompleter{response: raw}
		got, err := newTestExtractor(fake).Extract(context.Background(), "five kilos of iron")
		if err != nil {
			t.Fatalf("response %q: %v", raw, err)
		}
		if len(got) != 1 || got[0].Material != "Iron" || got[0].Quantity != 5 {
			t.Fatalf("response %q: materials=%+v", raw, got)
		}
	}
}

func TestExtractMergesDuplicates(t *testing.T) {
	fake := &fakeCompleter{response: `{"items":[
		{"material":"Plastics","quantity":2,"unit":"KG"},
		{"material":"plastic","quantity":3,"unit":"kilo"},
		{"material":"Plastics","quantity":1,"unit":"PIECE"}
	]}`}
	got, err := newTestExtractor(fake).Extract(context.Background(), "plastic twice")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("materials=%+v", got)
	}
	if got[0].Material != "Plastics" || got[0].Unit != internal.UnitKG || got[0].Quantity != 5 {
		t.Fatalf("merged=%+v", got[0])
	}
	if got[1].Unit != internal.UnitPiece || got[1].Quantity != 1 {
		t.Fatalf("piece entry=%+v", got[1])
	}
}

func TestExtractDropsUnknownMaterials(t *testing.T) {
	fake := &fakeCompleter{response: `{"items":[
		{"material":"Uranium","quantity":1,"unit":"KG"},
		{"material":"Copper","quantity":4,"unit":"KG"}
	]}`}
	got, err := newTestExtractor(fake).Extract(context.Background(), "uranium and copper")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 1 || got[0].Material != "Copper" {
		t.Fatalf("materials=%+v", got)
	}
}

func TestExtractDefaultsAndRounding(t *testing.T) {
	fake := &fakeCompleter{response: `{"items":[
		{"material":"Chair"},
		{"material":"Television","quantity":2.6},
		{"material":"Paper","quantity":"٣"},
		{"material":"Glass","quantity":0}
	]}`}
	got, err := newTestExtractor(fake).Extract(context.Background(), "assorted")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("materials=%+v", got)
	}
	if got[0].Quantity != 1 || got[0].Unit != internal.UnitPiece {
		t.Fatalf("chair should default to 1 PIECE, got %+v", got[0])
	}
	if got[1].Quantity != 3 {
		t.Fatalf("piece quantity should round, got %+v", got[1])
	}
	if got[2].Quantity != 3 || got[2].Unit != internal.UnitKG {
		t.Fatalf("arabic digits should coerce, got %+v", got[2])
	}
	if got[3].Quantity != 1 {
		t.Fatalf("invalid quantity should default to 1, got %+v", got[3])
	}
}

func TestSystemPromptCoversVocabulary(t *testing.T) {
	prompt := systemPrompt(vocab.Default())
	for _, e := range vocab.Default().Entries() {
		if !strings.Contains(prompt, e.EnglishName) || !strings.Contains(prompt, e.ArabicName) {
			t.Fatalf("prompt missing entry %q", e.EnglishName)
		}
	}
	if !strings.Contains(prompt, `{"items":[]}`) {
		t.Fatal("prompt should pin the empty-result shape")
	}
}
