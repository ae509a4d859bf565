package internal

// Stage failures that terminate a pipeline run. Parse-level anomalies inside
// the extraction stage degrade to an empty result instead and never surface
// as one of these.

type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "transcription failed: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// ExtractionError covers transport and API failures calling the language
// model. Malformed model output is not an ExtractionError.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extraction failed: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

type CatalogError struct {
	Role string
	Err  error
}

func (e *CatalogError) Error() string { return "catalog fetch failed for role " + e.Role + ": " + e.Err.Error() }
func (e *CatalogError) Unwrap() error { return e.Err }
