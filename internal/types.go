package internal

type Unit string

const (
	UnitKG    Unit = "KG"
	UnitPiece Unit = "PIECE"
)

// UnitFromMeasurement maps the backend's measurement_unit codes (1=KG,
// 2=piece) onto Unit. Unknown codes default to PIECE.
func UnitFromMeasurement(code int) Unit {
	if code == 1 {
		return UnitKG
	}
	return UnitPiece
}

// ExtractedMaterial is one structured item pulled out of a transcript.
// Material always holds a canonical English vocabulary name; entries with the
// same (Material, Unit) pair are merged before extraction returns.
type ExtractedMaterial struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

// LiveCatalogItem mirrors one sellable item of the backend catalog.
// Name is keyed by language code ("en", "ar").
type LiveCatalogItem struct {
	ID              string
	Name            map[string]string
	CategoryID      string
	CategoryName    string
	MeasurementUnit int
	Points          float64
	Price           float64
	Image           string
}

// EnglishName returns the English projection of the multilingual name,
// falling back to any available translation.
func (i *LiveCatalogItem) EnglishName() string {
	if i == nil {
		return ""
	}
	if v, ok := i.Name["en"]; ok && v != "" {
		return v
	}
	for _, v := range i.Name {
		if v != "" {
			return v
		}
	}
	return ""
}

// VerifiedMaterial is the final pipeline output handed to the order builder.
// Available is true iff MatchedItem is non-nil; MatchSimilarity is 0 iff
// MatchedItem is nil.
type VerifiedMaterial struct {
	Material        string
	Quantity        float64
	Unit            Unit
	Available       bool
	MatchedItem     *LiveCatalogItem
	MatchSimilarity float64
	UnitMatched     bool
}

type RunRow struct {
	ID         int
	TraceID    string
	Role       string
	Status     string
	Transcript string
	CreatedAt  string
}

type VerifiedExportRow struct {
	Position     int
	Material     string
	Quantity     float64
	Unit         string
	Available    bool
	Similarity   float64
	UnitMatched  bool
	ItemID       *string
	ItemName     *string
	CategoryName *string
	Points       *float64
	Price        *float64
}
