package constants

// ExtractionMethod records which acquisition path produced the statement text.
type ExtractionMethod string

const (
	MethodDirect ExtractionMethod = "direct"
	MethodOCR    ExtractionMethod = "ocr"
	MethodNone   ExtractionMethod = "none"
)

// Strictness controls how much of the generated JSON is checked beyond its top-level shape.
type Strictness string

const (
	StrictnessStructural Strictness = "structural"
	StrictnessWarn       Strictness = "warn"
	StrictnessStrict     Strictness = "strict"
)

// ParseStrictness maps a config string onto a Strictness, defaulting to structural.
func ParseStrictness(s string) Strictness {
	switch Strictness(s) {
	case StrictnessWarn, StrictnessStrict:
		return Strictness(s)
	default:
		return StrictnessStructural
	}
}

// Direct extraction engine names accepted by PDF_DIRECT_ENGINES.
const (
	EngineNative    = "native"
	EnginePdftotext = "pdftotext"
)
