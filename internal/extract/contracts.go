package extract

import "context"

// DirectExtractor reads the embedded text layer of a PDF, one string per page.
type DirectExtractor interface {
	Name() string
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// OCRExtractor rasterizes a PDF and recognizes text from each page image.
type OCRExtractor interface {
	OCRPages(ctx context.Context, path string) ([]string, error)
}

// ServiceInfo describes which acquisition capabilities are installed.
type ServiceInfo struct {
	ServiceAvailable bool     `json:"service_available"`
	DirectAvailable  bool     `json:"direct_extraction_available"`
	OCRAvailable     bool     `json:"ocr_available"`
	PreferredMethod  string   `json:"preferred_method"`
	DirectEngines    []string `json:"direct_engines,omitempty"`
	TesseractVersion string   `json:"tesseract_version,omitempty"`
}
