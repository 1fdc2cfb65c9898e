package shape

// Extractor turns a contour into a descriptor. Classifiers accept any
// Extractor and otherwise work on Features only.
type Extractor interface {
	Extract(c Contour) (*Features, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(c Contour) (*Features, error)

// Extract calls fn(c).
func (fn ExtractorFunc) Extract(c Contour) (*Features, error) {
	return fn(c)
}

// DefaultExtractor computes Features with NewFeatures.
var DefaultExtractor Extractor = ExtractorFunc(NewFeatures)
