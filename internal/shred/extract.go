// Package shred converts EPUB and PDF documents into ordered, chaptered word
// streams for RSVP reading.
//
// Each format engine walks the document's natural units (EPUB document items,
// PDF pages), cleans and tokenizes each unit, and keeps the units that pass
// the format's admission threshold:
//
//	res, err := shred.Extract(data, shred.FormatEPUB)
//	if errors.Is(err, shred.ErrNoReadableContent) {
//	    // valid file, nothing to read
//	}
//
// Extraction is a pure function of its input. An Extractor holds only
// immutable settings and may be shared between goroutines.
package shred

import (
	"go.uber.org/zap"
)

const (
	// DefaultEPUBMinWords is the EPUB admission threshold: an item needs
	// more than this many words to become a chapter.
	DefaultEPUBMinWords = 50
	// DefaultPDFMinWords is the PDF admission threshold. PDFs legitimately
	// carry short pages, so it sits lower than the EPUB one.
	DefaultPDFMinWords = 10
)

type options struct {
	logger        *zap.Logger
	epubMinWords  int
	pdfMinWords   int
	spineOrder    bool
	allowEmptyPDF bool
}

// Option configures an Extractor.
type Option func(*options)

// WithLogger sets the logger used for per-unit diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEPUBMinWords overrides the EPUB admission threshold.
func WithEPUBMinWords(n int) Option {
	return func(o *options) { o.epubMinWords = n }
}

// WithPDFMinWords overrides the PDF admission threshold.
func WithPDFMinWords(n int) Option {
	return func(o *options) { o.pdfMinWords = n }
}

// WithSpineOrder makes the EPUB engine follow the spine reading order
// instead of manifest order.
func WithSpineOrder(on bool) Option {
	return func(o *options) { o.spineOrder = on }
}

// WithAllowEmptyPDF makes a PDF with no admitted pages return an empty
// Result instead of ErrNoReadableContent.
func WithAllowEmptyPDF(on bool) Option {
	return func(o *options) { o.allowEmptyPDF = on }
}

// Extractor dispatches documents to the engine for their declared format.
type Extractor struct {
	logger    *zap.Logger
	shredders map[Format]shredder
}

// New creates an Extractor with the default thresholds unless overridden.
func New(opts ...Option) *Extractor {
	o := options{
		logger:       zap.NewNop(),
		epubMinWords: DefaultEPUBMinWords,
		pdfMinWords:  DefaultPDFMinWords,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Extractor{
		logger: o.logger,
		shredders: map[Format]shredder{
			FormatEPUB: &epubShredder{
				logger:     o.logger.Named("epub"),
				minWords:   o.epubMinWords,
				spineOrder: o.spineOrder,
			},
			FormatPDF: &pdfShredder{
				logger:     o.logger.Named("pdf"),
				minWords:   o.pdfMinWords,
				allowEmpty: o.allowEmptyPDF,
			},
		},
	}
}

// Extract runs the engine for format over data. On failure no partial result
// is returned.
func (e *Extractor) Extract(data []byte, format Format) (*Result, error) {
	s, ok := e.shredders[format]
	if !ok {
		return nil, &Error{Kind: KindUnsupportedFormat, Format: format, Message: "unsupported format"}
	}

	chapters, err := s.Shred(data)
	if err != nil {
		e.logger.Debug("extraction failed",
			zap.String("format", s.Name()),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return nil, err
	}

	res := &Result{Chapters: chapters}
	e.logger.Info("extracted document",
		zap.String("format", s.Name()),
		zap.Int("chapters", len(res.Chapters)),
		zap.Int("total_words", res.TotalWords()))
	return res, nil
}

// Extract runs an Extractor with default settings.
func Extract(data []byte, format Format) (*Result, error) {
	return New().Extract(data, format)
}
