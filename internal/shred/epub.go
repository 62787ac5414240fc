package shred

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"go.uber.org/zap"
)

// documentMediaTypes are the manifest media types treated as text documents.
var documentMediaTypes = map[string]bool{
	"application/xhtml+xml": true,
	"text/html":             true,
}

type epubShredder struct {
	logger     *zap.Logger
	minWords   int
	spineOrder bool
	// filter defaults to FilterNoise.
	filter func([]byte) (Fragment, error)
}

func (s *epubShredder) Name() string { return "EPUB" }

// Shred extracts one chapter candidate per document item. Items are read in
// manifest order, or spine order when spineOrder is set.
func (s *epubShredder) Shred(data []byte) (chapters []Chapter, err error) {
	defer func() {
		if r := recover(); r != nil {
			chapters = nil
			err = malformed(FormatEPUB, fmt.Errorf("epub parser panic: %v", r))
		}
	}()

	rc, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, malformed(FormatEPUB, err)
	}
	if len(rc.Rootfiles) == 0 {
		return nil, malformed(FormatEPUB, errors.New("no rootfiles found in epub"))
	}

	filter := s.filter
	if filter == nil {
		filter = FilterNoise
	}

	book := rc.Rootfiles[0]
	for _, item := range s.documentItems(book) {
		markup, err := readItem(item)
		if err != nil {
			s.logger.Warn("skipping unreadable item", zap.String("href", item.HREF), zap.Error(err))
			continue
		}

		frag, err := filter(markup)
		if err != nil {
			s.logger.Warn("skipping unparseable item", zap.String("href", item.HREF), zap.Error(err))
			continue
		}
		title := item.HREF
		if frag.HasTitle {
			title = frag.Title
		}
		words := Tokenize(frag.Text)

		ch, ok := BuildChapter(title, words, s.minWords)
		if !ok {
			s.logger.Debug("rejected item",
				zap.String("href", item.HREF),
				zap.Int("words", len(words)),
				zap.Int("min_words", s.minWords))
			continue
		}
		chapters = append(chapters, ch)
	}

	if len(chapters) == 0 {
		return nil, noReadableContent(FormatEPUB)
	}
	return chapters, nil
}

// documentItems returns the text documents of the package in reading order.
func (s *epubShredder) documentItems(book *epub.Rootfile) []*epub.Item {
	var items []*epub.Item
	for i := range book.Manifest.Items {
		if isDocument(&book.Manifest.Items[i]) {
			items = append(items, &book.Manifest.Items[i])
		}
	}
	if !s.spineOrder {
		return items
	}

	seen := make(map[*epub.Item]bool, len(items))
	ordered := make([]*epub.Item, 0, len(items))
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil || seen[ref.Item] || !isDocument(ref.Item) {
			continue
		}
		seen[ref.Item] = true
		ordered = append(ordered, ref.Item)
	}
	// Documents outside the spine still hold text; keep them at the end.
	for _, item := range items {
		if !seen[item] {
			ordered = append(ordered, item)
		}
	}
	return ordered
}

func isDocument(item *epub.Item) bool {
	mt := strings.ToLower(strings.TrimSpace(item.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return documentMediaTypes[mt]
}

func readItem(item *epub.Item) ([]byte, error) {
	r, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
