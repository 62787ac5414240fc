package shred

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

type pdfShredder struct {
	logger     *zap.Logger
	minWords   int
	allowEmpty bool
}

func (s *pdfShredder) Name() string { return "PDF" }

// Shred extracts one chapter candidate per page, in physical page order.
// Pages are titled "Page N", 1-indexed.
func (s *pdfShredder) Shred(data []byte) (chapters []Chapter, err error) {
	defer func() {
		if r := recover(); r != nil {
			chapters = nil
			err = malformed(FormatPDF, fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	if len(data) == 0 {
		return nil, malformed(FormatPDF, errors.New("empty pdf content"))
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, malformed(FormatPDF, err)
	}

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		title := "Page " + strconv.Itoa(i)

		text, err := pageText(r, i)
		if err != nil {
			s.logger.Warn("skipping unreadable page", zap.Int("page", i), zap.Error(err))
		}
		words := Tokenize(text)

		ch, ok := BuildChapter(title, words, s.minWords)
		if !ok {
			s.logger.Debug("rejected page",
				zap.Int("page", i),
				zap.Int("words", len(words)),
				zap.Int("min_words", s.minWords))
			continue
		}
		chapters = append(chapters, ch)
	}

	if len(chapters) == 0 && !s.allowEmpty {
		return nil, noReadableContent(FormatPDF)
	}
	return chapters, nil
}

// pageText returns the plain text of page num (1-indexed). A page that fails
// to decode, including a decoder panic, is reported as an error so the
// caller can skip it without losing the rest of the document.
func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page decoder panic: %v", rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return layoutText(page.Content().Text), nil
}

// layoutText joins positioned glyphs in content stream order. A change of
// baseline starts a new line and a horizontal jump away from where the
// previous glyph ended inserts a space, so text placed with Td, Tm or a new
// BT block never runs into the previous run.
func layoutText(glyphs []pdf.Text) string {
	var sb strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			size := math.Max(prev.FontSize, g.FontSize)
			if size <= 0 {
				size = 1
			}
			switch {
			case math.Abs(g.Y-prev.Y) > size/2:
				sb.WriteByte('\n')
			case math.Abs(g.X-(prev.X+prev.W)) > size*0.15:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
	return sb.String()
}
