package shred

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// epubItem describes one manifest entry of a generated EPUB.
type epubItem struct {
	id        string
	href      string
	mediaType string
	body      string
	// skipSpine leaves the item out of the spine.
	skipSpine bool
	// missing lists the item in the manifest without storing its file.
	missing bool
}

func xhtmlItem(id, body string) epubItem {
	return epubItem{
		id:        id,
		href:      id + ".xhtml",
		mediaType: "application/xhtml+xml",
		body:      body,
	}
}

func xhtmlDoc(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head></head><body>` + inner + `</body></html>`
}

// words returns n distinct space separated words with the given prefix.
func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix + strconv.Itoa(i+1)
	}
	return strings.Join(parts, " ")
}

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildEPUB assembles a minimal EPUB 2 container. spine lists item ids in
// reading order; nil means manifest order minus skipSpine items.
func buildEPUB(t *testing.T, items []epubItem, spine []string) []byte {
	t.Helper()

	var manifest, itemrefs strings.Builder
	for _, it := range items {
		fmt.Fprintf(&manifest, `<item id="%s" href="%s" media-type="%s"/>`+"\n", it.id, it.href, it.mediaType)
	}
	if spine == nil {
		for _, it := range items {
			if !it.skipSpine {
				spine = append(spine, it.id)
			}
		}
	}
	for _, id := range spine {
		fmt.Fprintf(&itemrefs, `<itemref idref="%s"/>`+"\n", id)
	}

	opf := `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Fixture</dc:title></metadata>
<manifest>
` + manifest.String() + `</manifest>
<spine>
` + itemrefs.String() + `</spine>
</package>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte("application/epub+zip"))
	require.NoError(t, err)

	files := []struct{ name, body string }{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", opf},
	}
	for _, it := range items {
		if it.missing {
			continue
		}
		files = append(files, struct{ name, body string }{"OEBPS/" + it.href, it.body})
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF assembles an uncompressed PDF 1.4 file with one text line per page.
// Page text must not contain parentheses or backslashes.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	streams := make([]string, len(pages))
	for i, text := range pages {
		streams[i] = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	}
	return buildPDFStreams(t, streams...)
}

// buildPDFStreams assembles an uncompressed PDF 1.4 file with one page per
// content stream. Every page has Helvetica available as /F1.
func buildPDFStreams(t *testing.T, streams ...string) []byte {
	t.Helper()

	// 1 catalog, 2 page tree, 3 font, then a page and content object per page.
	kids := make([]string, len(streams))
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, stream := range streams {
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// requireConsistentCounts checks that derived word counts agree with the content.
func requireConsistentCounts(t *testing.T, res *Result) {
	t.Helper()
	sum := 0
	for _, ch := range res.Chapters {
		require.Equal(t, len(ch.Content), ch.WordCount())
		for _, w := range ch.Content {
			require.NotEmpty(t, strings.TrimSpace(w))
		}
		sum += ch.WordCount()
	}
	require.Equal(t, sum, res.TotalWords())
}
