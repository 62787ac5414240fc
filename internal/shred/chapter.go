package shred

import "encoding/json"

// Chapter is one admitted unit of extracted text: an EPUB document item or a
// PDF page. The word count is always derived from Content.
type Chapter struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// WordCount returns the number of words in the chapter.
func (c Chapter) WordCount() int {
	return len(c.Content)
}

// MarshalJSON emits word_count from len(content) so a stored count can never
// drift from the stored words.
func (c Chapter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title     string   `json:"title"`
		Content   []string `json:"content"`
		WordCount int      `json:"word_count"`
	}{c.Title, c.Content, c.WordCount()})
}

// Result is the outcome of one extraction. Chapters are in document order.
type Result struct {
	Chapters []Chapter `json:"chapters"`
}

// TotalWords sums the word counts of all chapters.
func (r Result) TotalWords() int {
	total := 0
	for _, c := range r.Chapters {
		total += c.WordCount()
	}
	return total
}

// MarshalJSON emits total_words computed from the chapters.
func (r Result) MarshalJSON() ([]byte, error) {
	chapters := r.Chapters
	if chapters == nil {
		chapters = []Chapter{}
	}
	return json.Marshal(struct {
		Chapters   []Chapter `json:"chapters"`
		TotalWords int       `json:"total_words"`
	}{chapters, r.TotalWords()})
}

// BuildChapter admits a candidate iff it has strictly more than minWords
// words. A rejected candidate yields ok == false and no chapter.
func BuildChapter(title string, words []string, minWords int) (ch Chapter, ok bool) {
	if len(words) <= minWords {
		return Chapter{}, false
	}
	return Chapter{Title: title, Content: words}, true
}
