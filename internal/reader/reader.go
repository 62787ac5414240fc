// Package reader provides core RSVP (Rapid Serial Visual Presentation) speed reading logic.
package reader

import (
	"time"
	"unicode/utf8"

	"github.com/aeroread/aero/internal/shred"
)

// WPM bounds and step used by the speed controls.
const (
	MinWPM  = 100
	MaxWPM  = 1500
	StepWPM = 50
)

// Chapter marks a chapter's span in the flattened word stream.
// WordEnd is inclusive.
type Chapter struct {
	Title     string
	WordStart int
	WordEnd   int
}

// Reader holds the state for an RSVP speed reading session.
type Reader struct {
	Words          []string
	SentenceStarts []int
	CurrentIndex   int
	WPM            int
	Paused         bool
	LastArrowPress time.Time

	Chapters       []Chapter
	CurrentChapter int
}

// NewReader creates a new Reader from plain text and a words-per-minute setting.
func NewReader(text string, wpm int) *Reader {
	words := shred.Tokenize(text)
	r := newReader(words, wpm)
	if len(words) > 0 {
		r.Chapters = []Chapter{{WordStart: 0, WordEnd: len(words) - 1}}
	}
	return r
}

// FromResult creates a Reader over the chapters of an extraction result.
func FromResult(res *shred.Result, wpm int) *Reader {
	var words []string
	var chapters []Chapter
	for _, ch := range res.Chapters {
		if ch.WordCount() == 0 {
			continue
		}
		start := len(words)
		words = append(words, ch.Content...)
		chapters = append(chapters, Chapter{
			Title:     ch.Title,
			WordStart: start,
			WordEnd:   len(words) - 1,
		})
	}
	r := newReader(words, wpm)
	r.Chapters = chapters
	return r
}

func newReader(words []string, wpm int) *Reader {
	r := &Reader{
		Words:          words,
		SentenceStarts: FindSentenceStarts(words),
	}
	r.SetWPM(wpm)
	return r
}

// FindSentenceStarts returns indices of words that start sentences.
func FindSentenceStarts(words []string) []int {
	starts := []int{0}
	for i, word := range words {
		if len(word) > 0 {
			last := word[len(word)-1]
			if last == '.' || last == '!' || last == '?' {
				if i+1 < len(words) {
					starts = append(starts, i+1)
				}
			}
		}
	}
	return starts
}

// GetORPPosition returns the Optimal Recognition Point index for a word.
// This is the character (rune) position where the eye should focus for fastest recognition.
func GetORPPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

// SetWPM sets the speed, clamped to [MinWPM, MaxWPM].
func (r *Reader) SetWPM(wpm int) {
	switch {
	case wpm < MinWPM:
		wpm = MinWPM
	case wpm > MaxWPM:
		wpm = MaxWPM
	}
	r.WPM = wpm
}

// SpeedUp raises the speed by one step.
func (r *Reader) SpeedUp() { r.SetWPM(r.WPM + StepWPM) }

// SlowDown lowers the speed by one step.
func (r *Reader) SlowDown() { r.SetWPM(r.WPM - StepWPM) }

// JumpToPrevSentence moves to the start of the previous sentence.
func (r *Reader) JumpToPrevSentence() {
	defer r.updateCurrentChapter()
	for i := len(r.SentenceStarts) - 1; i >= 0; i-- {
		if r.SentenceStarts[i] < r.CurrentIndex {
			r.CurrentIndex = r.SentenceStarts[i]
			return
		}
	}
	r.CurrentIndex = 0
}

// JumpToNextSentence moves to the start of the next sentence.
func (r *Reader) JumpToNextSentence() {
	defer r.updateCurrentChapter()
	for i := 0; i < len(r.SentenceStarts); i++ {
		if r.SentenceStarts[i] > r.CurrentIndex {
			r.CurrentIndex = r.SentenceStarts[i]
			return
		}
	}
	if len(r.Words) > 0 {
		r.CurrentIndex = len(r.Words) - 1
	}
}

// GetDelay returns the duration to display each word based on WPM.
func (r *Reader) GetDelay() time.Duration {
	return time.Duration(60.0/float64(r.WPM)*1000) * time.Millisecond
}

// CurrentWord returns the word at the current index.
func (r *Reader) CurrentWord() string {
	if r.CurrentIndex >= 0 && r.CurrentIndex < len(r.Words) {
		return r.Words[r.CurrentIndex]
	}
	return ""
}

// Progress returns the current position and total word count.
func (r *Reader) Progress() (current, total int) {
	return r.CurrentIndex + 1, len(r.Words)
}

// Advance moves to the next word. Returns true if there are more words.
func (r *Reader) Advance() bool {
	if r.CurrentIndex < len(r.Words)-1 {
		r.CurrentIndex++
		r.updateCurrentChapter()
		return true
	}
	return false
}

// AtEnd returns true if the reader is at the last word.
func (r *Reader) AtEnd() bool {
	return r.CurrentIndex >= len(r.Words)-1
}

// NextChapter moves to the first word of the next chapter. It reports
// whether there was one.
func (r *Reader) NextChapter() bool {
	if r.CurrentChapter+1 >= len(r.Chapters) {
		return false
	}
	r.CurrentChapter++
	r.CurrentIndex = r.Chapters[r.CurrentChapter].WordStart
	return true
}

// PrevChapter restarts the current chapter, or moves to the previous one
// when already at its first word.
func (r *Reader) PrevChapter() {
	if len(r.Chapters) == 0 {
		return
	}
	if r.CurrentIndex == r.Chapters[r.CurrentChapter].WordStart && r.CurrentChapter > 0 {
		r.CurrentChapter--
	}
	r.CurrentIndex = r.Chapters[r.CurrentChapter].WordStart
}

// Position returns the current chapter index and the word index inside it.
func (r *Reader) Position() (chapter, word int) {
	if len(r.Chapters) == 0 {
		return 0, r.CurrentIndex
	}
	return r.CurrentChapter, r.CurrentIndex - r.Chapters[r.CurrentChapter].WordStart
}

// Seek moves to word inside chapter. Out of range positions are ignored and
// reported as false.
func (r *Reader) Seek(chapter, word int) bool {
	if chapter < 0 || chapter >= len(r.Chapters) || word < 0 {
		return false
	}
	ch := r.Chapters[chapter]
	if ch.WordStart+word > ch.WordEnd {
		return false
	}
	r.CurrentChapter = chapter
	r.CurrentIndex = ch.WordStart + word
	return true
}

// ChapterProgress returns the fraction of the current chapter already read.
func (r *Reader) ChapterProgress() float64 {
	if len(r.Chapters) == 0 {
		return 0
	}
	ch := r.Chapters[r.CurrentChapter]
	span := ch.WordEnd - ch.WordStart + 1
	return float64(r.CurrentIndex-ch.WordStart+1) / float64(span)
}

// updateCurrentChapter sets CurrentChapter based on CurrentIndex.
func (r *Reader) updateCurrentChapter() {
	for i := len(r.Chapters) - 1; i >= 0; i-- {
		if r.CurrentIndex >= r.Chapters[i].WordStart {
			r.CurrentChapter = i
			return
		}
	}
	r.CurrentChapter = 0
}

// CurrentChapterTitle returns the title of the current chapter.
func (r *Reader) CurrentChapterTitle() string {
	if r.CurrentChapter >= 0 && r.CurrentChapter < len(r.Chapters) {
		return r.Chapters[r.CurrentChapter].Title
	}
	return ""
}
