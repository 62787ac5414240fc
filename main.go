package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/aeroread/aero/internal/config"
	"github.com/aeroread/aero/internal/logger"
	"github.com/aeroread/aero/internal/reader"
	"github.com/aeroread/aero/internal/shred"
	"github.com/aeroread/aero/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	erpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordBeforeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	wordAfterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	chapterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAFF")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

type keyMap struct {
	Pause       key.Binding
	Faster      key.Binding
	Slower      key.Binding
	PrevSent    key.Binding
	NextSent    key.Binding
	PrevChapter key.Binding
	NextChapter key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("SPACE", "pause/play")),
		Faster:      key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑", "faster")),
		Slower:      key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓", "slower")),
		PrevSent:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev sentence")),
		NextSent:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sentence")),
		PrevChapter: key.NewBinding(key.WithKeys("p"), key.WithHelp("P", "prev chapter")),
		NextChapter: key.NewBinding(key.WithKeys("n"), key.WithHelp("N", "next chapter")),
		Quit:        key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("Q", "quit")),
	}
}

func (k keyMap) help() string {
	bindings := []key.Binding{k.Pause, k.Faster, k.Slower, k.PrevSent, k.NextSent, k.PrevChapter, k.NextChapter, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

type model struct {
	*reader.Reader
	title    string
	keys     keyMap
	bar      progress.Model
	quitting bool
	width    int
	height   int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tick(m.GetDelay())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.Paused = !m.Paused
			if !m.Paused {
				return m, tick(m.GetDelay())
			}
			return m, nil

		case key.Matches(msg, m.keys.Faster):
			m.SpeedUp()
			return m, nil

		case key.Matches(msg, m.keys.Slower):
			m.SlowDown()
			return m, nil

		case key.Matches(msg, m.keys.PrevSent):
			m.pauseOnFirstPress()
			m.JumpToPrevSentence()
			return m, nil

		case key.Matches(msg, m.keys.NextSent):
			m.pauseOnFirstPress()
			m.JumpToNextSentence()
			return m, nil

		case key.Matches(msg, m.keys.PrevChapter):
			m.PrevChapter()
			return m, nil

		case key.Matches(msg, m.keys.NextChapter):
			m.NextChapter()
			return m, nil

		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width-4)
		return m, nil

	case tickMsg:
		if m.Paused {
			return m, nil
		}

		if m.Advance() {
			return m, tick(m.GetDelay())
		}

		// Reached the end
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// pauseOnFirstPress pauses unless the arrow keys are being tapped in quick
// succession.
func (m model) pauseOnFirstPress() {
	now := time.Now()
	if now.Sub(m.LastArrowPress) > 500*time.Millisecond {
		m.Paused = true
	}
	m.LastArrowPress = now
}

func (m model) View() string {
	if m.quitting {
		if m.AtEnd() {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	if len(m.Words) == 0 {
		return "No text to read."
	}

	word := m.CurrentWord()
	formatted := formatWord(word)

	pause := ""
	if m.Paused {
		pause = pausedStyle.Render(" [PAUSED]")
	}

	current, total := m.Progress()
	status := statusStyle.Render(
		fmt.Sprintf("%s | Word %d/%d | %d WPM%s",
			m.title,
			current,
			total,
			m.WPM,
			pause,
		),
	)

	chapter := ""
	if t := m.CurrentChapterTitle(); t != "" {
		chapter = chapterStyle.Render(fmt.Sprintf("Chapter %d/%d: %s", m.CurrentChapter+1, len(m.Chapters), t))
	}

	controls := controlsStyle.Render(m.keys.help())

	// Reserve 4 lines: status, chapter, progress bar, controls
	avail := m.height - 4
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder

	sb.WriteString(status)
	sb.WriteString("\n")
	sb.WriteString(chapter)
	sb.WriteString("\n")

	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(anchorORPText(formatted, word, m.width))

	remaining := avail - vPad
	for i := 0; i < remaining; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(" " + m.bar.ViewAs(m.ChapterProgress()))
	sb.WriteString("\n")
	sb.WriteString(controls)

	return sb.String()
}

func formatWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	orp := reader.GetORPPosition(word)

	before := string(runes[:orp])
	focus := string(runes[orp])
	after := ""
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}

	return wordBeforeStyle.Render(before) +
		erpStyle.Render(focus) +
		wordAfterStyle.Render(after)
}

func anchorORPText(text string, word string, width int) string {
	anchor := width / 2
	orp := reader.GetORPPosition(word)
	pad := anchor - orp
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newModel(r *reader.Reader, title string) model {
	return model{
		Reader:   r,
		title:    title,
		keys:     defaultKeyMap(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(76)),
		quitting: false,
		width:    80,
		height:   24,
	}
}

// storyTitle derives a display title from an uploaded file name.
func storyTitle(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}

// extractStory selects the engine from the file extension and runs it.
func extractStory(ex *shred.Extractor, filename string, data []byte) (*shred.Result, error) {
	format, err := shred.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return ex.Extract(data, format)
}

// describeError turns an extraction failure into a message for the user.
func describeError(filename string, err error) string {
	switch {
	case errors.Is(err, shred.ErrUnsupportedFormat):
		return fmt.Sprintf("'%s' is not a supported file. Supported: %s",
			filename, strings.Join(shred.SupportedFormats(), ", "))
	case errors.Is(err, shred.ErrMalformedContainer):
		return fmt.Sprintf("'%s' could not be parsed: %v", filename, err)
	case errors.Is(err, shred.ErrNoReadableContent):
		return fmt.Sprintf("No readable text was found in '%s'.", filename)
	default:
		return fmt.Sprintf("Failed to process '%s': %v", filename, err)
	}
}

func writeResult(w io.Writer, res *shred.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func main() {
	wpm := flag.Int("w", 300, "Words per minute (default: 300, or reader.wpm from config)")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	dump := flag.Bool("dump", false, "Print the extracted chapters as JSON and exit")
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	verbose := flag.Bool("verbose", false, "Log extraction details to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Aero - Terminal Speed Reader for EPUB and PDF\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  aero [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  aero book.epub            Read an EPUB at 300 WPM\n")
		fmt.Fprintf(os.Stderr, "  aero -w 500 paper.pdf     Read a PDF at 500 WPM\n")
		fmt.Fprintf(os.Stderr, "  aero -dump book.epub      Print chapters as JSON\n")
		fmt.Fprintf(os.Stderr, "  cat notes.txt | aero      Read plain text from stdin\n")
		fmt.Fprintf(os.Stderr, "\nSupported formats: %s\n", strings.Join(shred.SupportedFormats(), ", "))
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("aero %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			cfg.Reader.WPM = *wpm
		}
	})

	log := logger.New(cfg.Log, os.Stderr)
	defer log.Sync()

	var r *reader.Reader
	var title string
	var storyID state.StoryID

	if flag.NArg() > 0 {
		filename := flag.Arg(0)
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to read file '%s': %v\n", filename, err)
			os.Exit(1)
		}

		ex := shred.New(append(cfg.ShredOptions(), shred.WithLogger(log))...)
		res, err := extractStory(ex, filename, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(filename, err))
			os.Exit(1)
		}

		if *dump {
			if err := writeResult(os.Stdout, res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		r = reader.FromResult(res, cfg.Reader.WPM)
		title = storyTitle(filename)
		storyID = state.StoryIDFromContent(data)
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe text to stdin.")
			fmt.Fprintln(os.Stderr, "Try: aero -h")
			os.Exit(1)
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		r = reader.NewReader(string(data), cfg.Reader.WPM)
		title = "stdin"
	}

	if len(r.Words) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No text to read.")
		os.Exit(1)
	}

	var store *state.StateStore
	if storyID != "" {
		store, err = state.NewStateStore()
		if err != nil {
			log.Warn("progress will not be saved", zap.Error(err))
		} else if p, ok := store.Get(storyID); ok && !*freshStart {
			if !r.Seek(p.LastChapter, p.LastWord) {
				log.Warn("saved position no longer fits the document",
					zap.String("story_id", string(storyID)),
					zap.Int("chapter", p.LastChapter),
					zap.Int("word", p.LastWord))
			}
		}
	}

	p := tea.NewProgram(newModel(r, title), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if store != nil {
		fm := final.(model)
		if fm.AtEnd() {
			err = store.Clear(storyID)
		} else {
			chapter, word := fm.Position()
			_, err = store.Sync(storyID, chapter, word, time.Now())
		}
		if err != nil {
			log.Warn("failed to save progress", zap.Error(err))
		}
	}
}
