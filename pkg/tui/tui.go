// Package tui provides a terminal user interface for tune2dp
package tui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/tune2dp/pkg/converter"
	"github.com/james-see/tune2dp/pkg/converter/devices"
)

// Doom status bar palette
var (
	marineGreen  = lipgloss.Color("#3CB043")
	hazardOrange = lipgloss.Color("#FF9F1C")
	silverGray   = lipgloss.Color("#B8B8B8")
	darkGray     = lipgloss.Color("#2B2B2B")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(marineGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(marineGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(hazardOrange).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(marineGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(marineGreen).
			Padding(1, 2)

	stripStyle = lipgloss.NewStyle().
			Foreground(hazardOrange)
)

// maxStripRuns caps the pitch strip width
const maxStripRuns = 48

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	FromFormat  converter.Format
	ToFormat    converter.Format
}

var menuItems = []MenuItem{
	{Title: "TUNE → DP", Description: "Convert tune text to a PC speaker lump", FromFormat: converter.FormatTune, ToFormat: converter.FormatDP},
	{Title: "TUNE → MIDI", Description: "Preview a tune as a MIDI file", FromFormat: converter.FormatTune, ToFormat: converter.FormatMIDI},
	{Title: "TUNE → WAV", Description: "Render a tune as a square wave", FromFormat: converter.FormatTune, ToFormat: converter.FormatWAV},
	{Title: "DP → MIDI", Description: "Convert a PC speaker lump to MIDI", FromFormat: converter.FormatDP, ToFormat: converter.FormatMIDI},
	{Title: "DP → WAV", Description: "Render a PC speaker lump as a square wave", FromFormat: converter.FormatDP, ToFormat: converter.FormatWAV},
	{Title: "MIDI → DP", Description: "Convert a monophonic MIDI file to a lump", FromFormat: converter.FormatMIDI, ToFormat: converter.FormatDP},
	{Title: "Exit", Description: "Exit the application", FromFormat: "", ToFormat: ""},
}

// allowedTypes lists the file picker extensions for each input format
var allowedTypes = map[converter.Format][]string{
	converter.FormatTune: {".txt", ".tune"},
	converter.FormatDP:   {".lmp", ".dp"},
	converter.FormatMIDI: {".mid", ".midi"},
}

// summary describes a finished conversion
type summary struct {
	OutputFile string
	OutputSize int
	Samples    int
	Duration   time.Duration
	Runs       []converter.Run
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	result       *summary
	conversion   MenuItem
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	result *summary
	err    error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt", ".tune", ".lmp", ".dp", ".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(marineGreen)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.conversion = menuItems[m.menuIndex]
		m.state = StateFilePicker

		m.filePicker.AllowedTypes = allowedTypes[m.conversion.FromFormat]

		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.result = nil
		return m, nil
	case "r":
		// Convert the same file again, e.g. after editing the tune
		m.state = StateConverting
		m.err = nil
		m.result = nil
		return m, tea.Batch(m.spinner.Tick, m.performConversion())
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	selected := m.selectedFile
	conversion := m.conversion
	return func() tea.Msg {
		result, err := convertFile(selected, conversion)
		return conversionDoneMsg{result: result, err: err}
	}
}

// convertFile runs one menu conversion and writes the result next to
// the input file. Nothing is written if the input does not decode.
func convertFile(input string, item MenuItem) (*summary, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}

	device := devices.NewPCSpeaker()
	fx, err := decodeSource(data, item.FromFormat, device)
	if err != nil {
		return nil, err
	}

	result, err := converter.New(device).Convert(data, item.FromFormat, item.ToFormat)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	outputFile := base + item.ToFormat.Extension()

	if err := os.WriteFile(outputFile, result, 0644); err != nil {
		return nil, err
	}

	return &summary{
		OutputFile: outputFile,
		OutputSize: len(result),
		Samples:    fx.Len(),
		Duration:   fx.Duration(),
		Runs:       fx.Runs(),
	}, nil
}

// decodeSource expands an input file to its tick stream
func decodeSource(data []byte, from converter.Format, device converter.Device) (*converter.SoundEffect, error) {
	switch from {
	case converter.FormatTune:
		tune, err := converter.ReadTune(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return converter.ConvertTune(tune)
	case converter.FormatDP:
		return converter.NewLumpConverter(device).ParseLump(data)
	case converter.FormatMIDI:
		return converter.NewMIDIConverter().ParseMIDI(data)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", from)
	}
}

// pitchStrip draws one bar per run, taller for higher pitches
func pitchStrip(runs []converter.Run) string {
	bars := []rune("▁▂▃▄▅▆▇█")

	var s strings.Builder
	for i, run := range runs {
		if i == maxStripRuns {
			s.WriteString("…")
			break
		}
		if _, ok := converter.Frequency(run.Value); !ok {
			s.WriteRune('·')
			continue
		}
		level := (run.Value & 0xFF) * len(bars) / len(converter.Frequencies)
		if level >= len(bars) {
			level = len(bars) - 1
		}
		s.WriteRune(bars[level])
	}
	return s.String()
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT CONVERSION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(hazardOrange).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s FILE ", strings.ToUpper(string(m.conversion.FromFormat)))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s → %s", m.conversion.FromFormat, m.conversion.ToFormat)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	var segErr *converter.SegmentError
	switch {
	case errors.As(m.err, &segErr):
		s.WriteString(titleStyle.Render(" BAD TUNE "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Segment %d: %q", segErr.Index, segErr.Segment)))
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(fmt.Sprintf("  %v", segErr.Err)))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("No output was written"))
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	case m.result != nil:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:    %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output:   %s (%d bytes)\n", filepath.Base(m.result.OutputFile), m.result.OutputSize))
		s.WriteString(fmt.Sprintf("Samples:  %d\n", m.result.Samples))
		s.WriteString(fmt.Sprintf("Duration: %s at %d Hz\n", m.result.Duration.Round(time.Millisecond), converter.TickRate))
		s.WriteString(fmt.Sprintf("Runs:     %d\n", len(m.result.Runs)))
		s.WriteString(stripStyle.Render(pitchStrip(m.result.Runs)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: continue • r: convert again"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   _____ _   _ _   _ _____ ____  ____  ____
  |_   _| | | | \ | | ____|___ \|  _ \|  _ \
    | | | | | |  \| |  _|   __) | | | | |_) |
    | | | |_| | |\  | |___ / __/| |_| |  __/
    |_|  \___/|_| \_|_____|_____|____/|_|
`
	return lipgloss.NewStyle().Foreground(marineGreen).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

