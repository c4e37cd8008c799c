package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help             Print this cruft
  list             List constants, variables, and functions
  set NAME EXPR    Assign the value of EXPR to variable NAME
  clear            Clear screen
  quit             Exit REPL

Usage:
  Type an expression to evaluate it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	percentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// formatResult renders an evaluation result. Percentage quantities are
// followed by their percent notation.
func formatResult(value, percent string) string {
	if percent == "" {
		return resultStyle.Render(value)
	}

	return resultStyle.Render(value) + " " + percentStyle.Render("("+percent+")")
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	formula      *lang.Formula
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // ranked completions of the current word
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session evaluating expressions against f.
// History is kept in cacheDir unless it is empty.
func Run(
	ctx context.Context,
	f *lang.Formula,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if f == nil {
		return ErrNoFormula
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("symbols", f.Symbols().Len()),
	)

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history unavailable",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	p := tea.NewProgram(newModel(ctx, f, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	f *lang.Formula,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		formula:    f,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint renders the line below the input: history position, usage hint,
// signature of the enclosing call, or the completion bar.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: help, list, set, clear, quit (press Esc to return)")
	}

	if m.mode == modeEval && !m.tabActive {
		call := detectFunctionCall(input, m.cursor())
		if call.inCall {
			if name, params, ok := signatureOf(m.formula, call.name); ok {
				return renderSignatureHint(name, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.formula, m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Deletions and cursor motion never auto-confirm a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step. A single candidate is completed
// immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// cursor returns the byte offset of the input cursor. The text input
// positions its cursor in runes.
func (m model) cursor() int {
	runes := []rune(m.input.Value())

	return len(string(runes[:min(m.input.Position(), len(runes))]))
}

// setInput replaces the input text and puts the cursor at byte offset pos.
func (m *model) setInput(text string, pos int) {
	m.input.SetValue(text)
	m.input.SetCursor(utf8.RuneCountInString(text[:pos]))
}

// replaceCurrentWord substitutes replacement for the word being completed.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	end := m.wordStart + len(replacement)

	m.setInput(input[:m.wordStart]+replacement+input[m.wordEnd:], end)

	m.wordEnd = end
}

// refreshMatches recomputes the completions for the word at the cursor.
// With autoConfirm, a word that already equals its only candidate is
// accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Append(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history append failed",
			slog.Any("error", err),
		)
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	return m, tea.Sequence(
		tea.Println(formatCommand(input)),
		tea.Println(m.evaluate(input)),
	)
}

// evaluate compiles and evaluates src, rendering the result or the error.
func (m model) evaluate(src string) string {
	expr, err := m.formula.CompileContext(m.ctxFunc(), src)
	if err != nil {
		var ce *lang.CompileError
		if errors.As(err, &ce) {
			return errorStyle.Render("error: "+err.Error()) + "\n" + hintStyle.Render(ce.Snippet())
		}

		return errorStyle.Render("error: " + err.Error())
	}

	d, err := expr.Eval()
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl eval failed", slog.Any("error", err))

		return errorStyle.Render("error: " + err.Error())
	}

	var percent string
	if expr.IsPercentage() {
		percent = lang.FormatPercent(d)
	}

	return formatResult(lang.Format(d), percent)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))
	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listSymbols()))

	case "s", "set":
		return m, tea.Sequence(echo, tea.Println(m.assign(args)))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// assign handles "set NAME EXPR".
func (m model) assign(args []string) string {
	if len(args) < 2 {
		return errorStyle.Render(ErrUsage.Error() + ": set NAME EXPR")
	}

	name, src := args[0], strings.Join(args[1:], " ")

	expr, err := m.formula.CompileContext(m.ctxFunc(), src)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	d, err := expr.Eval()
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	v, err := m.formula.SetVariable(name, d)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	return hintStyle.Render(v.Name()+" = ") + resultStyle.Render(lang.Format(d))
}

// listSymbols renders one line per registered symbol.
func (m model) listSymbols() string {
	var b strings.Builder

	for _, s := range m.formula.Symbols().All() {
		b.WriteString("  ")
		b.WriteString(s.Name())
		b.WriteString(" ")
		b.WriteString(hintStyle.Render(describe(s)))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// describe summarizes a symbol for the list command.
func describe(s lang.Symbol) string {
	switch s := s.(type) {
	case *lang.Constant:
		return "= " + lang.Format(s.Value())

	case *lang.Variable:
		if s.IsExternal() {
			return "(external)"
		}

		d, err := s.Value()
		if err != nil {
			return "(" + err.Error() + ")"
		}

		if s.IsPercentage() {
			return "= " + lang.FormatPercent(d)
		}

		return "= " + lang.Format(d)

	case *lang.Function:
		return s.Signature()
	}

	return s.Kind().String()
}

// switchToMode switches to mode, saving and restoring each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}

// historyStep moves through history by step. With sameMode, entries from
// the other mode are skipped; otherwise the mode follows the entry. Moving
// past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.setInput(entry.Line, len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}
