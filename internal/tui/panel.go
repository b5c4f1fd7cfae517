// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/issue"
	"github.com/ingestkit/ingestkit/internal/workspace"
)

const (
	stateLoading panelState = iota
	stateResults
	stateError
	stateSetup
)

const (
	sectionSummary = iota
	sectionTree
	sectionContent
)

// headerHeight and footerHeight frame the viewport.
const (
	headerHeight = 3
	footerHeight = 2
)

var (
	sectionTitles = []string{"Summary", "Directory Structure", "Files Content"}

	writeClipboard = clipboard.WriteAll
)

type (
	panelState int

	// Analyzer runs and cancels analyses; *analysis.Runner satisfies it.
	Analyzer interface {
		Run(ctx context.Context, projectPath, target string, status *analysis.StatusLog) (*analysis.Digest, error)
		Cancel() error
	}

	// Options configures the panel.
	Options struct {
		ProjectPath string
		Target      string
		// Save persists the digest and returns the written path.
		Save func(*analysis.Digest) (string, error)
		// GlamourStyle is the glamour style for the setup guide ("dark", "light", "notty").
		GlamourStyle string
	}

	// Model is the panel state machine.
	Model struct {
		analyzer Analyzer
		opts     Options
		ctx      context.Context
		keys     keyMap

		state     panelState
		prevState panelState
		gen       int
		cancelRun context.CancelFunc
		events    chan tea.Msg
		quitting  bool

		messages []analysis.StatusMessage
		digest   *analysis.Digest
		err      error
		section  int
		notice   string

		spinner  spinner.Model
		viewport viewport.Model
		help     help.Model
		width    int
		height   int
	}

	statusMsg struct {
		gen      int
		messages []analysis.StatusMessage
	}

	doneMsg struct {
		gen    int
		digest *analysis.Digest
		err    error
	}

	noticeMsg string
)

// New creates a panel that starts an analysis on Init.
func New(ctx context.Context, analyzer Analyzer, opts Options) Model {
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = titleStyle

	m := Model{
		analyzer: analyzer,
		opts:     opts,
		ctx:      ctx,
		keys:     defaultKeyMap(),
		spinner:  sp,
		viewport: viewport.New(80, 20),
		help:     help.New(),
		width:    80,
		height:   20 + headerHeight + footerHeight,
	}
	m.begin()
	return m
}

// Run shows the panel until the user leaves it and returns how the last
// analysis ended.
func Run(ctx context.Context, analyzer Analyzer, opts Options) (analysis.Result, error) {
	final, err := tea.NewProgram(New(ctx, analyzer, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if m, ok := final.(Model); ok {
		m.dispose()
		return m.Result(), err
	}
	return analysis.Result{Kind: analysis.ResultCancelled}, err
}

// Result reports the outcome of the latest analysis. Leaving while an
// analysis is still loading counts as cancellation.
func (m Model) Result() analysis.Result {
	if m.state == stateLoading || (m.state == stateSetup && m.prevState == stateLoading) {
		return analysis.Result{Kind: analysis.ResultCancelled, Message: analysis.Message(analysis.ErrCancelled)}
	}
	return analysis.NewResult(m.digest, m.err)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listen(m.events))
}

// restart cancels any running analysis and begins a new one.
func (m *Model) restart() tea.Cmd {
	m.stop()
	m.begin()
	return tea.Batch(m.spinner.Tick, listen(m.events))
}

// begin resets the view to Loading and spawns the analysis.
func (m *Model) begin() {
	m.gen++
	m.state = stateLoading
	m.messages = nil
	m.digest = nil
	m.err = nil
	m.notice = ""
	m.section = sectionSummary

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelRun = cancel
	events := make(chan tea.Msg, 8)
	m.events = events

	gen, analyzer, opts := m.gen, m.analyzer, m.opts
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
	go func() {
		status := analysis.NewStatusLog(func(msgs []analysis.StatusMessage) {
			send(statusMsg{gen: gen, messages: msgs})
		})
		d, err := analyzer.Run(ctx, opts.ProjectPath, opts.Target, status)
		send(doneMsg{gen: gen, digest: d, err: err})
	}()
}

// stop kills the running analysis process, if any.
func (m *Model) stop() {
	if m.state == stateLoading || (m.state == stateSetup && m.prevState == stateLoading) {
		_ = m.analyzer.Cancel()
	}
	if m.cancelRun != nil {
		m.cancelRun()
		m.cancelRun = nil
	}
}

// dispose is the panel close hook.
func (m *Model) dispose() {
	m.stop()
}

func listen(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.messages = msg.messages
		return m, listen(m.events)

	case doneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.cancelRun != nil {
			m.cancelRun()
			m.cancelRun = nil
		}
		m.digest, m.err = msg.digest, msg.err
		if msg.err != nil || msg.digest == nil {
			m.state = stateError
			if m.err == nil {
				m.err = errors.New(analysis.NewResult(nil, nil).Message)
			}
			return m, nil
		}
		m.state = stateResults
		m.showSection()
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.state == stateSetup && msg.String() != "ctrl+c" {
			m.state = m.prevState
			m.showSection()
			return m, nil
		}
		m.stop()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Retry):
		return m, m.restart()

	case key.Matches(msg, m.keys.Guide):
		if m.state == stateSetup {
			m.state = m.prevState
			m.showSection()
			return m, nil
		}
		m.prevState = m.state
		m.state = stateSetup
		m.viewport.SetContent(m.setupGuide())
		m.viewport.GotoTop()
		return m, nil
	}

	if m.state != stateResults {
		return m.scroll(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.section = (m.section + 1) % len(sectionTitles)
		m.showSection()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		title, text := sectionTitles[m.section], m.sectionText()
		return m, copyCmd(text, title+" copied to clipboard")

	case key.Matches(msg, m.keys.CopyAll):
		return m, copyCmd(workspace.FormatDigest(m.digest), "Digest copied to clipboard")

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()
	}

	return m.scroll(msg)
}

func (m Model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
	}
	return m, nil
}

func copyCmd(text, done string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return noticeMsg("Copy failed: " + err.Error())
		}
		return noticeMsg(done)
	}
}

func (m Model) saveCmd() tea.Cmd {
	save, d := m.opts.Save, m.digest
	if save == nil {
		return func() tea.Msg { return noticeMsg("Saving is not available") }
	}
	return func() tea.Msg {
		path, err := save(d)
		if err != nil {
			return noticeMsg("Failed to write file: " + err.Error())
		}
		return noticeMsg("Analysis saved to " + path)
	}
}

func (m *Model) showSection() {
	if m.state != stateResults {
		return
	}
	m.viewport.SetContent(m.sectionText())
	m.viewport.GotoTop()
}

func (m Model) sectionText() string {
	if m.digest == nil {
		return ""
	}
	switch m.section {
	case sectionTree:
		return m.digest.Tree
	case sectionContent:
		return m.digest.Content
	default:
		return m.digest.Summary
	}
}

func (m Model) setupGuide() string {
	id := issue.SetupGuideId
	if m.prevState == stateError && m.err != nil {
		id = analysis.IssueID(m.err)
	}
	out, err := issue.Get(id).Render(m.opts.GlamourStyle)
	if err != nil {
		return string(issue.Get(id).MarkdownMsg())
	}
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.state {
	case stateResults:
		return m.resultsView()
	case stateError:
		return m.errorView()
	case stateSetup:
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Setup guide"),
			m.viewport.View(),
			subtleStyle.Render("? or esc to go back"),
		)
	default:
		return m.loadingView()
	}
}

func (m Model) loadingView() string {
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(titleStyle.Render("Analyzing " + m.opts.Target))
	b.WriteString("\n\n")
	for _, msg := range m.messages {
		b.WriteString("  ")
		b.WriteString(renderStatus(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("r retry • q cancel"))
	return b.String()
}

func (m Model) resultsView() string {
	tabs := make([]string, len(sectionTitles))
	for i, title := range sectionTitles {
		if i == m.section {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = inactiveTabStyle.Render(title)
		}
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Repository Analysis"),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
	)

	footer := m.help.View(m.keys)
	if m.notice != "" {
		footer = noticeStyle.Render(m.notice) + "\n" + footer
	} else {
		footer = "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

func (m Model) errorView() string {
	var b strings.Builder
	b.WriteString(errorTitleStyle.Render("Analysis failed"))
	b.WriteString("\n\n")
	for _, msg := range m.messages {
		b.WriteString("  ")
		b.WriteString(renderStatus(msg))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(renderStatus(analysis.StatusMessage{Text: analysis.Message(m.err), Severity: analysis.SeverityError}))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("? setup guidance • r retry • q close"))
	return b.String()
}
