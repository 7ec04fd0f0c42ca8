package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/vanderheijden86/mindview/pkg/config"
	"github.com/vanderheijden86/mindview/pkg/debug"
	"github.com/vanderheijden86/mindview/pkg/export"
	"github.com/vanderheijden86/mindview/pkg/loader"
	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/view"
	"github.com/vanderheijden86/mindview/pkg/watcher"
)

// ForceTickInterval paces force layout animation, roughly one step per frame.
const ForceTickInterval = 16 * time.Millisecond

// Terminal size assumed until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Rows taken by the header, status bar and help line.
const chromeHeight = 3

// FileChangedMsg is sent when the mind map file changes on disk.
type FileChangedMsg struct{}

// ReloadedMsg carries the result of re-reading the mind map file.
type ReloadedMsg struct {
	Tree *model.Node
	Size int64
	Err  error
}

type queryDebounceMsg struct {
	seq   int
	query string
}

type resizeDebounceMsg struct{ seq int }

type forceMeasureMsg struct{ gen uint64 }

type forceTickMsg struct{ gen uint64 }

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func forceTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(ForceTickInterval, func(time.Time) tea.Msg {
		return forceTickMsg{gen: gen}
	})
}

// forceCmd keeps a force layout moving. The first frame of a simulation only
// has placeholder label sizes, so it asks for a measure pass before ticking.
func forceCmd(f view.Frame) tea.Cmd {
	if f.Layout == nil || f.Mode != view.ModeDiagram || f.Algorithm != view.AlgorithmForce {
		return nil
	}
	if !f.Measured {
		gen := f.Generation
		return func() tea.Msg { return forceMeasureMsg{gen: gen} }
	}
	if f.Animating {
		return forceTickCmd(f.Generation)
	}
	return nil
}

// Options configures a Model.
type Options struct {
	Path    string
	Size    int64 // file size in bytes, shown in the status bar
	Tree    *model.Node
	Query   string
	Config  config.Config
	Watcher *watcher.Watcher

	// Load re-reads Path. Defaults to loader.Load.
	Load func(path string) (*model.Node, error)
	// Copy writes to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(text string) error
	// Renderer styles the output. Defaults to a renderer on stdout.
	Renderer *lipgloss.Renderer
}

// Model is the mind map browser.
type Model struct {
	opts  Options
	ctrl  *view.Controller
	frame view.Frame
	theme Theme
	keys  KeyMap
	help  help.Model

	input  textinput.Model
	list   viewport.Model
	detail viewport.Model

	width, height int
	ready         bool

	querySeq  int
	resizeSeq int

	rows     []Row
	cursor   int
	selected string

	showDetail bool
	showHelp   bool

	size          int64
	statusMsg     string
	statusIsError bool
}

// NewModel builds a browser for opts.Tree. The first layout assumes an
// 80×24 terminal until the real size is known.
func NewModel(opts Options) Model {
	if opts.Load == nil {
		opts.Load = loader.Load
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(os.Stdout)
	}
	theme := DefaultTheme(opts.Renderer)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 200
	ti.Width = 40
	ti.PromptStyle = theme.PromptText
	ti.SetValue(opts.Query)

	m := Model{
		opts:   opts,
		ctrl:   view.New(TerminalMeasurer{}, ControllerOptions(opts.Config)),
		theme:  theme,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		input:  ti,
		list:   viewport.New(defaultWidth, defaultHeight-chromeHeight),
		detail: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:  defaultWidth,
		height: defaultHeight,
		size:   opts.Size,
	}
	m.ctrl.Resize(m.pixelSize())
	frame := m.ctrl.Import(opts.Tree)
	if opts.Query != "" {
		frame = m.ctrl.SetQuery(opts.Query)
	}
	m.setFrame(frame)
	return m
}

// Controller exposes the view controller, mainly for tests.
func (m Model) Controller() *view.Controller { return m.ctrl }

// Frame returns the frame currently on screen.
func (m Model) Frame() view.Frame { return m.frame }

// Selected returns the id of the node under the cursor.
func (m Model) Selected() string { return m.selected }

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	cmds = append(cmds, forceCmd(m.frame))
	return tea.Batch(cmds...)
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 1)
}

// pixelSize is the body area in layout pixels.
func (m Model) pixelSize() (float64, float64) {
	return float64(m.width * CellWidth), float64(m.bodyHeight() * CellHeight)
}

// setFrame installs f and returns whatever follow-up the frame needs.
func (m *Model) setFrame(f view.Frame) tea.Cmd {
	m.frame = f
	m.rows = nil
	if f.Outcome == view.OutcomeReady {
		m.rows = BuildRows(f.Tree, f.Query)
	}
	m.cursor = 0
	for i, r := range m.rows {
		if r.Node.ID == m.selected {
			m.cursor = i
			break
		}
	}
	m.selected = ""
	if len(m.rows) > 0 {
		m.selected = m.rows[m.cursor].Node.ID
	}
	m.refreshList()
	return forceCmd(f)
}

func (m *Model) refreshList() {
	lines := RenderRows(m.rows, m.frame.Query, m.width, m.cursor, m.theme)
	m.list.SetContent(strings.Join(lines, "\n"))
	if m.cursor < m.list.YOffset {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.selected = m.rows[m.cursor].Node.ID
	m.refreshList()
}

func (m *Model) resizeViewports() {
	h := m.bodyHeight()
	m.list.Width, m.list.Height = m.width, h
	m.detail.Width, m.detail.Height = m.width, h
	m.help.Width = m.width
	m.input.Width = max(m.width-20, 10)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) applyQuery(q string) tea.Cmd {
	debug.Log("ui: applying query %q", q)
	m.setStatus("", false)
	return m.setFrame(m.ctrl.SetQuery(q))
}

func (m Model) reloadCmd() tea.Cmd {
	path, load := m.opts.Path, m.opts.Load
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		root, err := load(path)
		var size int64
		if fi, statErr := os.Stat(path); statErr == nil {
			size = fi.Size()
		}
		return ReloadedMsg{Tree: root, Size: size, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeViewports()
		if !m.ready {
			m.ready = true
			return m, m.setFrame(m.ctrl.Resize(m.pixelSize()))
		}
		m.refreshList()
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(m.opts.Config.ResizeDebounce(), func(time.Time) tea.Msg {
			return resizeDebounceMsg{seq: seq}
		})

	case resizeDebounceMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		return m, m.setFrame(m.ctrl.Resize(m.pixelSize()))

	case queryDebounceMsg:
		if msg.seq != m.querySeq {
			return m, nil
		}
		return m, m.applyQuery(msg.query)

	case forceMeasureMsg:
		f, ok := m.ctrl.MeasureForce(msg.gen)
		if !ok {
			return m, nil
		}
		return m, m.setFrame(f)

	case forceTickMsg:
		f, _ := m.ctrl.Step(msg.gen)
		if f.Generation != msg.gen {
			return m, nil
		}
		return m, m.setFrame(f)

	case FileChangedMsg:
		debug.Log("ui: %s changed on disk", m.opts.Path)
		cmds := []tea.Cmd{m.reloadCmd()}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
			return m, m.setFrame(m.ctrl.ImportFailed(msg.Err))
		}
		m.size = msg.Size
		f := m.ctrl.Import(msg.Tree)
		if q := m.input.Value(); q != "" {
			f = m.ctrl.SetQuery(q)
		}
		m.setStatus(fmt.Sprintf("Reloaded %s nodes", humanize.Comma(int64(f.Total))), false)
		return m, m.setFrame(f)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Blur), key.Matches(msg, m.keys.Details):
			m.showDetail = false
			return m, nil
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Blur):
		if m.input.Value() == "" && m.frame.Notice == nil {
			return m, nil
		}
		m.ctrl.ClearNotice()
		m.input.SetValue("")
		m.querySeq++
		return m, m.applyQuery("")

	case key.Matches(msg, m.keys.Mode):
		return m, m.setFrame(m.ctrl.SetMode(m.frame.Mode.Toggle()))

	case key.Matches(msg, m.keys.Algorithm):
		return m, m.setFrame(m.ctrl.SetAlgorithm(m.frame.Algorithm.Toggle()))

	case key.Matches(msg, m.keys.DepthUp):
		return m, m.setFrame(m.ctrl.SetMaxDepth(m.frame.MaxDepth + 1))

	case key.Matches(msg, m.keys.DepthDown):
		return m, m.setFrame(m.ctrl.SetMaxDepth(m.frame.MaxDepth - 1))

	case key.Matches(msg, m.keys.LimitUp):
		return m, m.setFrame(m.ctrl.SetLimit(m.frame.Limit * 2))

	case key.Matches(msg, m.keys.LimitDown):
		return m, m.setFrame(m.ctrl.SetLimit(m.frame.Limit / 2))

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.bodyHeight())

	case key.Matches(msg, m.keys.Details):
		m.openDetail()

	case key.Matches(msg, m.keys.Copy):
		m.copyOutline()

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading…", false)
		return m, m.reloadCmd()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}
	return m, nil
}

// handleSearchKey feeds the query box. Typing restarts the search debounce;
// enter applies the query at once.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		m.input.Blur()
		m.querySeq++
		return m, m.applyQuery(m.input.Value())
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	q := m.input.Value()
	if q == prev {
		return m, cmd
	}
	m.querySeq++
	seq := m.querySeq
	return m, tea.Batch(cmd, tea.Tick(m.opts.Config.SearchDebounce(), func(time.Time) tea.Msg {
		return queryDebounceMsg{seq: seq, query: q}
	}))
}

func (m *Model) selectedNode() *model.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].Node
}

func (m *Model) openDetail() {
	n := m.selectedNode()
	if n == nil {
		return
	}
	path := PathTo(m.ctrl.State().Tree, n.ID)
	m.detail.SetContent(renderMarkdown(NodeMarkdown(n, path), m.width))
	m.detail.GotoTop()
	m.showDetail = true
}

// copyOutline puts the Markdown outline of what is shown on the clipboard.
func (m *Model) copyOutline() {
	root := m.frame.Tree
	if root == nil {
		root = m.ctrl.State().Tree
	}
	if root == nil {
		m.setStatus("Nothing to copy", true)
		return
	}
	if err := m.opts.Copy(export.Outline(root, m.frame.Query)); err != nil {
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s nodes", humanize.Comma(int64(root.Count()))), false)
}

func (m Model) View() string {
	header := m.renderHeader()

	var body string
	switch {
	case m.showHelp:
		h := m.help
		h.ShowAll = true
		body = h.View(m.keys)
	case m.showDetail:
		body = m.detail.View()
	default:
		body = m.renderBody()
	}
	body = m.theme.Renderer.NewStyle().
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Render(body)

	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(), m.help.View(m.keys))

	finalStyle := m.theme.Renderer.NewStyle().
		Width(m.width).
		MaxWidth(m.width).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) renderHeader() string {
	title := "mindview"
	if m.opts.Path != "" {
		title = filepath.Base(m.opts.Path)
	}
	return m.theme.Header.Render(title) + " " + m.input.View()
}

func (m Model) renderBody() string {
	f := m.frame
	if f.Outcome != view.OutcomeReady {
		msg := wordwrap.String(f.Message, max(m.width-4, 10))
		return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
			m.theme.Message.Render(msg))
	}
	if f.Mode == view.ModeList {
		return m.list.View()
	}
	return DrawDiagram(f, m.width, m.bodyHeight(), m.selected).Render(m.theme)
}

func (m Model) renderStatus() string {
	t := m.theme
	f := m.frame
	sep := t.Dim.Render(" · ")

	var parts []string
	if m.size > 0 {
		parts = append(parts, humanize.Bytes(uint64(m.size)))
	}
	parts = append(parts, fmt.Sprintf("%s/%s nodes", humanize.Comma(int64(f.Count)), humanize.Comma(int64(f.Total))))
	if f.Query != "" {
		parts = append(parts, t.MatchText.Render(fmt.Sprintf("%s matches", humanize.Comma(int64(f.Matches)))))
	}
	parts = append(parts, t.StatusKey.Render(string(f.Mode)))
	if f.Mode == view.ModeDiagram {
		algo := string(f.Algorithm)
		if f.Animating {
			algo += " (settling)"
		}
		parts = append(parts, algo)
	}
	parts = append(parts, fmt.Sprintf("depth %d", f.MaxDepth), fmt.Sprintf("limit %s", humanize.Comma(int64(f.Limit))))

	switch {
	case m.statusMsg != "" && m.statusIsError:
		parts = append(parts, t.ErrorText.Render("✗ "+m.statusMsg))
	case f.Notice != nil:
		parts = append(parts, t.ErrorText.Render("✗ "+f.Notice.Error()))
	case m.statusMsg != "":
		parts = append(parts, t.SuccessText.Render("✓ "+m.statusMsg))
	}

	line := t.StatusBar.Render(strings.Join(parts, sep))
	return truncate.StringWithTail(line, uint(max(m.width, 1)), "…")
}
