package ui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jstep/internal/diagfmt"
	"jstep/internal/driver"
	"jstep/internal/loadctl"
	"jstep/internal/vm"
)

// speeds is the ladder walked by + and -; 0 is unlimited.
var speeds = []float64{1, 2, 5, 10, 20, 50, 100, 1_000, 10_000, 100_000, 0}

// RunOptions configures the interactive runner.
type RunOptions struct {
	Speed           float64
	Interval        time.Duration
	Budget          float64
	SingleStepBelow float64
	// Slice is passed to the pool; 0 keeps its default.
	Slice           int
	Breakpoints     []vm.Breakpoint
	Clock           vm.Clock
}

type tickMsg time.Time

type runModel struct {
	res  *driver.Result
	path string
	con  *Console

	pool *vm.ThreadPool
	ctl  *loadctl.Controller

	view  viewport.Model
	input textinput.Model
	spin  spinner.Model

	inputs []*vm.Suspension
	status string
	seq    uint64
	width  int
	height int
	ready  bool
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

func newRunModel(res *driver.Result, path string, con *Console, opts RunOptions) (*runModel, error) {
	m := &runModel{res: res, path: path, con: con, width: 80, height: 24}
	clock := opts.Clock
	if clock == nil {
		clock = loadctl.RealClock{}
	}
	pool, err := res.Launch(path, vm.Options{
		Clock: clock,
		Slice: opts.Slice,
		Hooks: vm.Hooks{
			OnPause: m.onPause,
			OnUncaught: func(u *vm.Uncaught) {
				var b bytes.Buffer
				diagfmt.Uncaught(&b, u, res.Files, false)
				con.Write(b.String())
			},
			OnInput: func(s *vm.Suspension) { m.inputs = append(m.inputs, s) },
		},
	})
	if err != nil {
		return nil, err
	}
	for _, bp := range opts.Breakpoints {
		if _, err := pool.SetBreakpoint(bp.Path, bp.Line); err != nil {
			pool.Stop()
			return nil, fmt.Errorf("breakpoint %s: %w", bp, err)
		}
	}
	if opts.Interval <= 0 {
		opts.Interval = loadctl.DefaultInterval
	}
	m.pool = pool
	m.ctl = &loadctl.Controller{
		Pool:            pool,
		Clock:           clock,
		Speed:           opts.Speed,
		Interval:        opts.Interval,
		Budget:          opts.Budget,
		SingleStepBelow: opts.SingleStepBelow,
	}

	m.view = viewport.New(m.width, m.height-4)
	m.input = textinput.New()
	m.input.Placeholder = "input"
	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = statusStyle
	return m, nil
}

// RunProgram runs path in a full-screen view until the user quits. Program
// output goes to con, which must be the console the workspace was built
// with.
func RunProgram(res *driver.Result, path string, con *Console, opts RunOptions) error {
	m, err := newRunModel(res, path, con, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	m.pool.Stop()
	return err
}

func (m *runModel) onPause(ev vm.PauseEvent) {
	where := "?"
	if f := m.res.Files.Get(ev.Span.File); f != nil {
		start, _ := m.res.Files.Resolve(ev.Span)
		where = fmt.Sprintf("%s:%d", f.Path, start.Line)
	}
	name := ""
	if ev.Thread != nil {
		name = ev.Thread.Name
	}
	m.status = fmt.Sprintf("%s at %s [%s]", ev.Reason, where, name)
}

func (m *runModel) tick() tea.Cmd {
	return tea.Tick(m.ctl.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.tick())
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ctl.Tick()
		cmd := m.sync()
		if m.pool.State() == vm.PoolStopped {
			m.status = "finished"
			return m, cmd
		}
		return m, tea.Batch(cmd, m.tick())
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = msg.Width
		m.view.Height = max(1, msg.Height-4)
		m.input.Width = max(10, msg.Width-len(m.input.Prompt)-2)
		m.ready = true
		m.view.GotoBottom()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

// sync refreshes the console view and the input line.
func (m *runModel) sync() tea.Cmd {
	if text, seq := m.con.Snapshot(); seq != m.seq {
		m.seq = seq
		m.view.SetContent(text)
		m.view.GotoBottom()
	}
	if len(m.inputs) > 0 && !m.input.Focused() {
		m.input.Prompt = m.inputs[0].Prompt
		return m.input.Focus()
	}
	return nil
}

func (m *runModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.pool.Stop()
		return m, tea.Quit
	}
	if m.input.Focused() {
		return m.inputKey(msg)
	}
	switch msg.String() {
	case "q":
		m.pool.Stop()
		return m, tea.Quit
	case " ":
		switch m.pool.State() {
		case vm.PoolPaused:
			m.status = ""
			m.pool.Resume()
		default:
			m.pool.Pause()
		}
	case "n":
		m.step(m.pool.StepOver)
	case "s":
		m.step(m.pool.StepInto)
	case "o":
		m.step(m.pool.StepOut)
	case "+", "=":
		m.ctl.Speed = nextSpeed(m.ctl.Speed, 1)
	case "-":
		m.ctl.Speed = nextSpeed(m.ctl.Speed, -1)
	case "up", "k", "pgup", "down", "j", "pgdown":
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *runModel) step(f func() error) {
	if err := f(); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *runModel) inputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := m.input.Value()
		m.answer(vm.Str(line), m.input.Prompt+line+"\n")
		return m, m.sync()
	case "ctrl+d":
		m.answer(vm.Null(), "")
		return m, m.sync()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// answer resumes the oldest pending input and echoes it into the console.
func (m *runModel) answer(v vm.Value, echo string) {
	in := m.inputs[0]
	m.inputs = m.inputs[1:]
	in.Resume(v, nil)
	m.con.Write(echo)
	m.input.Reset()
	m.input.Blur()
}

func (m *runModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	if m.input.Focused() {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause/resume  n next  s step  o out  +/- speed  q quit"))
	return b.String()
}

func (m *runModel) header() string {
	state := m.pool.State()
	head := fmt.Sprintf("%s  %s  %s  steps %d", m.path, state, speedLabel(m.ctl.Speed), m.pool.Steps())
	switch state {
	case vm.PoolRunning, vm.PoolWaiting:
		head = m.spin.View() + " " + head
	case vm.PoolPaused:
		head = pausedStyle.Render("||") + " " + head
	}
	if m.status != "" {
		head += "  " + statusStyle.Render(m.status)
	}
	return head
}

func speedLabel(s float64) string {
	if s <= 0 {
		return "max speed"
	}
	return fmt.Sprintf("%g steps/s", s)
}

// nextSpeed moves dir rungs along the speed ladder from the closest rung.
func nextSpeed(cur float64, dir int) float64 {
	i := len(speeds) - 1
	if cur > 0 {
		for k, s := range speeds[:len(speeds)-1] {
			if s >= cur {
				i = k
				break
			}
		}
	}
	i = min(max(i+dir, 0), len(speeds)-1)
	return speeds[i]
}
