package main

import (
	"errors"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#7C3AED")).
				Bold(true).
				Padding(0, 1)
	confirmInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9CA3AF")).
				Padding(0, 1)
	confirmHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280"))
)

// confirmModel 是 y/N 确认框：y/n 直接作答，方向键切换，enter 提交当前选项，esc/ctrl+c 取消。
type confirmModel struct {
	title     string
	selection bool
	done      bool
	cancelled bool
}

func (m *confirmModel) Init() tea.Cmd {
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyLeft, tea.KeyRight, tea.KeyTab, tea.KeyUp, tea.KeyDown:
		m.selection = !m.selection
		return m, nil
	case tea.KeyRunes:
		if len(key.Runes) == 0 {
			return m, nil
		}
		// 非终端输入时一整行可能合并为一个按键消息，只看首字符。
		switch strings.ToLower(string(key.Runes[0])) {
		case "y":
			m.selection = true
			m.done = true
			return m, tea.Quit
		case "n":
			m.selection = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.done {
		return ""
	}
	yes := confirmInactiveStyle.Render("Yes")
	no := confirmInactiveStyle.Render("No")
	if m.selection {
		yes = confirmActiveStyle.Render("Yes")
	} else {
		no = confirmActiveStyle.Render("No")
	}
	return strings.Join([]string{
		titleStyle.Render(m.title),
		yes + "  " + no,
		confirmHelpStyle.Render("enter submit • y yes • n no • esc cancel"),
	}, "\n") + "\n"
}

// confirm 运行确认框，默认选项为 No。输入结束或取消都视为拒绝。
func confirm(title string) (bool, error) {
	model := &confirmModel{title: title}
	p := tea.NewProgram(model,
		tea.WithInput(&cancelOnEOF{r: stdIn}),
		tea.WithOutput(stdOut),
		tea.WithoutSignalHandler(),
	)
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m := final.(*confirmModel)
	if m.cancelled {
		return false, nil
	}
	return m.selection, nil
}

// cancelOnEOF 在底层输入耗尽时补发一次 ctrl+c，避免确认框在管道输入结束后一直等待。
type cancelOnEOF struct {
	r    io.Reader
	sent bool
}

func (c *cancelOnEOF) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 || !errors.Is(err, io.EOF) {
		return n, err
	}
	if c.sent || len(p) == 0 {
		return 0, io.EOF
	}
	c.sent = true
	p[0] = 0x03
	return 1, nil
}
