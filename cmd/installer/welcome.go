// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WelcomeScreen is the post-install command tour. The installer hands the
// bubbletea session over to it when the user picks "Show me the commands"
// on the completion screen.
type WelcomeScreen struct {
	width      int
	height     int
	typed      string
	typeTarget string
	typePos    int
	showCursor bool
	steps      []tourStep
	step       int
}

type tourStep struct {
	Title       string
	Description string
	Example     string
	Icon        string
}

// NewWelcomeScreen builds the tour over the installed commands.
func NewWelcomeScreen() *WelcomeScreen {
	return &WelcomeScreen{
		steps: []tourStep{
			{
				Title:       "Launch the App",
				Description: "One command brings up the daemon, the model, and the web app.",
				Example:     "webllama",
				Icon:        "[Run]",
			},
			{
				Title:       "Check the System",
				Description: "See the daemon, model, and app state at a glance.",
				Example:     "webllama status",
				Icon:        "[Info]",
			},
			{
				Title:       "Fix Problems",
				Description: "Run diagnostics with suggested (and automatic) fixes.",
				Example:     "webllama doctor --fix",
				Icon:        "[Fix]",
			},
			{
				Title:       "Tune the Setup",
				Description: "Change the port, the model, or the app directory anytime.",
				Example:     "webllama config set server.port 5000",
				Icon:        "[Cfg]",
			},
			{
				Title:       "You're Ready!",
				Description: "Open the printed endpoint in your browser and go.",
				Example:     "webllama",
				Icon:        "[Go!]",
			},
		},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.blink(), w.startTyping(w.steps[0].Example))
}

type tourBlinkMsg struct{}

type tourTypeMsg struct {
	target string
	pos    int
}

func (w *WelcomeScreen) blink() tea.Cmd {
	return tea.Tick(530*time.Millisecond, func(time.Time) tea.Msg {
		return tourBlinkMsg{}
	})
}

func (w *WelcomeScreen) startTyping(text string) tea.Cmd {
	w.typeTarget = text
	w.typePos = 0
	w.typed = ""
	return w.typeTick(text, 1)
}

func (w *WelcomeScreen) typeTick(target string, pos int) tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tourTypeMsg{target: target, pos: pos}
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return w, tea.Quit
		case "enter", " ", "n":
			if w.step == len(w.steps)-1 {
				return w, tea.Quit
			}
			w.step++
			return w, w.startTyping(w.steps[w.step].Example)
		case "p", "b":
			if w.step > 0 {
				w.step--
				return w, w.startTyping(w.steps[w.step].Example)
			}
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height

	case tourBlinkMsg:
		w.showCursor = !w.showCursor
		return w, w.blink()

	case tourTypeMsg:
		// Stale ticks from a previous step carry the old target.
		if msg.target == w.typeTarget && msg.pos <= len(msg.target) {
			w.typed = msg.target[:msg.pos]
			w.typePos = msg.pos
			if msg.pos < len(msg.target) {
				return w, w.typeTick(msg.target, msg.pos+1)
			}
		}
	}

	return w, nil
}

func (w *WelcomeScreen) View() string {
	var s strings.Builder

	header := lipgloss.NewStyle().
		Foreground(brandPrimary).
		Bold(true).
		MarginBottom(1).
		Render("  Welcome to webllama!")
	s.WriteString("\n\n" + header + "\n\n")

	step := w.steps[w.step]
	s.WriteString(fmt.Sprintf("  %s  %s\n\n", step.Icon, highlightStyle.Render(step.Title)))
	s.WriteString(dimStyle.Render("     " + step.Description))
	s.WriteString("\n\n")
	s.WriteString(w.renderShellBox())
	s.WriteString("\n\n")

	s.WriteString("  ")
	for i := range w.steps {
		switch {
		case i == w.step:
			s.WriteString(highlightStyle.Render("*"))
		case i < w.step:
			s.WriteString(successStyle.Render("*"))
		default:
			s.WriteString(dimStyle.Render("o"))
		}
		s.WriteString(" ")
	}
	s.WriteString("\n\n")
	s.WriteString(dimStyle.Render("  ENTER: Next  |  P: Previous  |  Q: Close"))

	return w.padTop(s.String())
}

// renderShellBox draws a fake shell prompt with the current example being
// typed out character by character.
func (w *WelcomeScreen) renderShellBox() string {
	cursor := ""
	if w.showCursor {
		if w.typePos >= len(w.typeTarget) {
			cursor = "_"
		} else {
			cursor = "|"
		}
	}

	line := dimStyle.Render("  $ ") + highlightStyle.Render(w.typed) + dimStyle.Render(cursor)
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(brandPrimary).
		Padding(1, 2).
		Width(50).
		Render(line)
	return "     " + box
}

func (w *WelcomeScreen) padTop(content string) string {
	if w.height == 0 {
		return content
	}
	pad := (w.height - strings.Count(content, "\n") - 1) / 3
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", pad) + content
}
