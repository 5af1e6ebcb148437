// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package browse is the interactive favorites browser behind the browse
// command.
package browse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/staranto/exefitgo/internal/exercise"
)

const keyEsc = "esc"

// Entry is one exercise shown in the browser.
type Entry struct {
	Exercise exercise.Exercise
	Added    time.Time
	// Stub entries could not be loaded and only carry the favorite's data.
	Stub bool
}

func (e Entry) Title() string {
	return e.Exercise.DisplayName()
}

func (e Entry) Description() string {
	parts := []string{fmt.Sprintf("#%d", e.Exercise.ID)}
	if !e.Added.IsZero() {
		parts = append(parts, "added "+humanize.Time(e.Added))
	}
	if e.Exercise.HasImages() {
		parts = append(parts, "illustrated")
	}
	if e.Stub {
		parts = append(parts, "unavailable")
	}
	return strings.Join(parts, " · ")
}

func (e Entry) FilterValue() string {
	return e.Exercise.DisplayName()
}

// Labels resolves lookup ids to names in the detail view. Missing maps or
// ids fall back to the number.
type Labels struct {
	Categories map[int]string
	Muscles    map[int]string
	Equipment  map[int]string
}

// RemoveFunc un-favorites an exercise.
type RemoveFunc func(ctx context.Context, id int) error

type removedMsg struct {
	id  int
	err error
}

type state int

const (
	stateList state = iota
	stateDetail
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f6be00"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

// Model is the bubbletea model for the browser.
type Model struct {
	ctx      context.Context
	list     list.Model
	viewport viewport.Model
	state    state
	labels   Labels
	remove   RemoveFunc
	status   string
	err      error
}

// NewModel builds a browser over entries. remove may be nil, in which case
// the remove key is disabled.
func NewModel(ctx context.Context, entries []Entry, labels Labels, remove RemoveFunc) *Model {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e)
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Favorites"
	l.SetStatusBarItemName("exercise", "exercises")

	return &Model{
		ctx:      ctx,
		list:     l,
		viewport: viewport.New(0, 0),
		labels:   labels,
		remove:   remove,
	}
}

// Run starts the browser on the terminal and blocks until it exits.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case removedMsg:
		return m.handleRemoved(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.state == stateDetail {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.list.SetSize(msg.Width, msg.Height-1)
	m.viewport.Width = msg.Width
	m.viewport.Height = msg.Height - 1
	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys belong to the filter input while it is open.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		if e, ok := m.list.SelectedItem().(Entry); ok {
			m.state = stateDetail
			m.viewport.SetContent(m.renderDetail(e))
			m.viewport.GotoTop()
		}
		return m, nil
	case "x":
		if e, ok := m.list.SelectedItem().(Entry); ok && m.remove != nil {
			return m, m.removeCmd(e.Exercise.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyEsc, "backspace":
		m.state = stateList
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) removeCmd(id int) tea.Cmd {
	remove := m.remove
	ctx := m.ctx
	return func() tea.Msg {
		return removedMsg{id: id, err: remove(ctx, id)}
	}
}

func (m *Model) handleRemoved(msg removedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.status = ""
		return m, nil
	}

	m.err = nil
	for i, item := range m.list.Items() {
		if e, ok := item.(Entry); ok && e.Exercise.ID == msg.id {
			m.list.RemoveItem(i)
			m.status = fmt.Sprintf("removed %s", e.Exercise.DisplayName())
			break
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render("error: " + m.err.Error())
	case m.status != "":
		footer = statusStyle.Render(m.status)
	}

	if m.state == stateDetail {
		return m.viewport.View() + "\n" + footer
	}
	return m.list.View() + "\n" + footer
}

func (m *Model) renderDetail(e Entry) string {
	ex := e.Exercise

	var b strings.Builder
	b.WriteString(titleStyle.Render(ex.DisplayName()))
	b.WriteString("\n\n")

	row := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", name)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("id", fmt.Sprintf("%d", ex.ID))
	row("category", label(m.labels.Categories, ex.Category))
	row("muscles", labelList(m.labels.Muscles, ex.Muscles))
	row("secondary", labelList(m.labels.Muscles, ex.MusclesSecondary))
	row("equipment", labelList(m.labels.Equipment, ex.Equipment))
	row("image", ex.MainImage())
	if !e.Added.IsZero() {
		row("added", humanize.Time(e.Added))
	}

	if desc := ex.PlainDescription(); desc != "" {
		b.WriteString("\n")
		width := m.viewport.Width
		if width <= 0 {
			width = 80
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(desc))
		b.WriteString("\n")
	}

	return b.String()
}

func label(names map[int]string, id int) string {
	if id == 0 {
		return ""
	}
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("%d", id)
}

func labelList(names map[int]string, ids []int) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, label(names, id))
	}
	return strings.Join(out, ", ")
}
