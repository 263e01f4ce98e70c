package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/witx"
)

type inspectModel struct {
	err      error
	filename string
	detail   string
	items    []funcItem
	visible  []int
	filter   textinput.Model
	selected int
	state    modelState
	loaded   bool
}

type funcItem struct {
	iface  *witx.Interface
	role   witx.Role
	ifName string
	wit    string
	goSig  string
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateShowBindings
)

func newInspectModel(filename string) *inspectModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter functions"
	ti.Width = 40
	return &inspectModel{
		filename: filename,
		filter:   ti,
		state:    stateBrowse,
	}
}

type loadedMsg struct {
	err   error
	items []funcItem
}

func (m *inspectModel) Init() tea.Cmd {
	return m.load
}

func (m *inspectModel) load() tea.Msg {
	mi, err := loadModule(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	var items []funcItem
	for _, e := range mi.Interfaces.All() {
		mapper := bindgen.NewMapper(e.Interface)
		for i := range e.Interface.Functions {
			f := &e.Interface.Functions[i]
			items = append(items, funcItem{
				iface:  e.Interface,
				role:   e.Role,
				ifName: e.Name,
				wit:    witSignature(e.Interface, f),
				goSig:  goSignature(mapper, f),
			})
		}
	}
	return loadedMsg{items: items}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.detail, m.err = bindingsFor(m.items[m.visible[m.selected]].iface)
					m.state = stateShowBindings
				}
			case stateShowBindings:
				m.state = stateBrowse
				m.detail = ""
				m.err = nil
			}

		case "esc":
			if m.state == stateShowBindings {
				m.state = stateBrowse
				m.detail = ""
				m.err = nil
			}
		}

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.items = msg.items
		m.applyFilter()
	}
	return m, nil
}

func (m *inspectModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *inspectModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, it := range m.items {
		if needle == "" || strings.Contains(strings.ToLower(it.ifName+" "+it.wit), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func bindingsFor(iface *witx.Interface) (string, error) {
	g := &bindgen.Generator{Format: true}
	f, err := g.Bindings(iface)
	if err != nil {
		return "", err
	}
	return string(f.Source), nil
}

func (m *inspectModel) View() string {
	if m.err != nil && m.state != stateShowBindings {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("witx-bindgen"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.items) == 0 {
			b.WriteString("No interface functions found.\n")
		}
		for row, idx := range m.visible {
			it := m.items[idx]
			line := fmt.Sprintf("%s %s  %s", it.role, it.ifName, it.wit)
			if row == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + roleStyle.Render(it.role.String()) + " " + it.ifName + "  " + funcStyle.Render(it.wit))
			}
			b.WriteString("\n")
			b.WriteString("      " + typeStyle.Render(it.goSig) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter bindings • q quit"))

	case stateShowBindings:
		it := m.items[m.visible[m.selected]]
		b.WriteString(fmt.Sprintf("Bindings of %s:\n\n", funcStyle.Render(it.ifName)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.detail)
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
