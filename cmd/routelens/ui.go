// # cmd/routelens/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"routelens/internal/core/ports"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	routeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	summary    ports.WorkspaceSummary
	lastUpdate time.Time
}

type updateMsg struct {
	files   []ports.FileAnnotations
	summary ports.WorkspaceSummary
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.summary = msg.summary
		m.lastUpdate = time.Now()
		m.list.SetItems(routeItems(msg.files))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d decorators",
		m.lastUpdate.Format("15:04:05"), m.summary.FilesScanned, m.summary.Decorators))

	var summary string
	if m.summary.Unresolved == 0 {
		summary = fmt.Sprintf("%s | %s",
			routeStyle.Render(fmt.Sprintf("%d Routes", m.summary.Routes)),
			successStyle.Render("✅ All Resolved"))
	} else {
		summary = fmt.Sprintf("%s | %s",
			routeStyle.Render(fmt.Sprintf("%d Routes", m.summary.Routes)),
			unresolvedStyle.Render(fmt.Sprintf("⚠️  %d Unresolved", m.summary.Unresolved)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Route Annotation Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func routeItems(files []ports.FileAnnotations) []list.Item {
	items := []list.Item{}
	for _, file := range files {
		for _, ann := range file.Annotations {
			desc := ann.Route.Summary
			if desc == "" {
				desc = "(no summary)"
			}
			items = append(items, item{
				title: fmt.Sprintf("%s %s", ann.Route.Method, ann.Route.FullPath),
				desc:  fmt.Sprintf("%s — %s:%d", desc, file.File, ann.Line),
			})
		}
	}
	for _, file := range files {
		for _, dec := range file.Unresolved {
			items = append(items, item{
				title: "Unresolved " + decoratorReference(dec),
				desc:  fmt.Sprintf("%s — %s:%d", dec.Reason, dec.File, dec.Line),
			})
		}
	}
	return items
}

func initialModel(files []ports.FileAnnotations, summary ports.WorkspaceSummary) model {
	l := list.New(routeItems(files), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Detected Routes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		summary:    summary,
		lastUpdate: time.Now(),
	}
}
