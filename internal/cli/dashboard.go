package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/compass/internal/cache"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	staleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	freshStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sectionStyle = lipgloss.NewStyle().MarginTop(1)
)

// cacheEventMsg carries one coordinator notification into the tea loop.
type cacheEventMsg cache.Event

// refreshDoneMsg signals that the initial refresh completed.
type refreshDoneMsg struct{ err error }

// dashboardModel renders live entity freshness, the timeline window and
// the budget table for one product.
type dashboardModel struct {
	app       *App
	productID string
	spinner   spinner.Model

	events      <-chan cache.Event
	unsubscribe func()

	refreshing bool
	warn       error
}

func newDashboardModel(app *App, productID string) dashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	events, unsubscribe := app.Insights.Subscribe()
	return dashboardModel{
		app:         app,
		productID:   productID,
		spinner:     sp,
		events:      events,
		unsubscribe: unsubscribe,
		refreshing:  true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startRefresh(),
		waitForEvent(m.events),
	)
}

func (m dashboardModel) startRefresh() tea.Cmd {
	app := m.app
	productID := m.productID
	return func() tea.Msg {
		app.Insights.SelectProduct(productID)
		err := app.Insights.Refresh(context.Background())
		return refreshDoneMsg{err: err}
	}
}

func waitForEvent(events <-chan cache.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return cacheEventMsg(ev)
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.unsubscribe != nil {
				m.unsubscribe()
			}
			return m, tea.Quit
		case "r":
			m.refreshing = true
			m.warn = nil
			return m, m.startRefresh()
		}

	case refreshDoneMsg:
		m.refreshing = false
		m.warn = msg.err
		return m, nil

	case cacheEventMsg:
		// Snapshots are re-read on every render; the event only wakes us.
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Product "+m.productID) + "\n\n")

	for _, kind := range cache.AllKinds {
		snap := m.app.Insights.Snapshot(kind)
		b.WriteString(fmt.Sprintf("  %-16s %s\n", kind, m.renderStatus(snap)))
	}

	b.WriteString(sectionStyle.Render(formatTimeline(m.app.Insights.Timeline())) + "\n")
	b.WriteString(sectionStyle.Render(formatBudget(m.app.Insights.Timeline(), m.app.Insights.Budget())) + "\n")

	if m.warn != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("some entities failed to load: %v", m.warn)) + "\n")
	}
	b.WriteString(dimStyle.Render("r refresh · q quit") + "\n")
	return b.String()
}

func (m dashboardModel) renderStatus(snap cache.Snapshot) string {
	switch {
	case snap.Err != nil:
		return errorStyle.Render("error")
	case snap.IsLoading:
		return m.spinner.View() + " loading"
	case snap.IsStale:
		return staleStyle.Render("stale")
	case snap.Status == cache.StatusFresh:
		return freshStyle.Render("fresh")
	default:
		return dimStyle.Render(string(snap.Status))
	}
}
