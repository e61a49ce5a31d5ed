package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/notify"
	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

const batchTimeout = 2 * time.Minute

type Syncer interface {
	Run(ctx context.Context, tenantID uuid.UUID) (reconcile.Result, error)
}

type Processor interface {
	Process(ctx context.Context) (notify.Result, error)
}

// DashboardModel shows the tenant's outstanding totals and runs the batch jobs.
type DashboardModel struct {
	CommonModel
	reminders *reminder.Service
	syncer    Syncer
	processor Processor

	stats   *reminder.Stats
	loading bool
	busy    bool
	status  string
	err     error
}

func NewDashboardModel(tenantID uuid.UUID, svc *reminder.Service, syncer Syncer, processor Processor) DashboardModel {
	return DashboardModel{
		CommonModel: CommonModel{TenantID: tenantID},
		reminders:   svc,
		syncer:      syncer,
		processor:   processor,
		loading:     true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | s: sync sources | x: send due notifications | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadStatsCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.loading = false
		m.stats, m.err = msg.stats, msg.err

		return m, nil

	case batchDoneMsg:
		m.busy = false
		m.status = msg.summary

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		}

		return m, m.loadStatsCmd()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadStatsCmd()
		case "s":
			m.busy = true
			m.status = "Syncing..."

			return m, m.syncCmd()
		case "x":
			m.busy = true
			m.status = "Processing notifications..."

			return m, m.processCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	box := lipgloss.NewStyle().
		Padding(1, 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	upcoming := box.Render(fmt.Sprintf("Upcoming (%d days)\n\n%s\n%d reminders",
		reminder.UpcomingWindowDays, activeStyle(FormatAmount(m.stats.UpcomingAmount, reminder.DefaultCurrency)), m.stats.UpcomingCount))
	overdue := box.Render(fmt.Sprintf("Overdue\n\n%s\n%d reminders",
		errorStyle.Render(FormatAmount(m.stats.OverdueAmount, reminder.DefaultCurrency)), m.stats.OverdueCount))

	content := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Tenant %s\n", m.TenantID),
		lipgloss.JoinHorizontal(lipgloss.Top, upcoming, "  ", overdue),
		"",
		m.status,
		"",
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	return style.Render(content)
}

// Messages

type statsMsg struct {
	stats *reminder.Stats
	err   error
}

type batchDoneMsg struct {
	summary string
	err     error
}

func (m DashboardModel) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.reminders.DashboardStats(ctx, m.TenantID)

		return statsMsg{stats: stats, err: err}
	}
}

func (m DashboardModel) syncCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()

		res, err := m.syncer.Run(ctx, m.TenantID)
		if err != nil {
			return batchDoneMsg{err: err}
		}

		return batchDoneMsg{summary: successStyle.Render(
			fmt.Sprintf("Sync finished: %d created, %d updated.", res.Created, res.Updated))}
	}
}

func (m DashboardModel) processCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()

		res, err := m.processor.Process(ctx)
		if err != nil {
			return batchDoneMsg{err: err}
		}

		summary := successStyle.Render(fmt.Sprintf("Sent %d notifications.", res.Sent))
		if len(res.Errors) > 0 {
			summary += errorStyle.Render(fmt.Sprintf(" %d failed and will be retried.", len(res.Errors)))
		}

		return batchDoneMsg{summary: summary}
	}
}
