package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/importer"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateCreate
	listStateEdit
)

var filterLabels = []string{"All", "Upcoming", "Overdue", "Unpaid", "Paid"}

type ListModel struct {
	CommonModel
	reminders *reminder.Service

	state listState
	table table.Model
	page  *reminder.Page
	form  *huh.Form

	filterIdx int
	pageNum   int

	loading bool
	err     error
	status  string

	input reminderInput
}

// reminderInput holds the form bindings. All fields are strings so huh can
// edit them directly.
type reminderInput struct {
	Type        reminder.Type
	DueDate     string
	Amount      string
	Currency    string
	Description string
	DaysBefore  string
}

func (in reminderInput) createParams() (reminder.CreateParams, error) {
	due, err := importer.ParseDate(strings.TrimSpace(in.DueDate))
	if err != nil {
		return reminder.CreateParams{}, err
	}

	amount, err := importer.ParseAmount(strings.TrimSpace(in.Amount))
	if err != nil {
		return reminder.CreateParams{}, fmt.Errorf("invalid amount %q", in.Amount)
	}

	params := reminder.CreateParams{
		Type:        in.Type,
		DueDate:     due,
		Amount:      amount,
		Currency:    in.Currency,
		Description: in.Description,
	}

	if s := strings.TrimSpace(in.DaysBefore); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return reminder.CreateParams{}, fmt.Errorf("invalid days before %q", s)
		}

		params.ReminderDaysBefore = &days
	}

	return params, params.Validate()
}

func (in reminderInput) updateParams() (reminder.UpdateParams, error) {
	days, err := strconv.Atoi(strings.TrimSpace(in.DaysBefore))
	if err != nil {
		return reminder.UpdateParams{}, fmt.Errorf("invalid days before %q", in.DaysBefore)
	}

	return reminder.UpdateParams{
		Description:        new(in.Description),
		ReminderDaysBefore: &days,
	}, nil
}

func NewListModel(tenantID uuid.UUID, svc *reminder.Service) ListModel {
	columns := []table.Column{
		{Title: "Due", Width: 12},
		{Title: "Type", Width: 18},
		{Title: "Amount", Width: 16},
		{Title: "Description", Width: 40},
		{Title: "Status", Width: 10},
		{Title: "Source", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		CommonModel: CommonModel{TenantID: tenantID},
		reminders:   svc,
		table:       t,
		pageNum:     1,
		loading:     true,
	}
}

func (m ListModel) Title() string { return "Reminders" }

func (m ListModel) ShortHelp() string {
	if m.state != listStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | p: mark paid | x: delete | f: filter | [ ]: page | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.page = msg.page
		m.refreshTable()

		return m, nil

	case listActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == listStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m ListModel) selected() *reminder.Reminder {
	if m.page == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.page.Items) {
		return nil
	}

	return m.page.Items[idx]
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(filterLabels)
			m.pageNum = 1

			return m, m.loadCmd()
		case "]":
			if m.page != nil && m.pageNum < m.page.TotalPages {
				m.pageNum++
				return m, m.loadCmd()
			}
		case "[":
			if m.pageNum > 1 {
				m.pageNum--
				return m, m.loadCmd()
			}
		case "n":
			return m.enterCreateMode()
		case "e":
			return m.enterEditMode()
		case "p":
			if r := m.selected(); r != nil {
				return m, m.markPaidCmd(r.ID)
			}
		case "x":
			if r := m.selected(); r != nil {
				return m, m.deleteCmd(r.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.input = reminderInput{
		Type:       reminder.TypeOther,
		Currency:   reminder.DefaultCurrency,
		DaysBefore: strconv.Itoa(reminder.DefaultDaysBefore),
	}

	options := make([]huh.Option[reminder.Type], len(reminder.Types))
	for i, t := range reminder.Types {
		options[i] = huh.NewOption(string(t), t)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[reminder.Type]().
				Key("type").
				Title("Type").
				Options(options...).
				Value(&m.input.Type),

			huh.NewInput().
				Key("due_date").
				Title("Due date").
				Placeholder("DD.MM.YYYY").
				Value(&m.input.DueDate).
				Validate(func(s string) error {
					_, err := importer.ParseDate(strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("1.250,00").
				Value(&m.input.Amount),

			huh.NewInput().
				Key("currency").
				Title("Currency").
				Value(&m.input.Currency),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.input.Description).
				Validate(nonEmpty("description")),

			huh.NewInput().
				Key("days_before").
				Title("Remind days before").
				Value(&m.input.DaysBefore),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	r := m.selected()
	if r == nil {
		return m, nil
	}

	m.input = reminderInput{
		Description: r.Description,
		DaysBefore:  strconv.Itoa(r.ReminderDaysBefore),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.input.Description).
				Validate(nonEmpty("description")),

			huh.NewInput().
				Key("days_before").
				Title("Remind days before").
				Value(&m.input.DaysBefore),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == listStateCreate {
		return m, m.createCmd()
	}

	return m, m.updateCmd()
}

func (m ListModel) filter() reminder.ListFilter {
	f := reminder.ListFilter{Page: m.pageNum, Limit: reminder.DefaultPageSize}

	switch m.filterIdx {
	case 1:
		f.Upcoming = true
	case 2:
		f.Overdue = true
	case 3:
		f.IsPaid = new(false)
	case 4:
		f.IsPaid = new(true)
	}

	return f
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading reminders...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	header := fmt.Sprintf("Filter: [f] %s | Page %d/%d | %d reminders",
		activeStyle(filterLabels[m.filterIdx]),
		m.page.Page, max(m.page.TotalPages, 1), m.page.Total,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.state != listStateBrowse && m.form != nil {
		title := "New Reminder"
		if m.state == listStateEdit {
			title = "Edit Reminder"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func rowStatus(r *reminder.Reminder) string {
	switch {
	case r.IsPaid:
		return "paid"
	case r.ReminderSent:
		return "notified"
	}

	return "open"
}

func rowSource(r *reminder.Reminder) string {
	switch {
	case r.InvoiceID != nil:
		return "invoice"
	case r.CheckNoteID != nil:
		return "check"
	}

	return "manual"
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.page.Items))
	for _, r := range m.page.Items {
		rows = append(rows, table.Row{
			FormatDate(r.DueDate),
			string(r.Type),
			FormatAmount(r.Amount, r.Currency),
			r.Description,
			rowStatus(r),
			rowSource(r),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	page *reminder.Page
	err  error
}

type listActionMsg struct {
	status string
	err    error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.reminders.List(ctx, m.TenantID, filter)

		return loadListMsg{page: page, err: err}
	}
}

func (m ListModel) createCmd() tea.Cmd {
	input := m.input

	return func() tea.Msg {
		params, err := input.createParams()
		if err != nil {
			return listActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.reminders.Create(ctx, m.TenantID, params)
		if err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: successStyle.Render("Created reminder due " + FormatDate(r.DueDate))}
	}
}

func (m ListModel) updateCmd() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}

	id := r.ID
	input := m.input

	return func() tea.Msg {
		params, err := input.updateParams()
		if err != nil {
			return listActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.reminders.Update(ctx, m.TenantID, id, params); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: successStyle.Render("Reminder updated")}
	}
}

func (m ListModel) markPaidCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.reminders.MarkAsPaid(ctx, m.TenantID, id); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: successStyle.Render("Marked as paid")}
	}
}

func (m ListModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.reminders.Delete(ctx, m.TenantID, id); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: successStyle.Render("Reminder deleted")}
	}
}
