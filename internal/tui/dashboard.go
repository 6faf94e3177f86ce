package tui

import (
	"fmt"

	"runcoach/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService) DashboardModel {
	return DashboardModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.TotalActivities == 0 {
		return "\n  No data yet. Press '2' to sync with Strava."
	}

	var sections []string

	// Top row: fitness state and marathon readiness side by side
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderFitnessCard(), "  ", m.renderReadinessCard())
	sections = append(sections, topRow)

	if m.data.Performance != nil {
		row := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPacesCard(), "  ", m.renderWeekCard())
		sections = append(sections, row)
	} else {
		sections = append(sections, m.renderWeekCard())
	}

	if len(m.data.TSBHistory) > 2 {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, m.renderRecentActivities())

	help := statusStyle.Render("Press 'r' to refresh, '2' to sync")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFitnessCard() string {
	title := cardTitleStyle.Render("Training Load")

	if !m.data.HasFitness {
		return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities with heart rate yet"))
	}

	f := m.data.Fitness
	ratio := "-"
	if f.WorkloadRatio != nil {
		ratio = fmt.Sprintf("%.2f", *f.WorkloadRatio)
	}

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f  (%.0f%% of peak)", f.CTL, f.CTLPctOfPeak)),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f  (%.0f%% of peak)", f.ATL, f.ATLPctOfPeak)),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.1f", f.TSB)),
		RenderMetric("Workload ratio", ratio),
		"",
		helpDescStyle.Render(m.data.FormDescription),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderReadinessCard() string {
	title := cardTitleStyle.Render("Marathon Readiness")

	r := m.data.Readiness
	if r == nil {
		return cardStyle.Width(46).Render(lipgloss.JoinVertical(lipgloss.Left, title, "No recent runs to score"))
	}

	lines := []string{
		RenderMetric("Predicted time", formatHoursMinutes(r.PredictedMinutes)),
		RenderMetric("Target weekly", fmt.Sprintf("%.0f km", r.TargetWeeklyKm)),
		RenderMetric("Target long run", fmt.Sprintf("%.0f km", r.TargetLongRunKm)),
		"",
		fmt.Sprintf("Weekly volume  %s %3.0f%%", RenderProgressBar(r.WeeklyAchievementPct/100, 16), r.WeeklyAchievementPct),
		fmt.Sprintf("Long run       %s %3.0f%%", RenderProgressBar(r.LongRunAchievement/100, 16), r.LongRunAchievement),
		"",
		RenderMetric("Readiness", fmt.Sprintf("%.0f%%", r.CompositeScore)),
		helpDescStyle.Render("VDOT source: "+m.data.VDOTSource),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(46).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderPacesCard() string {
	p := m.data.Performance
	title := cardTitleStyle.Render(fmt.Sprintf("Training Paces - VDOT %.1f (%s)", p.VDOT, m.data.PerformanceSource))

	header := tableHeaderStyle.Render(fmt.Sprintf("%-12s  %14s", "Zone", "Pace (min/km)"))
	rows := []string{header}

	for _, zone := range p.TrainingPaces {
		band := fmt.Sprintf("%s - %s", formatPace(zone.MinSecPerKm), formatPace(zone.MaxSecPerKm))
		if zone.MinSecPerKm == zone.MaxSecPerKm {
			band = formatPace(zone.MinSecPerKm)
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-12s  %14s", zone.Name, band)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	lines := []string{
		RenderMetric("Runs", fmt.Sprintf("%d", m.data.WeekRunCount)),
		RenderMetric("Distance", fmt.Sprintf("%.1f km", m.data.WeekDistanceKm)),
		RenderMetric("Time", formatDuration(m.data.WeekTimeSeconds)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(30).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render("Form (TSB) - Last 90 Days")

	graph := asciigraph.Plot(m.data.TSBHistory,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.RecentActivities) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-20s  %-6s  %8s  %7s  %6s",
		"Date", "Name", "Type", "Distance", "Time", "Avg HR"))

	rows := []string{header}

	for i, a := range m.data.RecentActivities {
		if i >= 5 {
			break
		}

		hr := "-"
		if a.AverageHeartrate != nil {
			hr = fmt.Sprintf("%.0f", *a.AverageHeartrate)
		}

		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-20s  %-6s  %6.1fkm  %7s  %6s",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 20),
			a.Type,
			a.Distance/1000,
			formatDuration(a.MovingTime),
			hr,
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

// formatPace renders integer seconds per km as m:ss
func formatPace(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatHoursMinutes renders a minute count as h:mm
func formatHoursMinutes(minutes float64) string {
	whole := int(minutes)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
