package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/minutes/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) offlineNote(offline bool) {
	if offline {
		a.out.Warn("Server unavailable, showing cached data.")
	}
}

func (a *App) Meetings(ctx context.Context) error {
	list, offline, err := a.meetingService.List(ctx)
	if err != nil {
		return a.report(err)
	}
	a.offlineNote(offline)
	if offline {
		if at, err := a.meetingService.LastSync(ctx); err == nil {
			a.out.Print("Last synced %s", at.Local().Format(timeLayout))
		}
	}

	if len(list) == 0 {
		a.out.Print("No meetings yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.writer(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tSTATUS\tTITLE")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.StartedAt.Local().Format(timeLayout), formatDuration(m.Duration()), m.Status, m.Title)
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	m, offline, err := a.meetingService.Get(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	a.offlineNote(offline)

	a.out.Header(m.Title)
	a.out.Print("ID:           %s", m.ID)
	a.out.Print("Started:      %s", m.StartedAt.Local().Format(timeLayout))
	if d := m.Duration(); d > 0 {
		a.out.Print("Duration:     %s", formatDuration(d))
	}
	a.out.Print("Platform:     %s", m.Platform)
	a.out.Print("Status:       %s", m.Status)
	a.out.Print("Participants: %s", strings.Join(m.Participants, ", "))
	a.out.Print("Transcript:   %s", a.out.Badge(m.HasTranscript, yesNo(m.HasTranscript)))
	return nil
}

func (a *App) Summary(ctx context.Context, args []string) error {
	s, offline, err := a.meetingService.Summary(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	a.offlineNote(offline)

	a.out.Header("Summary")
	a.out.Print("%s", s.Overview)
	if len(s.KeyPoints) > 0 {
		a.out.Header("Key points")
		for _, p := range s.KeyPoints {
			a.out.Print("  • %s", p)
		}
	}
	if len(s.Decisions) > 0 {
		a.out.Header("Decisions")
		for _, d := range s.Decisions {
			a.out.Print("  • %s", d)
		}
	}
	return nil
}

func (a *App) Transcript(ctx context.Context, args []string) error {
	body, err := a.meetingService.Transcript(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	a.out.Print("%s", strings.TrimRight(string(body), "\n"))
	return nil
}

// Tasks lists tasks, optionally for one meeting (args[0]).
func (a *App) Tasks(ctx context.Context, args []string) error {
	meetingID := ""
	if len(args) > 0 {
		meetingID = args[0]
	}

	tasks, offline, err := a.meetingService.Tasks(ctx, meetingID)
	if err != nil {
		return a.report(err)
	}
	a.offlineNote(offline)

	if len(tasks) == 0 {
		a.out.Print("No tasks.")
		return nil
	}

	tw := tabwriter.NewWriter(a.writer(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tDUE\tASSIGNEE\tTITLE")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Done), due, t.Assignee, t.Title)
	}
	return tw.Flush()
}

func (a *App) SetDone(ctx context.Context, args []string, done bool) error {
	task, err := a.meetingService.SetTaskDone(ctx, args[0], done)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s %s", checkbox(task.Done), task.Title)
	return nil
}

func (a *App) Integrations(ctx context.Context) error {
	list, err := a.meetingService.Integrations(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		a.out.Print("No integrations.")
		return nil
	}
	for _, i := range list {
		a.out.Print("%-16s %s", i.Provider, a.out.Badge(i.Connected, connectedLabel(i)))
	}
	return nil
}

func (a *App) Automations(ctx context.Context) error {
	list, err := a.meetingService.Automations(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		a.out.Print("No automations.")
		return nil
	}
	for _, au := range list {
		state := "disabled"
		if au.Enabled {
			state = "enabled"
		}
		a.out.Print("%s  %s  when %s → %s", a.out.Badge(au.Enabled, state), au.Name, au.Trigger, au.Action)
	}
	return nil
}

func (a *App) Account(ctx context.Context) error {
	acc, err := a.meetingService.Account(ctx)
	if err != nil {
		return a.report(err)
	}
	a.out.Header("Account")
	a.out.Print("Email:    %s", acc.Email)
	a.out.Print("Name:     %s", acc.Name)
	a.out.Print("Verified: %s", a.out.Badge(acc.Verified, yesNo(acc.Verified)))
	a.out.Print("Since:    %s", acc.CreatedAt.Local().Format("2006-01-02"))
	return nil
}

// Token shows the state of the access token without printing it in full.
func (a *App) Token(ctx context.Context) error {
	token, err := a.authService.Token(ctx)
	if err != nil {
		return a.report(err)
	}
	a.out.Print("Access token: %s", maskToken(token))
	a.out.Print("Auto refresh: %s", a.out.Badge(a.keepAlive.Running(), yesNo(a.keepAlive.Running())))
	if a.keepAlive.Loading() {
		a.out.Print("Refreshing...")
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Minute).String()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func connectedLabel(i models.Integration) string {
	if !i.Connected {
		return "not connected"
	}
	if i.ConnectedAt != nil {
		return "connected since " + i.ConnectedAt.Local().Format("2006-01-02")
	}
	return "connected"
}

func maskToken(t string) string {
	if len(t) <= 12 {
		return strings.Repeat("*", len(t))
	}
	return t[:6] + "…" + t[len(t)-6:]
}
