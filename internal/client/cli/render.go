package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dmitrijs2005/draftkeeper/internal/client/session"
	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

var badgeStyles = map[syncstatus.Status]lipgloss.Style{
	syncstatus.Synced:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	syncstatus.Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	syncstatus.Syncing: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	syncstatus.Offline: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	syncstatus.Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
}

func statusBadge(s syncstatus.Status) string {
	style, ok := badgeStyles[s]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render("[" + s.String() + "]")
}

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(timeLayout)
}

func docLabel(kind, remoteID string) string {
	if remoteID == "" {
		return kind + "/new"
	}
	return kind + "/" + remoteID
}

func renderStatus(w io.Writer, v session.View) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendRow(table.Row{"Document", docLabel(v.Kind, v.RemoteID)})
	tw.AppendRow(table.Row{"Status", statusBadge(v.Status)})
	tw.AppendRow(table.Row{"Unsynced changes", v.Dirty})
	tw.AppendRow(table.Row{"Online", v.Online})
	tw.AppendRow(table.Row{"Saved locally", formatTime(v.LastLocalSave)})
	tw.AppendRow(table.Row{"Last synced", formatTime(v.LastSynced)})
	if v.LastError != nil {
		tw.AppendRow(table.Row{"Last error", v.LastError.Error()})
	}
	tw.Render()
}

func renderPayload(w io.Writer, p document.Payload) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range keys {
		tw.AppendRow(table.Row{k, fmt.Sprint(p[k])})
	}
	tw.Render()
}

func renderDrafts(w io.Writer, list []document.Draft, previewFields []string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Document", "Saved", "Preview"})
	for _, d := range list {
		tw.AppendRow(table.Row{docLabel(d.Kind, d.RemoteID), formatTime(d.SavedAt), document.Excerpt(d.Payload, previewFields)})
	}
	tw.Render()
}

func renderDocuments(w io.Writer, list []*document.Remote, previewFields []string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Kind", "Updated", "Preview"})
	for _, d := range list {
		tw.AppendRow(table.Row{d.ID, d.Kind, formatTime(d.UpdatedAt), document.Excerpt(d.Payload, previewFields)})
	}
	tw.Render()
}
