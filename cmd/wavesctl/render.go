package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavesd/internal/control"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(10)
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var boxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

func renderStatus(info control.Info) string {
	var b strings.Builder

	if info.Path == "" {
		b.WriteString(titleStyle.Render("Nothing loaded"))
	} else {
		title := info.Title
		if title == "" {
			title = info.Path
		}
		b.WriteString(titleStyle.Render(title))
		if sub := subtitle(info.Artist, info.Album); sub != "" {
			b.WriteString("\n" + sub)
		}
		fmt.Fprintf(&b, "\n%s / %s", formatDuration(info.Position), formatDuration(info.Length))
	}
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString("\n" + labelStyle.Render(label) + value)
	}
	row("phase", info.Phase)
	row("focus", info.Focus)
	row("surface", info.Surface)
	row("session", flag(info.SessionActive))
	row("wake lock", flag(info.WakeLockHeld))
	row("widget", flag(info.WidgetEnabled))
	row("volume", fmt.Sprintf("%d", info.Volume))
	row("queue", queuePosition(info))
	if info.Next != "" {
		row("next", info.Next)
	}
	row("repeat", info.Repeat)
	row("shuffle", flag(info.Shuffle))
	row("listeners", fmt.Sprintf("%d", info.Listeners))
	row("store", flag(info.StoreReady))

	return boxStyle.Render(b.String())
}

func subtitle(artist, album string) string {
	switch {
	case artist != "" && album != "":
		return artist + " - " + album
	case artist != "":
		return artist
	}
	return album
}

func queuePosition(info control.Info) string {
	if info.QueueLength == 0 {
		return "empty"
	}
	if info.QueueIndex < 0 {
		return fmt.Sprintf("-/%d", info.QueueLength)
	}
	return fmt.Sprintf("%d/%d", info.QueueIndex+1, info.QueueLength)
}

func flag(on bool) string {
	if on {
		return onStyle.Render("on")
	}
	return offStyle.Render("off")
}

// formatDuration renders m:ss, or h:mm:ss from one hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
