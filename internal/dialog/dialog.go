// Package dialog implements the interactive update dialog: an
// inline terminal UI that checks for updates, lists available
// versions with their changelog, and drives the download and install
// with live progress and cancellation.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mkarlen/keyden/internal/settings"
	"github.com/mkarlen/keyden/internal/update"
)

const (
	progressBarWidth  = 40
	changelogHeight   = 12
	maxListedReleases = 8
)

// Model is the bubbletea model for the update dialog.
type Model struct {
	client     *update.Client
	checker    *update.Checker
	downloader *update.Downloader
	installer  *update.Installer
	store      *settings.Store
	branch     string

	state          State
	currentVersion string
	result         update.Result
	releases       []update.Release
	selected       int
	changelog      string
	err            error

	spinner   spinner.Model
	progress  progress.Model
	viewport  viewport.Model
	viewReady bool

	prog update.Progress

	// Download worker plumbing. Events are dropped when the channel is
	// full; completion always arrives on doneCh.
	events chan update.Progress
	doneCh chan error
	cancel context.CancelFunc

	width  int
	height int
}

// Config bundles the collaborators the dialog needs.
type Config struct {
	Client         *update.Client
	Checker        *update.Checker
	Downloader     *update.Downloader
	Installer      *update.Installer
	Store          *settings.Store
	CurrentVersion string
	Branch         string
}

// NewModel creates the update dialog model in the Idle state.
func NewModel(cfg Config) *Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressBarWidth),
	)

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}

	return &Model{
		client:         cfg.Client,
		checker:        cfg.Checker,
		downloader:     cfg.Downloader,
		installer:      cfg.Installer,
		store:          cfg.Store,
		currentVersion: cfg.CurrentVersion,
		branch:         branch,
		state:          StateIdle,
		spinner:        s,
		progress:       p,
		events:         make(chan update.Progress, 16),
		doneCh:         make(chan error, 1),
	}
}

// State returns the dialog's current state.
func (m *Model) State() State {
	return m.state
}

// Err returns the failure recorded in a failed state, if any.
func (m *Model) Err() error {
	return m.err
}

// SelectedTag returns the tag currently highlighted in the list.
func (m *Model) SelectedTag() string {
	if m.selected >= 0 && m.selected < len(m.releases) {
		return m.releases[m.selected].TagName
	}
	return ""
}

func (m *Model) Init() tea.Cmd {
	m.state = StateChecking
	return tea.Batch(m.spinner.Tick, m.checkCmd())
}

// checkCmd runs the update check and release listing off the UI loop.
func (m *Model) checkCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancelCheck := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelCheck()

		result, err := m.checker.Check(ctx)
		if err != nil {
			return checkFailedMsg{err: err}
		}

		releases, err := m.client.ListReleases(ctx)
		if err != nil {
			return checkFailedMsg{err: err}
		}
		if len(releases) > maxListedReleases {
			releases = releases[:maxListedReleases]
		}

		changelog := m.client.Changelog(ctx, m.branch)

		return checkDoneMsg{result: result, releases: releases, changelog: changelog}
	}
}

// startDownload spawns the download worker and returns the command
// that waits for its first event.
func (m *Model) startDownload(tag string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.prog = update.Progress{}
	m.drainEvents()

	go func() {
		_, err := m.downloader.Download(ctx, tag, func(p update.Progress) {
			select {
			case m.events <- p:
			default:
				// Drop intermediate snapshots when the UI lags
			}
		})
		m.doneCh <- err
	}()

	return m.waitForDownload()
}

// drainEvents discards buffered snapshots left over from a previous
// download session.
func (m *Model) drainEvents() {
	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}

// waitForDownload bridges worker events into tea messages.
func (m *Model) waitForDownload() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-m.events:
			return progressMsg(p)
		case err := <-m.doneCh:
			return downloadDoneMsg{err: err}
		}
	}
}

// installCmd performs the binary swap after a completed download.
func (m *Model) installCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.installer.Install(m.downloader.StagingPath())
		if err == nil && m.store != nil {
			m.store.MarkUpdated(m.SelectedTag())
			// The swap already succeeded; a failed settings write only
			// loses the post-update notice.
			_ = m.store.Save()
		}
		return installDoneMsg{err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.viewReady {
			m.viewport = viewport.New(min(msg.Width-6, 76), changelogHeight)
			m.viewReady = true
			m.setChangelog(m.changelog)
		} else {
			m.viewport.Width = min(msg.Width-6, 76)
		}
		return m, nil

	case checkDoneMsg:
		m.state = StateVersionsListed
		m.result = msg.result
		m.releases = msg.releases
		m.changelog = msg.changelog
		m.selected = 0
		m.setChangelog(msg.changelog)
		return m, nil

	case checkFailedMsg:
		m.state = StateCheckFailed
		m.err = msg.err
		return m, nil

	case progressMsg:
		m.prog = update.Progress(msg)
		var percent float64
		if m.prog.Total > 0 {
			percent = float64(m.prog.Downloaded) / float64(m.prog.Total)
		}
		return m, tea.Batch(m.progress.SetPercent(percent), m.waitForDownload())

	case downloadDoneMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		switch {
		case msg.err == nil:
			m.state = StateInstalling
			return m, m.installCmd()
		case errors.Is(msg.err, update.ErrCancelled):
			m.state = StateCancelled
			return m, nil
		default:
			m.state = StateDownloadFailed
			m.err = msg.err
			return m, nil
		}

	case installDoneMsg:
		if msg.err != nil {
			m.state = StateDownloadFailed
			m.err = msg.err
		} else {
			m.state = StateInstalled
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ctrl+c always exits; during a download it cancels first and the
	// already-armed waiter delivers the cancellation result.
	if key == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.state {
	case StateCheckFailed:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "r", "enter":
			m.err = nil
			m.state = StateChecking
			return m, tea.Batch(m.spinner.Tick, m.checkCmd())
		}

	case StateVersionsListed:
		switch key {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.releases)-1 {
				m.selected++
			}
		case "pgup":
			m.viewport.HalfViewUp()
		case "pgdown":
			m.viewport.HalfViewDown()
		case "enter":
			tag := m.SelectedTag()
			if tag != "" && update.Normalize(tag) != update.Normalize(m.currentVersion) {
				m.state = StateDownloading
				return m, m.startDownload(tag)
			}
		case "q", "esc":
			return m, tea.Quit
		}

	case StateDownloading:
		if key == "c" || key == "esc" {
			if m.cancel != nil {
				m.cancel()
			}
			// Exactly one waiter is pending; arming another here would
			// race it for the completion signal.
			return m, nil
		}

	case StateDownloadFailed, StateCancelled:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		default:
			m.err = nil
			if len(m.releases) > 0 {
				m.state = StateVersionsListed
				return m, nil
			}
			m.state = StateChecking
			return m, tea.Batch(m.spinner.Tick, m.checkCmd())
		}

	case StateInstalled:
		return m, tea.Quit
	}

	return m, nil
}

// setChangelog renders markdown into the viewport.
func (m *Model) setChangelog(raw string) {
	if !m.viewReady || raw == "" {
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width-2),
	)
	if err != nil {
		m.viewport.SetContent(raw)
		return
	}

	rendered, err := renderer.Render(raw)
	if err != nil {
		m.viewport.SetContent(raw)
		return
	}
	m.viewport.SetContent(strings.TrimSpace(rendered))
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("keyden updater"))
	b.WriteString("\n")

	switch m.state {
	case StateIdle, StateChecking:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(statusStyle.Render("Checking for updates..."))

	case StateCheckFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Update check failed: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("r retry · q quit"))

	case StateVersionsListed:
		b.WriteString(m.viewVersionList())

	case StateDownloading:
		b.WriteString(m.viewDownloading())

	case StateInstalling:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(statusStyle.Render("Installing..."))

	case StateInstalled:
		b.WriteString(successStyle.Render(fmt.Sprintf("Updated to %s", m.SelectedTag())))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Restart keyden to use the new version"))

	case StateDownloadFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Update failed: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Press any key to go back · q quit"))

	case StateCancelled:
		b.WriteString(statusStyle.Render("Download cancelled"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Press any key to go back · q quit"))
	}

	return containerStyle.Render(b.String())
}

func (m *Model) viewVersionList() string {
	var b strings.Builder

	if m.result.Available {
		b.WriteString(statusStyle.Render(fmt.Sprintf("Update available: %s → %s",
			m.result.CurrentVersion, m.result.LatestVersion)))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("You are on the latest version (%s)",
			m.result.CurrentVersion)))
	}
	b.WriteString("\n\n")

	for i, rel := range m.releases {
		label := rel.TagName
		if update.Normalize(rel.TagName) == update.Normalize(m.currentVersion) {
			label += " (current)"
		}
		if rel.Prerelease {
			label += " (pre-release)"
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString(dimStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	if m.viewReady && m.changelog != "" {
		b.WriteString("\n")
		b.WriteString(changelogBorderStyle.Render(m.viewport.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select · enter install · pgup/pgdn scroll · q quit"))

	return b.String()
}

func (m *Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(statusStyle.Render(fmt.Sprintf("Downloading %s", m.SelectedTag())))
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n")

	detail := fmt.Sprintf("%s / %s", formatBytes(m.prog.Downloaded), formatBytes(m.prog.Total))
	if m.prog.Speed > 0 {
		detail += fmt.Sprintf("  %s/s", formatBytes(int64(m.prog.Speed)))
	}
	if m.prog.ETA > 0 {
		detail += fmt.Sprintf("  ETA %s", m.prog.ETA.Round(time.Second))
	}
	b.WriteString(dimStyle.Render(detail))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("c cancel"))

	return b.String()
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
