// Package tray provides a macOS system tray interface for the Mudra
// interaction layer.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/interaction"
)

const (
	titleEnabled  = "● Enabled"
	titleDisabled = "○ Disabled"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	lastTitle  string
	statsTitle string

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastEvent *systray.MenuItem
	menuStats     *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled:    true,
		lastTitle:  "Last: none",
		statsTitle: "Events: 0",
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hands-free interaction")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture interaction")
	systray.AddSeparator()

	t.menuLastEvent = systray.AddMenuItem(t.lastTitle, "Last interaction event")
	t.menuLastEvent.Disable()
	t.menuStats = systray.AddMenuItem(t.statsTitle, "Interaction events dispatched")
	t.menuStats.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled shows the enabled state without calling the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// lastEventTitle renders an event for the menu, e.g.
// "Last: pointerselect a (right) on airports, 3 seconds ago".
func lastEventTitle(surface string, e interaction.Event, at time.Time) string {
	what := string(e.Type)
	if e.Element != "" {
		what += " " + string(e.Element)
	}
	if e.Handedness != "" {
		what += fmt.Sprintf(" (%s)", e.Handedness)
	}
	return fmt.Sprintf("Last: %s on %s, %s", what, surface, humanize.Time(at))
}

// SetLastEvent updates the last event display in the menu.
func (t *Tray) SetLastEvent(surface string, e interaction.Event, at time.Time) {
	title := lastEventTitle(surface, e, at)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastTitle = title
	if t.menuLastEvent != nil {
		t.menuLastEvent.SetTitle(title)
	}
}

// SetDispatched updates the dispatched event counter in the menu.
func (t *Tray) SetDispatched(n uint64) {
	title := "Events: " + humanize.Comma(int64(n))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.statsTitle = title
	if t.menuStats != nil {
		t.menuStats.SetTitle(title)
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
