// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusTimeout is how long a status message stays up.
const statusTimeout = 6 * time.Second

// FilesChangedMsg carries book files the watcher saw appear or change.
type FilesChangedMsg struct {
	Paths []string
}

// watcherClosedMsg is sent once the watcher's channel is closed.
type watcherClosedMsg struct{}

// statusExpiredMsg clears the status line if no newer message replaced it.
type statusExpiredMsg struct {
	seq int
}

// waitForChanges blocks on the watcher channel and turns the next batch
// into a message.
func waitForChanges(ch <-chan []string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		paths, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return FilesChangedMsg{Paths: paths}
	}
}

func expireStatus(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}
