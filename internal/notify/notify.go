// Package notify provides the local and SMS notification channels for
// alerts.
package notify

import (
	"fmt"
	"os/exec"
	"time"
)

// VoiceAnnouncer speaks alert messages using the macOS 'say' command.
type VoiceAnnouncer struct {
	command string
}

// NewVoiceAnnouncer creates a new VoiceAnnouncer.
func NewVoiceAnnouncer() *VoiceAnnouncer {
	return &VoiceAnnouncer{command: "say"}
}

// Announce speaks the message. Non-blocking; a missing say binary is
// silently ignored. The child is waited on in the background so
// finished speech processes are reaped.
func (v *VoiceAnnouncer) Announce(message string) {
	cmd := exec.Command(v.command, message)
	if err := cmd.Start(); err == nil {
		go cmd.Wait()
	}
}

// TerminalAnnouncer prints alert messages to the terminal with a bell.
type TerminalAnnouncer struct {
	bellEnabled bool
}

// NewTerminalAnnouncer creates a new TerminalAnnouncer.
func NewTerminalAnnouncer(bellEnabled bool) *TerminalAnnouncer {
	return &TerminalAnnouncer{bellEnabled: bellEnabled}
}

// Announce prints the message with a timestamp.
func (t *TerminalAnnouncer) Announce(message string) {
	if t.bellEnabled {
		fmt.Print("\a")
	}
	fmt.Printf("[%s] 🔔 %s\n", time.Now().Format("15:04:05"), message)
}

// MultiAnnouncer fans a message out to several channels.
type MultiAnnouncer struct {
	channels []Announcer
}

// Announcer is the loud local notification channel.
type Announcer interface {
	Announce(message string)
}

// NewMultiAnnouncer creates an announcer that dispatches to every
// given channel.
func NewMultiAnnouncer(channels ...Announcer) *MultiAnnouncer {
	return &MultiAnnouncer{channels: channels}
}

// Announce dispatches the message to all channels.
func (m *MultiAnnouncer) Announce(message string) {
	for _, ch := range m.channels {
		ch.Announce(message)
	}
}
