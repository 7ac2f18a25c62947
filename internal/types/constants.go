// Package types provides type-safe constants shared across the keyden
// configuration and update subsystems, replacing magic strings with
// typed values that carry validation methods.
package types

import (
	"fmt"
	"strings"
)

// Channel represents a release channel. The channel selects which
// branch the changelog is read from; release tags themselves are
// channel-agnostic.
type Channel string

const (
	// ChannelStable tracks tagged stable releases.
	ChannelStable Channel = "stable"
	// ChannelBeta tracks pre-release builds.
	ChannelBeta Channel = "beta"
)

// AllChannels returns all valid release channels.
func AllChannels() []Channel {
	return []Channel{ChannelStable, ChannelBeta}
}

// Validate checks if the Channel is a valid value. Empty is valid and
// defaults to stable.
func (c Channel) Validate() error {
	switch c {
	case ChannelStable, ChannelBeta, "":
		return nil
	default:
		return fmt.Errorf("invalid channel '%s' (must be stable or beta)", c)
	}
}

// String returns the string representation of the Channel.
func (c Channel) String() string {
	return string(c)
}

// Default returns stable if the channel is empty, otherwise the channel itself.
func (c Channel) Default() Channel {
	if c == "" {
		return ChannelStable
	}
	return c
}

// Branch returns the repository branch the channel's changelog lives on.
func (c Channel) Branch() string {
	switch c.Default() {
	case ChannelBeta:
		return "beta"
	default:
		return "main"
	}
}

// IsStable returns true if the channel is stable (or defaulted).
func (c Channel) IsStable() bool {
	return c.Default() == ChannelStable
}

// ParseChannel parses a string into a Channel.
// Returns an error if the string is not a valid channel.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if err := ch.Validate(); err != nil {
		return "", err
	}
	return ch.Default(), nil
}
