package domain

import "fmt"

// Mode enumerates the mutually-exclusive publish treatments for a creative.
type Mode string

const (
	ModeDisplay      Mode = "display"
	ModePost         Mode = "post"
	ModePostCarousel Mode = "post-carousel"
)

// ParseMode maps a configuration string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDisplay, ModePost, ModePostCarousel:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown publish mode %q", s)
	}
}
