package enums

import (
	"fmt"
	"strings"
)

// AlertLevel is the ordered severity of an alert.
type AlertLevel string

const (
	AlertLevelInfo       AlertLevel = "INFO"
	AlertLevelDrill      AlertLevel = "DRILL"
	AlertLevelStandby    AlertLevel = "STANDBY"
	AlertLevelActivation AlertLevel = "ACTIVATION"
)

var validAlertLevels = []AlertLevel{
	AlertLevelInfo,
	AlertLevelDrill,
	AlertLevelStandby,
	AlertLevelActivation,
}

var alertLevelRanks = map[AlertLevel]int{
	AlertLevelInfo:       1,
	AlertLevelDrill:      2,
	AlertLevelStandby:    3,
	AlertLevelActivation: 4,
}

var alertLevelDescriptions = map[AlertLevel]string{
	AlertLevelInfo:       "Normal operations. Routine information and announcements.",
	AlertLevelDrill:      "Training exercise or scheduled drill. Not an actual emergency.",
	AlertLevelStandby:    "Potential emergency developing. Be prepared for possible activation.",
	AlertLevelActivation: "Emergency activation. All members should respond according to the emergency plan.",
}

var activationInstructions = []string{
	"Check your equipment and ensure it is operational",
	"Monitor the primary repeater frequency",
	"Await further instructions from the EC or AEC",
	"Do not self-deploy unless specifically instructed",
}

// String implements fmt.Stringer.
func (l AlertLevel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known AlertLevel.
func (l AlertLevel) IsValid() bool {
	_, ok := alertLevelRanks[l]
	return ok
}

// Rank returns the priority of the level. Unknown levels rank 0, below INFO.
func (l AlertLevel) Rank() int {
	return alertLevelRanks[l]
}

// Description returns the operator-facing meaning of the level.
func (l AlertLevel) Description() string {
	return alertLevelDescriptions[l]
}

// Instructions lists the member checklist shown for the level. Only ACTIVATION has one.
func (l AlertLevel) Instructions() []string {
	if l != AlertLevelActivation {
		return nil
	}
	out := make([]string, len(activationInstructions))
	copy(out, activationInstructions)
	return out
}

// ParseAlertLevel converts raw input into an AlertLevel, ignoring case and surrounding space.
func ParseAlertLevel(value string) (AlertLevel, error) {
	normalized := AlertLevel(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validAlertLevels {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert level %q", value)
}
