package status

import (
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// LevelNormal is the baseline reported when a group has no alerts.
const LevelNormal = "NORMAL"

const normalDescription = "No active emergencies. Normal operations."

// Status is the group's current operational state. Alert is nil at the NORMAL baseline.
type Status struct {
	Level        string        `json:"level"`
	Description  string        `json:"description"`
	Instructions []string      `json:"instructions"`
	Alert        *models.Alert `json:"alert"`
}

// IsNormal reports whether no alert is driving the status.
func (s Status) IsNormal() bool {
	return s.Alert == nil
}

// Resolve picks the highest ranked alert, breaking ties by the newest CreatedAt. It is recomputed
// from the given set on every call.
func Resolve(alerts []models.Alert) Status {
	var current *models.Alert
	for i := range alerts {
		candidate := &alerts[i]
		if current == nil || outranks(candidate, current) {
			current = candidate
		}
	}
	if current == nil {
		return Status{
			Level:        LevelNormal,
			Description:  normalDescription,
			Instructions: []string{},
		}
	}

	picked := *current
	instructions := picked.Level.Instructions()
	if instructions == nil {
		instructions = []string{}
	}
	return Status{
		Level:        picked.Level.String(),
		Description:  picked.Level.Description(),
		Instructions: instructions,
		Alert:        &picked,
	}
}

func outranks(a, b *models.Alert) bool {
	ra, rb := a.Level.Rank(), b.Level.Rank()
	if ra != rb {
		return ra > rb
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RequiresResponse reports whether members are expected to act on the status.
func (s Status) RequiresResponse() bool {
	return s.Alert != nil && s.Alert.Level == enums.AlertLevelActivation
}
