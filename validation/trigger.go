package validation

import "github.com/LegacyCodeHQ/solls/config"

// Trigger is the editor event that asked for a pass.
type Trigger int

const (
	TriggerOpen Trigger = iota
	TriggerChange
	TriggerSave
	TriggerConfigChange
)

func (t Trigger) String() string {
	switch t {
	case TriggerOpen:
		return "open"
	case TriggerChange:
		return "change"
	case TriggerSave:
		return "save"
	case TriggerConfigChange:
		return "config"
	default:
		return "unknown"
	}
}

// policyFor returns the configured policy for trigger.
func policyFor(settings config.Settings, trigger Trigger) config.Policy {
	var p config.Policy
	switch trigger {
	case TriggerOpen:
		p = settings.ValidateOnOpen
	case TriggerChange:
		p = settings.ValidateOnChange
	case TriggerSave:
		p = settings.ValidateOnSave
	case TriggerConfigChange:
		p = settings.ValidateOnConfigChange
	}
	if p == "" {
		return config.PolicyAll
	}
	return p
}
