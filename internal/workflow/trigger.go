package workflow

// Trigger represents an event that can cause a state transition, usually a
// recognized user input at the current step.
type Trigger string

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
