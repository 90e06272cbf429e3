package workflow

// State represents a step in a conversational workflow. Each flow declares
// its own set of states; the builder only accepts states that were
// registered on it, so an unhandled step surfaces as a machine error rather
// than a silently ignored string.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
