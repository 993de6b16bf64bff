package types

// PRState represents the lifecycle state of a pull request
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// IsValid checks if the PR state is valid
func (s PRState) IsValid() bool {
	switch s {
	case PRStateOpen, PRStateClosed:
		return true
	default:
		return false
	}
}

// String returns the string representation of PRState
func (s PRState) String() string {
	return string(s)
}

// NoAgent is the sentinel agent tag for pull requests whose body carries
// no "Custom agent used:" marker.
const NoAgent = "-"

// UnknownRepository is the sentinel used when a PR web URL cannot be
// resolved to an owner/name pair.
const UnknownRepository = "unknown"
