// Package policy holds the single ownership rule applied to every request
// that targets an existing resource: reads are open to any authenticated
// caller, writes only to the resource's creator. News and comments share
// this rule through the Owned interface.
package policy

// Action classifies what a request wants to do with a resource.
type Action int

const (
	// ActionRead covers list, get and viewing vote counts.
	ActionRead Action = iota
	// ActionWrite covers update and delete of an existing resource.
	ActionWrite
)

// Owned is any resource with an owning author. The upvote increment is
// deliberately not an Owned write: any authenticated caller may vote.
type Owned interface {
	OwnerID() uint
}

// Allow reports whether callerID may perform action on resource. A zero
// caller id means the request was never authenticated.
func Allow(callerID uint, resource Owned, action Action) bool {
	if callerID == 0 {
		return false
	}
	switch action {
	case ActionRead:
		return true
	case ActionWrite:
		return resource != nil && resource.OwnerID() == callerID
	default:
		return false
	}
}
