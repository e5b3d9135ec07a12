// Package syncstatus models the relationship between the in-memory,
// local and remote copies of a document as a five-state machine.
//
// Transition is pure: the next state depends only on the current state,
// the event and whether the document is dirty.
package syncstatus

import "fmt"

type Status uint8

const (
	Synced Status = iota
	Pending
	Syncing
	Offline
	Error
)

// All lists every status, in declaration order.
var All = []Status{Synced, Pending, Syncing, Offline, Error}

func (s Status) String() string {
	switch s {
	case Synced:
		return "synced"
	case Pending:
		return "pending"
	case Syncing:
		return "syncing"
	case Offline:
		return "offline"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

type Event uint8

const (
	Mutation Event = iota
	PushStart
	PushSuccess
	PushFailure
	ConnectivityLost
	ConnectivityRestored
)

// Events lists every event, in declaration order.
var Events = []Event{Mutation, PushStart, PushSuccess, PushFailure, ConnectivityLost, ConnectivityRestored}

func (e Event) String() string {
	switch e {
	case Mutation:
		return "mutation"
	case PushStart:
		return "push-start"
	case PushSuccess:
		return "push-success"
	case PushFailure:
		return "push-failure"
	case ConnectivityLost:
		return "connectivity-lost"
	case ConnectivityRestored:
		return "connectivity-restored"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// Transition returns the state that follows s on event e. dirty is only
// consulted when connectivity comes back while offline.
//
// It panics on values outside All or Events.
func Transition(s Status, e Event, dirty bool) Status {
	switch s {
	case Synced:
		switch e {
		case Mutation:
			return Pending
		case PushStart:
			return Syncing
		case PushSuccess, PushFailure, ConnectivityRestored:
			return Synced
		case ConnectivityLost:
			return Offline
		}
	case Pending:
		switch e {
		case Mutation, PushSuccess, PushFailure, ConnectivityRestored:
			return Pending
		case PushStart:
			return Syncing
		case ConnectivityLost:
			return Offline
		}
	case Syncing:
		// An in-flight push always resolves to synced or error, even if
		// connectivity drops meanwhile.
		switch e {
		case Mutation, PushStart, ConnectivityLost, ConnectivityRestored:
			return Syncing
		case PushSuccess:
			return Synced
		case PushFailure:
			return Error
		}
	case Offline:
		switch e {
		case Mutation, PushStart, PushSuccess, PushFailure, ConnectivityLost:
			return Offline
		case ConnectivityRestored:
			if dirty {
				return Pending
			}
			return Synced
		}
	case Error:
		switch e {
		case Mutation:
			return Pending
		case PushStart:
			return Syncing
		case PushSuccess, PushFailure, ConnectivityRestored:
			return Error
		case ConnectivityLost:
			return Offline
		}
	}
	panic(fmt.Sprintf("syncstatus: undefined transition %s on %s", s, e))
}

// Initial picks the status of a freshly opened session.
func Initial(dirty, online bool) Status {
	switch {
	case !online:
		return Offline
	case dirty:
		return Pending
	default:
		return Synced
	}
}
