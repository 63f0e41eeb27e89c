// Package classify implements the sync engine's state machine: a pure
// function from an Entry's joined prior/current state to the single action
// it requires. No I/O, no SQL — classifying an entry is a table lookup over
// its flags.
package classify

import "github.com/phaus/ncsync/internal/model"

// Action is the verdict the classifier assigns to one Entry.
type Action int

const (
	// NoOp means the entry needs no work this pass.
	NoOp Action = iota
	// Conflict means both sides changed since the last sync; the local
	// file must be renamed aside before the entry is re-evaluated.
	Conflict
	// Download means the remote side is authoritative; fetch it.
	Download
	// Upload means the local side is authoritative; send it.
	Upload
	// DeleteRemote means the local deletion must be propagated.
	DeleteRemote
	// DeleteLocal means the remote deletion must be propagated.
	DeleteLocal
)

// String renders an Action for logs and test failure messages.
func (a Action) String() string {
	switch a {
	case Conflict:
		return "conflict"
	case Download:
		return "download"
	case Upload:
		return "upload"
	case DeleteRemote:
		return "delete-remote"
	case DeleteLocal:
		return "delete-local"
	default:
		return "no-op"
	}
}

// Classify evaluates the six predicates in the mandated order and returns
// the first that matches. Conflict is checked first so conflict
// materialization always precedes any download/upload decision drawn from
// the same pass.
func Classify(e model.Entry) Action {
	switch {
	case isConflict(e):
		return Conflict
	case isDownload(e):
		return Download
	case isUpload(e):
		return Upload
	case isDeleteRemote(e):
		return DeleteRemote
	case isDeleteLocal(e):
		return DeleteLocal
	default:
		return NoOp
	}
}

func isConflict(e model.Entry) bool {
	return e.ExistsRemote && e.ExistsLocal &&
		e.RemoteMtimePrev != e.RemoteMtime &&
		e.LocalMtimePrev != e.LocalMtime &&
		e.RemoteMtimePrev != 0 &&
		e.LocalMtimePrev != 0
}

func isDownload(e model.Entry) bool {
	return (!e.ExistsLocal && !e.Synced) || (e.RemoteMtime > e.LocalMtime && e.Synced)
}

func isUpload(e model.Entry) bool {
	return (!e.ExistsRemote && !e.Synced) || (e.RemoteMtime < e.LocalMtime && e.Synced)
}

func isDeleteRemote(e model.Entry) bool {
	return e.ExistsRemote && !e.ExistsLocal && e.Synced
}

func isDeleteLocal(e model.Entry) bool {
	return !e.ExistsRemote && e.Synced
}
