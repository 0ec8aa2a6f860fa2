package ports

import (
	"github.com/mikey/llm-priority-scorer/internal/core"
)

// PriorityStore bundles the persistence concerns one backend serves: known
// contacts, per-sender response history and the email archive
type PriorityStore interface {
	core.ContactDirectory
	core.ResponseHistoryStore
	core.EmailArchive
}
