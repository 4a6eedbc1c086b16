package session

import "log/slog"

// Status records what the persistence step has to do with a session once the
// handler has finished.
type Status int

const (
	// StatusUnchanged means nothing has to be written.
	StatusUnchanged Status = iota
	// StatusChanged means the entries must be saved under the current identifier,
	// or under a fresh one if the session has none yet.
	StatusChanged
	// StatusRenewed means the session must be saved under a fresh identifier and
	// the old record removed.
	StatusRenewed
	// StatusPurged means the record and the cookie must be removed.
	StatusPurged
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusRenewed:
		return "renewed"
	case StatusPurged:
		return "purged"
	default:
		return "unknown"
	}
}

// LogValue implements slog.LogValuer.
func (s Status) LogValue() slog.Value {
	return slog.StringValue(s.String())
}
