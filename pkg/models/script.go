// Package models contains the data entities shared across the sync client.
package models

import "time"

// EncryptionState describes how a script's content is stored on the server
// relative to what the client holds.
type EncryptionState string

const (
	// EncryptionPlain means the script is stored unencrypted.
	EncryptionPlain EncryptionState = "plain"
	// EncryptionEncrypted means the script is encrypted on the server and
	// the client holds no readable copy.
	EncryptionEncrypted EncryptionState = "encrypted"
	// EncryptionDecrypted means the client holds a decrypted copy of a
	// script that remains encrypted on the server.
	EncryptionDecrypted EncryptionState = "decrypted"
)

// Script is the in-memory representation of one script and its
// synchronization metadata. Instances are created by the caller (from a
// local file, a server listing, or both) and mutated in place as sync
// operations learn more about them; the core never destroys them.
type Script struct {
	// Name identifies the script, unique per server namespace, without
	// a file extension.
	Name string

	// Path is the local filesystem location. Empty for server-only
	// listings.
	Path string

	// SourceCode is the local content, if any.
	SourceCode string

	// ServerCode is the last-observed remote content. Set only when it
	// diverges from the local content.
	ServerCode string

	// EncryptionState reflects the server's encryption flag for this
	// script.
	EncryptionState EncryptionState

	// ConflictMode enables optimistic-concurrency checking. Defaults to
	// true via NewScript.
	ConflictMode bool

	// LastSyncHash is the MD5 hex digest of SourceCode captured at the
	// moment local and remote were last known equal. Only meaningful
	// while ConflictMode is set.
	LastSyncHash string

	// Conflict is set when a divergence was detected and not yet
	// resolved. A set Conflict implies ServerCode holds the divergent
	// remote content, or the script was not found on the server at all.
	Conflict bool

	// ForceUpload bypasses conflict detection for the next upload of
	// this script.
	ForceUpload bool

	// Category is the server-side classification, if any.
	Category string

	// CategoryRoot is the local storage root used to compute a
	// category-qualified path.
	CategoryRoot string

	// Output holds the remote execution output after a run operation.
	Output string
}

// NewScript returns a script with conflict checking enabled, which is the
// default for every record the client creates.
func NewScript(name string) *Script {
	return &Script{Name: name, ConflictMode: true}
}

// LoginData carries the connection parameters for one session. The session
// populates the mutable fields as facts become known; the struct is
// consumed, not owned, by the core.
type LoginData struct {
	Server    string
	Port      int
	Username  string
	Password  string // already transformed for the wire
	Principal string
	Timeout   time.Duration

	// Session facts, written during the handshake.
	UserID        string
	ServerVersion string
	LastWarning   string
}

// DefaultTimeout is applied when LoginData carries no explicit timeout.
const DefaultTimeout = 60 * time.Second

// EffectiveTimeout returns the configured timeout or the default.
func (l *LoginData) EffectiveTimeout() time.Duration {
	if l.Timeout <= 0 {
		return DefaultTimeout
	}
	return l.Timeout
}

// ServerInfo is a read-only snapshot of server-reported facts produced by
// single-shot queries. It is never persisted.
type ServerInfo struct {
	Version         string
	AllowDecryption bool
}
