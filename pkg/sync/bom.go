package sync

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// bom is the UTF-8 byte-order mark as it appears in decoded content.
const bom = "\ufeff"

// StripBOM removes a leading byte-order mark. Stripping is idempotent; a
// leading BOM must never cause a spurious conflict, so every hash and
// comparison runs on stripped content.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// Digest returns the MD5 hex digest of the BOM-stripped content. This is
// the hash stored in Script.LastSyncHash and compared during conflict
// checks.
func Digest(content string) string {
	sum := md5.Sum([]byte(StripBOM(content)))
	return hex.EncodeToString(sum[:])
}
