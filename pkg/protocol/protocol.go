// Package protocol defines the named-call surface of the document server
// and the version gates the client enforces. The wire encoding underneath
// is opaque; this package only fixes names, argument order and result
// tuple shapes.
package protocol

import "strconv"

// Operation names. Each call carries positional string arguments and
// returns a string tuple.
const (
	// OpHello is the transport handshake exchanged right after connect.
	OpHello = "hello"

	// OpChangeUser authenticates: args username, transformed password.
	// Result: [userID] or [userID, advisory warning].
	OpChangeUser = "changeUser"

	// OpChangePrincipal selects the tenant/workspace context: args
	// principal. Empty result on success.
	OpChangePrincipal = "changePrincipal"

	// OpGetServerVersion is the capability probe. Result: [build].
	OpGetServerVersion = "getServerVersion"

	// OpGetProperty reads a server property: args key. Result: [value].
	OpGetProperty = "getProperty"

	// OpGetScriptNames enumerates server scripts. Result: ordered names.
	OpGetScriptNames = "getScriptNames"

	// OpGetScriptInfo describes one script: args name. Result:
	// [errorString, jsonPayload].
	OpGetScriptInfo = "getScriptInfo"

	// OpDownloadScript fetches content: args name. Result:
	// [content, encryptionFlag, category].
	OpDownloadScript = "downloadScript"

	// OpUploadScript stores content: args name, content, encryption
	// flag and, version-gated, category. Empty result on success.
	OpUploadScript = "uploadScript"

	// OpRunScript executes remotely: args name. Result: output lines.
	OpRunScript = "runScript"

	// OpGetUserID is a diagnostic user lookup: args test key.
	OpGetUserID = "getUserID"
)

// PropertyAllowDecryption is the key of the decryption-permission probe.
// The server answers "1" when decryption is permitted.
const PropertyAllowDecryption = "allowDecryption"

// Encryption flags as reported by downloadScript. "false" and "decrypted"
// mean the content may be stored locally; "true" means the content remains
// server-encrypted and the client has no decryption permission.
const (
	FlagPlain     = "false"
	FlagEncrypted = "true"
	FlagDecrypted = "decrypted"
)

// Version gates. Server builds are compared as plain integers, not as
// semantic versions.
const (
	// MinServerBuild is the oldest build the client will talk to.
	MinServerBuild = 8034

	// CategoryBuild is the first build with category-aware scripts;
	// category paths and category uploads are gated on it.
	CategoryBuild = 8041
)

// ParseBuild parses a reported build identifier. The ok result is false
// when the string is empty or not a plain number.
func ParseBuild(version string) (int, bool) {
	if version == "" {
		return 0, false
	}
	n, err := strconv.Atoi(version)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SupportsCategories reports whether the given build identifier supports
// category-aware scripts. Unparseable builds do not.
func SupportsCategories(version string) bool {
	n, ok := ParseBuild(version)
	return ok && n >= CategoryBuild
}
