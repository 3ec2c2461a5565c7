// scriptsync - conflict-aware synchronization client for server-side
// scripts.
//
// Sub-commands:
//
//	scriptsync login                 Save the account password in the keychain
//	scriptsync logout                Remove the saved password
//	scriptsync list                  List scripts on the server
//	scriptsync info <name>...        Show per-script server metadata
//	scriptsync download [name]...    Download scripts (all server scripts by default)
//	scriptsync upload [name]...      Upload scripts (all local scripts by default)
//	scriptsync run <name>...         Execute scripts on the server
//	scriptsync watch                 Upload scripts whenever they change locally
//	scriptsync check                 Verify connectivity, permissions and server build
//	scriptsync version               Print the client version
package main

import (
	"fmt"
	"os"

	"github.com/scriptsync/scriptsync/internal/config"
	"github.com/scriptsync/scriptsync/internal/credentials"
	"github.com/scriptsync/scriptsync/internal/localfs"
	"github.com/scriptsync/scriptsync/internal/state"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
)

const clientVersion = "1.2.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "login":
		cmdLogin(os.Args[2:])
	case "logout":
		cmdLogout(os.Args[2:])
	case "list":
		cmdList(os.Args[2:])
	case "info":
		cmdInfo(os.Args[2:])
	case "download":
		cmdDownload(os.Args[2:])
	case "upload":
		cmdUpload(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "watch":
		cmdWatch(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "version":
		fmt.Printf("scriptsync %s\n", clientVersion)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: scriptsync <command> [flags] [args]

Commands:
  login       Save the account password in the system keychain
  logout      Remove the saved password
  list        List scripts on the server
  info        Show per-script server metadata
  download    Download scripts to the local tree
  upload      Upload local scripts to the server
  run         Execute scripts on the server
  watch       Upload scripts whenever they change locally
  check       Verify connectivity, permissions and server build
  version     Print the client version

Common flags (every command):
  -config <path>   Manifest file (default scriptsync.toml)
`)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadEnv loads the manifest, initializes logging and resolves the wire
// password for the configured account.
func loadEnv(manifest string) (*config.Config, *models.LoginData) {
	cfg, err := config.Load(manifest)
	if err != nil {
		fail("%v", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fail("init logging: %v", err)
	}

	login := cfg.LoginData()
	password, err := credentials.Resolve(cfg.Server, cfg.Username)
	if err != nil {
		fail("%v", err)
	}
	login.Password = password
	return cfg, login
}

// serverRecord builds the sync record for a script fetched by name,
// carrying the stored last-sync hash.
func serverRecord(cfg *config.Config, st *state.Store, name string) *models.Script {
	s := cfg.Script(name)
	s.Path = localfs.ScriptPath(cfg.ScriptRoot, s.Category, name)
	s.LastSyncHash = st.Get(name)
	return s
}

// localRecord builds the sync record for a local script file, reading its
// source.
func localRecord(cfg *config.Config, st *state.Store, path string) (*models.Script, error) {
	name := localfs.ScriptName(path)
	s := cfg.Script(name)
	s.Path = path
	src, err := localfs.ReadScript(path)
	if err != nil {
		return nil, err
	}
	s.SourceCode = src
	s.LastSyncHash = st.Get(name)
	return s, nil
}

// persistHashes writes the last-sync hashes of processed records back to
// the state store.
func persistHashes(st *state.Store, scripts []*models.Script) {
	for _, s := range scripts {
		if s.Conflict {
			continue
		}
		st.Set(s.Name, s.LastSyncHash)
	}
	if err := st.Save(); err != nil {
		logging.Error("saving sync state", logging.Err(err))
	}
}
