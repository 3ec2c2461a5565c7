package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/scriptsync/scriptsync/internal/config"
	"github.com/scriptsync/scriptsync/internal/credentials"
	"github.com/scriptsync/scriptsync/internal/localfs"
	"github.com/scriptsync/scriptsync/internal/state"
	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/session"
	"github.com/scriptsync/scriptsync/pkg/sync"
)

func cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	cfg, err := config.Load(*manifest)
	if err != nil {
		fail("%v", err)
	}

	plain, err := credentials.Prompt(cfg.Username)
	if err != nil {
		fail("%v", err)
	}
	if err := credentials.Store(cfg.Server, cfg.Username, plain); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Saved credentials for %s@%s\n", cfg.Username, cfg.Server)
}

func cmdLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	cfg, err := config.Load(*manifest)
	if err != nil {
		fail("%v", err)
	}
	if err := credentials.Delete(cfg.Server, cfg.Username); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Removed credentials for %s@%s\n", cfg.Username, cfg.Server)
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	_, login := loadEnv(*manifest)

	var names []string
	op := func(ctx context.Context, ch channel.Channel, _ *models.LoginData) ([]*models.Script, error) {
		var err error
		names, err = sync.ScriptNames(ctx, ch)
		return nil, err
	}
	if _, err := session.Run(context.Background(), login, op); err != nil {
		fail("%v", err)
	}

	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fail("info requires at least one script name")
	}
	_, login := loadEnv(*manifest)

	var infos []*sync.ScriptInfo
	op := func(ctx context.Context, ch channel.Channel, _ *models.LoginData) ([]*models.Script, error) {
		for _, name := range fs.Args() {
			info, err := sync.Describe(ctx, ch, name)
			if err != nil {
				return nil, err
			}
			infos = append(infos, info)
		}
		return nil, nil
	}
	if _, err := session.Run(context.Background(), login, op); err != nil {
		fail("%v", err)
	}

	for _, info := range infos {
		fmt.Printf("%s\n", info.Name)
		if info.Category != "" {
			fmt.Printf("  category:  %s\n", info.Category)
		}
		fmt.Printf("  encrypted: %v\n", info.Encrypted)
		if info.Modified != "" {
			fmt.Printf("  modified:  %s\n", info.Modified)
		}
		if info.Author != "" {
			fmt.Printf("  author:    %s\n", info.Author)
		}
	}
}

func cmdDownload(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	cfg, login := loadEnv(*manifest)
	st, err := state.Load(cfg.ScriptRoot)
	if err != nil {
		fail("%v", err)
	}

	// Explicit names download directly; with no names, the server
	// listing decides what to fetch.
	op := func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error) {
		names := fs.Args()
		if len(names) == 0 {
			var err error
			names, err = sync.ScriptNames(ctx, ch)
			if err != nil {
				return nil, err
			}
		}
		scripts := make([]*models.Script, 0, len(names))
		for _, name := range names {
			scripts = append(scripts, serverRecord(cfg, st, name))
		}
		return sync.RunBatch(ctx, ch, login, scripts, sync.Download, sync.SkipPermissionDenied)
	}

	done, err := session.Run(context.Background(), login, op)
	persistHashes(st, done)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Downloaded %d script(s)\n", len(done))
}

func cmdUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	force := fs.Bool("force", false, "bypass conflict detection")
	fs.Parse(args)

	cfg, login := loadEnv(*manifest)
	st, err := state.Load(cfg.ScriptRoot)
	if err != nil {
		fail("%v", err)
	}

	var paths []string
	if fs.NArg() > 0 {
		for _, name := range fs.Args() {
			s := cfg.Script(name)
			paths = append(paths, localfs.ScriptPath(cfg.ScriptRoot, s.Category, name))
		}
	} else {
		paths, err = localfs.ListScripts(cfg.ScriptRoot)
		if err != nil {
			fail("%v", err)
		}
	}
	if len(paths) == 0 {
		fail("no scripts to upload under %s", cfg.ScriptRoot)
	}

	scripts := make([]*models.Script, 0, len(paths))
	for _, path := range paths {
		s, err := localRecord(cfg, st, path)
		if err != nil {
			fail("%v", err)
		}
		s.ForceUpload = *force
		scripts = append(scripts, s)
	}

	done, err := session.Run(context.Background(), login, sync.UploadAll(scripts))
	persistHashes(st, done)
	if err != nil {
		fail("%v", err)
	}

	uploaded := 0
	for _, s := range done {
		if s.Conflict {
			fmt.Printf("CONFLICT  %s (server copy changed; re-download or upload -force)\n", s.Name)
			continue
		}
		uploaded++
	}
	fmt.Printf("Uploaded %d script(s)\n", uploaded)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fail("run requires at least one script name")
	}
	cfg, login := loadEnv(*manifest)

	scripts := make([]*models.Script, 0, fs.NArg())
	for _, name := range fs.Args() {
		scripts = append(scripts, cfg.Script(name))
	}

	done, err := session.Run(context.Background(), login, sync.RunAll(scripts))
	if err != nil {
		fail("%v", err)
	}

	for _, s := range done {
		fmt.Printf("--- %s ---\n%s\n", s.Name, s.Output)
	}
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	manifest := fs.String("config", "", "manifest file")
	fs.Parse(args)

	_, login := loadEnv(*manifest)

	var info *models.ServerInfo
	op := func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error) {
		if err := sync.LookupUser(ctx, ch, login.Username); err != nil {
			return nil, err
		}
		var err error
		info, err = sync.CheckDecryptionPermission(ctx, ch, login)
		return nil, err
	}
	if _, err := session.Run(context.Background(), login, op); err != nil {
		fail("%v", err)
	}

	fmt.Printf("Server:           %s:%d\n", login.Server, login.Port)
	fmt.Printf("Build:            %s\n", info.Version)
	fmt.Printf("User ID:          %s\n", login.UserID)
	fmt.Printf("Decryption:       %v\n", info.AllowDecryption)
	if login.LastWarning != "" {
		fmt.Printf("Server advisory:  %s\n", login.LastWarning)
	}
	fmt.Fprintln(os.Stderr, "OK")
}
