package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ula/pkg/bubblewrap"
	"ula/pkg/cli"
	"ula/pkg/common"
	"ula/pkg/config"
	"ula/pkg/disk"
	"ula/pkg/display"
	"ula/pkg/downloader"
	"ula/pkg/filesystem"
	"ula/pkg/locator"
	"ula/pkg/platform"
	"ula/pkg/provision"
	"ula/pkg/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := UlaEngine(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if res.Sandbox != nil {
		if err := bubblewrap.Exec(bubblewrap.CmdFromSandbox(res.Sandbox)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to exec session: %v\n", err)
			os.Exit(1)
		}
		// Exec never returns on success
	}
	os.Exit(res.ExitCode)
}

func logLevel(verbose bool, name string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func UlaEngine(ctx context.Context, args []string) (*common.ExecutionResult, error) {
	// 1. Parse cli.def
	cliEngine, err := cli.NewEngine(cli.DefaultDSL)
	if err != nil {
		return nil, fmt.Errorf("INTERNAL ERROR:  parsing CLI definition: %w", err)
	}

	// 2. Parse command line arguments
	pr := cliEngine.Parse(args)
	verbose, _ := pr.Invocation.Global["verbose"].(bool)

	// 3. Initialize config, logging and console
	sysCfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	sysCfg.Freeze()
	settings := sysCfg.GetSettings()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(verbose, settings.LogLevel),
	})))

	disp := display.NewConsole()
	defer disp.Close()
	disp.SetVerbose(verbose)

	// 4. Report parse errors or show help
	if pr.Error != nil {
		return nil, pr.Error
	}
	if pr.Help {
		cliEngine.PrintHelp(pr.HelpArgs...)
		return &common.ExecutionResult{ExitCode: 0}, nil
	}

	// 5. Wire managers and execute
	db, err := store.Open(ctx, sysCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	dl := downloader.NewDownloader(settings.HTTPRetries)
	editor := filesystem.NewEditor(db, dl, disp)
	defer editor.Close()

	managers := &cli.Managers{
		Cfg:         sysCfg,
		Disp:        disp,
		Store:       db,
		Editor:      editor,
		Downloader:  dl,
		Locator:     locator.New(sysCfg.GetAppsDir(), settings.DefaultIconURI, settings.DescriptionNotFound),
		Provisioner: provision.New(dl),
		DiskMgr:     disk.NewManager(sysCfg),
		Build:       platform.NewBuildWrapper(),
	}
	cli.RegisterHandlers(cliEngine, &cli.DefaultHandlers{Mgr: managers})

	res, err := cliEngine.Execute(ctx, pr.Invocation)
	if err != nil {
		return nil, err
	}
	if res.Output != nil {
		disp.RenderOutput(res.Output)
	}
	return res, nil
}
