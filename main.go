/*
 * IRC daemon.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const programVersion = "rosevircd 1.0.0"

var (
	verbose           bool
	showVersion       bool
	daemonize         bool
	runAsService      bool
	installService    bool
	uninstallService  bool
)

var rootCmd = &cobra.Command{
	Use:   "rosev_ircsystem <config-dir>",
	Short: "A single-node IRC server for a moderated community",
	Args:  cobra.MaximumNArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "accepted; log output is the same with or without it")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.PersistentFlags().BoolVar(&daemonize, "daemon", false, "detach and run in the background")
	rootCmd.PersistentFlags().BoolVar(&runAsService, "service", false, "accepted; the server runs in the foreground as without it")
	rootCmd.PersistentFlags().BoolVar(&installService, "install-service", false, "install as a platform service, then exit")
	rootCmd.PersistentFlags().BoolVar(&uninstallService, "uninstall-service", false, "uninstall the platform service, then exit")
}

func main() {
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Println(programVersion)
		return nil
	}

	// Service install/uninstall are accepted as flags but have no
	// implementation outside a platform-specific service manager, which is
	// out of scope here.
	if installService || uninstallService {
		return fmt.Errorf("service install/uninstall is not supported on this platform")
	}

	if len(args) != 1 {
		return fmt.Errorf("a configuration directory is required")
	}
	configDir := args[0]

	if !verbose {
		log.SetOutput(os.Stderr)
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("configuration problem: %w", err)
	}

	if daemonize {
		if err := detach(); err != nil {
			return fmt.Errorf("unable to daemonize: %w", err)
		}
	}

	if err := writePidfile(cfg.Pidfile); err != nil {
		return err
	}
	defer func() {
		if err := removePidfile(cfg.Pidfile); err != nil {
			log.Printf("unable to remove pidfile: %s", err)
		}
	}()

	s := newServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			log.Printf("SIGHUP received (no-op)")
		}
	}()

	go func() {
		<-ctx.Done()
		log.Printf("shutting down...")
		s.Shutdown()
	}()

	if err := s.Start(); err != nil {
		return err
	}

	log.Printf("server shutdown cleanly.")
	return nil
}

// detach re-execs the process with stdio redirected away from the
// controlling terminal. This is a minimal foreground-to-background
// transition, not a full double-fork daemonization.
func detach() error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args {
		if a == "--daemon" {
			continue
		}
		args = append(args, a)
	}

	proc, err := os.StartProcess(os.Args[0], args, &os.ProcAttr{
		Files: []*os.File{devNull, devNull, devNull},
	})
	if err != nil {
		return err
	}

	fmt.Printf("started background process, pid %d\n", proc.Pid)
	os.Exit(0)
	return nil
}
