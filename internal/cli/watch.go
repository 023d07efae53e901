package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/config"
	"github.com/ppiankov/vaultgate/internal/registry"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the registry and config for out-of-band changes",
	Long: "Runs the file-backend registry watcher and the config reloader until\n" +
		"interrupted. A long-lived gateway process embeds the same watchers so a\n" +
		"revoke, a strategist rotation, or a pause issued by the admin CLI takes\n" +
		"effect without a restart.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Registry.Backend != config.BackendFile {
		return fmt.Errorf("watch requires the file registry backend, config uses %q", cfg.Registry.Backend)
	}

	store, err := registry.NewFileStore(cfg.Registry.Dir)
	if err != nil {
		return err
	}
	w, err := registry.NewWatcher(store)
	if err != nil {
		return err
	}
	r, err := config.NewReloader(cfg, configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := r.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "config reloader stopped: %v\n", err)
		}
	}()

	fmt.Printf("watching %s\n", cfg.Registry.Dir)
	return w.Run(ctx)
}
