package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tayloree/order-catalog/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog as a read-only JSON API",
	Long: "Loads every source once, then serves groups, details, charts and categories\n" +
		"over HTTP. POST /api/reload rebuilds the snapshot from the same sources.",
	Example: `  ordercat serve --source orders.json
  ORDERCAT_SOURCE=https://example.com/orders.json ordercat serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from ORDERCAT_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := sess.requireSources(); err != nil {
		return err
	}
	addr := sess.cfg.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(server.Options{
		Loader:     sess.loader(),
		Parser:     sess.parser,
		Classifier: sess.classifier,
		Logger:     sess.log,
		Registry:   reg,
	})
	if _, err := srv.Reload(cmd.Context()); err != nil {
		return loadError(sess.cfg.Sources, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "serving %d products on %s\n", srv.Snapshot().Len(), addr)
	if err := srv.Run(ctx, addr); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
