package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/dev-portfolio/internal/config"
	"github.com/Zachkp/dev-portfolio/internal/content"
	"github.com/Zachkp/dev-portfolio/internal/page"
	"github.com/Zachkp/dev-portfolio/internal/server"
	"github.com/Zachkp/dev-portfolio/internal/store"
)

const cleanupInterval = 24 * time.Hour

var (
	servePort  string
	watchFiles bool
	noStore    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	Long: `serve starts the HTTP server. Configuration comes from the environment
(and a .env file, if present). With --watch, edits to the file named by
PORTFOLIO_CONTENT are picked up by every page opened afterwards.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "reload portfolio content when its file changes")
	serveCmd.Flags().BoolVar(&noStore, "no-analytics", false, "disable visitor analytics and the admin dashboard")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log, err := newLogger(cfg.GinMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.GinMode)

	p, err := content.Load(cfg.ContentPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	opts := []page.Option{page.WithLimit(cfg.MaxViews)}
	if !noStore && cfg.DBPath != "" {
		st, err = store.Open(ctx, cfg.DBPath, log)
		if err != nil {
			return err
		}
		// runs after g.Wait, draining pending analytics writes
		defer st.Close()
		opts = append(opts, page.WithRevealHook(server.RecordReveals(st, log)))
	}

	live := page.NewLive(p)
	views := page.NewViews(live, log, opts...)
	srv, err := server.New(cfg, views, st, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error { return views.Run(gctx, cfg.SweepInterval, cfg.ViewIdle) })

	if watchFiles {
		if cfg.ContentPath == "" {
			log.Warn("--watch ignored: PORTFOLIO_CONTENT is not set, serving embedded content")
		} else {
			g.Go(func() error { return content.Watch(gctx, cfg.ContentPath, log, live.Set) })
		}
	}

	if st != nil {
		g.Go(func() error {
			srv.Cleanup(gctx)
			t := time.NewTicker(cleanupInterval)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					srv.Cleanup(gctx)
				}
			}
		})
	}

	log.Info("portfolio starting",
		zap.String("addr", cfg.Addr()),
		zap.String("mode", cfg.GinMode),
		zap.Bool("analytics", st != nil),
	)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("portfolio stopped")
	return nil
}
