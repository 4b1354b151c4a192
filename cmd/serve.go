package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scadamap/web"
)

var (
	servePort      int
	serveHost      string
	serveOverrides overrides
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mapping HTTP API",
	Long: `Start an HTTP server exposing the mapping engine to the template upload page.

Endpoints:
- POST /api/analyze  multipart "template" (+ optional "threshold"): diagnostic report
- POST /api/map      same as analyze, then saves per store.policy (or form "policy")
- GET  /api/mappings the stored mapping document
- GET  /api/columns  the candidate columns and their source`,
	Example: `
  # Start on localhost:8080
  scadamap serve

  # Listen on all interfaces, columns from PostgreSQL
  scadamap serve --host 0.0.0.0 --port 9090 --db-driver pgx --dsn "postgres://scada@db/plant" --table batch_log
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		serveOverrides.apply(cfg)

		logger := logrus.StandardLogger()
		source, closeSource, err := candidateSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSource()

		generator, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}

		st, closeStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		server := &http.Server{
			Addr: serveAddr(serveHost, servePort),
			Handler: withRequestLogging(web.NewServer(st, source, generator, web.Options{
				Threshold: cfg.Mapping.Threshold,
				Policy:    cfg.Store.Policy,
				Logger:    logger,
			}), logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://%s\n", server.Addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Interface to listen on")
	serveCmd.Flags().StringVar(&serveOverrides.driver, "db-driver", "", "Database driver for live columns: sqlite|pgx")
	serveCmd.Flags().StringVar(&serveOverrides.dsn, "dsn", "", "Database DSN for live columns")
	serveCmd.Flags().StringVar(&serveOverrides.table, "table", "", "Table whose columns are candidates (default: all tables)")
	serveCmd.Flags().StringVar(&serveOverrides.backend, "backend", "", "Mapping store backend: file|sqlite")
	serveCmd.Flags().StringVar(&serveOverrides.path, "path", "", "Mapping store path (default: store.path from config)")
	serveCmd.Flags().StringVar(&serveOverrides.policy, "policy", "", "Default store policy: overwrite|merge")
}

func serveAddr(host string, port int) string {
	host = strings.TrimSpace(host)
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLogging(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(started).String(),
		}).Debug("request")
	})
}
