package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/k2tech/ailab/internal/api"
	"github.com/k2tech/ailab/internal/debug"
)

var (
	serveAddr    string
	serveTLS     bool
	serveTLSCert string
	serveTLSKey  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the hypothesis portfolio and onboarding session API over HTTP until
interrupted. With --tls and no cert/key files, a self-signed certificate is
generated for localhost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = viper.GetString("addr")
		}
		srv := api.NewServer(hypSvc, onbSvc, addr, Version)
		if serveTLS || serveTLSCert != "" {
			if err := srv.EnableTLS(serveTLSCert, serveTLSKey); err != nil {
				return err
			}
		}

		g, ctx := errgroup.WithContext(getContext())
		g.Go(func() error {
			return srv.Start(ctx)
		})
		debug.PrintNormal("ailab API serving on %s (ctrl-c to stop)\n", addr)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config: 127.0.0.1:8675)")
	serveCmd.Flags().BoolVar(&serveTLS, "tls", false, "terminate TLS (self-signed unless --tls-cert/--tls-key given)")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "path to TLS certificate (PEM)")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "path to TLS private key (PEM)")
	rootCmd.AddCommand(serveCmd)
}
