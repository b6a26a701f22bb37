package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/api"
	"github.com/Veraticus/fintrack/internal/certs"
	"github.com/Veraticus/fintrack/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve transactions, the dashboard and the theme over HTTP until
interrupted.

With --tls a self-signed certificate for localhost is generated on first
use and kept in server.cert_dir (default: ` + config.DefaultServerCertDir + `).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !viper.GetBool(config.KeyServerDebug) {
				gin.SetMode(gin.ReleaseMode)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			server := api.NewServer(a.repo, a.resolver)
			addr := viper.GetString(config.KeyServerAddr)
			if viper.GetBool(config.KeyServerTLS) {
				certDir := config.ExpandPath(viper.GetString(config.KeyServerCertDir))
				return server.RunTLS(cmd.Context(), addr, certs.NewFileManager(certDir))
			}
			return server.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().String("addr", config.DefaultServerAddr, "address to listen on")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().Bool("debug", false, "run gin in debug mode")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag(config.KeyServerDebug, cmd.Flags().Lookup("debug"))

	return cmd
}
