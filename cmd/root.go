// file: cmd/root.go
// version: 1.0.0
// guid: 9f408798-a9ba-cbdc-edfe-0f1021324354

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/tokenbridge/internal/config"
	"github.com/jdfalk/tokenbridge/internal/exchange"
	"github.com/jdfalk/tokenbridge/internal/server"
	"github.com/jdfalk/tokenbridge/internal/tokencache"
)

var cfgFile string
var exchangeEndpoint string
var clientID string
var clientSecret string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokenbridge",
	Short: "Exchange and cache downstream trust-domain tokens",
	Long: `Tokenbridge exchanges upstream identity tokens for downstream
trust-domain tokens and caches the result per user, so repeated requests
within a token's validity window skip the exchange round trip.`,
}

// serveCmd runs the HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token exchange service",
	Long:  `Start the HTTP service exposing token issuance, invalidation, admin and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCredentials(); err != nil {
			return err
		}

		cache := tokencache.New(config.AppConfig.TokenTTL)
		exchanger := exchange.NewClient(
			config.AppConfig.ExchangeEndpoint,
			config.AppConfig.ClientID,
			config.AppConfig.ClientSecret,
		)

		srv := server.NewServer(cache, exchanger, config.AppConfig.TokenTTL)

		cfg := server.ServerConfig{
			Host:            config.AppConfig.Host,
			Port:            config.AppConfig.Port,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			CleanupInterval: config.AppConfig.CleanupInterval,
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// checkCmd performs a single exchange to smoke-test configuration.
var checkCmd = &cobra.Command{
	Use:   "check [upstream-token]",
	Short: "Verify exchange configuration with a single token exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCredentials(); err != nil {
			return err
		}

		exchanger := exchange.NewClient(
			config.AppConfig.ExchangeEndpoint,
			config.AppConfig.ClientID,
			config.AppConfig.ClientSecret,
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		token, err := exchanger.Exchange(ctx, args[0])
		if err != nil {
			return fmt.Errorf("exchange check failed: %w", err)
		}

		fmt.Printf("Exchange succeeded, received token of %d bytes\n", len(token))
		return nil
	},
}

// credentialsCmd writes the active credentials to the fallback file.
var credentialsCmd = &cobra.Command{
	Use:   "save-credentials",
	Short: "Write the active exchange credentials to the credentials file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		if err := config.SaveCredentialsToFile(); err != nil {
			return err
		}
		fmt.Printf("Credentials saved to: %s\n", config.CredentialsFilePath())
		return nil
	},
}

func requireCredentials() error {
	if config.AppConfig.ExchangeEndpoint == "" {
		return fmt.Errorf("exchange endpoint not specified")
	}
	if config.AppConfig.ClientID == "" || config.AppConfig.ClientSecret == "" {
		return fmt.Errorf("client credentials not specified")
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tokenbridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&exchangeEndpoint, "exchange-endpoint", "", "downstream token exchange endpoint URL")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "client identifier for the exchange endpoint")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "client secret for the exchange endpoint")

	viper.BindPFlag("exchange_endpoint", rootCmd.PersistentFlags().Lookup("exchange-endpoint"))
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client-id"))
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client-secret"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(credentialsCmd)

	// Add serve command specific flags
	serveCmd.Flags().String("port", "8080", "port to run the service on")
	serveCmd.Flags().String("host", "localhost", "host to bind the service to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().String("ttl", "", "token cache TTL (e.g. 1h)")
	serveCmd.Flags().String("cleanup-interval", "", "expired token sweep interval (e.g. 10m)")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("token_ttl", serveCmd.Flags().Lookup("ttl"))
	viper.BindPFlag("cleanup_interval", serveCmd.Flags().Lookup("cleanup-interval"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tokenbridge")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()

	if err := config.LoadCredentialsFromFile(); err != nil {
		fmt.Printf("Warning: failed to load credentials file: %v\n", err)
	}
}
