package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kftp/kftp/pkg/logging"
	"github.com/kftp/kftp/shared/networking"
	"github.com/kftp/kftp/shared/rudp"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "client <address> <port>",
		Short:        "Interactive KFTP file-transfer client",
		Version:      version,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil || port <= 0 || port > 65535 {
				return fmt.Errorf("invalid port: %s", args[1])
			}

			config := DefaultConfig()
			if configPath != "" {
				config, err = LoadConfig(configPath)
				if err != nil {
					return err
				}
			}

			return run(args[0], port, config)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	return cmd
}

func run(address string, port int, config *Config) error {
	level, err := logging.ParseLevel(config.Logging.Level)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger("client", level, config.Logging.OutputFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	server, err := net.ResolveUDPAddr("udp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to resolve server address: %w", err)
	}

	endpoint, err := networking.ListenUDP(0, networking.EndpointConfig{
		ReceiveTimeout: config.ReceiveTimeout(),
	})
	if err != nil {
		return err
	}
	defer endpoint.Close()

	client := NewClient(rudp.NewSession(endpoint), server, os.Stdin, os.Stdout, logger)
	return client.Run()
}
