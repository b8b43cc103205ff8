package main

import (
	"fmt"
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
		Use:          "server <port>",
		Short:        "KFTP file server over reliable UDP",
		Version:      version,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil || port < 0 || port > 65535 {
				return fmt.Errorf("invalid port: %s", args[0])
			}

			config := DefaultConfig()
			if configPath != "" {
				config, err = LoadConfig(configPath)
				if err != nil {
					return err
				}
			}
			config.Server.Port = port

			return run(config)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	return cmd
}

func run(config *Config) error {
	level, err := logging.ParseLevel(config.Logging.Level)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger("server", level, config.Logging.OutputFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	endpoint, err := networking.ListenUDP(config.Server.Port, networking.EndpointConfig{
		ReceiveTimeout: config.ReceiveTimeout(),
	})
	if err != nil {
		return err
	}
	defer endpoint.Close()

	logger.Info("listening", logging.Fields{
		"addr":     endpoint.LocalAddr().String(),
		"root_dir": config.Server.RootDir,
	})

	dispatcher := NewDispatcher(rudp.NewSession(endpoint), config.Server.RootDir, logger)
	if err := dispatcher.Serve(); err != nil {
		return err
	}

	logger.Info("shut down cleanly")
	return nil
}
