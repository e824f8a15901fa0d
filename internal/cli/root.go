// Package cli wires configuration, the validation pipeline and the MCP
// server into the apimatic-validator-mcp command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"apimatic-validator-mcp/internal/application"
	"apimatic-validator-mcp/internal/domain"
)

// NewRootCmd creates the root command. Without a subcommand it serves MCP
// over stdio, which is how MCP clients launch it.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "apimatic-validator-mcp",
		Short: "MCP server validating OpenAPI specifications with APIMatic",
		Long: "apimatic-validator-mcp exposes the validate-openapi-using-apimatic tool " +
			"to MCP clients over stdio, and can validate a single file from the command line.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}

	root.PersistentFlags().String("config", "", fmt.Sprintf("Path to configuration file (default %s, optional)", domain.DefaultConfigPath))

	root.Version = application.ServerVersion
	root.SetVersionTemplate(fmt.Sprintf("%s version %s\n", root.Use, application.ServerVersion))

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewValidateCmd())
	root.AddCommand(NewVersionCmd())

	return root
}

// NewVersionCmd creates the "version" subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server name and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (MCP %s)\n",
				application.ServerName, application.ServerVersion, application.ProtocolVersion)
			return nil
		},
	}
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := domain.LoadConfig(path)
	if err != nil {
		return nil, exitError(exitUsage, "loading configuration: %v", err)
	}
	return cfg, nil
}
