package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"apimatic-validator-mcp/internal/application"
	"apimatic-validator-mcp/internal/archive"
	"apimatic-validator-mcp/internal/domain"
)

var (
	successStatus = color.New(color.FgGreen).SprintFunc()
	warningStatus = color.New(color.FgYellow).SprintFunc()
	failedStatus  = color.New(color.FgRed).SprintFunc()
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate one OpenAPI file with APIMatic and print the summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().Bool("yaml", false, "Treat the file as YAML regardless of its extension")
	cmd.Flags().Bool("json", false, "Treat the file as JSON regardless of its extension")
	cmd.Flags().String("dump", "", "Write the upload archive to this path instead of sending it")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("yaml", "json")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	dumpPath, _ := cmd.Flags().GetString("dump")
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "file not found: %s", filePath)
		}
		return fmt.Errorf("reading file: %w", err)
	}

	input := domain.SpecificationInput{
		Content: string(data),
		IsYAML:  detectYAML(cmd, filePath, data),
	}

	if dumpPath != "" {
		payload, err := archive.Build(input.Content, input.IsYAML)
		if err != nil {
			return fmt.Errorf("building archive: %w", err)
		}
		if err := os.WriteFile(dumpPath, payload, 0644); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
		fmt.Fprintf(errOut, "%s wrote %s (%d bytes, entry %s)\n",
			successStatus("ok"), dumpPath, len(payload), archive.EntryName(input.IsYAML))
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return exitError(exitFailure, "%s", err)
	}

	logger := application.NewStructuredLoggerWithWriter(errOut, cfg.Logging.Level)
	handler, err := newValidationHandler(cfg, logger)
	if err != nil {
		return err
	}

	resp, err := handler.Validate(cmd.Context(), input)
	if err != nil {
		rpcErr := domain.NewResponseMapper().MapError(err)
		fmt.Fprintf(errOut, "%s %s\n", failedStatus("error"), rpcErr.Message)
		return exitError(exitFailure, "validation request failed: %v", err)
	}

	text := resp.Content[0].Text
	fmt.Fprintln(out, text)

	if text == domain.FailedToRetrieveMessage {
		fmt.Fprintf(errOut, "%s no validation summary returned\n", warningStatus("warning"))
		return exitError(exitNoSummary, "no validation summary")
	}

	fmt.Fprintf(errOut, "%s validation summary received for %s\n", successStatus("ok"), filepath.Base(filePath))
	return nil
}

// detectYAML decides the specification format. Explicit flags win, then the
// file extension, then whether the content is a JSON object.
func detectYAML(cmd *cobra.Command, filePath string, data []byte) bool {
	if isYAML, _ := cmd.Flags().GetBool("yaml"); isYAML {
		return true
	}
	if isJSON, _ := cmd.Flags().GetBool("json"); isJSON {
		return false
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}

	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed)
}
