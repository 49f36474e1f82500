// File: cmd/run.go
package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/ein"
	"github.com/xkilldash9x/einfill/internal/observability"
)

var runCmd = &cobra.Command{
	Use:   "run <payload.json>",
	Short: "Execute a single filing from a payload file, without the HTTP server.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, payloadPath string) error {
	logger := observability.GetLogger()
	ctx := cmd.Context()

	data, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload file: %w", err)
	}

	var req ein.FilingRequest
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	rec := req.ToRecord()
	res := runner.Run(ctx, rec)
	if !res.OK {
		return fmt.Errorf("run failed for record %s: %s", rec.RecordID, res.Message)
	}

	logger.Info("Run succeeded.",
		zap.String("record_id", rec.RecordID),
		zap.String("artifact_path", res.ArtifactPath),
		zap.String("artifact_url", res.ArtifactURL),
		zap.String("blob_url", res.BlobURL))
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
