package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Cloud save commands",
	}

	cmd.AddCommand(newSaveUploadCmd())
	cmd.AddCommand(newSaveDownloadCmd())

	return cmd
}

func newSaveUploadCmd() *cobra.Command {
	var file string
	var version int32

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a JSON save, replacing the stored one",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s does not contain valid JSON", file)
			}

			req := map[string]any{
				"save_data": json.RawMessage(data),
				"version":   version,
			}
			var result StatusResult

			if err := client.Put("/api/saves", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "-", "Save file to upload, - for stdin")
	cmd.Flags().Int32Var(&version, "version", 1, "Client save format version")

	return cmd
}

func newSaveDownloadCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the stored save",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CloudSave

			if err := client.Get("/api/saves/me", &result); err != nil {
				return err
			}

			if file != "" {
				if err := os.WriteFile(file, result.SaveData, 0600); err != nil {
					return fmt.Errorf("failed to write save: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Also write the save data to this file")

	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read save: %w", err)
	}
	return data, nil
}
