package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/contactbook/internal/adapters/vcard"
)

func (a *app) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import contacts from a vCard file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			decoded, cardErrs, err := vcard.DecodeContacts(in)
			if err != nil {
				return err
			}

			svc, closeDB, err := a.openService(a.logger(cmd, "import"))
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := svc.ImportContacts(cmd.Context(), decoded)
			if err != nil {
				return err
			}
			PrintImportSummary(cmd.OutOrStdout(), result, cardErrs)
			return nil
		},
	}
}

func (a *app) newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all contacts as vCard 4.0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := a.openService(a.logger(cmd, "export"))
			if err != nil {
				return err
			}
			defer closeDB()

			all, err := svc.AllContacts(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := vcard.EncodeContacts(w, all); err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d contacts to %s\n", len(all), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
