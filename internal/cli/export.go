package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/mission-control/internal/app"
)

var (
	exportKind string
	exportOut  string
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a collection to a dated JSON file",
		Run:   runExport,
	}
	cmd.Flags().StringVarP(&exportKind, "kind", "k", "activity", "Collection: "+strings.Join(app.ExportKinds, ", "))
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (default: dated file in the current directory, - for stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	a, _ := openApp(cmd, os.Stderr)
	defer a.Close()

	name, raw, err := a.Export(exportKind, time.Now())
	if err != nil {
		exitErr("export", err)
	}

	if exportOut == "-" {
		fmt.Println(string(raw))
		return
	}
	path := name
	if exportOut != "" {
		path = exportOut
		if info, err := os.Stat(exportOut); err == nil && info.IsDir() {
			path = filepath.Join(exportOut, name)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		exitErr("write export", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
}
