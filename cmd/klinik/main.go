// Command klinik is the operator CLI for a running klinik-stored daemon.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klinik-dev/klinik-store/pkg/sdk"
)

var serverAddr string

func main() {
	root := &cobra.Command{
		Use:   "klinik",
		Short: "Operator CLI for the klinik record store",
		Long: `klinik talks to a running klinik-stored daemon over its HTTP API:
record CRUD, bulk import, whole-store export/restore and demo seeding.`,
		SilenceUsage: true,
	}

	defaultAddr := os.Getenv("KLINIK_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:5050"
	}
	root.PersistentFlags().StringVar(&serverAddr, "addr", defaultAddr,
		"base URL of the daemon (env KLINIK_ADDR)")

	root.AddCommand(
		newListCmd(),
		newGetCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newImportCmd(),
		newExportCmd(),
		newRestoreCmd(),
		newSeedCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func client() *sdk.Client {
	return sdk.New(serverAddr)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
