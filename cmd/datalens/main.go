// Datalens CLI — инструмент командной строки для управления
// проектами, datasets и операциями через HTTP API.
//
// Использование:
//
//	datalens [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	project  Управление проектами и файлами
//	dataset  Обработка файлов и просмотр datasets
//	op       Управление активными операциями
//	data     Получение columnar данных
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Datalens/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "datalens",
		Short:         "Datalens CLI — data exploration backend tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewProjectCmd(clientFn, outputFn),
		cli.NewDatasetCmd(clientFn, outputFn),
		cli.NewOpCmd(clientFn, outputFn),
		cli.NewDataCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
