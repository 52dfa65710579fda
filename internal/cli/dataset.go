package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewDatasetCmd создаёт группу команд для работы с datasets.
func NewDatasetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Process files and inspect datasets",
	}

	cmd.AddCommand(
		newDatasetProcessCmd(clientFn, outputFn),
		newDatasetAnalyzeCmd(clientFn, outputFn),
		newDatasetShowCmd(clientFn, outputFn),
		newDatasetRowsCmd(clientFn, outputFn),
		newDatasetStatsCmd(clientFn, outputFn),
	)

	return cmd
}

func newDatasetProcessCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var mappings []string
	var useWorker bool
	var memoryLimit int

	cmd := &cobra.Command{
		Use:   "process FILE_ID",
		Short: "Process an uploaded file into a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := ProcessRequest{MemoryLimitMB: memoryLimit}

			if cmd.Flags().Changed("worker") {
				req.UseWorkerThread = &useWorker
			}

			if len(mappings) > 0 {
				req.ColumnMappings = make(map[string]string)
				for _, kv := range mappings {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid mapping format %q, expected AXIS=COLUMN", kv)
					}
					req.ColumnMappings[parts[0]] = parts[1]
				}
			}

			ds, err := client.ProcessDataset(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Dataset created: %s", ds.ID))
			out.Print(
				[]string{"ID", "FILE_ID", "ROWS", "CREATED"},
				[][]string{{ds.ID, ds.FileID, strconv.Itoa(ds.TotalRows), ds.CreatedAt}},
				ds,
			)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&mappings, "mapping", nil, "Column mapping as AXIS=COLUMN (repeatable)")
	cmd.Flags().BoolVar(&useWorker, "worker", false, "Force the worker execution path")
	cmd.Flags().IntVar(&memoryLimit, "memory-limit", 0, "Memory limit in MB")

	return cmd
}

func newDatasetAnalyzeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze FILE_ID",
		Short: "Analyze CSV columns without processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			analysis, err := client.AnalyzeFile(args[0])
			if err != nil {
				return err
			}

			out.JSON(analysis)
			return nil
		},
	}
}

func newDatasetShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show DATASET_ID",
		Short: "Show dataset details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			ds, err := client.GetDataset(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "FILE_ID", "ROWS", "CREATED"},
				[][]string{{ds.ID, ds.FileID, strconv.Itoa(ds.TotalRows), ds.CreatedAt}},
				ds,
			)
			return nil
		},
	}
}

func newDatasetRowsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "rows DATASET_ID",
		Short: "Show a page of dataset rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rows, err := client.GetDatasetRows(args[0], limit, offset)
			if err != nil {
				return err
			}

			out.JSON(rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "Row offset")

	return cmd
}

func newDatasetStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats DATASET_ID",
		Short: "Show dataset column statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			stats, err := client.GetDatasetStats(args[0])
			if err != nil {
				return err
			}

			headers := []string{"COLUMN", "TYPE", "COUNT", "MEAN", "MIN", "MAX", "NULLS", "UNIQUE"}
			rows := make([][]string, len(stats))
			for i, s := range stats {
				rows[i] = []string{
					s.ColumnName, s.ColumnType, strconv.Itoa(s.Count),
					floatOrDash(s.Mean), floatOrDash(s.Min), floatOrDash(s.Max),
					strconv.Itoa(s.NullCount), strconv.Itoa(s.UniqueCount),
				}
			}

			out.Print(headers, rows, stats)
			return nil
		},
	}
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}
