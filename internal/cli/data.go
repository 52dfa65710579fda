package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDataCmd создаёт группу команд для получения columnar данных.
func NewDataCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch generated columnar data",
	}

	cmd.AddCommand(
		newDataBatchCmd(clientFn, outputFn),
		newDataStreamCmd(clientFn, outputFn),
	)

	return cmd
}

func batchFlags(cmd *cobra.Command, maxPoints, resolution, memoryLimit *int, useWorker *bool) {
	cmd.Flags().IntVar(maxPoints, "max-points", 0, "Maximum number of points")
	cmd.Flags().IntVar(resolution, "resolution", 0, "Grid resolution (points per side)")
	cmd.Flags().IntVar(memoryLimit, "memory-limit", 0, "Memory limit in MB")
	cmd.Flags().BoolVar(useWorker, "worker", false, "Force the worker execution path")
}

func buildBatchRequest(cmd *cobra.Command, maxPoints, resolution, memoryLimit int, useWorker bool) BatchRequest {
	req := BatchRequest{
		MaxPoints:     maxPoints,
		Resolution:    resolution,
		MemoryLimitMB: memoryLimit,
	}
	if cmd.Flags().Changed("worker") {
		req.UseWorkerThread = &useWorker
	}
	return req
}

func newDataBatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var maxPoints, resolution, memoryLimit int
	var useWorker bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Fetch columnar data in a single response",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			raw, err := client.GetBatchData(buildBatchRequest(cmd, maxPoints, resolution, memoryLimit, useWorker))
			if err != nil {
				return err
			}

			out.JSON(raw)
			return nil
		},
	}

	batchFlags(cmd, &maxPoints, &resolution, &memoryLimit, &useWorker)

	return cmd
}

func newDataStreamCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var maxPoints, resolution, memoryLimit int
	var useWorker bool
	var raw bool

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Fetch columnar data as a stream of chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			chunks := 0
			err := client.StreamBatchData(
				buildBatchRequest(cmd, maxPoints, resolution, memoryLimit, useWorker),
				func(line json.RawMessage) {
					if raw {
						out.JSON(line)
						return
					}

					var meta struct {
						ChunkNumber   int   `json:"chunk_number"`
						TotalChunks   int   `json:"total_chunks"`
						PointsInChunk int   `json:"points_in_chunk"`
						IsFinalChunk  bool  `json:"is_final_chunk"`
						Done          *bool `json:"done"`
					}
					if json.Unmarshal(line, &meta) != nil {
						return
					}

					if meta.Done != nil {
						out.Success(fmt.Sprintf("Stream finished: %d chunks", chunks))
						return
					}
					chunks++
					out.Success(fmt.Sprintf("chunk %d/%d: %d points",
						meta.ChunkNumber, meta.TotalChunks, meta.PointsInChunk))
				},
			)
			return err
		},
	}

	batchFlags(cmd, &maxPoints, &resolution, &memoryLimit, &useWorker)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print full chunk JSON instead of summaries")

	return cmd
}
