package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewOpCmd создаёт группу команд для управления операциями.
func NewOpCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "op",
		Short: "Manage active operations",
	}

	cmd.AddCommand(
		newOpListCmd(clientFn, outputFn),
		newOpCancelCmd(clientFn, outputFn),
		newOpCapabilitiesCmd(clientFn, outputFn),
	)

	return cmd
}

func newOpListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			ops, err := client.ListOperations()
			if err != nil {
				return err
			}

			rows := make([][]string, len(ops))
			for i, id := range ops {
				rows[i] = []string{id}
			}

			out.Print([]string{"OPERATION_ID"}, rows, ops)
			return nil
		},
	}
}

func newOpCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel OPERATION_ID",
		Short: "Cancel an active operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.CancelOperation(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Operation cancelled: %s", result.OperationID))
			return nil
		},
	}
}

func newOpCapabilitiesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var requestType string
	var responseType string
	var streaming bool

	cmd := &cobra.Command{
		Use:   "capabilities METHOD",
		Short: "Show the execution profile of a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			caps, err := client.DetectCapabilities(DetectRequest{
				MethodName:   args[0],
				RequestType:  requestType,
				ResponseType: responseType,
				IsStreaming:  streaming,
			})
			if err != nil {
				return err
			}

			out.Print(
				[]string{"WORKER", "STREAMING", "PROGRESS", "CANCEL", "CHUNK_SIZE", "MEMORY"},
				[][]string{{
					strconv.FormatBool(caps.SupportsWorkerThread),
					strconv.FormatBool(caps.SupportsStreaming),
					strconv.FormatBool(caps.SupportsProgress),
					strconv.FormatBool(caps.SupportsCancellation),
					strconv.Itoa(caps.RecommendedChunkSize),
					caps.MemoryCategory,
				}},
				caps,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&requestType, "request-type", "", "Request type name")
	cmd.Flags().StringVar(&responseType, "response-type", "", "Response type name")
	cmd.Flags().BoolVar(&streaming, "streaming", false, "Method is server-streaming")

	return cmd
}
