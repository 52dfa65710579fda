package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewProjectCmd создаёт группу команд для управления проектами.
func NewProjectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectListCmd(clientFn, outputFn),
		newProjectCreateCmd(clientFn, outputFn),
		newProjectShowCmd(clientFn, outputFn),
		newProjectUpdateCmd(clientFn, outputFn),
		newProjectDeleteCmd(clientFn, outputFn),
		newProjectFilesCmd(clientFn, outputFn),
		newProjectUploadCmd(clientFn, outputFn),
	)

	return cmd
}

func newProjectListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			projects, err := client.ListProjects(limit, offset)
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "DESCRIPTION", "CREATED"}
			rows := make([][]string, len(projects))
			for i, p := range projects {
				rows[i] = []string{p.ID, p.Name, p.Description, p.CreatedAt}
			}

			out.Print(headers, rows, projects)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset")

	return cmd
}

func newProjectCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			project, err := client.CreateProject(args[0], description)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Project created: %s", project.ID))
			out.Print(
				[]string{"ID", "NAME", "DESCRIPTION", "CREATED"},
				[][]string{{project.ID, project.Name, project.Description, project.CreatedAt}},
				project,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Project description")

	return cmd
}

func newProjectShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT_ID",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			project, err := client.GetProject(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "DESCRIPTION", "CREATED", "UPDATED"},
				[][]string{{project.ID, project.Name, project.Description, project.CreatedAt, project.UpdatedAt}},
				project,
			)
			return nil
		},
	}
}

func newProjectUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var description string

	cmd := &cobra.Command{
		Use:   "update PROJECT_ID",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var req UpdateProjectRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}

			project, err := client.UpdateProject(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Project updated: %s", project.ID))
			out.JSON(project)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&description, "description", "", "New project description")

	return cmd
}

func newProjectDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project with all its files and datasets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteProject(args[0]); err != nil {
				return err
			}

			out.Success("Project deleted")
			return nil
		},
	}
}

func newProjectFilesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "files PROJECT_ID",
		Short: "List files in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			files, err := client.ListFiles(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "SIZE", "CREATED"}
			rows := make([][]string, len(files))
			for i, f := range files {
				rows[i] = []string{f.ID, f.Name, strconv.FormatInt(f.FileSize, 10), f.CreatedAt}
			}

			out.Print(headers, rows, files)
			return nil
		},
	}
}

func newProjectUploadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var datasetType string

	cmd := &cobra.Command{
		Use:   "upload PROJECT_ID FILE",
		Short: "Upload a file into a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			file, err := client.UploadFile(args[0], args[1], datasetType)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("File uploaded: %s", file.ID))
			out.Print(
				[]string{"ID", "NAME", "SIZE", "CREATED"},
				[][]string{{file.ID, file.Name, strconv.FormatInt(file.FileSize, 10), file.CreatedAt}},
				file,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetType, "type", "", "Dataset type (tabular, geospatial)")

	return cmd
}
