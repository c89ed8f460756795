package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"taskly/models"
	"taskly/services"
	"taskly/store"
)

func newTasksCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tasks <email>",
		Short: "Print an owner's task buckets",
		Example: `  taskly tasks a@x.com
  taskly tasks a@x.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := store.Open(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer coll.Close(context.Background())

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
			defer cancel()

			docs, err := services.NewTaskStore(coll).ListTasks(ctx, args[0])
			if errors.Is(err, services.ErrTasksNotFound) {
				return fmt.Errorf("no tasks for %s", args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"tasks": docs})
			}
			renderTasks(cmd.OutOrStdout(), docs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// renderTasks prints one table per document, buckets in display order.
func renderTasks(w io.Writer, docs []models.TaskDocument) {
	for _, doc := range docs {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(doc.Email)
		t.AppendHeader(table.Row{"Bucket", "ID", "Title", "Priority", "Deadline", "Description"})

		for _, status := range []string{models.StatusTodo, models.StatusInProgress, models.StatusCompleted} {
			for _, task := range *doc.Bucket(status) {
				t.AppendRow(table.Row{
					colorStatus(status), task.ID, task.Title, task.Priority, task.Deadline, task.Description,
				})
			}
		}
		t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d tasks", len(doc.Todo)+len(doc.InProgress)+len(doc.Completed))})
		t.Render()
	}
}

func colorStatus(status string) string {
	switch status {
	case models.StatusTodo:
		return text.FgHiRed.Sprint(status)
	case models.StatusInProgress:
		return text.FgHiYellow.Sprint(status)
	case models.StatusCompleted:
		return text.FgHiGreen.Sprint(status)
	}
	return status
}
