package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"todoboard/pkg/board"
	"todoboard/pkg/task"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := board.NewListView(a.store)
			tasks := v.Refresh(cmd.Context())
			if err := v.Err(); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDONE\tDEADLINE\tTITLE")
			for _, t := range tasks {
				deadline := t.Deadline.Display()
				if v.IsOverdue(t) {
					deadline += " (overdue)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, check(t.Completed), deadline, t.Title)
			}
			return tw.Flush()
		},
	}
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := board.NewDetailView(a.store)
			v.Activate(cmd.Context(), task.ID(args[0]))
			if v.State() == board.Failed {
				return v.Err()
			}
			printTask(cmd.OutOrStdout(), v.Task())
			return nil
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var (
		title, description, deadline string
		bullets, images              []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := board.NewAddView(a.store)
			v.Title, v.Description = title, description
			for _, b := range bullets {
				v.AddBullet(b)
			}
			d, err := parseDeadline(deadline)
			if err != nil {
				return err
			}
			v.Deadline = d
			closeAll, err := v.AttachFiles(images)
			if err != nil {
				return err
			}
			defer closeAll()

			t, err := v.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created task %s\n", t.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringArrayVarP(&bullets, "bullet", "b", nil, "bullet point, repeatable")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to attach, repeatable")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var (
		title, description, deadline string
		addBullets, images           []string
		removeBullets                []int
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := board.NewEditView(a.store)
			if err := v.Activate(cmd.Context(), task.ID(args[0])); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				v.Title = title
			}
			if flags.Changed("description") {
				v.Description = description
			}
			if flags.Changed("deadline") {
				d, err := parseDeadline(deadline)
				if err != nil {
					return err
				}
				v.Deadline = d
			}
			// remove from the highest index down
			slices.Sort(removeBullets)
			for _, i := range slices.Backward(removeBullets) {
				v.RemoveBullet(i)
			}
			for _, b := range addBullets {
				v.AddBullet(b)
			}
			closeAll, err := v.AttachFiles(images)
			if err != nil {
				return err
			}
			defer closeAll()

			t, err := v.Submit(cmd.Context())
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "new deadline as YYYY-MM-DD, empty to clear")
	cmd.Flags().StringArrayVarP(&addBullets, "bullet", "b", nil, "bullet point to append, repeatable")
	cmd.Flags().IntSliceVar(&removeBullets, "remove-bullet", nil, "index of a bullet to remove, repeatable")
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to attach, repeatable")
	return cmd
}

func newDoneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := board.NewListView(a.store).MarkComplete(cmd.Context(), task.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed task %s\n", args[0])
			return nil
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete one or more tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := board.NewListView(a.store)
			v.EnterMultiDelete()
			for _, id := range args {
				if !v.IsSelected(task.ID(id)) {
					v.Toggle(task.ID(id))
				}
			}
			if err := v.DeleteSelected(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.Join(args, ", "))
			return nil
		},
	}
}

func parseDeadline(s string) (task.Deadline, error) {
	d := task.Deadline(strings.TrimSpace(s))
	if d.IsZero() {
		return "", nil
	}
	if _, ok := d.Time(); !ok {
		return "", fmt.Errorf("invalid deadline %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

func printTask(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "#%s %s [%s]\n", t.ID, t.Title, check(t.Completed))
	if d := t.Deadline.Display(); d != "" {
		fmt.Fprintf(w, "Deadline: %s\n", d)
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}
	if len(t.Bullets) > 0 {
		fmt.Fprintln(w)
		for i, b := range t.Bullets {
			fmt.Fprintf(w, "  %d. %s\n", i, b)
		}
	}
	for _, u := range t.Images {
		fmt.Fprintf(w, "Image: %s\n", u)
	}
}

func check(done bool) string {
	if done {
		return "x"
	}
	return " "
}
