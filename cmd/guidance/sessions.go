package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/guidance/internal/engine"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/progress"
	"github.com/nhle/guidance/internal/store"
)

func (c *cli) newCmd() *cobra.Command {
	var (
		tags []string
		note string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Log a struggle and start its guidance steps",
		Example: `  guidance new --tag Tantrums --note "mostly before dinner"
  guidance new --tag "Sleep Routines" --tag "Screen Time"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			s, err := eng.CreateSession(cmd.Context(), engine.NewSession{
				OwnerID:    c.cfg.OwnerID,
				Tags:       tags,
				CustomNote: note,
			})
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s, eng.Steps(s))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Struggle tag, repeatable; the first drives the steps")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note about the struggle")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		status string
		limit  int
		asJSON bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			filter := store.SessionFilter{Limit: limit}
			if !all {
				filter.OwnerID = &c.cfg.OwnerID
			}
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = &st
			}

			sessions, err := eng.ListSessions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions.")
				return nil
			}
			fmt.Fprintln(out, sessionTable(sessions))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only sessions with this status (ongoing, resolved, unresolved)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of sessions (0 = no limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&all, "all-owners", false, "Include sessions of every owner")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a session with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			s, err := eng.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printSession(cmd.OutOrStdout(), s, eng.Steps(s))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID STEP",
		Short: "Mark a step (1-based) done, or undo it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := parseStep(args[1])
			if err != nil {
				return err
			}
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			res, err := eng.ToggleStep(cmd.Context(), args[0], step)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSession(out, res.Session, eng.Steps(res.Session))
			if res.ReadyForFeedback {
				fmt.Fprintf(out, "\nAll steps done. Tell us how it went:\n  guidance feedback %s %q\n",
					res.Session.ID, model.FeedbackWorkedWell)
			}
			return nil
		},
	}
}

func (c *cli) feedbackCmd() *cobra.Command {
	var notes string
	labels := make([]string, len(model.Feedbacks))
	for i, f := range model.Feedbacks {
		labels[i] = string(f)
	}

	cmd := &cobra.Command{
		Use:   "feedback ID LABEL",
		Short: "Record how a finished approach went",
		Long:  "Record how a finished approach went. LABEL is one of: " + strings.Join(labels, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			s, err := eng.SubmitFeedback(cmd.Context(), args[0], args[1], notes)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s, eng.Steps(s))
			if s.State.IsDeferred() {
				fmt.Fprintf(cmd.OutOrStdout(),
					"\nTo try the other approach, reopen a step and switch:\n  guidance toggle %s %d\n  guidance switch %s\n",
					s.ID, s.TotalSteps, s.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Notes on what changed (defaults to the label)")
	return cmd
}

func (c *cli) switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch ID",
		Short: "Switch to the other approach and start its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			s, err := eng.SwitchApproach(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s, eng.Steps(s))
			return nil
		},
	}
}

func (c *cli) noteCmd() *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "note ID TEXT",
		Short: "Replace the session note, or a step's notes with --step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			var s *model.GuidanceSession
			if cmd.Flags().Changed("step") {
				if step < 1 {
					return fmt.Errorf("step must be 1 or greater, got %d", step)
				}
				s, err = eng.UpdateStepNotes(cmd.Context(), args[0], step-1, args[1])
			} else {
				s, err = eng.UpdateNote(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s, eng.Steps(s))
			return nil
		},
	}
	cmd.Flags().IntVar(&step, "step", 0, "Step number (1-based) whose notes to replace")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			if err := eng.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// parseStep converts a 1-based step argument into an engine index.
func parseStep(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("step %q is not a number", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("step must be 1 or greater, got %d", n)
	}
	return n - 1, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sessionTable(sessions []model.GuidanceSession) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "APPROACH", "PROGRESS", "UPDATED")
	for i := range sessions {
		s := &sessions[i]
		t.Row(s.ID, s.FlowTitle, s.State.String(), string(s.Approach),
			progress.Label(s), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return t.Render()
}

func printSession(w io.Writer, s *model.GuidanceSession, defs []model.StepDefinition) {
	fmt.Fprintf(w, "%s  [%s]\n", s.FlowTitle, s.ID)
	fmt.Fprintf(w, "  struggle: %s\n", strings.Join(s.Tags, ", "))
	fmt.Fprintf(w, "  status:   %s\n", s.State)
	fmt.Fprintf(w, "  approach: %s (switches: %d)\n", s.Approach, s.CurrentApproachIndex)
	fmt.Fprintf(w, "  progress: %s\n", progress.Label(s))
	if s.CustomNote != "" {
		fmt.Fprintf(w, "  note:     %s\n", s.CustomNote)
	}
	if s.FinalNotes != "" {
		fmt.Fprintf(w, "  feedback: %s\n", s.FinalNotes)
	}

	fmt.Fprintln(w)
	for i, sp := range s.StepsTried {
		box := "[ ]"
		if sp.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %d. %s\n", box, i+1, sp.Text)
		if i < len(defs) && defs[i].Description != "" {
			fmt.Fprintf(w, "        %s\n", defs[i].Description)
		}
		if sp.Notes != "" {
			fmt.Fprintf(w, "        notes: %s\n", sp.Notes)
		}
	}
}
