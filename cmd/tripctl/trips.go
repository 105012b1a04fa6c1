package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/spf13/cobra"

	"github.com/tripwhizz/tripsync/internal/apiclient"
	"github.com/tripwhizz/tripsync/internal/domain"
	"github.com/tripwhizz/tripsync/internal/repo"
	"github.com/tripwhizz/tripsync/internal/service"
	"github.com/tripwhizz/tripsync/internal/tripsync"
)

func parseTripID(s string) (domain.TripID, error) {
	id, err := domain.ParseTripID(s)
	if err != nil {
		return 0, fmt.Errorf("%w: trip id %q is not a number", domain.ErrValidation, s)
	}
	return id, nil
}

func parseInt64(name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrValidation, name, s)
	}
	return n, nil
}

// parseDate reads an optional YYYY-MM-DD flag value.
func parseDate(name, s string) (*openapi_types.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, name)
	}
	return domain.NewDate(t), nil
}

// openCore builds a synchronization core over the configured selection store.
// The caller closes the returned store.
func (a *app) openCore(ctx context.Context) (*tripsync.Core, repo.Store, error) {
	store, err := repo.Open(ctx, a.cfg.SelectionStore)
	if err != nil {
		return nil, nil, err
	}
	core := tripsync.New(
		service.NewTripDirectory(a.client.Trips()),
		service.NewPreferenceService(a.client.Preferences()),
		store,
		tripsync.WithLogger(a.log),
	)
	return core, store, nil
}

func (a *app) tripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "List, inspect and edit trips",
	}
	cmd.AddCommand(
		a.tripsListCmd(),
		a.tripsShowCmd(),
		a.tripsCreateCmd(),
		a.tripsDeleteCmd(),
		a.tripsSelectCmd(),
		a.tripsExportCmd(),
		a.tripsInviteCmd(),
		a.tripsRespondCmd(),
		a.tripsParticipantCmd("add-participant", "Add a user to a trip's participants"),
		a.tripsParticipantCmd("remove-participant", "Remove a user from a trip's participants"),
	)
	return cmd
}

func (a *app) tripsListCmd() *cobra.Command {
	var sortFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trips in the preferred order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			order, err := domain.ParseTripSort(sortFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sort") {
				prefs, err := a.client.Preferences().Get(ctx)
				if err != nil {
					a.log.Warn("preferences unavailable, using backend order", "error", err)
				} else {
					order = prefs.TripSort()
				}
			}
			trips, err := a.client.Trips().List(ctx)
			if err != nil {
				return err
			}
			return a.print(domain.SortTrips(trips, order))
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "Override the stored sort: name, date or none")
	return cmd
}

func (a *app) tripsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <trip-id>",
		Short: "Show a trip with participants and stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			t, err := a.client.Trips().Get(ctx, id)
			if err != nil {
				return err
			}
			return a.print(t)
		},
	}
}

func (a *app) tripsCreateCmd() *cobra.Command {
	var in apiclient.TripInput
	var start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.StartDate, err = parseDate("--start", start); err != nil {
				return err
			}
			if in.EndDate, err = parseDate("--end", end); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			t, err := a.client.Trips().Create(ctx, in)
			if err != nil {
				return err
			}
			return a.print(t)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Trip name")
	cmd.Flags().StringVar(&in.Destination, "destination", "", "Destination")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.TripType, "type", "", "private or public")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&start, "start", "", "Start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "End date, YYYY-MM-DD")
	return cmd
}

func (a *app) tripsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip-id>",
		Short: "Delete a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := a.client.Trips().Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted trip %s\n", id)
			return nil
		},
	}
}

func (a *app) tripsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <trip-id>",
		Short: "Make a trip the active one (shared with tripsyncd's store)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			core, store, err := a.openCore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := core.Start(ctx); err != nil {
				return err
			}
			if err := core.SelectTripByID(ctx, strings.TrimSpace(args[0])); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return err
				}
				a.log.Warn("trip selected without details", "error", err)
			}
			return a.print(core.State())
		},
	}
}

func (a *app) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Run a full load cycle and print the resulting trip state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			core, store, err := a.openCore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// A list failure is part of the state (Error), not a command failure.
			if err := core.Start(ctx); err != nil {
				a.log.Debug("load cycle failed", "error", err)
			}
			return a.print(core.State())
		},
	}
}

func (a *app) tripsExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every trip's participant roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			rows, err := service.NewExportService(a.client.Trips()).Export(ctx)
			if err != nil {
				return err
			}
			if format == "csv" {
				return service.WriteRosterCSV(a.out, rows)
			}
			return a.print(rows)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv, or the --output format")
	return cmd
}

func (a *app) tripsInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <trip-id> <user-id>",
		Short: "Invite a user to a trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseInt64("user id", args[1])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			inv, err := a.client.Trips().Invite(ctx, id, userID)
			if err != nil {
				return err
			}
			return a.print(inv)
		},
	}
}

func (a *app) tripsRespondCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "respond <invitation-id> <accept|reject>",
		Short: "Accept or reject a trip invitation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			invID, err := parseInt64("invitation id", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			inv, err := a.client.Trips().RespondToInvitation(ctx, invID, args[1])
			if err != nil {
				return err
			}
			return a.print(inv)
		},
	}
}

func (a *app) tripsParticipantCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <trip-id> <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseInt64("user id", args[1])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			edit := a.client.Trips().AddParticipant
			if use == "remove-participant" {
				edit = a.client.Trips().RemoveParticipant
			}
			t, err := edit(ctx, id, userID)
			if err != nil {
				return err
			}
			return a.print(t)
		},
	}
}

func (a *app) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change user preferences",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show preferences",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				p, err := service.NewPreferenceService(a.client.Preferences()).GetPreferences(ctx)
				if err != nil {
					return err
				}
				return a.print(p)
			},
		},
		&cobra.Command{
			Use:   "set-sort <name|date|none>",
			Short: "Set the trip list order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				p, err := service.NewPreferenceService(a.client.Preferences()).SetTripSort(ctx, args[0])
				if err != nil {
					return err
				}
				return a.print(p)
			},
		},
	)
	return cmd
}
