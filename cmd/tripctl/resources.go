package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tripwhizz/tripsync/internal/apiclient"
	"github.com/tripwhizz/tripsync/internal/domain"
)

// show runs fetch under the command timeout and prints its result.
func show[T any](a *app, cmd *cobra.Command, fetch func(context.Context) (T, error)) error {
	ctx, cancel := a.ctx(cmd)
	defer cancel()
	v, err := fetch(ctx)
	if err != nil {
		return err
	}
	return a.print(v)
}

// tripScoped builds a "<use> <trip-id>" subcommand.
func tripScoped[T any](a *app, use, short string, fetch func(context.Context, domain.TripID) (T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <trip-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			return show(a, cmd, func(ctx context.Context) (T, error) { return fetch(ctx, id) })
		},
	}
}

func (a *app) expensesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "expenses", Short: "Trip expenses, balances and settlements"}
	cmd.AddCommand(
		tripScoped(a, "list", "List expenses", func(ctx context.Context, id domain.TripID) ([]apiclient.Expense, error) {
			return a.client.Expenses().List(ctx, id)
		}),
		tripScoped(a, "balances", "Show who owes whom", func(ctx context.Context, id domain.TripID) ([]apiclient.Balance, error) {
			return a.client.Expenses().Balances(ctx, id)
		}),
		tripScoped(a, "settlements", "List settlements", func(ctx context.Context, id domain.TripID) ([]apiclient.Settlement, error) {
			return a.client.Expenses().Settlements(ctx, id)
		}),
	)
	return cmd
}

func (a *app) packingCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "packing", Short: "Packing lists and items"}

	var listType string
	lists := tripScoped(a, "lists", "List packing lists", func(ctx context.Context, id domain.TripID) ([]apiclient.PackingList, error) {
		return a.client.Packing().ListLists(ctx, id, listType)
	})
	lists.Flags().StringVar(&listType, "type", "", "Only lists of this type")

	var filter apiclient.PackingItemFilter
	var packed string
	items := &cobra.Command{
		Use:   "items <trip-id> <list-id>",
		Short: "List items on a packing list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			listID, err := parseInt64("list id", args[1])
			if err != nil {
				return err
			}
			switch packed {
			case "":
			case "true", "false":
				v := packed == "true"
				filter.IsPacked = &v
			default:
				return fmt.Errorf("%w: --packed must be true or false", domain.ErrValidation)
			}
			return show(a, cmd, func(ctx context.Context) ([]apiclient.PackingItem, error) {
				return a.client.Packing().ListItems(ctx, id, listID, filter)
			})
		},
	}
	items.Flags().StringVar(&filter.Category, "category", "", "Only this category")
	items.Flags().StringVar(&filter.Search, "search", "", "Name contains")
	items.Flags().StringVar(&packed, "packed", "", "true or false")

	toggle := &cobra.Command{
		Use:   "toggle <trip-id> <list-id> <item-id>",
		Short: "Flip an item's packed flag",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			listID, err := parseInt64("list id", args[1])
			if err != nil {
				return err
			}
			itemID, err := parseInt64("item id", args[2])
			if err != nil {
				return err
			}
			return show(a, cmd, func(ctx context.Context) (apiclient.PackingItem, error) {
				return a.client.Packing().TogglePacked(ctx, id, listID, itemID)
			})
		},
	}

	cmd.AddCommand(lists, items, toggle)
	return cmd
}

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Short: "Trip documents"}

	var filter apiclient.DocumentFilter
	list := tripScoped(a, "list", "List documents", func(ctx context.Context, id domain.TripID) ([]apiclient.Document, error) {
		return a.client.Documents().List(ctx, id, filter)
	})
	list.Flags().StringVar(&filter.Visibility, "visibility", "", "private or shared")
	list.Flags().Int64Var(&filter.CategoryID, "category", 0, "Category id")
	list.Flags().StringVar(&filter.Search, "search", "", "Title contains")
	list.Flags().StringVar(&filter.FileType, "file-type", "", "File type, e.g. pdf")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List document categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return show(a, cmd, a.client.Documents().Categories)
		},
	}

	var up apiclient.DocumentUpload
	upload := &cobra.Command{
		Use:   "upload <trip-id> <file>",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			up.Filename = filepath.Base(args[1])
			up.Content = f
			if up.Title == "" {
				up.Title = up.Filename
			}
			return show(a, cmd, func(ctx context.Context) (apiclient.Document, error) {
				return a.client.Documents().Upload(ctx, id, up)
			})
		},
	}
	upload.Flags().StringVar(&up.Title, "title", "", "Title (defaults to the file name)")
	upload.Flags().StringVar(&up.Description, "description", "", "Description")
	upload.Flags().StringVar(&up.Visibility, "visibility", "private", "private or shared")
	upload.Flags().Int64Var(&up.CategoryID, "category", 0, "Category id")
	upload.Flags().StringSliceVar(&up.CustomTags, "tag", nil, "Tag (repeatable)")

	cmd.AddCommand(list, categories, upload)
	return cmd
}

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Short: "Notifications"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List notifications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return show(a, cmd, a.client.Notifications().List)
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Show the unread count",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return show(a, cmd, func(ctx context.Context) (map[string]int, error) {
					n, err := a.client.Notifications().UnreadCount(ctx)
					return map[string]int{"unread": n}, err
				})
			},
		},
		&cobra.Command{
			Use:   "read <notification-id>",
			Short: "Mark one notification read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseInt64("notification id", args[0])
				if err != nil {
					return err
				}
				return show(a, cmd, func(ctx context.Context) (apiclient.Notification, error) {
					return a.client.Notifications().MarkRead(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every notification read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				msg, err := a.client.Notifications().MarkAllRead(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, msg)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) friendsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "friends", Short: "Friends and friend requests"}

	userArg := func(use, short string, run func(ctx context.Context, id int64) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseInt64("id", args[0])
				if err != nil {
					return err
				}
				return show(a, cmd, func(ctx context.Context) (any, error) { return run(ctx, id) })
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List friends",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return show(a, cmd, a.client.Friends().List)
			},
		},
		&cobra.Command{
			Use:   "requests",
			Short: "List sent and received friend requests",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return show(a, cmd, a.client.Friends().Requests)
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Search users",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return show(a, cmd, func(ctx context.Context) ([]apiclient.User, error) {
					return a.client.Friends().Search(ctx, args[0])
				})
			},
		},
		userArg("add <user-id>", "Send a friend request", func(ctx context.Context, id int64) (any, error) {
			return a.client.Friends().SendRequest(ctx, id)
		}),
		userArg("accept <request-id>", "Accept a friend request", func(ctx context.Context, id int64) (any, error) {
			return a.client.Friends().Respond(ctx, id, "accept")
		}),
		userArg("reject <request-id>", "Reject a friend request", func(ctx context.Context, id int64) (any, error) {
			return a.client.Friends().Respond(ctx, id, "reject")
		}),
		userArg("remove <user-id>", "Remove a friend", func(ctx context.Context, id int64) (any, error) {
			return map[string]int64{"removed": id}, a.client.Friends().Remove(ctx, id)
		}),
	)
	return cmd
}

func (a *app) itineraryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "itinerary", Short: "Trip itinerary events"}

	var date string
	list := &cobra.Command{
		Use:   "list <trip-id>",
		Short: "List events, optionally for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			day, err := parseDate("--date", date)
			if err != nil {
				return err
			}
			return show(a, cmd, func(ctx context.Context) ([]apiclient.ItineraryEvent, error) {
				return a.client.Itinerary().List(ctx, id, day)
			})
		},
	}
	list.Flags().StringVar(&date, "date", "", "Day, YYYY-MM-DD")

	cmd.AddCommand(list)
	return cmd
}

func (a *app) stagesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "stages", Short: "Stage elements and reactions"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "elements <stage-id>",
			Short: "List a stage's elements",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				stageID, err := parseInt64("stage id", args[0])
				if err != nil {
					return err
				}
				return show(a, cmd, func(ctx context.Context) ([]apiclient.StageElement, error) {
					return a.client.Stages().Elements(ctx, stageID)
				})
			},
		},
		&cobra.Command{
			Use:   "react <element-id> <like|dislike>",
			Short: "React to a stage element",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				elementID, err := parseInt64("element id", args[0])
				if err != nil {
					return err
				}
				return show(a, cmd, func(ctx context.Context) (apiclient.StageElement, error) {
					return a.client.Stages().React(ctx, elementID, args[1])
				})
			},
		},
	)
	return cmd
}
