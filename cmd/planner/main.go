package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmx/auction-planner/internal/app"
	"github.com/atmx/auction-planner/internal/config"
	"github.com/atmx/auction-planner/internal/model"
)

func main() {
	root := &cobra.Command{
		Use:          "planner",
		Short:        "Auction planner command line",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newBudgetCmd(),
		newRosterCmd(),
		newTargetsCmd(),
		newLiveCmd(),
		newWeightsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// withPlanner opens the configured store for the duration of fn.
func withPlanner(cmd *cobra.Command, fn func(ctx context.Context, p *app.Planner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// Info-level store chatter would interleave with command output.
	level := max(cfg.SlogLevel(), slog.LevelWarn)
	if cfg.SlogLevel() == slog.LevelDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := cmd.Context()
	p, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(ctx, p)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Heal legacy roster ids and merge duplicate players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				report, err := p.Roster.Migrate(ctx)
				if err != nil {
					return err
				}
				if !report.Changed {
					printInfo("Roster already clean.")
					return nil
				}
				printSuccess(fmt.Sprintf("Roster migrated: kept=%d merged=%d recanonicalized=%d dropped=%d",
					report.Kept, report.Merged, report.Recanonicalized, report.Dropped))
				return nil
			})
		},
	}
}

func newBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Recalculate and show the remaining draft budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				summary, err := p.Budget.Recalculate(ctx)
				if err != nil {
					return err
				}
				renderBudget(summary)
				return nil
			})
		},
	}
}

// --- roster ---

func newRosterCmd() *cobra.Command {
	roster := &cobra.Command{
		Use:   "roster",
		Short: "Roster and keeper contract commands",
	}
	roster.AddCommand(
		newRosterListCmd(),
		newRosterAddCmd(),
		newRosterUpdateCmd(),
		newRosterRemoveCmd(),
	)
	return roster
}

func newRosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roster players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				players, err := p.Roster.Roster(ctx)
				if err != nil {
					return err
				}
				renderRoster(players)
				return nil
			})
		},
	}
}

func newRosterAddCmd() *cobra.Command {
	var rec model.PlayerRecord
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a player to the roster (existing contracts are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec.Name = args[0]
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				player, err := p.Roster.AddFromRecord(ctx, rec)
				if err != nil {
					return err
				}
				printSuccess("Roster entry " + player.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rec.Type, "type", "hit", "player type (hit or pit)")
	cmd.Flags().StringVar(&rec.Team, "team", "", "team abbreviation")
	cmd.Flags().StringVar(&rec.POS, "pos", "", "eligible positions")
	return cmd
}

func newRosterUpdateCmd() *cobra.Command {
	var (
		contract bool
		year     int
		total    int
		price    int
		team     string
		pos      string
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a roster player's contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.RosterPatch
			flags := cmd.Flags()
			if flags.Changed("contract") {
				patch.UnderContract = &contract
			}
			if flags.Changed("year") {
				patch.ContractYear = &year
			}
			if flags.Changed("total") {
				patch.ContractTotal = &total
			}
			if flags.Changed("price") {
				patch.Price = &price
			}
			if flags.Changed("team") {
				patch.Team = &team
			}
			if flags.Changed("pos") {
				patch.Pos = &pos
			}
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				player, ok, err := p.Roster.Update(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if !ok {
					printWarn("No roster player " + args[0])
					return nil
				}
				renderRoster([]model.RosterPlayer{player})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&contract, "contract", false, "under keeper contract")
	cmd.Flags().IntVar(&year, "year", 1, "current contract year")
	cmd.Flags().IntVar(&total, "total", 1, "total contract years")
	cmd.Flags().IntVar(&price, "price", 0, "contract price")
	cmd.Flags().StringVar(&team, "team", "", "team abbreviation")
	cmd.Flags().StringVar(&pos, "pos", "", "eligible positions")
	return cmd
}

func newRosterRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a roster player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				removed, err := p.Roster.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					printWarn("No roster player " + args[0])
					return nil
				}
				printSuccess("Removed " + args[0])
				return nil
			})
		},
	}
}

// --- targets ---

func newTargetsCmd() *cobra.Command {
	targets := &cobra.Command{
		Use:     "targets",
		Short:   "Auction board commands",
		Aliases: []string{"target"},
	}
	targets.AddCommand(
		newTargetsListCmd(),
		newTargetsAddCmd(),
		newTargetsRemoveCmd(),
		newTargetsClearCmd(),
	)
	return targets
}

func newTargetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List auction targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				list, err := p.Targets.List(ctx)
				if err != nil {
					return err
				}
				renderTargets(list)
				return nil
			})
		},
	}
}

func newTargetsAddCmd() *cobra.Command {
	var (
		typ, pos, tier, notes, playerKey string
		plan, maxBid, enforce            float64
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a player to the auction board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{
				"name":    args[0],
				"type":    typ,
				"pos":     pos,
				"tier":    tier,
				"plan":    plan,
				"max":     maxBid,
				"enforce": enforce,
				"notes":   notes,
			}
			if playerKey != "" {
				fields["player_key"] = playerKey
			}
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				t, err := p.Targets.Add(ctx, fields)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Target %s added (%s)", t.ID, t.PlayerKey))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "hit", "player type (hit or pit)")
	cmd.Flags().StringVar(&pos, "pos", "", "eligible positions")
	cmd.Flags().StringVar(&tier, "tier", "B", "tier (A, B or C)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&playerKey, "player-key", "", "canonical player key (derived from type and name when empty)")
	cmd.Flags().Float64Var(&plan, "plan", 0, "planned bid")
	cmd.Flags().Float64Var(&maxBid, "max", 0, "maximum bid")
	cmd.Flags().Float64Var(&enforce, "enforce", 0, "price enforcement bid")
	return cmd
}

func newTargetsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an auction target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				removed, err := p.Targets.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					printWarn("No target " + args[0])
					return nil
				}
				printSuccess("Removed " + args[0])
				return nil
			})
		},
	}
}

func newTargetsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every auction target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
				if err := p.Targets.Clear(ctx); err != nil {
					return err
				}
				printSuccess("Auction board cleared.")
				return nil
			})
		},
	}
}

// --- live prices ---

func newLiveCmd() *cobra.Command {
	live := &cobra.Command{
		Use:   "live",
		Short: "Live auction price commands",
	}
	live.AddCommand(
		&cobra.Command{
			Use:   "set KEY PRICE",
			Short: "Record a live price (0 removes it)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				price, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
				if err != nil {
					return fmt.Errorf("invalid price %q", args[1])
				}
				return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
					prices, err := p.LivePrices.Set(ctx, args[0], price)
					if err != nil {
						return err
					}
					renderLivePrices(prices)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List live prices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
					prices, err := p.LivePrices.Get(ctx)
					if err != nil {
						return err
					}
					renderLivePrices(prices)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every live price",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
					if err := p.LivePrices.Clear(ctx); err != nil {
						return err
					}
					printSuccess("Live prices cleared.")
					return nil
				})
			},
		},
	)
	return live
}

// --- weights ---

func newWeightsCmd() *cobra.Command {
	weights := &cobra.Command{
		Use:   "weights",
		Short: "Category weight commands",
	}
	weights.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show category weights",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
					s, err := p.Settings.Get(ctx)
					if err != nil {
						return err
					}
					renderWeights(s)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set CAT=WEIGHT...",
			Short: "Set one or more category weights",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				next, err := parseWeights(args)
				if err != nil {
					return err
				}
				return withPlanner(cmd, func(ctx context.Context, p *app.Planner) error {
					s, err := p.Settings.SetCategoryWeights(ctx, next)
					if err != nil {
						return err
					}
					renderWeights(s)
					return nil
				})
			},
		},
	)
	return weights
}

// parseWeights turns CAT=WEIGHT arguments into a partial weights map.
// Category codes are upper-cased.
func parseWeights(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		cat, val, ok := strings.Cut(arg, "=")
		cat = strings.ToUpper(strings.TrimSpace(cat))
		if !ok || cat == "" {
			return nil, fmt.Errorf("expected CAT=WEIGHT, got %q", arg)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %s: %q", cat, val)
		}
		out[cat] = w
	}
	return out, nil
}
