package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifesync/internal/analytics"
	"lifesync/pkg/util"
)

func newStreaksCommand(opts *RootOptions) *cobra.Command {
	var lookback int
	cmd := &cobra.Command{
		Use:   "streaks",
		Short: "Habit strength: completion rate, streaks and consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				if !cmd.Flags().Changed("lookback") {
					lookback = env.Config.Analytics.LookbackDays
				}
				res, err := env.Service.HabitStrengths(cmd.Context(), opts.UserID, lookback)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&lookback, "lookback", 0, "lookback window in days (0 = full history)")
	return cmd
}

func newHeatmapCommand(opts *RootOptions) *cobra.Command {
	var year, days int
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Daily completion heatmap for a year or the trailing days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				var (
					res analytics.Heatmap
					err error
				)
				if days > 0 {
					res, err = env.Service.RecentHeatmap(cmd.Context(), opts.UserID, days)
				} else {
					if year == 0 {
						year = env.Service.Today().Year()
					}
					res, err = env.Service.Heatmap(cmd.Context(), opts.UserID, year)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current year)")
	cmd.Flags().IntVar(&days, "days", 0, "trailing days instead of a year")
	cmd.MarkFlagsMutuallyExclusive("year", "days")
	return cmd
}

func newCorrelationsCommand(opts *RootOptions) *cobra.Command {
	var days, limit int
	var minStrength float64
	cmd := &cobra.Command{
		Use:   "correlations",
		Short: "Pairwise habit correlations over the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				res, err := env.Service.Correlations(cmd.Context(), opts.UserID, days)
				if err != nil {
					return err
				}
				if limit <= 0 {
					limit = env.Config.Analytics.TopCorrelations
				}
				res.Correlations = analytics.TopCorrelations(res.Correlations, limit, minStrength)
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window in days (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max pairs to print (default from config)")
	cmd.Flags().Float64Var(&minStrength, "min-strength", 0, "drop pairs with |r| below this")
	return cmd
}

func newProductivityCommand(opts *RootOptions) *cobra.Command {
	var period, from, to string
	cmd := &cobra.Command{
		Use:   "productivity",
		Short: "Daily productivity score series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				var (
					p   analytics.Period
					err error
				)
				switch {
				case from != "" || to != "":
					p, err = analytics.ParsePeriod(from + ".." + to)
				case period == analytics.PeriodWeek || period == analytics.PeriodMonth || period == analytics.PeriodYear:
					p, err = env.Service.ResolvePeriod(period)
				default:
					p, err = analytics.ParsePeriod(period)
				}
				if err != nil {
					return err
				}
				res, err := env.Service.Productivity(cmd.Context(), opts.UserID, p)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", analytics.PeriodWeek, "week|month|year or YYYY, YYYY-MM, YYYY-MM-DD..YYYY-MM-DD")
	cmd.Flags().StringVar(&from, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "range end (YYYY-MM-DD)")
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("period", "from")
	return cmd
}

func newCompareCommand(opts *RootOptions) *cobra.Command {
	var period1, period2 string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare completions between two periods (default: last month vs this month)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				p1, p2 := env.Service.DefaultComparison()
				if period1 != "" {
					var err error
					if p1, err = analytics.ParsePeriod(period1); err != nil {
						return err
					}
					if p2, err = analytics.ParsePeriod(period2); err != nil {
						return err
					}
				}
				res, err := env.Service.Compare(cmd.Context(), opts.UserID, p1, p2)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&period1, "period1", "", "baseline period")
	cmd.Flags().StringVar(&period2, "period2", "", "compared period")
	cmd.MarkFlagsRequiredTogether("period1", "period2")
	return cmd
}

func newOverviewCommand(opts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Habits and tasks progress for one day (default today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, true, func(env *Env) error {
				var day time.Time
				if date != "" {
					var err error
					if day, err = analytics.ParseDate(date); err != nil {
						return err
					}
				}
				res, err := env.Service.Overview(cmd.Context(), opts.UserID, day)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD)")
	return cmd
}

func newReportCommand(opts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compose a weekly or monthly progress report",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := analytics.ParseReportKind(kind)
			if err != nil {
				return err
			}
			return withEnv(opts, true, func(env *Env) error {
				res, err := env.Service.Report(cmd.Context(), opts.UserID, k)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(analytics.ReportWeekly), "weekly|monthly")
	return cmd
}

func newStatsCommand(opts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Weekly or monthly headline stats: consistency, tasks, per-habit breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := analytics.ParseReportKind(kind)
			if err != nil {
				return err
			}
			return withEnv(opts, true, func(env *Env) error {
				res, err := env.Service.PeriodStats(cmd.Context(), opts.UserID, k)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&kind, "period", string(analytics.ReportWeekly), "weekly|monthly")
	return cmd
}

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the habit and task tables if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, false, func(env *Env) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				if err := env.Migrate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return err
			})
		},
	}
}

func newTokenCommand(opts *RootOptions) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for --user, signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.UserID <= 0 {
				return fmt.Errorf("--user is required")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			token, err := util.GenerateJWT(opts.UserID, cfg.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
