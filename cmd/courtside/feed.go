package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandevgo/courtside/internal/client"
	"github.com/sandevgo/courtside/internal/config"
	"github.com/sandevgo/courtside/internal/core"
	"github.com/sandevgo/courtside/internal/feed"
	"github.com/spf13/cobra"
)

var (
	feedLeague string
	feedSearch string
	feedBucket string
	feedSort   string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch once and print the feed as JSON",
	Long:  `Runs a single fetch round through the merge/filter pipeline and prints the FeedResult to stdout. Useful for scripting and for inspecting what the dashboard would show.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		apiCfg := config.NewAPIConfig(ctx)
		loc := appCfg.Location(ctx)

		state := core.FilterState{
			League:    feedLeague,
			Search:    feedSearch,
			Bucket:    core.DayBucket(feedBucket),
			Direction: core.SortDirection(feedSort),
		}

		source := client.New(apiCfg)
		q := core.EventsQuery{IncludePredictions: true, Limit: appCfg.FetchLimit}
		if state.League != "" && state.League != core.LeagueAll {
			q.League = state.League
		}

		events, err := source.FetchEvents(ctx, q)
		if err != nil {
			return err
		}
		predictions, err := source.FetchPredictions(ctx)
		if err != nil {
			return err
		}

		result := feed.Build(events, predictions, state, time.Now(), loc)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	feedCmd.Flags().StringVar(&feedLeague, "league", core.LeagueAll, "league filter (or 'all')")
	feedCmd.Flags().StringVar(&feedSearch, "search", "", "case-insensitive team search")
	feedCmd.Flags().StringVar(&feedBucket, "bucket", string(core.BucketToday), "day bucket: today, tomorrow, thisWeek, all")
	feedCmd.Flags().StringVar(&feedSort, "sort", string(core.SortSoonest), "sort direction: soonest or latest")
	rootCmd.AddCommand(feedCmd)
}
