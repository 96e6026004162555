package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinkhop/matrixprofile-go"
	"github.com/pinkhop/matrixprofile-go/cluster"
	"github.com/pinkhop/matrixprofile-go/internal/seriesio"
)

var (
	mpdistSeriesA    string
	mpdistSeriesB    string
	mpdistWindow     int
	mpdistPercentage float64
	mpdistK          int
	mpdistWorkers    []string
	mpdistTimeout    time.Duration
)

var mpdistCmd = &cobra.Command{
	Use:   "mpdist",
	Short: "Compute the MPdist between two time-series",
	Long: `Computes the matrix profile distance between two time-series. The AB-join
and BA-join run in-process, or on join workers (see "mpx serve") when one or
more --worker addresses are given.`,
	RunE: runMPdist,
}

func init() {
	mpdistCmd.Flags().StringVarP(&mpdistSeriesA, "series-a", "a", "", "First time-series file (required)")
	mpdistCmd.Flags().StringVarP(&mpdistSeriesB, "series-b", "b", "", "Second time-series file (required)")
	mpdistCmd.Flags().IntVarP(&mpdistWindow, "window", "m", 0, "Subsequence window size (required)")
	mpdistCmd.Flags().Float64Var(&mpdistPercentage, "percentage", matrixprofile.DefaultMPdistPercentage, "Fraction of len(a)+len(b) used to pick the distance")
	mpdistCmd.Flags().IntVar(&mpdistK, "k", -1, "Zero-based order statistic to report; overrides --percentage when >= 0")
	mpdistCmd.Flags().StringSliceVar(&mpdistWorkers, "worker", nil, "Join worker address; repeat or comma-separate for several")
	mpdistCmd.Flags().DurationVar(&mpdistTimeout, "timeout", cluster.DefaultTimeout, "Time allowed for each remote join")

	mpdistCmd.MarkFlagRequired("series-a")
	mpdistCmd.MarkFlagRequired("series-b")
	mpdistCmd.MarkFlagRequired("window")
	rootCmd.AddCommand(mpdistCmd)
}

func runMPdist(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seriesA, err := seriesio.ReadSeriesFile(mpdistSeriesA)
	if err != nil {
		return fmt.Errorf("failed to read time-series: %w", err)
	}
	seriesB, err := seriesio.ReadSeriesFile(mpdistSeriesB)
	if err != nil {
		return fmt.Errorf("failed to read time-series: %w", err)
	}

	opts := []matrixprofile.MPdistOption{matrixprofile.WithMPdistPercentage(mpdistPercentage)}
	if mpdistK >= 0 {
		opts = append(opts, matrixprofile.WithK(mpdistK))
	}

	start := time.Now()
	var distance float64
	if len(mpdistWorkers) == 0 {
		distance, err = matrixprofile.MPdistWith(ctx, matrixprofile.LocalJoin, seriesA, seriesB, mpdistWindow, opts...)
	} else {
		distance, err = remoteMPdist(ctx, seriesA, seriesB, opts)
	}
	if err != nil {
		return err
	}

	logger.Info("MPdist complete",
		"len_a", len(seriesA),
		"len_b", len(seriesB),
		"m", mpdistWindow,
		"workers", len(mpdistWorkers),
		"elapsed", time.Since(start),
	)
	fmt.Fprintln(cmd.OutOrStdout(), distance)
	return nil
}

func remoteMPdist(ctx context.Context, seriesA, seriesB []float64, opts []matrixprofile.MPdistOption) (float64, error) {
	client, err := cluster.NewClient(mpdistWorkers,
		cluster.WithTimeout(mpdistTimeout),
		cluster.WithClientLogger(logger),
	)
	if err != nil {
		return 0, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return 0, fmt.Errorf("join workers unavailable: %w", err)
	}

	return cluster.MPdist(ctx, client, seriesA, seriesB, mpdistWindow, opts...)
}
