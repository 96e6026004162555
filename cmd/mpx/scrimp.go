package main

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinkhop/matrixprofile-go"
	"github.com/pinkhop/matrixprofile-go/internal/seriesio"
)

var (
	scrimpInput      string
	scrimpWindow     int
	scrimpPercentage float64
	scrimpPreScrimp  bool
	scrimpStride     int
	scrimpWorkers    int
	scrimpSeed       uint64
	scrimpEveryRound bool
	scrimpMaxRounds  int
	scrimpMotifs     int
)

var scrimpCmd = &cobra.Command{
	Use:   "scrimp",
	Short: "Compute the matrix profile of a time-series with SCRIMP++",
	Long: `Computes the self-join matrix profile of a time-series. Each round computes
another share of the distance matrix; the profile after the last round is
exact. With --every-round, the snapshot after every round is written as a
separate line of JSON.`,
	RunE: runScrimp,
}

func init() {
	scrimpCmd.Flags().StringVarP(&scrimpInput, "input", "i", "-", "Time-series file, or - for standard input")
	scrimpCmd.Flags().IntVarP(&scrimpWindow, "window", "m", 0, "Subsequence window size (required)")
	scrimpCmd.Flags().Float64Var(&scrimpPercentage, "percentage", matrixprofile.DefaultScrimpPercentage, "Fraction of all distances computed per round")
	scrimpCmd.Flags().BoolVar(&scrimpPreScrimp, "prescrimp", true, "Run PreSCRIMP before the first round")
	scrimpCmd.Flags().IntVar(&scrimpStride, "stride", 0, "PreSCRIMP sampling stride (0 means ceil(m/4))")
	scrimpCmd.Flags().IntVar(&scrimpWorkers, "workers", 0, "Worker goroutines per round (0 means GOMAXPROCS)")
	scrimpCmd.Flags().Uint64Var(&scrimpSeed, "seed", 0, "Random seed (0 means a random seed)")
	scrimpCmd.Flags().BoolVar(&scrimpEveryRound, "every-round", false, "Write a snapshot after every round")
	scrimpCmd.Flags().IntVar(&scrimpMaxRounds, "max-rounds", 0, "Stop after this many rounds (0 means run to completion)")
	scrimpCmd.Flags().IntVar(&scrimpMotifs, "motifs", 0, "Log the top k motifs and discords of the final profile")

	scrimpCmd.MarkFlagRequired("window")
	rootCmd.AddCommand(scrimpCmd)
}

func runScrimp(cmd *cobra.Command, args []string) error {
	series, err := seriesio.ReadSeriesFile(scrimpInput)
	if err != nil {
		return fmt.Errorf("failed to read time-series: %w", err)
	}
	logger.Info("Loaded time-series", "path", scrimpInput, "n", len(series))

	opts := []matrixprofile.ScrimpOption{
		matrixprofile.WithPercentage(scrimpPercentage),
		matrixprofile.WithLogger(logger),
	}
	if scrimpPreScrimp {
		opts = append(opts, matrixprofile.WithPreScrimp(scrimpStride))
	}
	if scrimpWorkers > 0 {
		opts = append(opts, matrixprofile.WithWorkers(scrimpWorkers))
	}
	if scrimpSeed != 0 {
		opts = append(opts, matrixprofile.WithSeed(scrimpSeed, scrimpSeed^0x9e3779b97f4a7c15))
	}

	start := time.Now()
	engine, err := matrixprofile.NewScrimp(series, scrimpWindow, opts...)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	write := func(profile matrixprofile.Profile) error {
		record := seriesio.NewProfileRecord(scrimpWindow, profile)
		record.Round = engine.Round()
		record.Rounds = engine.Rounds()
		return seriesio.WriteRecord(out, record)
	}

	for profile := range engine.All() {
		if scrimpEveryRound {
			if err := write(profile); err != nil {
				return fmt.Errorf("failed to write profile: %w", err)
			}
		}
		if scrimpMaxRounds > 0 && engine.Round() >= scrimpMaxRounds {
			break
		}
	}

	final := engine.Snapshot()
	if !scrimpEveryRound {
		if err := write(final); err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
	}

	logger.Info("Matrix profile complete",
		"rounds", engine.Round(),
		"exact", engine.Done(),
		"elapsed", time.Since(start),
	)

	if scrimpMotifs > 0 {
		motifs, err := final.TopKMotifs(scrimpMotifs)
		if err != nil {
			return err
		}
		for rank, match := range motifs {
			logger.Info("Motif", "rank", rank+1, "index", match.Index, "neighbor", match.Neighbor, "distance", match.Distance)
		}
		discords, err := final.TopKDiscords(scrimpMotifs)
		if err != nil {
			return err
		}
		for rank, match := range discords {
			logger.Info("Discord", "rank", rank+1, "index", match.Index, "neighbor", match.Neighbor, "distance", match.Distance)
		}
	}

	return nil
}
