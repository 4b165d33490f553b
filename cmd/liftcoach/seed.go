package main

import (
	"context"
	"fmt"
	"time"

	"liftcoach/server/internal/bootstrap"
	"liftcoach/server/internal/seed"

	"github.com/spf13/cobra"
)

var (
	seedSource       string
	seedImageBase    string
	seedReset        bool
	seedMirrorImages bool
	seedTimeout      time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the exercise catalog",
	Long: `Download the open-source free-exercise-db dataset and insert it into the exercise catalog.
With --mirror-images every image is copied into the configured S3 bucket.`,
	Example: `  liftcoach seed --reset
  liftcoach seed --source https://mirror.example.com/exercises.json --mirror-images`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
		defer cancel()

		cfg, repos, closeFn, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		files, err := bootstrap.OpenStorage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}

		importer := seed.NewImporter(repos.Exercises, files, nil)
		res, err := importer.Run(ctx, seed.Options{
			SourceURL:    seedSource,
			ImageBaseURL: seedImageBase,
			Reset:        seedReset,
			MirrorImages: seedMirrorImages,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if seedReset {
			fmt.Fprintf(out, "Removed %d exercises\n", res.Removed)
		}
		fmt.Fprintf(out, "✓ Imported %d exercises\n", res.Imported)
		if seedMirrorImages {
			fmt.Fprintf(out, "  Images mirrored: %d, failed: %d\n", res.ImagesMirrored, res.ImagesFailed)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedSource, "source", seed.DefaultSourceURL, "URL of the exercises JSON")
	seedCmd.Flags().StringVar(&seedImageBase, "image-base", seed.DefaultImageBaseURL, "Base URL prepended to image paths")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Remove the existing catalog first")
	seedCmd.Flags().BoolVar(&seedMirrorImages, "mirror-images", false, "Copy images into the S3 bucket")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 10*time.Minute, "Overall timeout")
}
