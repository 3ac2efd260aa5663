package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"xsdindex/internal/config"
	"xsdindex/internal/graph"
	"xsdindex/internal/index"
	"xsdindex/internal/schema"
	"xsdindex/internal/storage"
	"xsdindex/internal/watcher"
)

var (
	rootCmd = &cobra.Command{
		Use:   "xsdindex",
		Short: "Build a consolidated, queryable JSON index from a directory of XSD schemas",
	}
	log = logrus.New()

	outputPath string
	dbPath     string
	pretty     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Warnf("Ignoring config.yaml: %v", err)
		cfg = config.Default()
	}

	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", cfg.Output.Path, "Path of the JSON index artifact")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", cfg.Output.DB, "Optional SQLite database to persist the index into")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", cfg.PrettyOutput(), "Indent the JSON output")

	rootCmd.AddCommand(newBuildCmd(cfg))
	rootCmd.AddCommand(newWatchCmd(cfg))
	rootCmd.AddCommand(newStatsCmd())
}

func inputDir(cfg *config.Config, args []string) (string, error) {
	dir := cfg.Source.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &os.PathError{Op: "stat", Path: dir, Err: syscall.ENOTDIR}
	}
	return dir, nil
}

// buildOnce runs the full pipeline and writes every configured output.
func buildOnce(dir string) error {
	start := time.Now()
	idx, err := index.Build(dir)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"schemas":    idx.Summary.SchemaCount,
		"components": idx.Summary.ComponentCount,
		"roots":      idx.Summary.RootElementCount,
		"warnings":   idx.Summary.WarningCount,
		"took":       time.Since(start).Round(time.Millisecond),
	}).Info("Index built")

	for code, count := range graph.WarningCodeCounts(idx.Warnings) {
		log.WithFields(logrus.Fields{"code": code, "count": count}).Warn("Data-quality warnings")
	}

	if err := index.Save(idx, outputPath, pretty); err != nil {
		return err
	}
	log.WithField("path", outputPath).Info("Wrote JSON index")

	if dbPath != "" {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveIndex(context.Background(), idx); err != nil {
			return err
		}
		log.WithField("path", dbPath).Info("Persisted index to database")
	}
	return nil
}

func newBuildCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "build [dir]",
		Short: "Scan a directory of .xsd files and write the index artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := inputDir(cfg, args)
			if err != nil {
				return err
			}
			log.WithField("dir", dir).Info("Scanning schema directory")
			return buildOnce(dir)
		},
	}
}

func newWatchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Build the index, then rebuild whenever a schema file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := inputDir(cfg, args)
			if err != nil {
				return err
			}
			if err := buildOnce(dir); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithField("dir", dir).Info("Watching for schema changes")
			err = watcher.Watch(ctx, dir, func() {
				if err := buildOnce(dir); err != nil {
					log.WithError(err).Error("Rebuild failed")
				}
			})
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print summary counts of a previously built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"version":     idx.Version,
				"generatedAt": idx.GeneratedAt,
				"source":      idx.SourceDirectory,
				"schemas":     idx.Summary.SchemaCount,
				"components":  idx.Summary.ComponentCount,
				"roots":       idx.Summary.RootElementCount,
				"warnings":    idx.Summary.WarningCount,
			}).Info("Index summary")

			for code, count := range graph.WarningCodeCounts(idx.Warnings) {
				log.WithFields(logrus.Fields{"code": code, "count": count}).Info("Warnings by code")
			}
			return nil
		},
	}
}

func loadIndex() (*schema.Index, error) {
	if dbPath != "" {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadIndex(context.Background())
	}
	return index.Load(outputPath)
}
