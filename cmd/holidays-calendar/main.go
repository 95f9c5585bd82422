package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jpmobiletanaka/holidays-api-go/internal/calendar"
	"github.com/jpmobiletanaka/holidays-api-go/internal/config"
	"github.com/jpmobiletanaka/holidays-api-go/internal/holidaysapi"
	"github.com/jpmobiletanaka/holidays-api-go/pkg/dateutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holidays-calendar",
		Short: "Holidays API client",
		Long:  "Fetch holidays from the Holidays API and build dense per-country calendars with long-holiday day types",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(holidaysCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func calendarCmd() *cobra.Command {
	var (
		fromStr   string
		toStr     string
		countries []string
		minDays   int
		weekends  bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Build the labeled calendar for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			from, to, err := parseRange(fromStr, toStr)
			if err != nil {
				return err
			}

			opts := calendar.Options{
				CountryCodes:       cfg.Calendar.Countries,
				MinLongHolidayDays: cfg.Calendar.MinLongHolidayDays,
				IncludeWeekends:    cfg.Calendar.IncludeWeekends,
			}
			if cmd.Flags().Changed("countries") {
				opts.CountryCodes = countries
			}
			if cmd.Flags().Changed("min-days") {
				opts.MinLongHolidayDays = minDays
			}
			if cmd.Flags().Changed("weekends") {
				opts.IncludeWeekends = weekends
			}

			builder := calendar.NewBuilder(newClient(cfg), logger)

			cal, err := builder.BuildCalendar(context.Background(), from, to, opts)
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return fmt.Errorf("failed to create output dir: %w", err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if err := cal.WriteCSV(out); err != nil {
				return fmt.Errorf("failed to write calendar: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Range start date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&toStr, "to", "", "Range end date (YYYY-MM-DD, required)")
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "Country codes (default: from config, else inferred from data)")
	cmd.Flags().IntVar(&minDays, "min-days", calendar.DefaultMinLongHolidayDays, "Minimum run length that counts as a long holiday")
	cmd.Flags().BoolVar(&weekends, "weekends", false, "Count every Saturday/Sunday as a day off")
	cmd.Flags().StringVar(&output, "output", "", "Write CSV to file instead of stdout")

	return cmd
}

func holidaysCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
	)

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Dump raw holiday records for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			from, to, err := parseRange(fromStr, toStr)
			if err != nil {
				return err
			}

			records, err := newClient(cfg).FetchHolidays(context.Background(), from, to)
			if err != nil {
				return fmt.Errorf("failed to fetch holidays: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Range start date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&toStr, "to", "", "Range end date (YYYY-MM-DD, required)")

	return cmd
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both --from and --to are required")
	}

	from, err := dateutil.ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := dateutil.ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}

	return from, to, nil
}

func newClient(cfg *config.Config) *holidaysapi.Client {
	tokens := holidaysapi.NewTokenStore(cfg.API.GetTokenFile(), 0, logger)

	return holidaysapi.NewClient(
		cfg.API.BaseURL,
		cfg.API.Email,
		cfg.API.Password,
		tokens,
		cfg.API.GetTimeout(),
		logger,
	)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
