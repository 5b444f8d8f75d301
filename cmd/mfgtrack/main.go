package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/api"
	"github.com/xelth-com/mfgtrack/internal/config"
	"github.com/xelth-com/mfgtrack/internal/logging"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

var (
	useMock  bool
	apiURL   string
	username string
	password string
	jsonOut  bool

	cfg    *config.Config
	logger *zap.Logger
	store  *mockstore.Store
	client api.Client
)

var rootCmd = &cobra.Command{
	Use:   "mfgtrack",
	Short: "Manufacturing task tracking client",
	Long: `mfgtrack reads and updates job orders, devices and task completions
through the PHP production backend, or through an in-memory mock store.

Run "mfgtrack serve" to start a simulated backend on PORT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&useMock, "mock", false, "use the in-memory mock store (overrides USE_MOCK_DATA)")
	pf.StringVar(&apiURL, "api", "", "backend base URL (overrides API_BASE_URL)")
	pf.StringVarP(&username, "username", "u", "", "log in as this user before the command runs")
	pf.StringVarP(&password, "password", "p", mockstore.DefaultPassword, "password for --username")
	pf.BoolVar(&jsonOut, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(serveCmd, usersCmd, jobOrdersCmd, tasksCmd, dashboardCmd, reportCmd, labelsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger, store and client
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("mock") {
		cfg.API.UseMockData = useMock
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	logger, err = logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err = newStore(cfg, logger)
	if err != nil {
		return err
	}
	client = api.New(cfg.API, store, logger)
	return nil
}

func newStore(cfg *config.Config, logger *zap.Logger) (*mockstore.Store, error) {
	opts := []mockstore.Option{mockstore.WithLogger(logger)}
	if cfg.Mock.SeedProfile != "" {
		profile, err := mockstore.LoadProfile(cfg.Mock.SeedProfile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mockstore.WithProfile(profile))
	}
	if cfg.Mock.RandomSeed != 0 {
		opts = append(opts, mockstore.WithSeed(cfg.Mock.RandomSeed))
	}
	return mockstore.New(opts...), nil
}

// login opens a session when --username is set and returns its user
func login(ctx context.Context) (*models.User, error) {
	if username == "" {
		return nil, nil
	}
	u, err := client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("login failed for %q: invalid username or password", username)
	}
	logger.Debug("Logged in", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func pageFooter[T any](w io.Writer, p models.Page[T]) {
	if p.Limit > 0 {
		fmt.Fprintf(w, "page %d, %d of %d\n", p.Page, len(p.Items), p.Total)
	} else {
		fmt.Fprintf(w, "%d total\n", p.Total)
	}
}
