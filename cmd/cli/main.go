package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/usecase"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gowallet-cli",
		Short:         "GoWallet CLI tool",
		Long:          `A command line interface for interacting with the GoWallet API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("GOWALLET_URL", "http://localhost:8080"), "Base URL of the GoWallet API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("GOWALLET_TOKEN"), "Bearer token (defaults to $GOWALLET_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		authCmd(opts),
		walletCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
		hashPasswordCmd(),
	)

	return rootCmd
}

func authCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication",
	}

	var register dto.RegisterRequest
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/register", register, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	registerCmd.Flags().StringVar(&register.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&register.Password, "password", "", "Password")
	registerCmd.Flags().StringVar(&register.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&register.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&register.Phone, "phone", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	var login dto.LoginRequest
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/login", login, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&login.Email, "email", "", "Email address")
	loginCmd.Flags().StringVar(&login.Password, "password", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	var refresh dto.RefreshRequest
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/refresh", refresh, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	refreshCmd.Flags().StringVar(&refresh.RefreshToken, "refresh-token", "", "Refresh token from login")
	_ = refreshCmd.MarkFlagRequired("refresh-token")

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.MeResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.User)
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session of the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.MessageResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/logout", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}

	cmd.AddCommand(registerCmd, loginCmd, refreshCmd, meCmd, logoutCmd)
	return cmd
}

func walletCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the wallet balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.GetWalletResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/wallet", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", resp.Wallet.Balance, resp.Wallet.Currency)
			return nil
		},
	}

	var limit, offset int
	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListTransactionsResponse
			path := fmt.Sprintf("/api/wallet/transactions?limit=%d&offset=%d", limit, offset)
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), resp.Transactions)
		},
	}
	transactionsCmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of transactions")
	transactionsCmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")

	cmd.AddCommand(
		showCmd,
		operationCmd(opts, "deposit", "Deposit funds", "/api/wallet/deposit"),
		operationCmd(opts, "withdraw", "Withdraw funds", "/api/wallet/withdraw"),
		transactionsCmd,
	)
	return cmd
}

func operationCmd(opts *options, use, short, path string) *cobra.Command {
	var description, idempotencyKey string

	cmd := &cobra.Command{
		Use:   use + " AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			req := dto.OperationRequest{Amount: amount, Description: description}
			var resp dto.OperationResponse
			err = opts.client().do(cmd.Context(), http.MethodPost, path, req, &resp,
				withHeader(middleware.IdempotencyKeyHeader, idempotencyKey))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: balance %s (transaction %s)\n",
				resp.Message, resp.Wallet.Balance, resp.Transaction.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for safe retries")
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.Context(), cmd.OutOrStdout(), opts.client())
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

var errInconsistent = errors.New("ledger is inconsistent")

func checkConsistency(ctx context.Context, w io.Writer, client *apiClient) error {
	var resp dto.ConsistencyResponse
	err := client.do(ctx, http.MethodGet, "/internal/ledger/consistency", nil, &resp)
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict:
		// An inconsistent ledger is reported with 409 and the full report.
		if err := json.Unmarshal(apiErr.Raw, &resp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	case err != nil:
		return err
	}

	if !resp.Consistent {
		fmt.Fprintf(w, "Consistency check FAILED (%d of %d wallets reconciled)\n", resp.ReconciledWallets, resp.TotalWallets)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WALLET\tRECORDED\tCALCULATED\tDIFFERENCE")
		for _, d := range resp.Discrepancies {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.WalletID, d.RecordedBalance, d.CalculatedBalance, d.Difference)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		return errInconsistent
	}

	fmt.Fprintf(w, "Consistency check PASSED\n")
	fmt.Fprintf(w, "Wallets: %d\n", resp.TotalWallets)
	fmt.Fprintf(w, "Status: %s\n", resp.Status)
	return nil
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	resolve := func() error {
		if databaseURL != "" && migrationsPath != "" {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if databaseURL == "" {
			databaseURL = cfg.DatabaseURL
		}
		if migrationsPath == "" {
			migrationsPath = cfg.MigrationsPath
		}
		return nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (defaults to $MIGRATIONS_PATH)")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolve(); err != nil {
				return err
			}
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolve(); err != nil {
				return err
			}
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolve(); err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), usecase.PasswordHashCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func printTransactions(w io.Writer, transactions []dto.TransactionResponse) error {
	if len(transactions) == 0 {
		fmt.Fprintln(w, "no transactions")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION\tCREATED")
	for _, t := range transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Type, t.Amount, t.BalanceAfter, truncate(t.Description, 32), t.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
