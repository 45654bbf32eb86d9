package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/ridloal/apparel-store/internal/platform/config"
	"github.com/ridloal/apparel-store/internal/platform/database"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema (STORE_DB_DSN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(config.LoadStoreDBConfig().DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token (use --role admin to create an admin token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			// store key tidak dibutuhkan untuk membuat token
			if err != nil && !errors.Is(err, config.ErrMissingStoreKey) {
				return err
			}
			tm, err := auth.NewTokenManager(settings.Auth.JWTSecret, settings.Auth.TokenTTL)
			if err != nil {
				return err
			}
			tok, err := tm.Issue(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id carried in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleCustomer, "role: customer or admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func loadSigner() (*gateway.Signer, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	return gateway.NewSigner(settings.Payment)
}

func signCmd() *cobra.Command {
	var orderID, amount string
	var asForm bool
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build a signed gateway request for an order id and amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			signer, err := loadSigner()
			if err != nil {
				return err
			}
			req, err := signer.BuildPaymentRequest(&domain.Order{OrderID: orderID, TotalAmount: total})
			if err != nil {
				return err
			}
			if asForm {
				return gateway.RenderRedirectForm(cmd.OutOrStdout(), req)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		},
	}
	cmd.Flags().StringVar(&orderID, "order-id", "", "order id (oid)")
	cmd.Flags().StringVar(&amount, "amount", "", "order total, e.g. 49.98")
	cmd.Flags().BoolVar(&asForm, "form", false, "print the auto-submit HTML form instead of JSON")
	_ = cmd.MarkFlagRequired("order-id")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// verifyCallbackCmd membaca body callback form-encoded dari stdin.
func verifyCallbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-callback",
		Short: "Verify a form-encoded bank callback read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
			if err != nil {
				return fmt.Errorf("callback body is not form-encoded: %w", err)
			}
			fields := make(gateway.Fields, len(values))
			for k, v := range values {
				fields[k] = v[0]
			}

			signer, err := loadSigner()
			if err != nil {
				return err
			}
			if err := signer.Verify(fields); err != nil {
				return err
			}

			cb := gateway.ParseCallback(fields)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hash: valid (%s)\n", signer.SchemeName())
			fmt.Fprintf(out, "order: %s\n", cb.OrderID)
			if cb.Approved() {
				fmt.Fprintf(out, "result: approved (transaction %s)\n", cb.TransID)
			} else {
				fmt.Fprintf(out, "result: not approved: %s\n", cb.FailureReason())
			}
			return nil
		},
	}
}
