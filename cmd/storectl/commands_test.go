package main

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSignAndVerifyCallback(t *testing.T) {
	t.Setenv("STORE_PAYMENT_STORE_KEY", "SKEY0335")
	t.Setenv("STORE_PAYMENT_CLIENT_ID", "180000335")

	out, err := run(t, "", "sign", "--order-id", "ORD-1700000000000", "--amount", "49.98")
	require.NoError(t, err)

	var req gateway.PaymentRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "49.98", req.Fields[gateway.FieldAmount])
	assert.Equal(t, "180000335", req.Fields[gateway.FieldClientID])

	form := url.Values{}
	for k, v := range req.Fields {
		form.Set(k, v)
	}

	t.Run("Valid callback", func(t *testing.T) {
		out, err := run(t, form.Encode(), "verify-callback")
		require.NoError(t, err)
		assert.Contains(t, out, "hash: valid (sorted)")
		assert.Contains(t, out, "order: ORD-1700000000000")
		assert.Contains(t, out, "result: not approved")
	})

	t.Run("Tampered amount", func(t *testing.T) {
		tampered := url.Values{}
		for k, v := range form {
			tampered[k] = v
		}
		tampered.Set("amount", "0.01")
		_, err := run(t, tampered.Encode(), "verify-callback")
		assert.ErrorIs(t, err, gateway.ErrCallbackAuthentication)
	})
}

func TestSignRejectsBadAmount(t *testing.T) {
	t.Setenv("STORE_PAYMENT_STORE_KEY", "SKEY0335")
	_, err := run(t, "", "sign", "--order-id", "ORD-1", "--amount", "abc")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("STORE_AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("STORE_PAYMENT_STORE_KEY", "")

	out, err := run(t, "", "token", "--user", "admin-1", "--role", auth.RoleAdmin)
	require.NoError(t, err)

	tm, _ := auth.NewTokenManager("cli-secret", time.Hour)
	claims, err := tm.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}
