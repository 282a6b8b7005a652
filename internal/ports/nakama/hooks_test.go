package nakama

import (
	"context"
	"testing"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestExtractUserIDFromToken(t *testing.T) {
	uid, err := extractUserIDFromToken(signedToken(t, jwt.MapClaims{"uid": "u1", "usn": "player"}))
	if err != nil || uid != "u1" {
		t.Fatalf("uid = %q, err = %v", uid, err)
	}

	if _, err := extractUserIDFromToken(signedToken(t, jwt.MapClaims{"usn": "player"})); err == nil {
		t.Fatalf("expected error for missing uid")
	}
	if _, err := extractUserIDFromToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestAfterAuthenticateDeviceOnboardsNewAccount(t *testing.T) {
	nk := newFakeNakama()
	out := &api.Session{Created: true, Token: signedToken(t, jwt.MapClaims{"uid": "u1"})}

	if err := AfterAuthenticateDevice(context.Background(), noopLogger{}, nil, nk, out, &api.AuthenticateDeviceRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := nk.wallets["u1"]["chips"]; got != 10000 {
		t.Fatalf("wallet = %d, want 10000", got)
	}
	if nk.profiles["u1"] == "" {
		t.Fatalf("display name not set")
	}

	// A repeated hook run must not grant twice.
	if err := AfterAuthenticateDevice(userCtx("u1"), noopLogger{}, nil, nk, out, &api.AuthenticateDeviceRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := nk.wallets["u1"]["chips"]; got != 10000 {
		t.Fatalf("wallet = %d after second run, want 10000", got)
	}
}

func TestAfterAuthenticateDeviceSkipsExistingAccount(t *testing.T) {
	nk := newFakeNakama()
	out := &api.Session{Created: false, Token: "ignored"}
	if err := AfterAuthenticateDevice(userCtx("u1"), noopLogger{}, nil, nk, out, &api.AuthenticateDeviceRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nk.walletCalls) != 0 || len(nk.profiles) != 0 {
		t.Fatalf("existing account must not be touched")
	}
}
