package supabase

import (
	"net/http"
	"testing"
)

func TestDecodeAPIErrorShapes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		code string
		msg  string
	}{
		{"gotrue", `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`, "invalid_credentials", "Invalid login credentials"},
		{"oauth", `{"error":"invalid_grant","error_description":"Email not confirmed"}`, "invalid_grant", "Email not confirmed"},
		{"postgrest", `{"code":"42501","message":"permission denied","details":null,"hint":null}`, "42501", "permission denied"},
		{"garbage", `<html>bad gateway</html>`, "", http.StatusText(http.StatusBadGateway)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status := http.StatusBadRequest
			if tc.name == "garbage" {
				status = http.StatusBadGateway
			}
			err := decodeAPIError(status, []byte(tc.raw))
			if err.Code != tc.code || err.Message != tc.msg {
				t.Fatalf("got code=%q msg=%q", err.Code, err.Message)
			}
		})
	}
}

func TestStorageKeyUsesProjectRef(t *testing.T) {
	t.Parallel()
	if got := storageKey("abcd.supabase.co"); got != "sb-abcd-auth-token" {
		t.Fatalf("unexpected key %q", got)
	}
}
