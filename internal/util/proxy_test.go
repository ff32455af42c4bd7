package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "bank.internal")

	tests := []struct {
		url  string
		want string
	}{
		{"http://attest.example/x", "http://proxy.local:3128"},
		{"https://attest.example/x", "http://secure-proxy.local:3128"},
		{"https://bank.internal/x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected no proxy, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}
