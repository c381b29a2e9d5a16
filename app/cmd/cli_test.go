package cmd

import "testing"

func TestListenAddr(t *testing.T) {
	tests := map[string]string{
		"3000":           ":3000",
		":3000":          ":3000",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range tests {
		if got := listenAddr(in); got != want {
			t.Fatalf("listenAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
