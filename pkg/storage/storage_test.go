package storage_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=optigatestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/optigatestore;"

func newSystem(t *testing.T) storage.System {
	t.Helper()
	sys, err := storage.New(&storage.Config{
		ContainerName:    "reports",
		ConnectionString: azuriteConnString,
		MaxListSize:      10,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewInvalidConnectionString(t *testing.T) {
	_, err := storage.New(&storage.Config{
		ContainerName:    "reports",
		ConnectionString: "not-a-connection-string",
	}, slog.Default())
	if err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusUnprocessableEntity},
		{storage.ErrInvalidKey, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := faults.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "reports/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "reports/..hidden/file.xlsx", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "application/octet-stream"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := sys.List(ctx, "reports/../"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("List() error = %v, want ErrInvalidKey", err)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	objects := []storage.Object{
		{Key: "b", LastModified: base},
		{Key: "c", LastModified: base.Add(time.Hour)},
		{Key: "a", LastModified: base},
	}

	storage.SortNewestFirst(objects)

	got := make([]string, len(objects))
	for i, o := range objects {
		got[i] = o.Key
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFinalize(t *testing.T) {
	cfg := storage.Config{ConnectionString: "conn"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.ContainerName != "reports" {
		t.Errorf("container_name: got %s, want reports", cfg.ContainerName)
	}
	if cfg.MaxListSize != 100 {
		t.Errorf("max_list_size: got %d, want 100", cfg.MaxListSize)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("max_retries: got %d, want 3", cfg.MaxRetries)
	}

	capped := storage.Config{ConnectionString: "conn", MaxListSize: 9000}
	if err := capped.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if capped.MaxListSize != storage.MaxListCap {
		t.Errorf("max_list_size: got %d, want %d", capped.MaxListSize, storage.MaxListCap)
	}

	accountOnly := storage.Config{AccountURL: "https://acct.blob.core.windows.net/"}
	if err := accountOnly.Finalize(nil); err != nil {
		t.Errorf("account_url alone should be valid: %v", err)
	}

	missing := storage.Config{}
	err := missing.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "connection_string or account_url required") {
		t.Errorf("finalize error = %v", err)
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CONTAINER", "exports")
	t.Setenv("TEST_ACCOUNT_URL", "https://acct.blob.core.windows.net/")
	t.Setenv("TEST_MAX_LIST", "25")

	cfg := storage.Config{}
	err := cfg.Finalize(&storage.Env{
		ContainerName: "TEST_CONTAINER",
		AccountURL:    "TEST_ACCOUNT_URL",
		MaxListSize:   "TEST_MAX_LIST",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "exports" || cfg.AccountURL == "" || cfg.MaxListSize != 25 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}
