package clients

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"toloka2web/database"
	"toloka2web/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pointSettingsAt wires the global settings store at a throwaway database
// holding one Toloka api_url entry.
func pointSettingsAt(t *testing.T, baseURL string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AppSetting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if baseURL != "" {
		setting := models.AppSetting{Section: "Toloka", Key: "api_url", Value: baseURL}
		if err := db.Create(&setting).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func TestSearchRetriesOnceOnRetrySuggested(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"retry_suggested": true}`)
			return
		}
		fmt.Fprint(w, `{"torrents": [{"name": "Show S01E01"}]}`)
	}))
	defer srv.Close()
	pointSettingsAt(t, srv.URL)

	result, err := NewTolokaClient().SearchTorrents("show")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if _, ok := result["torrents"]; !ok {
		t.Fatalf("expected second response to be returned: %+v", result)
	}
}

func TestSearchGivesUpAfterSecondRetrySuggestion(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"retry_suggested": true}`)
	}))
	defer srv.Close()
	pointSettingsAt(t, srv.URL)

	result, err := NewTolokaClient().SearchTorrents("show")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want exactly 2 (no third retry)", calls)
	}
	if result["error"] != true {
		t.Fatalf("expected error flag, got %+v", result)
	}
	if result["message"] != RetrySuggestedMessage {
		t.Fatalf("message = %v, want %q", result["message"], RetrySuggestedMessage)
	}
}

func TestSearchWithoutConfiguredTracker(t *testing.T) {
	pointSettingsAt(t, "")

	if _, err := NewTolokaClient().SearchTorrents("show"); err == nil {
		t.Fatalf("expected error when tracker is not configured")
	}
}

func TestNonOKStatusSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	pointSettingsAt(t, srv.URL)

	if _, err := NewTolokaClient().TorrentDetail("t1"); err == nil {
		t.Fatalf("expected error for HTTP 502")
	}
}

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
	}
	for _, tt := range tests {
		if got := NormalizeImageURL(tt.in); got != tt.want {
			t.Fatalf("NormalizeImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
