package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookmarkChangesTotal(t *testing.T) {
	before := testutil.ToFloat64(BookmarkChangesTotal.WithLabelValues("insert", "created"))
	BookmarkChangesTotal.WithLabelValues("insert", "created").Inc()
	after := testutil.ToFloat64(BookmarkChangesTotal.WithLabelValues("insert", "created"))

	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer("")
	if srv.Addr != DefaultAddress {
		t.Errorf("Addr = %q, want %q", srv.Addr, DefaultAddress)
	}

	RemoteRequestsTotal.WithLabelValues("omdb", "search", "ok").Inc()

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), "show_manager_remote_requests_total") {
		t.Error("metrics output missing show_manager_remote_requests_total")
	}
}
