package schoology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/schoolwrapped/recap-backend/internal/logger"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c := newClientWithHTTP(Config{APIDomain: srv.URL}, srv.Client(), log)
	return c, srv
}

func TestFetchCollection_FollowsNextAcrossPages(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sections/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprintf(w, `{"assignment":[{"id":1},{"id":2}],"links":{"next":"%s/v1/sections/1/assignments?page=2"}}`, base)
		case "2":
			fmt.Fprintf(w, `{"assignment":[{"id":3}],"links":{"next":"%s/v1/sections/1/assignments?page=3"}}`, base)
		case "3":
			fmt.Fprint(w, `{"assignment":[{"id":4}],"links":{}}`)
		}
	})
	c, srv := testClient(t, mux)
	base = srv.URL

	items, err := c.FetchCollection(context.Background(), "sections/1/assignments", "assignment")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4 across 3 pages", len(items))
	}
	// Upstream order must survive pagination.
	var first struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(items[0], &first); err != nil || first.ID != 1 {
		t.Fatalf("first item = %s", items[0])
	}
	var last struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(items[3], &last); err != nil || last.ID != 4 {
		t.Fatalf("last item = %s", items[3])
	}
}

func TestFetchCollection_SelfReferencingNextTerminates(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/loop", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"item":[{"id":1}],"links":{"next":"%s/v1/loop"}}`, base)
	})
	c, srv := testClient(t, mux)
	base = srv.URL

	items, err := c.FetchCollection(context.Background(), "loop", "item")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("self-referencing cursor must stop after one page, got %d items", len(items))
	}
}

func TestFetchCollection_FirstArrayHeuristic(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		// total precedes the list; the heuristic must skip non-array fields.
		fmt.Fprint(w, `{"total":2,"thing":[{"id":"a"},{"id":"b"}],"other":[{"id":"x"}]}`)
	})
	c, _ := testClient(t, mux)

	items, err := c.FetchCollection(context.Background(), "things", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want the first array-valued field (2 items), got %d", len(items))
	}
}

func TestFetchCollection_NonArrayKeyIsEmptyPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/odd", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"item":{"id":1}}`)
	})
	c, _ := testClient(t, mux)

	items, err := c.FetchCollection(context.Background(), "odd", "item")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("non-array value under the expected key must read as empty, got %d", len(items))
	}
}

func TestFetchCollection_Non2xxIsUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/denied", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	c, _ := testClient(t, mux)

	_, err := c.FetchCollection(context.Background(), "denied", "item")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", ue.Status)
	}
}

func TestGetMe_DecodesProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"uid":12345,"name_display":"Pat Doe","primary_email":"pat@example.com"}`)
	})
	c, _ := testClient(t, mux)

	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.UserID() != "12345" {
		t.Fatalf("user id = %q, want numeric uid as string", me.UserID())
	}
	if me.NameDisplay != "Pat Doe" || me.PrimaryEmail != "pat@example.com" {
		t.Fatalf("profile fields wrong: %+v", me)
	}
}

func TestFlexScalars(t *testing.T) {
	var a RawAssignment
	if err := json.Unmarshal([]byte(`{"id":99,"due":"2024-03-10 12:00:00","allow_dropbox":"1"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ID.String() != "99" {
		t.Fatalf("id = %q", a.ID)
	}
	if !a.AllowsSubmission() {
		t.Fatalf("allow_dropbox \"1\" must read true")
	}

	var b RawAssignment
	if err := json.Unmarshal([]byte(`{"id":"x1"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !b.AllowsSubmission() {
		t.Fatalf("absent allow_dropbox must default to true")
	}

	var s RawSubmission
	if err := json.Unmarshal([]byte(`{"uid":"u1","late":1,"attachments":{"files":{"file":[{"filesize":"2048"}]}}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bool(s.Late) {
		t.Fatalf("late 1 must read true")
	}
	if len(s.Attachments.Files.File) != 1 || int64(s.Attachments.Files.File[0].Filesize) != 2048 {
		t.Fatalf("attachment decode wrong: %+v", s.Attachments)
	}
}
