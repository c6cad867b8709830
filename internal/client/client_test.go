package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Spok95/clinic-stock/internal/apperr"
)

type staticCreds struct {
	token       string
	invalidated bool
}

func (s *staticCreds) Token() string { return s.token }
func (s *staticCreds) Invalidate()   { s.invalidated = true; s.token = "" }

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode([]Material{{ID: 1, Name: "Saline 500ml", Unit: "milliliter"}})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client()).WithCredentials(&staticCreds{token: "abc"})
	mats, err := c.Materials(context.Background(), "sal")
	if err != nil {
		t.Fatalf("Materials: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotQuery != "sal" {
		t.Fatalf("q = %q", gotQuery)
	}
	if len(mats) != 1 || mats[0].Name != "Saline 500ml" {
		t.Fatalf("unexpected materials %+v", mats)
	}
}

func TestNoCredentialsNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization header %q", h)
		}
		_, _ = w.Write([]byte(`{"access_token":"t1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	tok, err := New(srv.URL, nil).Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "t1" {
		t.Fatalf("token = %+v", tok)
	}
}

func TestLoginIsFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content-type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("username") != "nurse@clinic.local" || r.PostForm.Get("password") != "secret" {
			t.Errorf("form = %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil).Login(context.Background(), "nurse@clinic.local", "secret"); err != nil {
		t.Fatal(err)
	}
}

func TestUnauthorizedInvalidatesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	creds := &staticCreds{token: "old"}
	_, err := New(srv.URL, nil).WithCredentials(creds).Me(context.Background())
	if !errors.Is(err, apperr.ErrAuthExpired) {
		t.Fatalf("err = %v, want ErrAuthExpired", err)
	}
	if !creds.invalidated {
		t.Fatal("credentials were not invalidated")
	}
}

func TestRejectionCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"insufficient quantity in batch"}`, "insufficient quantity in batch"},
		{"detail object", `{"detail":[{"loc":["body","delta"]}]}`, `[{"loc":["body","delta"]}]`},
		{"plain text", "boom", "boom"},
		{"empty", "", "Conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).CreateTransaction(context.Background(), TransactionCreate{BatchID: 1, MaterialID: 1, Delta: -1})
			var sr *apperr.ServerRejection
			if !errors.As(err, &sr) {
				t.Fatalf("err = %v, want ServerRejection", err)
			}
			if sr.Status != http.StatusConflict || sr.Message != tt.want {
				t.Fatalf("rejection = %+v", sr)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).DashboardStats(context.Background())
	var nf *apperr.NetworkFailure
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NetworkFailure", err)
	}
}

func TestTransactionPayloadOmitsEmptyLog(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions/" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":7,"batch_id":2,"material_id":1,"delta":-3}`))
	}))
	defer srv.Close()

	tr, err := New(srv.URL, nil).CreateTransaction(context.Background(), TransactionCreate{BatchID: 2, MaterialID: 1, Delta: -3})
	if err != nil {
		t.Fatal(err)
	}
	if tr.ID != 7 {
		t.Fatalf("transaction = %+v", tr)
	}
	if _, ok := got["narcotic_log"]; ok {
		t.Fatalf("payload has narcotic_log: %v", got)
	}
	if got["delta"] != float64(-3) {
		t.Fatalf("delta = %v", got["delta"])
	}
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(srv.URL, nil).Material(context.Background(), 42)
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false", err)
	}
}

func TestBadCredentialsAreARejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))
	defer srv.Close()

	creds := &staticCreds{token: "stale"}
	_, err := New(srv.URL, nil).WithCredentials(creds).Login(context.Background(), "a@b.c", "bad")
	var sr *apperr.ServerRejection
	if !errors.As(err, &sr) || sr.Message != "Incorrect email or password" {
		t.Fatalf("err = %v, want rejection with server message", err)
	}
	if creds.invalidated {
		t.Fatal("a failed login must not invalidate the current session")
	}
}

// pagedServer serves n numbered entries the way the API windows lists:
// limit defaults to 100 and is capped at 500.
func pagedServer(t *testing.T, n int, entry func(i int) any) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		out := []any{}
		for i := skip; i < n && i < skip+limit; i++ {
			out = append(out, entry(i))
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAllNarcoticLogsPages(t *testing.T) {
	srv, calls := pagedServer(t, 1234, func(i int) any { return NarcoticLog{ID: int64(i + 1)} })

	logs, err := New(srv.URL, srv.Client()).AllNarcoticLogs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1234 {
		t.Fatalf("got %d entries, want 1234", len(logs))
	}
	if logs[0].ID != 1 || logs[1233].ID != 1234 {
		t.Fatalf("entries out of order: first %d, last %d", logs[0].ID, logs[1233].ID)
	}
	if *calls != 3 {
		t.Fatalf("requests = %d, want 3", *calls)
	}
}

func TestAllMaterialsPages(t *testing.T) {
	// ровно одна полная страница: нужен ещё один запрос, чтобы увидеть конец
	srv, calls := pagedServer(t, ExportPage, func(i int) any { return Material{ID: int64(i + 1)} })

	ms, err := New(srv.URL, srv.Client()).AllMaterials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != ExportPage || *calls != 2 {
		t.Fatalf("got %d materials in %d requests", len(ms), *calls)
	}

	first, err := New(srv.URL, srv.Client()).Materials(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 100 {
		t.Fatalf("default page = %d, want 100", len(first))
	}
}
