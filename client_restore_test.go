package goTasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/goTasks/credstore"
)

func seedStore(t *testing.T, store *credstore.Memory, token string) {
	t.Helper()
	user, _ := json.Marshal(Profile{ID: 1, Name: "A", Email: "a@x.com"})
	if err := store.Write(context.Background(), credstore.Record{UserJSON: user, Token: token}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func TestRestoreEmptyStoreSettlesAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	client := newClient(t, srv, nil)

	snap, err := client.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if snap.Status != StatusAnonymous {
		t.Fatalf("status = %v, want anonymous", snap.Status)
	}

	status, err := client.AwaitReconcile(context.Background())
	if err != nil || status != StatusAnonymous {
		t.Fatalf("await = (%v, %v), want anonymous", status, err)
	}
}

func TestRestoreValidTokenConfirms(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("verify Authorization = %q, want Bearer tok1", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "name": "A", "email": "a@x.com"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credstore.NewMemory()
	seedStore(t, store, "tok1")
	client := newClient(t, srv, store)

	snap, err := client.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	// The optimistic belief is visible before verification settles.
	if snap.Status != StatusAuthenticated || snap.User == nil || snap.User.Name != "A" {
		t.Fatalf("optimistic snapshot = %+v", snap)
	}

	status, err := client.AwaitReconcile(context.Background())
	if err != nil {
		t.Fatalf("await reconcile: %v", err)
	}
	if status != StatusAuthenticated {
		t.Fatalf("settled status = %v, want authenticated", status)
	}
	if _, ok, _ := store.Read(context.Background()); !ok {
		t.Fatal("store must still hold the record after confirmation")
	}
}

func TestRestoreRevokedTokenTearsDown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credstore.NewMemory()
	seedStore(t, store, "stale")
	client := newClient(t, srv, store)

	snap, err := client.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if snap.Status != StatusAuthenticated {
		t.Fatalf("optimistic status = %v, want authenticated", snap.Status)
	}

	status, err := client.AwaitReconcile(context.Background())
	if err != nil {
		t.Fatalf("await reconcile: %v", err)
	}
	if status != StatusAnonymous {
		t.Fatalf("settled status = %v, want anonymous", status)
	}
	if _, ok, _ := store.Read(context.Background()); ok {
		t.Fatal("revoked token must clear storage")
	}
	if got := client.MetricsSnapshot().Counters[MetricVerifyRejected]; got != 1 {
		t.Fatalf("verify rejected metric = %d, want 1", got)
	}
}

func TestRestoreUnreachableBackendKeepsOptimisticBelief(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credstore.NewMemory()
	seedStore(t, store, "tok1")
	client := newClient(t, srv, store)

	if _, err := client.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	status, err := client.AwaitReconcile(context.Background())
	if err != nil {
		t.Fatalf("await reconcile: %v", err)
	}
	if status != StatusAuthenticated {
		t.Fatalf("settled status = %v, want authenticated (optimistic belief stands)", status)
	}
	if _, ok, _ := store.Read(context.Background()); !ok {
		t.Fatal("store must be untouched when the backend is unreachable")
	}
}

func TestRestorePartialRecordIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	store := credstore.NewMemory()
	store.SetEntry(credstore.KeyToken, "tok1") // token without user

	client := newClient(t, srv, store)

	snap, err := client.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if snap.Status != StatusAnonymous {
		t.Fatalf("status = %v, want anonymous (partial record is absent)", snap.Status)
	}
}

func TestRestoreExpiredJWTSkipsOptimisticBelief(t *testing.T) {
	verified := make(chan struct{}, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		verified <- struct{}{}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credstore.NewMemory()
	seedStore(t, store, expiredJWT(t))
	client := newClient(t, srv, store)

	snap, err := client.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if snap.Status == StatusAuthenticated {
		t.Fatal("an expired JWT must not be presented as authenticated")
	}

	status, err := client.AwaitReconcile(context.Background())
	if err != nil {
		t.Fatalf("await reconcile: %v", err)
	}
	if status != StatusAnonymous {
		t.Fatalf("settled status = %v, want anonymous", status)
	}

	select {
	case <-verified:
	case <-time.After(time.Second):
		t.Fatal("the backend must still get the final say")
	}
}
