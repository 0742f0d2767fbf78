package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	goTasks "github.com/MrEthical07/goTasks"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// fakeBackend is a stateful stand-in for the task API: real registration,
// bearer tokens that /logout actually revokes, per-user task lists.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[string]fakeUser // keyed by email
	tokens    map[string]int64    // token -> user id
	tasks     map[int64][]fakeTask
	nextUser  int64
	nextTask  int64
	nextToken int64
}

type fakeUser struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

type fakeTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	fb := &fakeBackend{
		users:    map[string]fakeUser{},
		tokens:   map[string]int64{},
		tasks:    map[int64][]fakeTask{},
		nextUser: 1,
		nextTask: 1,
	}

	r := mux.NewRouter()
	r.HandleFunc("/login", fb.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", fb.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", fb.auth(fb.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/user", fb.auth(fb.handleUser)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", fb.auth(fb.handleListTasks)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", fb.auth(fb.handleCreateTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id:[0-9]+}", fb.auth(fb.handleUpdateTask)).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id:[0-9]+}", fb.auth(fb.handleDeleteTask)).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) auth(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}

		fb.mu.Lock()
		userID, ok := fb.tokens[header[len(prefix):]]
		fb.mu.Unlock()
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		next(w, r, userID)
	}
}

func (fb *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	user, ok := fb.users[req.Email]
	if !ok || user.Password != req.Password {
		reply(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	reply(w, http.StatusOK, fb.authBody(user))
}

func (fb *fakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	fields := map[string][]string{}
	if req.Password != req.PasswordConfirmation {
		fields["password"] = []string{"The password confirmation does not match."}
	}
	if _, taken := fb.users[req.Email]; taken {
		fields["email"] = []string{"The email has already been taken."}
	}
	if len(fields) > 0 {
		reply(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  fields,
		})
		return
	}

	user := fakeUser{ID: fb.nextUser, Name: req.Name, Email: req.Email, Password: req.Password}
	fb.nextUser++
	fb.users[req.Email] = user
	reply(w, http.StatusCreated, fb.authBody(user))
}

// authBody issues a fresh token. Callers hold fb.mu.
func (fb *fakeBackend) authBody(user fakeUser) map[string]any {
	fb.nextToken++
	token := "fake-token-" + strconv.FormatInt(fb.nextToken, 10)
	fb.tokens[token] = user.ID

	return map[string]any{
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
		"access_token": token,
	}
}

func (fb *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request, userID int64) {
	token := r.Header.Get("Authorization")[len("Bearer "):]

	fb.mu.Lock()
	delete(fb.tokens, token)
	fb.mu.Unlock()

	reply(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (fb *fakeBackend) handleUser(w http.ResponseWriter, r *http.Request, userID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	for _, user := range fb.users {
		if user.ID == userID {
			reply(w, http.StatusOK, map[string]any{"id": user.ID, "name": user.Name, "email": user.Email})
			return
		}
	}
	reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
}

func (fb *fakeBackend) handleListTasks(w http.ResponseWriter, r *http.Request, userID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	list := fb.tasks[userID]
	if list == nil {
		list = []fakeTask{}
	}
	reply(w, http.StatusOK, map[string]any{"tasks": list})
}

func (fb *fakeBackend) handleCreateTask(w http.ResponseWriter, r *http.Request, userID int64) {
	var req fakeTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	req.ID = fb.nextTask
	fb.nextTask++
	if req.Status == "" {
		req.Status = "pending"
	}
	fb.tasks[userID] = append(fb.tasks[userID], req)
	reply(w, http.StatusCreated, req)
}

func (fb *fakeBackend) handleUpdateTask(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	for i := range fb.tasks[userID] {
		task := &fb.tasks[userID][i]
		if task.ID != id {
			continue
		}
		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Status != nil {
			task.Status = *req.Status
		}
		reply(w, http.StatusOK, task)
		return
	}
	reply(w, http.StatusNotFound, map[string]string{"message": "task not found"})
}

func (fb *fakeBackend) handleDeleteTask(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	fb.mu.Lock()
	defer fb.mu.Unlock()

	list := fb.tasks[userID]
	for i, task := range list {
		if task.ID == id {
			fb.tasks[userID] = append(list[:i], list[i+1:]...)
			reply(w, http.StatusOK, map[string]any{})
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]string{"message": "task not found"})
}

func (fb *fakeBackend) tokenCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.tokens)
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newRedisClient spins up a miniredis and a go-redis client against it.
func newRedisClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// buildClient wires a session client against srv with the shared Redis store.
func buildClient(t *testing.T, srv *httptest.Server, rdb redis.UniversalClient) *goTasks.Client {
	t.Helper()

	client, err := goTasks.New().
		WithBaseURL(srv.URL).
		WithTimeout(5 * time.Second).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}
