// mock-api is a tiny Healthchecks-compatible management API for local
// testing of hc-bulk. It serves a fixed project of checks, honours tag
// narrowing on list, applies sparse updates, and can simulate rate
// limiting via RATE_LIMIT_EVERY.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type check struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Desc         string `json:"desc"`
	Status       string `json:"status"`
	Tags         string `json:"tags"`
	Timeout      int    `json:"timeout"`
	Grace        int    `json:"grace"`
	Schedule     string `json:"schedule"`
	TZ           string `json:"tz"`
	Methods      string `json:"methods"`
	Channels     string `json:"channels"`
	ManualResume bool   `json:"manual_resume"`
}

type checkUpdate struct {
	Name         *string `json:"name"`
	Desc         *string `json:"desc"`
	Tags         *string `json:"tags"`
	Timeout      *int    `json:"timeout"`
	Grace        *int    `json:"grace"`
	Schedule     *string `json:"schedule"`
	TZ           *string `json:"tz"`
	Methods      *string `json:"methods"`
	Channels     *string `json:"channels"`
	ManualResume *bool   `json:"manual_resume"`
}

type store struct {
	mu       sync.Mutex
	checks   []check
	requests int
	// Every Nth mutating request answers 429, 0 disables.
	rateLimitEvery int
}

func newStore() *store {
	every := 0
	if v := os.Getenv("RATE_LIMIT_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			every = n
		}
	}
	return &store{
		rateLimitEvery: every,
		checks: []check{
			{UUID: "11111111-aaaa-4bbb-8ccc-000000000001", Name: "backup-db", Slug: "backup-db", Status: "up", Tags: "prod db", Timeout: 86400, Grace: 3600},
			{UUID: "11111111-aaaa-4bbb-8ccc-000000000002", Name: "backup-logs", Slug: "backup-logs", Status: "paused", Tags: "prod", Timeout: 86400, Grace: 3600},
			{UUID: "11111111-aaaa-4bbb-8ccc-000000000003", Name: "etl-hourly", Slug: "etl-hourly", Status: "down", Tags: "dev etl", Schedule: "0 * * * *", TZ: "UTC"},
			{UUID: "11111111-aaaa-4bbb-8ccc-000000000004", Name: "", Slug: "worker-cleanup", Status: "new", Tags: ""},
		},
	}
}

func main() {
	st := newStore()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/v3/checks/", st.handleChecks)

	logger := log.New(log.Writer(), "mock-api ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8080",
		Handler: logRequests(logger, requireKey(mux)),
	}

	logger.Println("listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func (st *store) handleChecks(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v3/checks/")
	switch {
	case rest == "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		st.handleList(w, r)
	case strings.HasSuffix(rest, "/pause"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		st.handlePause(w, r, strings.TrimSuffix(rest, "/pause"))
	default:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		st.handleUpdate(w, r, rest)
	}
}

func (st *store) handleList(w http.ResponseWriter, r *http.Request) {
	st.mu.Lock()
	defer st.mu.Unlock()

	tags := r.URL.Query()["tag"]
	matched := make([]check, 0, len(st.checks))
	for _, c := range st.checks {
		if hasAllTags(c.Tags, tags) {
			matched = append(matched, c)
		}
	}
	writeJSON(w, map[string]any{"checks": matched})
}

func (st *store) handleUpdate(w http.ResponseWriter, r *http.Request, uuid string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.throttle(w) {
		return
	}

	var upd checkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for i := range st.checks {
		if st.checks[i].UUID != uuid {
			continue
		}
		applyUpdate(&st.checks[i], upd)
		writeJSON(w, st.checks[i])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (st *store) handlePause(w http.ResponseWriter, r *http.Request, uuid string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.throttle(w) {
		return
	}

	for i := range st.checks {
		if st.checks[i].UUID != uuid {
			continue
		}
		st.checks[i].Status = "paused"
		writeJSON(w, st.checks[i])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (st *store) throttle(w http.ResponseWriter) bool {
	st.requests++
	if st.rateLimitEvery > 0 && st.requests%st.rateLimitEvery == 0 {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited, try later"))
		return true
	}
	return false
}

func applyUpdate(c *check, upd checkUpdate) {
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Desc != nil {
		c.Desc = *upd.Desc
	}
	if upd.Tags != nil {
		c.Tags = *upd.Tags
	}
	if upd.Timeout != nil {
		c.Timeout = *upd.Timeout
	}
	if upd.Grace != nil {
		c.Grace = *upd.Grace
	}
	if upd.Schedule != nil {
		c.Schedule = *upd.Schedule
	}
	if upd.TZ != nil {
		c.TZ = *upd.TZ
	}
	if upd.Methods != nil {
		c.Methods = *upd.Methods
	}
	if upd.Channels != nil {
		c.Channels = *upd.Channels
	}
	if upd.ManualResume != nil {
		c.ManualResume = *upd.ManualResume
	}
}

func hasAllTags(tagString string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]bool)
	for _, tok := range strings.Fields(tagString) {
		have[tok] = true
	}
	for _, tag := range wanted {
		if !have[tag] {
			return false
		}
	}
	return true
}

func requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing api key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
