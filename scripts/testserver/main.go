// Command testserver runs a small HTTP server with predictable endpoints
// for exercising loadpulse locally.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", handleOK)
	mux.HandleFunc("/slow", handleSlow)
	mux.HandleFunc("/flaky", handleFlaky)
	mux.HandleFunc("/echo", handleEcho)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "path": r.URL.Path})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("test server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func handleOK(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleSlow responds after a delay; ?ms=N overrides the default 500ms.
func handleSlow(w http.ResponseWriter, r *http.Request) {
	delay := 500 * time.Millisecond
	if ms := r.URL.Query().Get("ms"); ms != "" {
		if parsed, err := time.ParseDuration(ms + "ms"); err == nil {
			delay = parsed
		}
	}
	time.Sleep(delay)
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "delayed_ms": delay.Milliseconds()})
}

// handleFlaky fails roughly a third of the time with a 500.
func handleFlaky(w http.ResponseWriter, r *http.Request) {
	if rand.Intn(3) == 0 {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"ok": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"method": r.Method,
		"body":   string(body),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
