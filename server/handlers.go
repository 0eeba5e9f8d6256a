package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"favorites/tally"
)

func (a *App) handleTally(w http.ResponseWriter, r *http.Request) {
	// No limit, or limit <= 0, returns the whole ranking.
	limitStr := r.URL.Query().Get("limit")
	limit, atoiErr := strconv.Atoi(limitStr)
	if limitStr != "" && atoiErr != nil {
		log.Printf("tally: invalid limit %q, returning all titles", limitStr)
	}
	table, err := a.db.Tally()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, tally.Top(tally.Rank(table), limit))
}

func (a *App) handleCount(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "missing query parameter title", http.StatusBadRequest)
		return
	}
	exact := parseBool(r.URL.Query().Get("exact"))
	n, err := a.db.CountTitle(title, exact)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, CountResponse{Title: title, Exact: exact, Count: n})
}

func (a *App) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	table, err := a.db.Tally()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, MatchResponse{Query: q, Count: tally.CountMatching(table, tally.Contains(q))})
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
