package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/display"
	"github.com/tayloree/order-catalog/internal/filter"
)

func snapshotMeta(snap *catalog.Snapshot) *meta {
	return &meta{
		SnapshotID: snap.ID.String(),
		LoadedAt:   snap.LoadedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.Snapshot()
	writeSuccess(w, map[string]any{
		"status": "ok",
		"groups": snap.Len(),
	}, snapshotMeta(snap))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	q := r.URL.Query()

	opts, msg := viewOptions(q, snap.Categories())
	if msg != "" {
		writeError(w, http.StatusBadRequest, codeInvalidArgs, msg)
		return
	}

	groups := filter.View(snap.Groups(), opts)
	out := make([]display.GroupJSON, 0, len(groups))
	for _, g := range groups {
		out = append(out, display.ToGroupJSON(g.Summary))
	}

	m := snapshotMeta(snap)
	m.Total = snap.Len()
	m.Returned = len(out)
	w.Header().Set("X-Snapshot-Id", m.SnapshotID)
	writeSuccess(w, out, m)
}

func viewOptions(q url.Values, categories []string) (filter.Options, string) {
	opts := filter.Options{Query: q.Get("q"), Sort: filter.ColumnGroupKey}

	if raw := q.Get("category"); raw != "" {
		cat, ok := filter.ResolveCategory(raw, categories)
		if !ok {
			return opts, "unknown category " + strconv.Quote(raw)
		}
		opts.Category = cat
	}
	if raw, ok := q["sort"]; ok {
		col, err := filter.ParseColumn(raw[0])
		if err != nil {
			return opts, err.Error()
		}
		opts.Sort = col
	}
	dir, err := filter.ParseDirection(q.Get("dir"))
	if err != nil {
		return opts, err.Error()
	}
	opts.Direction = dir
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, "limit must be a non-negative integer"
		}
		opts.Limit = n
	}
	return opts, ""
}

// groupKeyParam returns the decoded {key} segment. chi routes on RawPath
// when the request has one, so only then is the parameter still escaped.
func groupKeyParam(r *http.Request) string {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	key := groupKeyParam(r)
	g, ok := snap.Group(key)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "no group "+strconv.Quote(key))
		return
	}
	items, _ := snap.Details(key)

	out := display.DetailsJSON{Group: display.ToGroupJSON(g.Summary), Purchases: make([]display.ItemJSON, 0, len(items))}
	for _, item := range items {
		out.Purchases = append(out.Purchases, display.ToItemJSON(item))
	}
	writeSuccess(w, out, snapshotMeta(snap))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	key := groupKeyParam(r)
	chart, ok := snap.Chart(key)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "no group "+strconv.Quote(key))
		return
	}
	writeSuccess(w, chart, snapshotMeta(snap))
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	snap := s.Snapshot()
	writeSuccess(w, display.CategoryCounts(snap), snapshotMeta(snap))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	inputs := r.URL.Query()["name"]
	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgs, "name is required")
		return
	}
	out := make([]display.ParsedJSON, 0, len(inputs))
	for _, n := range inputs {
		p := s.parser.Parse(n)
		out = append(out, display.ToParsedJSON(n, p, s.classifier.Explain(p.GroupKey)))
	}
	writeSuccess(w, out, nil)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Reload(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoSources) {
			writeError(w, http.StatusConflict, codeInvalidArgs, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, codeUpstream, err.Error())
		return
	}
	writeSuccess(w, map[string]any{
		"records_in": snap.RecordsIn,
		"dropped":    snap.Dropped,
		"groups":     snap.Len(),
	}, snapshotMeta(snap))
}
