package http

import (
	"log/slog"
	"net/http"
	"net/url"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?err=Invalid+request", http.StatusSeeOther)
		return
	}
	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		http.Redirect(w, r, "/?err=Category+name+is+required", http.StatusSeeOther)
		return
	}

	cat, err := s.cats.CreateCategory(r.Context(), name)
	if err != nil {
		// Category creation has no fallback; the gateway's error carries
		// the server message when one was sent.
		slog.WarnContext(r.Context(), "Category create failed", "name", name, "error", err)
		http.Redirect(w, r, "/?err="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	s.categoriesCache.Delete(categoriesCacheKey)
	slog.InfoContext(r.Context(), "Category created", "id", cat.ID, "name", cat.Name)
	http.Redirect(w, r, "/?ok=Category+added", http.StatusSeeOther)
}
