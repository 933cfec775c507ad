package http

import (
	"html/template"
	"log/slog"
	"net/http"
)

type loginPageData struct {
	Error    string
	Register bool
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if s.auth.Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.renderLogin(w, r, loginPageData{}, http.StatusOK)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.renderLogin(w, r, loginPageData{Error: "Invalid request"}, http.StatusBadRequest)
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")

		if _, err := s.auth.Login(r.Context(), username, password); err != nil {
			slog.WarnContext(r.Context(), "Login failed", "username", username, "error", err)
			s.renderLogin(w, r, loginPageData{Error: "Invalid credentials"}, http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderLogin(w, r, loginPageData{Register: true}, http.StatusOK)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.renderLogin(w, r, loginPageData{Register: true, Error: "Invalid request"}, http.StatusBadRequest)
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		email := sanitizeInput(r.Form.Get("email"))
		password := r.Form.Get("password")

		if _, err := s.auth.Register(r.Context(), username, email, password); err != nil {
			slog.WarnContext(r.Context(), "Registration failed", "username", username, "error", err)
			s.renderLogin(w, r, loginPageData{Register: true, Error: "Registration failed: " + template.HTMLEscapeString(err.Error())}, http.StatusUnprocessableEntity)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.auth.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
