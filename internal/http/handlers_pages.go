package http

import (
	"context"
	"net/http"

	"finman/internal/store"
)

// handleIndex renders the landing page. The root pattern matches
// everything, so unknown paths 404 here.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	s.renderPage(w, r, "index.html", nil)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	sess := sessionFromRequest(r)
	user, err := s.currentUser(r.Context(), sess)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Dashboard without valid session", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.renderPage(w, r, "dashboard.html", struct {
		User *store.User
	}{User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, "login.html", nil)
	case http.MethodPost:
		s.processLogin(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, "signup.html", nil)
	case http.MethodPost:
		s.processSignup(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) processLogin(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	phone := sanitizeInput(r.Form.Get("phone_number"))
	password := r.Form.Get("password")
	if phone == "" || password == "" {
		UnprocessableEntityError("Please enter your phone number and password").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	result, err := s.gateway.Login(ctx, phone, password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Login failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	s.establishSession(w, r, result)
}

func (s *Server) processSignup(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	phone := sanitizeInput(r.Form.Get("phone_number"))
	password := r.Form.Get("password")
	if name == "" || phone == "" || password == "" {
		UnprocessableEntityError("Please fill in all fields").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	result, err := s.gateway.Signup(ctx, name, phone, password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Signup failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	s.establishSession(w, r, result)
}

// establishSession relays the backend's session cookies to the browser
// and sends the client to the dashboard.
func (s *Server) establishSession(w http.ResponseWriter, r *http.Request, result *store.AuthResult) {
	for _, c := range result.Cookies {
		http.SetCookie(w, c)
	}

	s.logger.InfoContext(r.Context(), "Session established", "user_id", result.User.ID)

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/dashboard")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	sess := sessionFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	if err := s.gateway.Logout(ctx, sess); err != nil {
		// Logout is best-effort: the local session is cleared anyway.
		s.logger.WarnContext(r.Context(), "Backend logout failed", "error", err)
	}

	s.invalidateSession(sess)
	for _, c := range r.Cookies() {
		http.SetCookie(w, &http.Cookie{Name: c.Name, Value: "", Path: "/", MaxAge: -1})
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// currentUser asks the backend who the session belongs to.
func (s *Server) currentUser(ctx context.Context, sess store.Session) (*store.User, error) {
	cctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()
	return s.gateway.Me(cctx, sess)
}

// renderPage executes a full-page template.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
