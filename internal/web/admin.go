package web

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"lsfd202201/internal/model"
)

// handleAdminLogin shows the login form. Opening it drops any existing admin
// session.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	s.clearAdmin(w, r)
	s.render(w, http.StatusOK, "admin_login.html", basePage{
		Title:   "Admin Login",
		Flashes: s.popFlashes(w, r),
	})
}

// handleAdminAuth checks the posted credentials: the username must be
// allow-listed AND the password must match the admin hash. Failures of
// either kind look identical to the client.
func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin-login", http.StatusSeeOther)
		return
	}

	name := r.PostFormValue("admin_name")
	password := r.PostFormValue("password")

	identity, ok := s.verifier.AuthorizeAdmin(name, password)
	if !ok {
		s.logger.Warn("admin login rejected", "name", name)
		s.flash(w, r, "Wrong Password")
		http.Redirect(w, r, "/admin-login", http.StatusSeeOther)
		return
	}

	s.setAdmin(w, r, identity)
	s.logger.Info("admin login", "name", identity)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

type adminPage struct {
	basePage
	Name     string
	Articles []*model.Article
	Feedback []*model.Feedback
}

// handleAdminPanel lists every article with delete controls, plus the
// visitor feedback. Session-gated.
func (s *Server) handleAdminPanel(w http.ResponseWriter, r *http.Request) {
	name, ok := s.authorize(r)
	if !ok {
		http.Redirect(w, r, "/admin-login", http.StatusSeeOther)
		return
	}

	articles, err := s.service.Articles(r.Context())
	if err != nil {
		s.logger.Error("listing articles failed", "error", err)
		s.handleServerError(w, r)
		return
	}

	feedback, err := s.service.Feedback(r.Context())
	if err != nil {
		s.logger.Error("listing feedback failed", "error", err)
		s.handleServerError(w, r)
		return
	}

	s.render(w, http.StatusOK, "admin.html", adminPage{
		basePage: basePage{Title: "Admin", Flashes: s.popFlashes(w, r)},
		Name:     capitalize(name),
		Articles: articles,
		Feedback: feedback,
	})
}

// handleAdminDelete removes one article by id. A missing id is reported via
// flash, not as an error; the request still completes with a result page.
func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); !ok {
		s.flash(w, r, "Not Admin")
		s.renderFail(w, r, "/admin-login")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.flash(w, r, "Invalid form submission")
		s.renderFail(w, r, "/admin")
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		s.flash(w, r, "Invalid article id")
		s.renderFail(w, r, "/admin")
		return
	}

	existed, err := s.service.DeleteArticle(r.Context(), id)
	if err != nil {
		s.logger.Error("delete failed", "id", id, "error", err)
		s.handleServerError(w, r)
		return
	}

	if existed {
		s.flash(w, r, "Article id "+strconv.FormatInt(id, 10)+" deleted")
	} else {
		s.flash(w, r, "Article id "+strconv.FormatInt(id, 10)+" not found.")
	}
	s.renderResult(w, r, "/admin")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
