package web

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "lsfd-session"

const (
	sessionKeyAdmin     = "admin"
	sessionKeyAdminName = "admin_name"
)

// session returns the client's session, falling back to a fresh one when the
// cookie fails to decode (e.g. after a signing key rotation).
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// Get still returns a usable new session alongside the error.
		s.logger.Warn("session decode failed", "error", err)
	}
	return sess
}

// flash queues a message for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, msg string) {
	sess := s.session(r)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("session save failed", "error", err)
	}
}

// popFlashes consumes and returns the pending flash messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) > 0 {
		if err := sess.Save(r, w); err != nil {
			s.logger.Error("session save failed", "error", err)
		}
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// authorize is the single admin authorization check: it reads the session
// flag set at login and returns the authenticated identity. All admin-only
// handlers go through this.
func (s *Server) authorize(r *http.Request) (string, bool) {
	sess := s.session(r)
	isAdmin, ok := sess.Values[sessionKeyAdmin].(bool)
	if !ok || !isAdmin {
		return "", false
	}
	name, _ := sess.Values[sessionKeyAdminName].(string)
	return name, true
}

// setAdmin records a successful admin login in the session.
func (s *Server) setAdmin(w http.ResponseWriter, r *http.Request, name string) {
	sess := s.session(r)
	sess.Values[sessionKeyAdmin] = true
	sess.Values[sessionKeyAdminName] = name
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("session save failed", "error", err)
	}
}

// clearAdmin drops the admin flag, e.g. when the login page is opened.
func (s *Server) clearAdmin(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Values[sessionKeyAdmin] = false
	delete(sess.Values, sessionKeyAdminName)
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("session save failed", "error", err)
	}
}
