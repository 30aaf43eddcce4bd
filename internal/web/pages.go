package web

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", basePage{
		Title:   "Home",
		Flashes: s.popFlashes(w, r),
	})
}

// staticPage returns a handler rendering a fixed template. warning toggles
// the under-construction banner some pages carry.
func (s *Server) staticPage(name, title string, warning bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, name, basePage{
			Title:   title,
			Warning: warning,
			Flashes: s.popFlashes(w, r),
		})
	}
}

type errorPage struct {
	basePage
	ErrorMessage string
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	// The 404 page is the coffin dance easter egg, also reachable at /hrtg.
	s.render(w, http.StatusNotFound, "coffin_dance.html", basePage{
		Title: "Not Found",
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusMethodNotAllowed, "error.html", errorPage{
		basePage:     basePage{Title: "Error"},
		ErrorMessage: "405 METHOD NOT ALLOWED",
	})
}

func (s *Server) handleServerError(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusInternalServerError, "error.html", errorPage{
		basePage:     basePage{Title: "Error"},
		ErrorMessage: "500 INTERNAL SERVER ERROR",
	})
}

// resultPage backs both the success ("result") and failure ("fail") pages;
// URL is where the continue link points.
type resultPage struct {
	basePage
	URL string
}

// renderResult completes a flow with a 200-class result page.
func (s *Server) renderResult(w http.ResponseWriter, r *http.Request, url string) {
	s.render(w, http.StatusOK, "result.html", resultPage{
		basePage: basePage{Title: "Result", Flashes: s.popFlashes(w, r)},
		URL:      url,
	})
}

// renderFail reports a recoverable failure (wrong password, validation,
// missing row). Still a 200-class page; the flash carries the reason.
func (s *Server) renderFail(w http.ResponseWriter, r *http.Request, url string) {
	s.render(w, http.StatusOK, "fail.html", resultPage{
		basePage: basePage{Title: "Failed", Flashes: s.popFlashes(w, r)},
		URL:      url,
	})
}
