package web

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"lsfd202201/internal/auth"
	"lsfd202201/internal/diag"
	"lsfd202201/internal/site"
)

// Server holds the handler dependencies: the content service, the password
// verifier, the session store, and the parsed templates.
type Server struct {
	service   *site.Service
	verifier  *auth.Verifier
	sessions  *sessions.CookieStore
	templates *template.Template
	logger    site.Logger
	diag      *diag.Diagnostics
}

// NewServer creates a Server. sessionKey signs the session cookies and comes
// from the environment at startup. d may be nil when the diagnostics
// listener is disabled.
func NewServer(service *site.Service, verifier *auth.Verifier, sessionKey string, logger site.Logger, d *diag.Diagnostics) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		service:   service,
		verifier:  verifier,
		sessions:  store,
		templates: templates,
		logger:    logger,
		diag:      d,
	}, nil
}

// Router builds the public router: HTML pages, the gated upload/admin/edit
// flows, and the read-only JSON API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	// Static pages
	r.Get("/", s.handleIndex)
	r.Get("/index", s.handleIndex)
	r.Get("/main", s.staticPage("main.html", "Main", true))
	r.Get("/members", s.staticPage("members.html", "Members", true))
	r.Get("/video", s.staticPage("video.html", "Video", true))
	r.Get("/share", s.staticPage("share.html", "Share", false))
	r.Get("/markdown-help", s.staticPage("markdown_help.html", "Markdown Help", false))
	r.Get("/about", s.staticPage("readme_en.html", "About", false))
	r.Get("/about-en", s.staticPage("readme_en.html", "About", false))
	r.Get("/about-zh", s.staticPage("readme_zh.html", "关于", false))
	r.Get("/kzkt", s.staticPage("kzkt.html", "Kzkt", true))

	// The easter-egg route renders the themed 404 page on purpose.
	r.Get("/hrtg", s.handleNotFound)

	// Articles
	r.Get("/articles", s.handleArticles)
	r.Get("/articles/{page:[0-9]+}", s.handleArticles)
	r.Get("/upload", s.handleUploadForm)
	r.Post("/upload-result", s.handleUploadResult)

	// Feedback
	r.Get("/feedback", s.handleFeedbackForm)
	r.Post("/feedback-result", s.handleFeedbackResult)

	// Admin
	r.Get("/admin-login", s.handleAdminLogin)
	r.Get("/admin", s.handleAdminPanel)
	r.Post("/admin", s.handleAdminAuth)
	r.Post("/admin-delete", s.handleAdminDelete)
	r.Get("/edit/{id:[0-9]+}", s.handleEditForm)
	r.Post("/edit-result/{id:[0-9]+}", s.handleEditResult)

	// Read-only JSON API
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", s.apiListArticles)
		r.Route("/{articleID:[0-9]+}", func(r chi.Router) {
			r.Use(s.articleCtx)
			r.Get("/", s.apiGetArticle)
		})
	})

	return r
}
