package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lsfd202201/internal/site"
)

type articlesPage struct {
	basePage
	ArticleTitle string
	Author       string
	Date         string
	ContentHTML  template.HTML
	Page         *site.Page
}

// handleArticles renders the paginated public view: one article per page,
// newest first. Markdown is rendered here, at display time; the store keeps
// the raw source.
func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	pageNum := 1
	if p := chi.URLParam(r, "page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			s.handleNotFound(w, r)
			return
		}
		pageNum = n
	}

	page, err := s.service.ArticlePage(r.Context(), pageNum)
	if err != nil {
		s.logger.Error("listing articles failed", "error", err)
		s.handleServerError(w, r)
		return
	}

	if page.Total == 0 {
		s.flash(w, r, "No Articles! Please Create one first!")
		s.renderFail(w, r, "/upload")
		return
	}
	if len(page.Articles) == 0 {
		// Past the last page.
		s.handleNotFound(w, r)
		return
	}

	article := page.Articles[0]
	content, err := renderMarkdown(article.Content)
	if err != nil {
		s.logger.Error("markdown render failed", "id", article.ID, "error", err)
		s.handleServerError(w, r)
		return
	}

	s.render(w, http.StatusOK, "articles.html", articlesPage{
		basePage:     basePage{Title: article.Title, Warning: true, Flashes: s.popFlashes(w, r)},
		ArticleTitle: article.Title,
		Author:       article.Author,
		Date:         article.Date,
		ContentHTML:  content,
		Page:         page,
	})
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "upload.html", basePage{
		Title:   "New Article",
		Flashes: s.popFlashes(w, r),
	})
}

// handleUploadResult runs the password-gated creation flow. Wrong password
// and validation failures are handled the same way: a flash message and the
// fail page, with no partial write.
func (s *Server) handleUploadResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flash(w, r, "Invalid form submission")
		s.renderFail(w, r, "/upload")
		return
	}

	_, err := s.service.SubmitArticle(r.Context(), site.SubmitRequest{
		Name:     r.PostFormValue("name"),
		Password: r.PostFormValue("password"),
		Date:     r.PostFormValue("date"),
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
	})

	var verr *site.ValidationError
	switch {
	case errors.Is(err, site.ErrWrongPassword):
		s.flash(w, r, "Wrong Password")
		s.renderFail(w, r, "/upload")
	case errors.As(err, &verr):
		s.flash(w, r, verr.Error())
		s.renderFail(w, r, "/upload")
	case err != nil:
		s.logger.Error("article submit failed", "error", err)
		s.handleServerError(w, r)
	default:
		s.flash(w, r, "Upload Success")
		s.renderResult(w, r, "/articles")
	}
}

type editPage struct {
	basePage
	ID      int64
	Content string
}

// handleEditForm shows the admin edit form with the current raw markdown.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); !ok {
		s.flash(w, r, "Not Admin")
		s.renderFail(w, r, "/admin-login")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	article, err := s.service.Article(r.Context(), id)
	if errors.Is(err, site.ErrNotFound) {
		s.flash(w, r, "Article not found")
		s.renderFail(w, r, "/admin")
		return
	}
	if err != nil {
		s.logger.Error("loading article for edit failed", "id", id, "error", err)
		s.handleServerError(w, r)
		return
	}

	s.render(w, http.StatusOK, "edit.html", editPage{
		basePage: basePage{Title: "Edit", Flashes: s.popFlashes(w, r)},
		ID:       article.ID,
		Content:  article.Content,
	})
}

// handleEditResult commits a full-content replace. Any failure is reported
// as "Edit Failed!" with the row left unchanged.
func (s *Server) handleEditResult(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); !ok {
		s.flash(w, r, "Not Admin")
		s.renderFail(w, r, "/admin-login")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.flash(w, r, "Edit Failed!")
		s.renderFail(w, r, "/admin-login")
		return
	}

	if err := s.service.EditArticle(r.Context(), id, r.PostFormValue("content")); err != nil {
		s.logger.Warn("edit failed", "id", id, "error", err)
		s.flash(w, r, "Edit Failed!")
		s.renderFail(w, r, "/admin-login")
		return
	}

	s.flash(w, r, "Edit Succeeded")
	s.renderResult(w, r, "/admin")
}

func (s *Server) handleFeedbackForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "feedback.html", basePage{
		Title:   "Feedback",
		Flashes: s.popFlashes(w, r),
	})
}

func (s *Server) handleFeedbackResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flash(w, r, "Invalid form submission")
		s.renderFail(w, r, "/feedback")
		return
	}

	_, err := s.service.SubmitFeedback(r.Context(), r.PostFormValue("body"), r.PostFormValue("author"))

	var verr *site.ValidationError
	switch {
	case errors.As(err, &verr):
		s.flash(w, r, verr.Error())
		s.renderFail(w, r, "/feedback")
	case err != nil:
		s.logger.Error("feedback submit failed", "error", err)
		s.handleServerError(w, r)
	default:
		s.flash(w, r, "Thanks for your feedback!")
		s.renderResult(w, r, "/")
	}
}
