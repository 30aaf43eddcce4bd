package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"lsfd202201/internal/model"
	"lsfd202201/internal/site"
)

type articleCtxKey struct{}

// articleCtx loads the article named by the articleID URL parameter into the
// request context, answering 404 for anything that does not resolve.
func (s *Server) articleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
		if err != nil {
			render.Render(w, r, errNotFound)
			return
		}
		article, err := s.service.Article(r.Context(), id)
		if err != nil {
			if errors.Is(err, site.ErrNotFound) {
				render.Render(w, r, errNotFound)
				return
			}
			s.logger.Error("loading article failed", "id", id, "error", err)
			render.Render(w, r, errInternal)
			return
		}
		ctx := context.WithValue(r.Context(), articleCtxKey{}, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) apiListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.service.Articles(r.Context())
	if err != nil {
		s.logger.Error("listing articles failed", "error", err)
		render.Render(w, r, errInternal)
		return
	}
	if err := render.RenderList(w, r, newArticleListResponse(articles)); err != nil {
		render.Render(w, r, errRender(err))
	}
}

func (s *Server) apiGetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := r.Context().Value(articleCtxKey{}).(*model.Article)
	if !ok {
		render.Render(w, r, errNotFound)
		return
	}
	if err := render.Render(w, r, newArticleResponse(article)); err != nil {
		render.Render(w, r, errRender(err))
	}
}

// ArticleResponse is the JSON shape articles take on the wire.
type ArticleResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func newArticleResponse(a *model.Article) *ArticleResponse {
	return &ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Author:    a.Author,
		Date:      a.Date,
		Content:   a.Content,
		Timestamp: a.Timestamp,
	}
}

func (ar *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newArticleListResponse(articles []*model.Article) []render.Renderer {
	list := make([]render.Renderer, 0, len(articles))
	for _, a := range articles {
		list = append(list, newArticleResponse(a))
	}
	return list
}

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

var errNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

func errRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

// errInternal carries no ErrorText: server failures are logged, not exposed.
var errInternal = &ErrResponse{HTTPStatusCode: http.StatusInternalServerError, StatusText: "Internal server error."}
