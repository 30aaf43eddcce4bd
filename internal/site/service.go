package site

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"lsfd202201/internal/auth"
	"lsfd202201/internal/model"
)

// ArticlesPerPage is the page size of the public articles view. The site
// shows one article per page, newest first.
const ArticlesPerPage = 1

// NotificationSubject is the subject line of the admin notification mail.
const NotificationSubject = "A new article was added just now!"

const (
	maxNameLen    = 64
	maxTitleLen   = 64
	maxFeedback   = 200
	maxFeedbackBy = 20
)

// Service is the orchestration layer between the HTTP handlers / CLI and the
// store. It owns validation, password gating, and the post-commit
// notification.
type Service struct {
	store      Store
	verifier   *auth.Verifier
	mail       MailSender
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	recipients []string
}

// NewService creates a Service with the provided dependencies. recipients is
// the fixed admin list notified on article creation.
func NewService(store Store, verifier *auth.Verifier, mail MailSender, logger Logger, clock Clock, idgen IDGenerator, recipients []string) *Service {
	return &Service{
		store:      store,
		verifier:   verifier,
		mail:       mail,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		recipients: recipients,
	}
}

// SubmitRequest carries the upload form fields.
type SubmitRequest struct {
	Name     string
	Password string
	Date     string
	Title    string
	Content  string
}

// SubmitArticle runs the password-gated creation flow: verify the submitted
// password against the upload and admin hashes, validate the fields, persist
// the article, then notify the admins. The notification is invoked exactly
// once after the row is committed; a delivery failure is logged and does not
// undo the creation.
func (s *Service) SubmitArticle(ctx context.Context, req SubmitRequest) (*model.Article, error) {
	if !s.verifier.VerifyUpload(req.Password) {
		return nil, ErrWrongPassword
	}

	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:     req.Title,
		Author:    req.Name,
		Date:      req.Date,
		Content:   req.Content,
		Timestamp: s.clock.Now(),
	}

	created, err := s.store.CreateArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article created", "id", created.ID, "title", created.Title, "author", created.Author)

	if err := s.mail.SendArticleNotification(ctx, s.recipients, NotificationSubject, created); err != nil {
		s.logger.Error("notification failed", "id", created.ID, "error", err)
	}

	return created, nil
}

func validateSubmit(req SubmitRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case utf8.RuneCountInString(req.Name) > maxNameLen:
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d characters", maxNameLen)}
	case strings.TrimSpace(req.Title) == "":
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	case utf8.RuneCountInString(req.Title) > maxTitleLen:
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("longer than %d characters", maxTitleLen)}
	case strings.TrimSpace(req.Date) == "":
		return &ValidationError{Field: "date", Reason: "must not be empty"}
	case strings.TrimSpace(req.Content) == "":
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}

// Article returns the article with the given id, or ErrNotFound.
func (s *Service) Article(ctx context.Context, id int64) (*model.Article, error) {
	a, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding article: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Articles returns every article ordered by id ascending.
func (s *Service) Articles(ctx context.Context) ([]*model.Article, error) {
	return s.store.ListArticles(ctx)
}

// Page is one page of the public articles view.
type Page struct {
	Articles []*model.Article
	Number   int // 1-based
	Total    int // total article count
	Pages    int // total page count
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.Pages }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }

// ArticlePage returns the requested page ordered by timestamp descending.
// Requesting a page past the end yields an empty page, not an error.
func (s *Service) ArticlePage(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	articles, total, err := s.store.ListArticlePage(ctx, page, ArticlesPerPage)
	if err != nil {
		return nil, fmt.Errorf("listing article page: %w", err)
	}

	pages := (total + ArticlesPerPage - 1) / ArticlesPerPage
	return &Page{
		Articles: articles,
		Number:   page,
		Total:    total,
		Pages:    pages,
	}, nil
}

// EditArticle replaces the full content of the article with the given id.
// There is no partial patch. Returns ErrNotFound if the id is absent; the
// table is left unchanged in that case.
func (s *Service) EditArticle(ctx context.Context, id int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	existed, err := s.store.UpdateArticleContent(ctx, id, content)
	if err != nil {
		return fmt.Errorf("editing article: %w", err)
	}
	if !existed {
		return ErrNotFound
	}

	s.logger.Info("article edited", "id", id)
	return nil
}

// DeleteArticle removes the article with the given id, reporting whether it
// existed. Deleting a missing id reports false rather than erroring, so the
// operation is idempotent.
func (s *Service) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	existed, err := s.store.DeleteArticle(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting article: %w", err)
	}
	if existed {
		s.logger.Info("article deleted", "id", id)
	}
	return existed, nil
}

// SubmitFeedback stores a visitor message.
func (s *Service) SubmitFeedback(ctx context.Context, body, author string) (*model.Feedback, error) {
	switch {
	case strings.TrimSpace(body) == "":
		return nil, &ValidationError{Field: "body", Reason: "must not be empty"}
	case utf8.RuneCountInString(body) > maxFeedback:
		return nil, &ValidationError{Field: "body", Reason: fmt.Sprintf("longer than %d characters", maxFeedback)}
	case strings.TrimSpace(author) == "":
		return nil, &ValidationError{Field: "author", Reason: "must not be empty"}
	case utf8.RuneCountInString(author) > maxFeedbackBy:
		return nil, &ValidationError{Field: "author", Reason: fmt.Sprintf("longer than %d characters", maxFeedbackBy)}
	}

	return s.store.CreateFeedback(ctx, &model.Feedback{
		Body:      body,
		Author:    author,
		Timestamp: s.clock.Now(),
	})
}

// Feedback returns all visitor messages, newest first.
func (s *Service) Feedback(ctx context.Context) ([]*model.Feedback, error) {
	return s.store.ListFeedback(ctx)
}
