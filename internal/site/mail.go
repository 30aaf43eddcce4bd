package site

import (
	"context"

	"lsfd202201/internal/model"
)

// MailSender delivers the admin notification for a newly created article.
// Delivery is best-effort: the service logs failures and never rolls back
// the committed article.
type MailSender interface {
	SendArticleNotification(ctx context.Context, recipients []string, subject string, a *model.Article) error
}
