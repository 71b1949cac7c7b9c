package contact

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/contact/domain"
	contactrepo "github.com/jaehkim-quant/research-platform/internal/contact/repository"
	"github.com/jaehkim-quant/research-platform/internal/mail"
)

// Sink receives validated inquiries.
type Sink interface {
	Deliver(ctx context.Context, inq *domain.Inquiry) error
}

// Notion database property names written by NotionSink.
const (
	NotionPropName    = "Name"
	NotionPropEmail   = "Email"
	NotionPropMessage = "Message"
)

// pageCreator is the part of notionapi.PageService used here.
type pageCreator interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// NotionSink creates one page per inquiry in a Notion database.
type NotionSink struct {
	pages      pageCreator
	databaseID notionapi.DatabaseID
	logger     *zap.Logger
}

// NewNotionSink builds a sink backed by the Notion API with the given integration token.
func NewNotionSink(apiKey, databaseID string, logger *zap.Logger) *NotionSink {
	client := notionapi.NewClient(notionapi.Token(apiKey))
	return newNotionSink(client.Page, databaseID, logger)
}

func newNotionSink(pages pageCreator, databaseID string, logger *zap.Logger) *NotionSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotionSink{pages: pages, databaseID: notionapi.DatabaseID(databaseID), logger: logger}
}

func (s *NotionSink) Deliver(ctx context.Context, inq *domain.Inquiry) error {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: notionapi.Properties{
			NotionPropName: notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: inq.Name}}},
			},
			NotionPropEmail: notionapi.EmailProperty{Email: inq.Email},
			NotionPropMessage: notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: inq.Message}}},
			},
		},
	}
	if _, err := s.pages.Create(ctx, req); err != nil {
		return fmt.Errorf("contact: notion create page: %w", err)
	}
	s.logger.Info("contact: saved to notion",
		zap.String("inquiry_id", inq.ID),
		zap.String("slug", inq.Slug),
		zap.String("page_url", inq.PageURL),
	)
	return nil
}

// StoreSink inserts the inquiry and emails the admin. A failed notification is logged; the stored
// inquiry is still reported as delivered.
type StoreSink struct {
	repo       contactrepo.Repository
	mailer     mail.Mailer
	adminEmail string
	logger     *zap.Logger
}

// NewStoreSink returns a database sink. mailer may be nil, or adminEmail empty, to skip notification.
func NewStoreSink(repo contactrepo.Repository, mailer mail.Mailer, adminEmail string, logger *zap.Logger) *StoreSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSink{repo: repo, mailer: mailer, adminEmail: adminEmail, logger: logger}
}

func (s *StoreSink) Deliver(ctx context.Context, inq *domain.Inquiry) error {
	if err := s.repo.Create(ctx, inq); err != nil {
		return fmt.Errorf("contact: store inquiry: %w", err)
	}
	if s.mailer == nil || s.adminEmail == "" {
		return nil
	}
	msg, err := mail.InquiryMessage(s.adminEmail, mail.InquiryNotice{
		ID:         inq.ID,
		Purpose:    inq.Purpose,
		Name:       inq.Name,
		Email:      inq.Email,
		Subject:    inq.Subject,
		Message:    inq.Message,
		PageURL:    inq.PageURL,
		ReceivedAt: inq.CreatedAt,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Warn("contact: admin notification failed", zap.String("inquiry_id", inq.ID), zap.Error(err))
	}
	return nil
}
