package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"bmapp/internal/models/db_models"
	"bmapp/internal/models/request_models"
	"bmapp/internal/models/response_models"
	"bmapp/internal/reconcile"
	"bmapp/internal/render"
	"bmapp/internal/repositories"
	"bmapp/pkg/utils"
)

type BiodataService interface {
	Create(ctx context.Context, ownerID string, req request_models.CreateBiodataRequest, meta request_models.RequestMeta) (*response_models.CreateBiodataResponse, error)
	List(ctx context.Context, ownerID string) ([]response_models.BiodataResponse, error)
	Get(ctx context.Context, ownerID, id string) (*response_models.BiodataResponse, error)
	Status(ctx context.Context, ownerID, id string) (*response_models.PaymentStatusResponse, error)
	// Download renders the final PDF of a paid record.
	Download(ctx context.Context, ownerID, id string) (*response_models.RenderedDocument, error)
	// Fulfill renders an already loaded paid record.
	Fulfill(ctx context.Context, b *db_models.Biodata) (*response_models.RenderedDocument, error)
}

type biodataService struct {
	repo     repositories.BiodataRepository
	renderer render.Renderer
	log      *zap.Logger
	now      func() time.Time
}

func NewBiodataService(repo repositories.BiodataRepository, renderer render.Renderer, log *zap.Logger) BiodataService {
	return &biodataService{repo: repo, renderer: renderer, log: log, now: time.Now}
}

// drawableFormData reports whether raw is non-empty and decodes the way the renderer reads it.
func drawableFormData(raw []byte) bool {
	if !request_models.HasContent(raw) {
		return false
	}
	_, err := render.DecodeFormData(raw)
	return err == nil
}

func (s *biodataService) Create(ctx context.Context, ownerID string, req request_models.CreateBiodataRequest, meta request_models.RequestMeta) (*response_models.CreateBiodataResponse, error) {
	if !drawableFormData(req.FormData) {
		return nil, utils.ErrInvalidFormData
	}
	templateID := strings.TrimSpace(req.TemplateID)
	if _, ok := render.Lookup(templateID); !ok {
		return nil, utils.ErrInvalidTemplate
	}

	channel := db_models.ChannelWeb
	if req.Channel != "" {
		channel = db_models.Channel(strings.ToUpper(strings.TrimSpace(req.Channel)))
		if !channel.Valid() {
			return nil, utils.ErrInvalidChannel
		}
	}

	currency := db_models.CurrencyINR
	if req.Currency != "" {
		currency = strings.ToUpper(strings.TrimSpace(req.Currency))
		if currency != db_models.CurrencyINR && currency != db_models.CurrencyUSD {
			return nil, utils.ErrInvalidCurrency
		}
	}

	amount := 0.0
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, utils.ErrInvalidAmount
		}
		amount = *req.Amount
	}

	var imagePath *string
	if req.ImagePath != nil && strings.TrimSpace(*req.ImagePath) != "" {
		p := strings.TrimSpace(*req.ImagePath)
		imagePath = &p
	}

	b := &db_models.Biodata{
		OwnerID:       ownerID,
		TemplateID:    templateID,
		FormData:      datatypes.JSON(req.FormData),
		ImagePath:     imagePath,
		Channel:       channel,
		Amount:        amount,
		Currency:      currency,
		UserAgent:     truncate(meta.UserAgent, 512),
		IPAddress:     truncate(meta.IPAddress, 64),
		PaymentStatus: reconcile.StatusInitiated,
	}
	b.ID = uuid.New()
	b.AppUserID = reconcile.ComposeAppUserID(ownerID, b.ID.String())

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.log.Info("Biodata created",
		zap.String("biodata_id", b.ID.String()),
		zap.String("template_id", templateID),
		zap.String("channel", string(channel)))
	return &response_models.CreateBiodataResponse{ID: b.ID.String(), AppUserID: b.AppUserID}, nil
}

func toBiodataResponse(b db_models.Biodata) response_models.BiodataResponse {
	return response_models.BiodataResponse{
		ID:         b.ID.String(),
		TemplateID: b.TemplateID,
		FormData:   []byte(b.FormData),
		ImagePath:  b.ImagePath,
		CreatedAt:  b.CreatedAt,
	}
}

func (s *biodataService) List(ctx context.Context, ownerID string) ([]response_models.BiodataResponse, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]response_models.BiodataResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, toBiodataResponse(b))
	}
	return out, nil
}

func (s *biodataService) owned(ctx context.Context, ownerID, id string) (*db_models.Biodata, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, utils.ErrInvalidBiodataID
	}
	b, err := s.repo.FindByIDAndOwner(ctx, uid, ownerID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, utils.ErrBiodataNotFound
	}
	return b, nil
}

func (s *biodataService) Get(ctx context.Context, ownerID, id string) (*response_models.BiodataResponse, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := toBiodataResponse(*b)
	return &resp, nil
}

func (s *biodataService) Status(ctx context.Context, ownerID, id string) (*response_models.PaymentStatusResponse, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return &response_models.PaymentStatusResponse{
		PaymentStatus: string(b.PaymentStatus),
		PDFReady:      b.PaymentStatus == reconcile.StatusSuccess,
		TransactionID: b.TransactionID,
	}, nil
}

func (s *biodataService) Download(ctx context.Context, ownerID, id string) (*response_models.RenderedDocument, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.Fulfill(ctx, b)
}

func (s *biodataService) Fulfill(ctx context.Context, b *db_models.Biodata) (*response_models.RenderedDocument, error) {
	if b.PaymentStatus != reconcile.StatusSuccess {
		return nil, utils.ErrPaymentRequired
	}

	in := render.Input{TemplateID: b.TemplateID, FormData: []byte(b.FormData)}
	if b.ImagePath != nil {
		in.ImagePath = *b.ImagePath
	}
	content, err := s.renderer.Render(ctx, in)
	if err != nil {
		return nil, renderError(err)
	}

	// Fulfillment bookkeeping never blocks the download.
	if _, err := s.repo.MarkFulfilled(ctx, b.ID, s.now()); err != nil {
		s.log.Warn("Failed to mark biodata fulfilled", zap.String("biodata_id", b.ID.String()), zap.Error(err))
	}

	return &response_models.RenderedDocument{
		Filename: fmt.Sprintf("biodata-%s.pdf", b.ID),
		Content:  content,
	}, nil
}

func renderError(err error) error {
	switch {
	case errors.Is(err, render.ErrUnknownTemplate):
		return fmt.Errorf("%w: %v", utils.ErrInvalidTemplate, err)
	case errors.Is(err, render.ErrInvalidFormData):
		return fmt.Errorf("%w: %v", utils.ErrInvalidFormData, err)
	}
	return fmt.Errorf("render pdf: %w", err)
}
