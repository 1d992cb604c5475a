// Package paymentmethods содержит операции над способами оплаты пользователей.
package paymentmethods

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// PaymentMethodsRepository определяет методы хранилища способов оплаты.
type PaymentMethodsRepository interface {
	CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id string) error
}

// PaymentMethodsService управляет способами оплаты.
type PaymentMethodsService struct {
	repo PaymentMethodsRepository
	log  *slog.Logger
}

// NewPaymentMethodsService создает новый экземпляр PaymentMethodsService.
func NewPaymentMethodsService(repo PaymentMethodsRepository, log *slog.Logger) *PaymentMethodsService {
	return &PaymentMethodsService{
		repo: repo,
		log:  log,
	}
}

// Create сохраняет способ оплаты. Неизвестный пользователь даёт ErrNotFound.
func (p *PaymentMethodsService) Create(ctx context.Context, req models.DummyPaymentMethod) (*models.PaymentMethod, error) {
	const op = "services.paymentmethods.Create"

	pm := &models.PaymentMethod{
		ID:       uuid.NewString(),
		UserID:   req.UserID,
		Type:     req.Type,
		LastFour: req.LastFour,
	}
	if err := p.repo.CreatePaymentMethod(ctx, pm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.log.Info("created payment method", slog.String("id", pm.ID), slog.String("type", pm.Type))
	return pm, nil
}

// Get возвращает способ оплаты по id.
func (p *PaymentMethodsService) Get(ctx context.Context, id string) (*models.PaymentMethod, error) {
	const op = "services.paymentmethods.Get"
	pm, err := p.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pm, nil
}

// List возвращает способы оплаты пользователя, либо все при пустом userID.
func (p *PaymentMethodsService) List(ctx context.Context, userID string) ([]*models.PaymentMethod, error) {
	const op = "services.paymentmethods.List"
	list, err := p.repo.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update применяет частичное изменение способа оплаты.
func (p *PaymentMethodsService) Update(ctx context.Context, id string, patch models.PaymentMethodPatch) (*models.PaymentMethod, error) {
	const op = "services.paymentmethods.Update"

	pm, err := p.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Type != nil {
		pm.Type = *patch.Type
	}
	if patch.LastFour != nil {
		pm.LastFour = *patch.LastFour
	}
	if err := p.repo.UpdatePaymentMethod(ctx, pm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pm, nil
}

// Delete удаляет способ оплаты.
func (p *PaymentMethodsService) Delete(ctx context.Context, id string) error {
	const op = "services.paymentmethods.Delete"
	if err := p.repo.DeletePaymentMethod(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Info("deleted payment method", slog.String("id", id))
	return nil
}
