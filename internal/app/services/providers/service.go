package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainservices "motomarket/internal/domain/services"
)

// Service manages the provider side of the workshop directory.
type Service struct {
	Services domainservices.Repository
	Logger   *slog.Logger
}

type OfferInput struct {
	Title        string
	Description  string
	Type         string
	Price        int64
	City         string
	Country      string
	Schedule     domainservices.WeekSchedule
	SlotMinutes  int
	ContactPhone string
	ContactEmail string
}

func (s *Service) Create(ctx context.Context, provider domainservices.ProviderID, input OfferInput) (*domainservices.Service, error) {
	if s.Services == nil {
		return nil, errors.New("providers: service repository required")
	}
	offer, err := domainservices.NewService(domainservices.CreateParams{
		ID:           domainservices.ServiceID(uuid.NewString()),
		Provider:     provider,
		Title:        input.Title,
		Description:  input.Description,
		Type:         domainservices.ServiceType(input.Type),
		Price:        input.Price,
		City:         input.City,
		Country:      input.Country,
		Schedule:     input.Schedule,
		SlotMinutes:  input.SlotMinutes,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Now:          time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Services.Save(ctx, offer); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("service created", "service_id", offer.ID, "provider_id", provider, "type", offer.Type)
	}
	return offer, nil
}

func (s *Service) Update(ctx context.Context, provider domainservices.ProviderID, id domainservices.ServiceID, input OfferInput) (*domainservices.Service, error) {
	offer, err := s.owned(ctx, provider, id)
	if err != nil {
		return nil, err
	}
	err = offer.Update(domainservices.UpdateParams{
		Title:        input.Title,
		Description:  input.Description,
		Type:         domainservices.ServiceType(input.Type),
		Price:        input.Price,
		City:         input.City,
		Country:      input.Country,
		Schedule:     input.Schedule,
		SlotMinutes:  input.SlotMinutes,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Now:          time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Services.Save(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) Deactivate(ctx context.Context, provider domainservices.ProviderID, id domainservices.ServiceID) (*domainservices.Service, error) {
	offer, err := s.owned(ctx, provider, id)
	if err != nil {
		return nil, err
	}
	offer.Deactivate(time.Now())
	if err := s.Services.Save(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) Delete(ctx context.Context, provider domainservices.ProviderID, id domainservices.ServiceID) error {
	if _, err := s.owned(ctx, provider, id); err != nil {
		return err
	}
	return s.Services.Delete(ctx, id)
}

func (s *Service) ByProvider(ctx context.Context, provider domainservices.ProviderID) ([]*domainservices.Service, error) {
	if s.Services == nil {
		return nil, errors.New("providers: service repository required")
	}
	return s.Services.ByProvider(ctx, provider)
}

// Directory lists active services for the public browse page.
func (s *Service) Directory(ctx context.Context, params domainservices.ListParams) (domainservices.ListResult, domainservices.ListParams, error) {
	if s.Services == nil {
		return domainservices.ListResult{}, params, errors.New("providers: service repository required")
	}
	normalized := params.Normalized()
	result, err := s.Services.List(ctx, normalized)
	if err != nil {
		return domainservices.ListResult{}, normalized, err
	}
	return result, normalized, nil
}

func (s *Service) ByID(ctx context.Context, id domainservices.ServiceID) (*domainservices.Service, error) {
	if s.Services == nil {
		return nil, errors.New("providers: service repository required")
	}
	return s.Services.ByID(ctx, id)
}

func (s *Service) owned(ctx context.Context, provider domainservices.ProviderID, id domainservices.ServiceID) (*domainservices.Service, error) {
	if s.Services == nil {
		return nil, errors.New("providers: service repository required")
	}
	offer, err := s.Services.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer.Provider != provider {
		return nil, domainservices.ErrNotOwner
	}
	return offer, nil
}
