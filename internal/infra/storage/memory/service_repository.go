package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainservices "motomarket/internal/domain/services"
)

type ServiceRepository struct {
	mu    sync.RWMutex
	items map[domainservices.ServiceID]*domainservices.Service
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{
		items: make(map[domainservices.ServiceID]*domainservices.Service),
	}
}

func (r *ServiceRepository) ByID(ctx context.Context, id domainservices.ServiceID) (*domainservices.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	service, ok := r.items[id]
	if !ok {
		return nil, domainservices.ErrNotFound
	}
	clone := cloneService(service)
	return clone, nil
}

func (r *ServiceRepository) Save(ctx context.Context, service *domainservices.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[service.ID] = cloneService(service)
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id domainservices.ServiceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainservices.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ServiceRepository) ByProvider(ctx context.Context, provider domainservices.ProviderID) ([]*domainservices.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainservices.Service, 0)
	for _, service := range r.items {
		if service.Provider == provider {
			out = append(out, cloneService(service))
		}
	}
	sortServices(out)
	return out, nil
}

func (r *ServiceRepository) List(ctx context.Context, params domainservices.ListParams) (domainservices.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainservices.Service, 0, len(r.items))
	for _, service := range r.items {
		if !service.Active {
			continue
		}
		if opts.Type != "" && string(service.Type) != opts.Type {
			continue
		}
		if opts.City != "" && !strings.EqualFold(service.City, opts.City) {
			continue
		}
		if opts.MinPrice > 0 && service.Price < opts.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && service.Price > opts.MaxPrice {
			continue
		}
		if opts.Search != "" && !matchesServiceSearch(service, opts.Search) {
			continue
		}
		matches = append(matches, cloneService(service))
	}
	sortServices(matches)

	total := len(matches)
	offset := (opts.Page - 1) * opts.Limit
	if offset > total {
		offset = total
	}
	end := offset + opts.Limit
	if end > total {
		end = total
	}
	return domainservices.ListResult{
		Items: matches[offset:end],
		Total: total,
	}, nil
}

func matchesServiceSearch(service *domainservices.Service, term string) bool {
	needle := strings.ToLower(term)
	for _, field := range []string{service.Title, service.Description, service.City} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortServices(services []*domainservices.Service) {
	sort.Slice(services, func(i, j int) bool {
		if services[i].RatingAvg != services[j].RatingAvg {
			return services[i].RatingAvg > services[j].RatingAvg
		}
		if !services[i].CreatedAt.Equal(services[j].CreatedAt) {
			return services[i].CreatedAt.After(services[j].CreatedAt)
		}
		return services[i].ID < services[j].ID
	})
}

func cloneService(service *domainservices.Service) *domainservices.Service {
	clone := *service
	if service.Schedule != nil {
		clone.Schedule = make(domainservices.WeekSchedule, len(service.Schedule))
		for day, hours := range service.Schedule {
			clone.Schedule[day] = hours
		}
	}
	return &clone
}
