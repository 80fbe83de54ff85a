package dto

import (
	"fmt"
	"strings"
	"time"

	"motomarket/internal/domain/availability"
	domainservices "motomarket/internal/domain/services"
)

// ScheduleDay is the wire form of one weekday's open hours.
type ScheduleDay struct {
	Available bool   `json:"available"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// ServiceSummary is a directory card for a service offer.
type ServiceSummary struct {
	ID           string  `json:"id"`
	ProviderID   string  `json:"provider_id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	Price        int64   `json:"price"`
	City         string  `json:"city"`
	Country      string  `json:"country"`
	SlotDuration int     `json:"slot_duration"`
	RatingAvg    float64 `json:"rating_avg"`
	RatingCount  int     `json:"rating_count"`
	Active       bool    `json:"active"`
}

// ServiceDetail is the full service payload including the weekly schedule.
type ServiceDetail struct {
	ServiceSummary
	Description  string                 `json:"description"`
	Schedule     map[string]ScheduleDay `json:"schedule"`
	ContactPhone string                 `json:"contact_phone,omitempty"`
	ContactEmail string                 `json:"contact_email,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ServiceDirectory is one page of the public service directory.
type ServiceDirectory struct {
	Services   []ServiceSummary `json:"services"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// DayAvailability is the response of the slot availability query.
type DayAvailability struct {
	ServiceID string   `json:"service_id"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseSchedule converts the wire schedule into the domain form. Unknown day
// names and malformed clock values are rejected.
func ParseSchedule(days map[string]ScheduleDay) (domainservices.WeekSchedule, error) {
	if len(days) == 0 {
		return nil, nil
	}
	schedule := make(domainservices.WeekSchedule, len(days))
	for name, day := range days {
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if !day.Available {
			continue
		}
		start, err := availability.ParseClock(day.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%s start: %w", name, err)
		}
		end, err := availability.ParseClock(day.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s end: %w", name, err)
		}
		schedule[weekday] = availability.DayHours{Open: true, Start: start, End: end}
	}
	return schedule, nil
}

// MapSchedule renders the domain schedule in wire form, listing all seven
// days so clients never have to guess at missing entries.
func MapSchedule(schedule domainservices.WeekSchedule) map[string]ScheduleDay {
	out := make(map[string]ScheduleDay, 7)
	for name, weekday := range weekdayNames {
		hours, ok := schedule[weekday]
		if !ok || !hours.Open {
			out[name] = ScheduleDay{Available: false}
			continue
		}
		out[name] = ScheduleDay{
			Available: true,
			StartTime: hours.Start.String(),
			EndTime:   hours.End.String(),
		}
	}
	return out
}

func MapServiceSummary(service *domainservices.Service) ServiceSummary {
	if service == nil {
		return ServiceSummary{}
	}
	return ServiceSummary{
		ID:           string(service.ID),
		ProviderID:   string(service.Provider),
		Title:        service.Title,
		Type:         string(service.Type),
		Price:        service.Price,
		City:         service.City,
		Country:      service.Country,
		SlotDuration: service.SlotMinutes,
		RatingAvg:    service.RatingAvg,
		RatingCount:  service.RatingCount,
		Active:       service.Active,
	}
}

func MapServiceDetail(service *domainservices.Service) ServiceDetail {
	if service == nil {
		return ServiceDetail{}
	}
	return ServiceDetail{
		ServiceSummary: MapServiceSummary(service),
		Description:    service.Description,
		Schedule:       MapSchedule(service.Schedule),
		ContactPhone:   service.ContactPhone,
		ContactEmail:   service.ContactEmail,
		CreatedAt:      service.CreatedAt,
		UpdatedAt:      service.UpdatedAt,
	}
}

func MapServiceDirectory(result domainservices.ListResult, params domainservices.ListParams) ServiceDirectory {
	normalized := params.Normalized()
	items := make([]ServiceSummary, 0, len(result.Items))
	for _, service := range result.Items {
		items = append(items, MapServiceSummary(service))
	}
	return ServiceDirectory{
		Services:   items,
		TotalCount: result.Total,
		Page:       normalized.Page,
		Limit:      normalized.Limit,
	}
}
