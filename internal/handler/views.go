package handler

import (
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// Response shapes returned by the API.  The model structs carry no json
// tags on purpose; these views fix the wire field names independently
// of the storage layer.

type bookingView struct {
	ID                 uint64    `json:"id"`
	Reference          string    `json:"reference"`
	ClientID           uint64    `json:"client_id"`
	FacilityID         uint64    `json:"facility_id"`
	UserID             uint64    `json:"user_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Status             string    `json:"status"`
	ConditionsAccepted bool      `json:"conditions_accepted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func newBookingView(b *model.Booking) bookingView {
	return bookingView{
		ID:                 b.ID,
		Reference:          b.Reference,
		ClientID:           b.ClientID,
		FacilityID:         b.FacilityID,
		UserID:             b.UserID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             b.Status,
		ConditionsAccepted: b.ConditionsAccepted,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func newBookingViews(bs []model.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for i := range bs {
		out = append(out, newBookingView(&bs[i]))
	}
	return out
}

type historyView struct {
	ID                 uint64     `json:"id"`
	BookingID          *uint64    `json:"booking_id"`
	ClientID           uint64     `json:"client_id"`
	FacilityID         uint64     `json:"facility_id"`
	UserID             uint64     `json:"user_id"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	ReminderSent       bool       `json:"reminder_sent"`
	ConditionsAccepted bool       `json:"conditions_accepted"`
	DeletedAt          *time.Time `json:"deleted_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func newHistoryView(h *model.BookingHistory) historyView {
	return historyView{
		ID:                 h.ID,
		BookingID:          h.BookingID,
		ClientID:           h.ClientID,
		FacilityID:         h.FacilityID,
		UserID:             h.UserID,
		StartTime:          h.StartTime,
		EndTime:            h.EndTime,
		Status:             h.Status,
		ReminderSent:       h.ReminderSent,
		ConditionsAccepted: h.ConditionsAccepted,
		DeletedAt:          h.DeletedAt,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

func newHistoryViews(hs []model.BookingHistory) []historyView {
	out := make([]historyView, 0, len(hs))
	for i := range hs {
		out = append(out, newHistoryView(&hs[i]))
	}
	return out
}

type logView struct {
	ID         uint64    `json:"id"`
	ClientID   uint64    `json:"client_id"`
	UserID     uint64    `json:"user_id"`
	FacilityID uint64    `json:"facility_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Data       string    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
}

func newLogViews(ls []model.BookingLog) []logView {
	out := make([]logView, 0, len(ls))
	for _, l := range ls {
		out = append(out, logView{
			ID:         l.ID,
			ClientID:   l.ClientID,
			UserID:     l.UserID,
			FacilityID: l.FacilityID,
			Status:     l.Status,
			Message:    l.Message,
			Data:       l.Data,
			CreatedAt:  l.CreatedAt,
		})
	}
	return out
}

type facilityView struct {
	ID          uint64    `json:"id"`
	ClientID    uint64    `json:"client_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newFacilityView(f *model.Facility) facilityView {
	return facilityView{
		ID:          f.ID,
		ClientID:    f.ClientID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

type userView struct {
	ID        uint64    `json:"id"`
	ClientID  uint64    `json:"client_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:        u.ID,
		ClientID:  u.ClientID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type quotaRuleView struct {
	ID                  uint64    `json:"id"`
	ClientID            uint64    `json:"client_id"`
	UserID              uint64    `json:"user_id"`
	FacilityID          uint64    `json:"facility_id"`
	MaxBookingsPerWeek  int       `json:"max_bookings_per_week"`
	MaxBookingsPerMonth int       `json:"max_bookings_per_month"`
	MaxWeeksAdvance     int       `json:"max_weeks_advance"`
	OverriddenBy        *uint64   `json:"overridden_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func newQuotaRuleView(q *model.QuotaRule) quotaRuleView {
	return quotaRuleView{
		ID:                  q.ID,
		ClientID:            q.ClientID,
		UserID:              q.UserID,
		FacilityID:          q.FacilityID,
		MaxBookingsPerWeek:  q.MaxBookingsPerWeek,
		MaxBookingsPerMonth: q.MaxBookingsPerMonth,
		MaxWeeksAdvance:     q.MaxWeeksAdvance,
		OverriddenBy:        q.OverriddenBy,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}
