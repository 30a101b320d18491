package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/pkg/httputil"
	"github.com/ignite/email-subscribers/internal/service/activity"
)

type activityRequest struct {
	ContactID   int64  `json:"contact_id" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=sent open click unsubscribe"`
	MessageID   int64  `json:"message_id" validate:"gte=0"`
	CampaignID  int64  `json:"campaign_id" validate:"gte=0"`
	LinkID      int64  `json:"link_id" validate:"gte=0"`
	ListID      int64  `json:"list_id" validate:"gte=0"`
	Country     string `json:"country"`
	Device      string `json:"device"`
	Browser     string `json:"browser"`
	EmailClient string `json:"email_client"`
	OS          string `json:"os"`
}

// HandleRecordActivity logs one contact event. Repeated events bump the
// stored count.
//
//	POST /api/activity
func (h *Handlers) HandleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !httputil.DecodeValid(w, r, &req) {
		return
	}
	t, _ := domain.ParseActivityType(req.Type)

	err := h.activity.Record(r.Context(), domain.Activity{
		ContactID:   req.ContactID,
		MessageID:   req.MessageID,
		CampaignID:  req.CampaignID,
		Type:        t,
		LinkID:      req.LinkID,
		ListID:      req.ListID,
		IP:          clientIP(r),
		Country:     req.Country,
		Device:      req.Device,
		Browser:     req.Browser,
		EmailClient: req.EmailClient,
		OS:          req.OS,
	})
	if err != nil {
		if errors.Is(err, activity.ErrInvalidActivity) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// clientIP strips the port from RemoteAddr. RealIP middleware may already
// have replaced it with a bare address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// HandleSummary returns the dashboard counters.
//
//	GET /api/reports/summary?days=N
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "days must be a non-negative integer")
			return
		}
		days = n
	}
	sum, err := h.activity.Summary(r.Context(), days)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, sum)
}
