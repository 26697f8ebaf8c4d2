package health

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Started time.Time
	Log     *zap.Logger
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Started: time.Now(), Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "uptime":"1h2m3s" }
//
// On DB failure: 503 with status "error". The driver error is logged,
// not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Uptime:   time.Since(h.Started).Round(time.Second).String(),
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		uierrors.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, resp)
}
