package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/adihub26/kicks-shoe-store/internal/audit"
	"github.com/adihub26/kicks-shoe-store/internal/checkout"
	"github.com/adihub26/kicks-shoe-store/internal/config"
	"github.com/adihub26/kicks-shoe-store/internal/engine"
	"github.com/adihub26/kicks-shoe-store/internal/middleware"
	"github.com/adihub26/kicks-shoe-store/internal/models"
	"github.com/adihub26/kicks-shoe-store/internal/store"
	"github.com/adihub26/kicks-shoe-store/internal/tracking"
)

type Server struct {
	eng      *engine.Engine
	orch     *checkout.Orchestrator
	auditor  audit.Logger
	user     string
	password string
	addr     string
}

func NewServer(eng *engine.Engine, orch *checkout.Orchestrator, auditor audit.Logger, cfg *config.Config) *Server {
	return &Server{
		eng:      eng,
		orch:     orch,
		auditor:  auditor,
		user:     cfg.Username,
		password: cfg.Password,
		addr:     cfg.Addr(),
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.handleWith(mux, "/checkout", s.handleCheckout,
		[]string{"POST"}, []string{"POST"},
	)

	s.handleWith(mux, "/orders", s.handleListOrders,
		[]string{"GET"}, nil,
	)

	s.handleWith(mux, "/orders/", s.handleGetOrder,
		[]string{"GET"}, nil,
	)

	s.handleWith(mux, "/orders-tracking/", s.handleTracking,
		[]string{"GET"}, nil,
	)

	s.handleWith(mux, "/orders-advance/", s.handleAdvance,
		[]string{"POST"}, []string{"POST"},
	)
}

func (s *Server) Run() error {
	mux := http.NewServeMux()

	s.RegisterRoutes(mux)

	log.Printf("Server listen on %s...", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Handler returns the fully wired mux, used by Run and by tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleWith(mux *http.ServeMux, path string,
	handlerFunc http.HandlerFunc,
	logMethods []string, authMethods []string,
) {
	finalHandler := middleware.LogMiddleware(s.auditor, logMethods...)(
		middleware.BasicAuthMiddleware(s.user, s.password, authMethods...)(
			handlerFunc,
		),
	)
	mux.Handle(path, finalHandler)
}

type checkoutRequest struct {
	UserID   string                  `json:"user_id"`
	Checkout checkout.Request        `json:"checkout"`
	Payment  models.PaymentCompleted `json:"payment"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad JSON", http.StatusBadRequest)
		return
	}
	order, err := s.orch.CompleteCheckout(req.UserID, req.Checkout, req.Payment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "missing user_id", http.StatusBadRequest)
		return
	}
	orders := s.eng.GetOrdersForUser(userID)
	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" {
		http.Error(w, "missing ID", http.StatusBadRequest)
		return
	}
	order, err := s.eng.GetOrderByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type trackingResponse struct {
	OrderID        string                  `json:"order_id"`
	Status         models.OrderStatus      `json:"status"`
	StatusLabel    string                  `json:"status_label"`
	Progress       float64                 `json:"progress"`
	TrackingNumber string                  `json:"tracking_number"`
	Updates        []models.TrackingUpdate `json:"updates"`
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders-tracking/")
	order, err := s.eng.GetOrderByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackingResponse{
		OrderID:        order.ID,
		Status:         order.Status,
		StatusLabel:    tracking.StatusLabel(order.Status),
		Progress:       tracking.Progress(order),
		TrackingNumber: order.TrackingNumber,
		Updates:        tracking.Timeline(order),
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders-advance/")
	if err := s.eng.SimulateManualAdvance(id); err != nil {
		writeError(w, err)
		return
	}
	order, err := s.eng.GetOrderByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, engine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrPersistence):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
