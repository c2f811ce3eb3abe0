package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olchaban/receipts/internal/calculator"
	"github.com/olchaban/receipts/internal/middleware"
	"github.com/olchaban/receipts/internal/models"
	"github.com/olchaban/receipts/internal/render"
	"github.com/olchaban/receipts/internal/storage"
)

const (
	defaultListLimit = 10
)

// ReceiptService implements the receipt creation, listing and public
// text-view endpoints.
type ReceiptService struct {
	store  storage.Store
	policy calculator.Policy
	labels render.Labels
	logger *slog.Logger
}

// NewReceiptService creates a new receipt service with the given
// storage backend, payment policy and renderer labels.
func NewReceiptService(store storage.Store, policy calculator.Policy, labels render.Labels, logger *slog.Logger) *ReceiptService {
	return &ReceiptService{
		store:  store,
		policy: policy,
		labels: labels,
		logger: logger,
	}
}

type productIn struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type paymentIn struct {
	Type   models.PaymentType `json:"type"`
	Amount float64            `json:"amount"`
}

type receiptIn struct {
	Products []productIn `json:"products"`
	Payment  paymentIn   `json:"payment"`
}

type productOut struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Total float64 `json:"total"`
}

type paymentOut struct {
	Type   models.PaymentType `json:"type"`
	Amount float64            `json:"amount"`
}

type receiptOut struct {
	ID        int64        `json:"id"`
	Products  []productOut `json:"products"`
	Total     float64      `json:"total"`
	Rest      float64      `json:"rest"`
	CreatedAt time.Time    `json:"created_at"`
	Payment   paymentOut   `json:"payment"`
}

func toReceiptOut(r *models.Receipt) receiptOut {
	products := make([]productOut, len(r.Items))
	for i, item := range r.Items {
		products[i] = productOut{
			Name:  item.Name,
			Price: item.Price,
			Total: item.Subtotal(),
		}
	}
	return receiptOut{
		ID:        r.ID,
		Products:  products,
		Total:     r.Total,
		Rest:      r.Rest(),
		CreatedAt: r.CreatedAt,
		Payment:   paymentOut{Type: r.PaymentType, Amount: r.PaymentAmount},
	}
}

// Create handles POST /receipts/.
func (s *ReceiptService) Create(w http.ResponseWriter, r *http.Request) {
	var in receiptIn
	if !decodeJSON(w, r, &in) {
		return
	}
	if !in.Payment.Type.Valid() {
		writeError(w, http.StatusBadRequest, "payment type must be cash or cashless")
		return
	}

	items := make([]calculator.Item, len(in.Products))
	for i, p := range in.Products {
		items[i] = calculator.Item{Name: p.Name, Price: p.Price, Quantity: p.Quantity}
	}

	result, err := calculator.Compute(items, calculator.Payment{
		Type:   in.Payment.Type,
		Amount: in.Payment.Amount,
	}, s.policy)
	if err != nil {
		switch {
		case errors.Is(err, calculator.ErrNoItemsPurchased):
			writeError(w, http.StatusBadRequest, "No products were bought.")
		case errors.Is(err, calculator.ErrInsufficientPayment):
			writeError(w, http.StatusBadRequest, "Insufficient payment")
		default:
			s.logger.Error("Receipt computation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	receipt := &models.Receipt{
		Total:         result.Total,
		CreatedAt:     time.Now().UTC(),
		PaymentType:   in.Payment.Type,
		PaymentAmount: result.PaymentAmount,
		UserID:        middleware.UserID(r.Context()),
	}
	for _, item := range result.Items {
		receipt.Items = append(receipt.Items, models.LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	if err := s.store.CreateReceipt(r.Context(), receipt); err != nil {
		s.logger.Error("Failed to persist receipt", "user_id", receipt.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info("Receipt created",
		"receipt_id", receipt.ID,
		"user_id", receipt.UserID,
		"total", receipt.Total,
		"payment_type", receipt.PaymentType,
	)
	writeJSON(w, http.StatusOK, toReceiptOut(receipt))
}

// List handles GET /receipts/ with optional filters:
// start_date, end_date (RFC 3339), min_total, payment_type, skip, limit.
func (s *ReceiptService) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipts, err := s.store.ListReceipts(r.Context(), middleware.UserID(r.Context()), filter)
	if err != nil {
		s.logger.Error("Failed to list receipts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]receiptOut, len(receipts))
	for i, receipt := range receipts {
		out[i] = toReceiptOut(receipt)
	}
	writeJSON(w, http.StatusOK, out)
}

// PublicText handles GET /receipts/{id}. It requires no
// authentication and returns the fixed-width text view of the receipt.
func (s *ReceiptService) PublicText(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Receipt not found")
		return
	}

	lineWidth := render.DefaultLineWidth
	if raw := r.URL.Query().Get("line_width"); raw != "" {
		lineWidth, err = strconv.Atoi(raw)
		if err != nil || lineWidth < 1 {
			writeError(w, http.StatusBadRequest, "line_width must be a positive integer")
			return
		}
	}

	receipt, err := s.store.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrReceiptNotFound) {
			writeError(w, http.StatusNotFound, "Receipt not found")
			return
		}
		s.logger.Error("Failed to get receipt", "receipt_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(render.Receipt(receipt, lineWidth, s.labels)))
}

func parseFilter(r *http.Request) (models.ReceiptFilter, error) {
	filter := models.ReceiptFilter{Limit: defaultListLimit}
	q := r.URL.Query()

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("start_date must be an RFC 3339 timestamp")
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("end_date must be an RFC 3339 timestamp")
		}
		filter.EndDate = &t
	}
	if raw := q.Get("min_total"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("min_total must be a number")
		}
		filter.MinTotal = &v
	}
	if raw := q.Get("payment_type"); raw != "" {
		pt := models.PaymentType(raw)
		if !pt.Valid() {
			return filter, errors.New("payment_type must be cash or cashless")
		}
		filter.PaymentType = pt
	}
	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, errors.New("skip must be a non-negative integer")
		}
		filter.Skip = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = v
	}
	return filter, nil
}
