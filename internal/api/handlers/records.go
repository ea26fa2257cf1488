package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/api/middleware"
	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/finance"
	"github.com/andresuchitra/duitku/internal/store"
)

// RecordsHandler handles the CRUD endpoints for financial records.
type RecordsHandler struct {
	store store.Store
	log   zerolog.Logger

	// now is swappable so tests can pin timestamps.
	now func() time.Time
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(st store.Store, log zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{
		store: st,
		log:   log,
		now:   time.Now,
	}
}

// parseDateRange reads optional start_date/end_date query parameters.
func parseDateRange(r *http.Request) (store.DateRange, error) {
	var dr store.DateRange
	q := r.URL.Query()

	if s := q.Get("start_date"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			return dr, errors.New("invalid start_date format, want YYYY-MM-DD")
		}
		dr.Start = start
	}
	if s := q.Get("end_date"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			return dr, errors.New("invalid end_date format, want YYYY-MM-DD")
		}
		dr.End = end
	}
	return dr, nil
}

func (h *RecordsHandler) writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, what+" not found")
		return
	}
	h.log.Error().Err(err).Msg("Store operation failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Failed to access "+what)
}

// ListTransactions handles GET /api/transactions
func (h *RecordsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	dr, err := parseDateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.store.ListBudgetTransactions(r.Context(), userID, dr)
	if err != nil {
		h.writeStoreError(w, err, "transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *RecordsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var tx domain.BudgetTransaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = h.now()
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = h.now()
	}

	if err := tx.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertBudgetTransaction(r.Context(), &tx); err != nil {
		h.writeStoreError(w, err, "transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *RecordsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteBudgetTransaction(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListInvestments handles GET /api/investments
func (h *RecordsHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	investments, err := h.store.ListInvestments(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "investments")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investments": investments,
		"count":       len(investments),
	})
}

// CreateInvestment handles POST /api/investments
func (h *RecordsHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var inv domain.Investment
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv.ID = uuid.New().String()
	inv.UserID = userID
	inv.CreatedAt = h.now()
	if inv.CurrentValue == 0 {
		inv.CurrentValue = inv.Amount
	}
	if inv.PurchaseDate.IsZero() {
		inv.PurchaseDate = h.now()
	}

	if err := inv.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertInvestment(r.Context(), &inv); err != nil {
		h.writeStoreError(w, err, "investments")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &inv)
}

// DeleteInvestment handles DELETE /api/investments/{id}
func (h *RecordsHandler) DeleteInvestment(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteInvestment(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "investment")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListCryptoHoldings handles GET /api/crypto
func (h *RecordsHandler) ListCryptoHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	holdings, err := h.store.ListCryptoHoldings(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "crypto holdings")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": holdings,
		"count":    len(holdings),
	})
}

// CreateCryptoHolding handles POST /api/crypto
func (h *RecordsHandler) CreateCryptoHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var holding domain.CryptoHolding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	holding.ID = uuid.New().String()
	holding.UserID = userID
	holding.CreatedAt = h.now()
	if holding.PurchaseDate.IsZero() {
		holding.PurchaseDate = h.now()
	}

	if err := holding.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertCryptoHolding(r.Context(), &holding); err != nil {
		h.writeStoreError(w, err, "crypto holdings")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &holding)
}

// DeleteCryptoHolding handles DELETE /api/crypto/{id}
func (h *RecordsHandler) DeleteCryptoHolding(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteCryptoHolding(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "crypto holding")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListGoals handles GET /api/goals
func (h *RecordsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := h.store.ListFinancialGoals(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "goals")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// CreateGoal handles POST /api/goals
func (h *RecordsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var goal domain.FinancialGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal.ID = uuid.New().String()
	goal.UserID = userID
	goal.CreatedAt = h.now()
	if goal.Priority == "" {
		goal.Priority = domain.PriorityMedium
	}

	if err := goal.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertFinancialGoal(r.Context(), &goal); err != nil {
		h.writeStoreError(w, err, "goals")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &goal)
}

// DeleteGoal handles DELETE /api/goals/{id}
func (h *RecordsHandler) DeleteGoal(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteFinancialGoal(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "goal")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListBusinessTransactions handles GET /api/business-transactions
func (h *RecordsHandler) ListBusinessTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	dr, err := parseDateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.store.ListBusinessTransactions(r.Context(), userID, dr)
	if err != nil {
		h.writeStoreError(w, err, "business transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// CreateBusinessTransaction handles POST /api/business-transactions
func (h *RecordsHandler) CreateBusinessTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var tx domain.BusinessTransaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = h.now()
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = h.now()
	}

	if err := tx.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertBusinessTransaction(r.Context(), &tx); err != nil {
		h.writeStoreError(w, err, "business transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &tx)
}

// DeleteBusinessTransaction handles DELETE /api/business-transactions/{id}
func (h *RecordsHandler) DeleteBusinessTransaction(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteBusinessTransaction(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "business transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListDebts handles GET /api/debts
func (h *RecordsHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	debts, err := h.store.ListDebts(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "debts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debts": debts,
		"count": len(debts),
	})
}

// CreateDebt handles POST /api/debts
func (h *RecordsHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var debt domain.Debt
	if err := json.NewDecoder(r.Body).Decode(&debt); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	debt.ID = uuid.New().String()
	debt.UserID = userID
	debt.CreatedAt = h.now()
	if debt.RemainingAmount == 0 {
		debt.RemainingAmount = debt.TotalAmount
	}

	if err := debt.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertDebt(r.Context(), &debt); err != nil {
		h.writeStoreError(w, err, "debts")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &debt)
}

// DeleteDebt handles DELETE /api/debts/{id}
func (h *RecordsHandler) DeleteDebt(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteDebt(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "debt")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// RecordDebtPayment handles POST /api/debts/{id}/payments
func (h *RecordsHandler) RecordDebtPayment(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	debt, err := h.store.RecordDebtPayment(r.Context(), userID, id, req.Amount)
	if err != nil {
		h.writeStoreError(w, err, "debt")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, debt)
}

// ListRecurringTransactions handles GET /api/recurring
func (h *RecordsHandler) ListRecurringTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	txs, err := h.store.ListRecurringTransactions(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "recurring transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recurring": txs,
		"count":     len(txs),
	})
}

// CreateRecurringTransaction handles POST /api/recurring
func (h *RecordsHandler) CreateRecurringTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var tx domain.RecurringTransaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = h.now()
	if tx.NextDueDate.IsZero() && tx.Frequency.Valid() {
		tx.NextDueDate = finance.NextDueDate(tx.Frequency, h.now())
	}

	if err := tx.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertRecurringTransaction(r.Context(), &tx); err != nil {
		h.writeStoreError(w, err, "recurring transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &tx)
}

// DeleteRecurringTransaction handles DELETE /api/recurring/{id}
func (h *RecordsHandler) DeleteRecurringTransaction(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteRecurringTransaction(r.Context(), userID, id); err != nil {
		h.writeStoreError(w, err, "recurring transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// GetSummary handles GET /api/summary
func (h *RecordsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	txs, err := h.store.ListBudgetTransactions(ctx, userID, store.DateRange{})
	if err != nil {
		h.writeStoreError(w, err, "summary")
		return
	}
	investments, err := h.store.ListInvestments(ctx, userID)
	if err != nil {
		h.writeStoreError(w, err, "summary")
		return
	}
	holdings, err := h.store.ListCryptoHoldings(ctx, userID)
	if err != nil {
		h.writeStoreError(w, err, "summary")
		return
	}
	debts, err := h.store.ListDebts(ctx, userID)
	if err != nil {
		h.writeStoreError(w, err, "summary")
		return
	}

	totals := finance.Aggregate(txs, investments, holdings, debts)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totals":       totals,
		"net_worth":    totals.NetWorth(),
		"health_score": finance.HealthScore(totals),
	})
}
