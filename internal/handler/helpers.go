package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/middleware"
)

var (
	errNegativePrice = errors.New("negative price")
	errInvalidMoney  = errors.New("invalid amount")
)

// requireBusiness returns the business the caller's token is bound to, or
// writes 401 and returns false.
func requireBusiness(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := middleware.BusinessIDFromContext(r.Context())
	if id == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// urlID parses a uuid URL parameter, writing 400 on failure.
func urlID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + label + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// parseMoney accepts "12.50" or "12,50". Negative values are rejected.
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return decimal.Zero, errInvalidMoney
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return d, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func money(n pgtype.Numeric) string {
	return database.FromNumeric(n).StringFixed(2)
}

func moneyPtr(n pgtype.Numeric) *string {
	if !n.Valid {
		return nil
	}
	s := money(n)
	return &s
}

func defaultDescription(businessName string) string {
	return "Bem-vindo ao " + businessName + "!"
}

// optionalMoney treats an empty string as zero.
func optionalMoney(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseMoney(s)
}
