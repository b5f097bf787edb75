package treatment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func postPlanned(t *testing.T, h *Handler, body string) *PlannedProcedure {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/planned-procedures", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.createPlanned(e.NewContext(req, rec)); err != nil {
		t.Fatalf("create planned: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var got PlannedProcedure
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &got
}

func TestCreatePlannedQuantityDefaultsOnlyWhenAbsent(t *testing.T) {
	svc, repos := newTestService()
	h := NewHandler(svc)

	proc := &CatalogProcedure{Code: "D-201", Name: "Profilaxia", BasePrice: decimal.RequireFromString("90.00")}
	if err := repos.catalog.Create(context.Background(), proc); err != nil {
		t.Fatal(err)
	}
	planID := uuid.New()

	absent := postPlanned(t, h, fmt.Sprintf(
		`{"plan_id":%q,"procedure_id":%q}`, planID, proc.ID))
	if absent.Quantity != 1 {
		t.Errorf("omitted quantity = %d, want 1", absent.Quantity)
	}

	explicit := postPlanned(t, h, fmt.Sprintf(
		`{"plan_id":%q,"procedure_id":%q,"quantity":0}`, planID, proc.ID))
	if explicit.Quantity != 0 {
		t.Errorf("explicit zero quantity = %d, want 0", explicit.Quantity)
	}
	if !explicit.LineTotal().IsZero() {
		t.Errorf("line total = %s, want 0", explicit.LineTotal())
	}
}
