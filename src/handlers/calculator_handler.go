package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/triggerNode/BuxTax/src/calculator"
	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/metrics"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/utils"
)

const maxCalculatorBodyBytes = 64 << 10

type CalculatorHandler struct {
	calc calculator.ProfitCalculator
}

func NewCalculatorHandler(calc calculator.ProfitCalculator) *CalculatorHandler {
	return &CalculatorHandler{calc: calc}
}

type calculateRequest struct {
	GrossAmount float64           `json:"gross_amount"`
	Category    string            `json:"category"`
	Costs       models.CostInputs `json:"costs"`
}

type convertRequest struct {
	Amount *float64 `json:"amount"`
	Input  string   `json:"input"`
}

type convertResponse struct {
	Units          float64 `json:"units"`
	USD            float64 `json:"usd"`
	UnitsFormatted string  `json:"units_formatted"`
	USDFormatted   string  `json:"usd_formatted"`
}

type goalRequest struct {
	TargetUSD     float64           `json:"target_usd"`
	Category      string            `json:"category"`
	ExpectedCosts models.CostInputs `json:"expected_costs"`
}

type goalResponse struct {
	RequiredGross float64                  `json:"required_gross"`
	Check         models.CalculationResult `json:"check"`
}

type sensitivityRequest struct {
	GrossAmount float64                       `json:"gross_amount"`
	Category    string                        `json:"category"`
	Costs       models.CostInputs             `json:"costs"`
	Multipliers models.SensitivityMultipliers `json:"multipliers"`
}

func (h *CalculatorHandler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.calc.Rates(), http.StatusOK)
}

func (h *CalculatorHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	category, ok := parseCategory(w, req.Category)
	if !ok {
		return
	}

	result, err := h.calc.CalculateProfit(req.GrossAmount, category, req.Costs)
	if err != nil {
		sendCalculatorError(w, err)
		return
	}
	metrics.CalculationsTotal.WithLabelValues("profit").Inc()
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleConvert is the lite calculator: units to USD with no fees applied. "input" is raw
// text from a form field; "amount" is used when input is empty.
func (h *CalculatorHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var units float64
	switch {
	case req.Input != "":
		units = calculator.ParseUnits(req.Input)
	case req.Amount != nil:
		units = models.NonNegative(*req.Amount)
	default:
		utils.SendJSONError(w, "amount or input is required", http.StatusBadRequest)
		return
	}

	usd := calculator.UnitsToUSD(h.calc.Rates(), units)
	metrics.CalculationsTotal.WithLabelValues("convert").Inc()
	utils.SendJSON(w, convertResponse{
		Units:          units,
		USD:            usd,
		UnitsFormatted: calculator.FormatUnits(units),
		USDFormatted:   calculator.FormatUSD(usd),
	}, http.StatusOK)
}

// HandleGoal returns the gross needed for a USD target, plus the forward calculation of that
// gross so the caller can show what it actually pays out.
func (h *CalculatorHandler) HandleGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	category, ok := parseCategory(w, req.Category)
	if !ok {
		return
	}

	required, err := h.calc.CalculateRequiredGross(req.TargetUSD, category, req.ExpectedCosts)
	if err != nil {
		sendCalculatorError(w, err)
		return
	}
	check, err := h.calc.CalculateProfit(required, category, req.ExpectedCosts)
	if err != nil {
		sendCalculatorError(w, err)
		return
	}
	metrics.CalculationsTotal.WithLabelValues("goal").Inc()
	utils.SendJSON(w, goalResponse{RequiredGross: required, Check: check}, http.StatusOK)
}

func (h *CalculatorHandler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	category, ok := parseCategory(w, req.Category)
	if !ok {
		return
	}

	result, err := h.calc.Sensitivity(req.GrossAmount, category, req.Costs, req.Multipliers)
	if err != nil {
		sendCalculatorError(w, err)
		return
	}
	metrics.CalculationsTotal.WithLabelValues("sensitivity").Inc()
	utils.SendJSON(w, result, http.StatusOK)
}

// parseCategory defaults an empty category to the primary creator.
func parseCategory(w http.ResponseWriter, raw string) (models.UserCategory, bool) {
	if raw == "" {
		return models.PrimaryCreator, true
	}
	category, err := models.ParseUserCategory(raw)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return category, true
}

func sendCalculatorError(w http.ResponseWriter, err error) {
	if errors.Is(err, calculator.ErrUnknownCategory) {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Error("Calculation failed", "error", err)
	utils.SendJSONError(w, "calculation failed", http.StatusInternalServerError)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxCalculatorBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		logger.L.Debug("Invalid JSON request body", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
