package handlers

import (
	"net/http"
	"strings"

	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
)

type financeForm struct {
	CultureID   string
	OperationID string
	models.OperationFinance
}

func financePage(form financeForm) gin.H {
	return gin.H{
		"Title": "Financement d'une opération - TerrePro",
		"Form":  form,
		"Total": form.Total(),
	}
}

// handleFinancePage walks the culture → operation → costs selection. The
// operations of a culture are fetched once a culture_id is chosen.
func (h *Handlers) handleFinancePage(c *gin.Context) {
	form := financeForm{
		CultureID:   strings.TrimSpace(c.Query("culture_id")),
		OperationID: strings.TrimSpace(c.Query("operation_id")),
	}
	data := financePage(form)

	status, ok := h.loadFinanceChoices(c, form, data)
	if !ok {
		return
	}
	h.render(c, status, "finance.html", data)
}

func (h *Handlers) handleCreateFinance(c *gin.Context) {
	var form financeForm
	_ = c.ShouldBind(&form.OperationFinance)
	form.CultureID = strings.TrimSpace(c.PostForm("culture_id"))
	form.OperationID = strings.TrimSpace(c.PostForm("operation_id"))

	data := financePage(form)

	if form.OperationID == "" {
		if _, ok := h.loadFinanceChoices(c, form, data); ok {
			data["Error"] = "Veuillez sélectionner une opération"
			h.render(c, http.StatusBadRequest, "finance.html", data)
		}
		return
	}

	err := h.api.CreateFinance(c.Request.Context(), token(c), form.OperationID, form.OperationFinance)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de l'enregistrement du financement.")
		if handled {
			return
		}
		if _, ok := h.loadFinanceChoices(c, form, data); ok {
			data["Error"] = msg
			data["Errors"] = fieldErrors(err)
			h.render(c, failureStatus(err), "finance.html", data)
		}
		return
	}

	logger.Info("Finance recorded", "operation_id", form.OperationID, "total", form.Total())
	h.success(c, "Financement enregistré avec succès !", "/dashboard")
}

// loadFinanceChoices fills the culture and operation selects and reports the
// status the page should be rendered with. ok is false when the response was
// already written.
func (h *Handlers) loadFinanceChoices(c *gin.Context, form financeForm, data gin.H) (status int, ok bool) {
	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de la récupération des cultures.")
		if handled {
			return 0, false
		}
		data["Error"] = msg
		return failureStatus(err), true
	}
	data["Cultures"] = cultures

	if form.CultureID == "" {
		return http.StatusOK, true
	}

	operations, err := h.api.ListCultureOperations(c.Request.Context(), token(c), form.CultureID)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de la récupération des opérations.")
		if handled {
			return 0, false
		}
		data["Error"] = msg
		return failureStatus(err), true
	}
	data["Operations"] = operations
	return http.StatusOK, true
}
