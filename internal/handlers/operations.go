package handlers

import (
	"net/http"
	"strings"

	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
)

const msgLoadCultures = "Impossible de charger les cultures"

func (h *Handlers) handleOperations(c *gin.Context) {
	data := gin.H{"Title": "Opérations - TerrePro"}

	operations, err := h.api.ListOperations(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors du chargement des opérations.")
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "operations.html", data)
		return
	}

	data["Operations"] = operations
	h.render(c, http.StatusOK, "operations.html", data)
}

// operationForm is what the new-operation page shows and re-shows.
type operationForm struct {
	CultureID string
	models.OperationInput
}

func (h *Handlers) operationPage(form operationForm) gin.H {
	return gin.H{
		"Title": "Nouvelle opération - TerrePro",
		"Form":  form,
		"Types": models.OperationTypes,
		"Units": models.Units,
	}
}

func (h *Handlers) handleNewOperationPage(c *gin.Context) {
	form := operationForm{CultureID: c.Query("cultureId")}
	form.Unite = models.DefaultUnit
	data := h.operationPage(form)

	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, msgLoadCultures)
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "operation_new.html", data)
		return
	}

	data["Cultures"] = cultures
	h.render(c, http.StatusOK, "operation_new.html", data)
}

func (h *Handlers) handleCreateOperation(c *gin.Context) {
	var form operationForm
	_ = c.ShouldBind(&form.OperationInput)
	form.CultureID = strings.TrimSpace(c.PostForm("culture_id"))
	if form.Unite == "" {
		form.Unite = models.DefaultUnit
	}

	data := h.operationPage(form)

	if form.CultureID == "" || !form.TypeOperation.Valid() || form.DateOperation == "" {
		data["Error"] = "Veuillez renseigner la culture, le type et la date de l'opération"
		h.renderOperationForm(c, http.StatusBadRequest, data)
		return
	}

	created, err := h.api.CreateOperation(c.Request.Context(), token(c), form.CultureID, form.OperationInput)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de l'enregistrement de l'opération.")
		if handled {
			return
		}
		data["Error"] = msg
		data["Errors"] = fieldErrors(err)
		h.renderOperationForm(c, failureStatus(err), data)
		return
	}

	logger.Info("Operation created", "operation_id", created.ID, "culture_id", form.CultureID)
	h.success(c, "Opération enregistrée avec succès !", "/operations")
}

// renderOperationForm re-fetches the culture list so the select stays usable
// after a failed submission. A failure there leaves the list empty.
func (h *Handlers) renderOperationForm(c *gin.Context, status int, data gin.H) {
	if cultures, err := h.api.ListCultures(c.Request.Context(), token(c)); err == nil {
		data["Cultures"] = cultures
	}
	h.render(c, status, "operation_new.html", data)
}
