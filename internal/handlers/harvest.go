package handlers

import (
	"net/http"

	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleHarvestPage(c *gin.Context) {
	data := gin.H{
		"Title": "Nouvelle récolte - TerrePro",
		"Form":  models.Harvest{CultureID: c.Query("culture_id")},
	}

	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, msgLoadCultures)
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "recoltes.html", data)
		return
	}

	data["Cultures"] = cultures
	h.render(c, http.StatusOK, "recoltes.html", data)
}

// handleCreateHarvest forwards the harvest exactly as typed.
func (h *Handlers) handleCreateHarvest(c *gin.Context) {
	var in models.Harvest
	_ = c.ShouldBind(&in)

	data := gin.H{
		"Title": "Nouvelle récolte - TerrePro",
		"Form":  in,
	}

	if in.CultureID == "" || in.DateRecolte == "" {
		data["Error"] = "Veuillez renseigner la culture et la date de récolte"
		h.renderHarvestForm(c, http.StatusBadRequest, data)
		return
	}

	if err := h.api.CreateHarvest(c.Request.Context(), token(c), in); err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de l'enregistrement")
		if handled {
			return
		}
		data["Error"] = msg
		data["Errors"] = fieldErrors(err)
		h.renderHarvestForm(c, failureStatus(err), data)
		return
	}

	logger.Info("Harvest recorded", "culture_id", in.CultureID)
	h.success(c, "Récolte enregistrée avec succès !", "/dashboard")
}

func (h *Handlers) renderHarvestForm(c *gin.Context, status int, data gin.H) {
	if cultures, err := h.api.ListCultures(c.Request.Context(), token(c)); err == nil {
		data["Cultures"] = cultures
	}
	h.render(c, status, "recoltes.html", data)
}
