package handlers

import (
	"net/http"

	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleCultures(c *gin.Context) {
	data := gin.H{"Title": "Mes cultures - TerrePro"}

	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Impossible de charger les cultures")
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "cultures.html", data)
		return
	}

	data["Cultures"] = cultures
	h.render(c, http.StatusOK, "cultures.html", data)
}

func (h *Handlers) handleNewCulturePage(c *gin.Context) {
	h.render(c, http.StatusOK, "culture_new.html", gin.H{
		"Title": "Nouvelle culture - TerrePro",
		"Form":  models.CultureInput{},
	})
}

func (h *Handlers) handleCreateCulture(c *gin.Context) {
	var in models.CultureInput
	_ = c.ShouldBind(&in)

	data := gin.H{
		"Title": "Nouvelle culture - TerrePro",
		"Form":  in,
	}

	if in.NomCulture == "" {
		data["Errors"] = map[string]string{"nom_culture": "Le nom de la culture est requis"}
		h.render(c, http.StatusBadRequest, "culture_new.html", data)
		return
	}

	created, err := h.api.CreateCulture(c.Request.Context(), token(c), in)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de la création de la culture")
		if handled {
			return
		}
		data["Error"] = msg
		data["Errors"] = fieldErrors(err)
		h.render(c, failureStatus(err), "culture_new.html", data)
		return
	}

	logger.Info("Culture created", "culture_id", created.ID)
	h.success(c, "Culture créée avec succès", "/cultures")
}
