package handlers

import (
	"net/http"
	"strconv"

	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
)

const recentOperations = 5

func (h *Handlers) handleDashboard(c *gin.Context) {
	data := gin.H{"Title": "Tableau de bord - TerrePro"}

	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Impossible de charger les cultures")
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "dashboard.html", data)
		return
	}

	operations, err := h.api.ListOperations(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors du chargement des opérations.")
		if handled {
			return
		}
		data["Error"] = msg
	}

	var surface float64
	for _, culture := range cultures {
		surface += culture.Superficie.Float()
	}

	recent := operations
	if len(recent) > recentOperations {
		recent = recent[:recentOperations]
	}

	data["CultureCount"] = len(cultures)
	data["OperationCount"] = len(operations)
	data["Surface"] = models.Number(strconv.FormatFloat(surface, 'f', -1, 64))
	data["Cultures"] = cultures
	data["Recent"] = recent
	h.render(c, http.StatusOK, "dashboard.html", data)
}
