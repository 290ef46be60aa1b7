package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"terrepro/internal/logger"
	"terrepro/internal/models"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
)

func exportPage() gin.H {
	return gin.H{
		"Title":       "Exporter - TerrePro",
		"CultureID":   "",
		"TypeFichier": "",
	}
}

func (h *Handlers) handleExportPage(c *gin.Context) {
	data := exportPage()

	cultures, err := h.api.ListCultures(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, msgLoadCultures)
		if handled {
			return
		}
		data["Error"] = msg
		h.render(c, failureStatus(err), "exports.html", data)
		return
	}

	data["Cultures"] = cultures
	h.render(c, http.StatusOK, "exports.html", data)
}

// handleExport streams the generated file back unchanged. On failure the
// export page is shown again and nothing is downloaded.
func (h *Handlers) handleExport(c *gin.Context) {
	cultureID := strings.TrimSpace(c.PostForm("culture_id"))
	rawType := c.PostForm("type_fichier")

	data := exportPage()
	data["CultureID"] = cultureID
	data["TypeFichier"] = rawType

	fileType, ok := models.ParseFileType(rawType)
	if !ok {
		data["Error"] = "Veuillez sélectionner un format d'export"
		h.renderExportForm(c, http.StatusBadRequest, data)
		return
	}
	if cultureID == "" {
		data["Error"] = "Veuillez sélectionner une culture"
		h.renderExportForm(c, http.StatusBadRequest, data)
		return
	}

	file, err := h.api.Export(c.Request.Context(), token(c), cultureID, fileType)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de l'exportation")
		if handled {
			return
		}
		data["Error"] = msg
		h.renderExportForm(c, failureStatus(err), data)
		return
	}

	logger.Info("Export downloaded", "culture_id", cultureID, "type", string(fileType), "bytes", len(file.Data))

	session.SetFlash(c, session.FlashSuccess, "Fichier exporté avec succès !", !h.cfg.IsDevelopment())
	c.Header("Content-Disposition", attachment(file.Filename))
	c.Header("Content-Length", strconv.Itoa(len(file.Data)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func (h *Handlers) renderExportForm(c *gin.Context, status int, data gin.H) {
	if cultures, err := h.api.ListCultures(c.Request.Context(), token(c)); err == nil {
		data["Cultures"] = cultures
	}
	h.render(c, status, "exports.html", data)
}
