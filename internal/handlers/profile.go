package handlers

import (
	"net/http"

	"terrepro/internal/logger"
	"terrepro/internal/models"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
)

func profileForm(u models.User) models.ProfileUpdate {
	return models.ProfileUpdate{
		Nom:       u.Nom,
		Prenom:    u.Prenom,
		Email:     u.Email,
		Telephone: u.Telephone,
	}
}

// handleProfilePage always reloads the profile from the API. When that fails
// the page still renders, prefilled from the session.
func (h *Handlers) handleProfilePage(c *gin.Context) {
	data := gin.H{"Title": "Mon profil - TerrePro"}

	user, err := h.api.GetProfile(c.Request.Context(), token(c))
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors du chargement du profil")
		if handled {
			return
		}
		data["Error"] = msg
		data["Form"] = profileForm(snapshotUser(c))
		h.render(c, failureStatus(err), "profil.html", data)
		return
	}

	data["Form"] = profileForm(*user)
	h.render(c, http.StatusOK, "profil.html", data)
}

func (h *Handlers) handleUpdateProfile(c *gin.Context) {
	var in models.ProfileUpdate
	_ = c.ShouldBind(&in)

	shown := in
	shown.Password = ""
	data := gin.H{
		"Title": "Mon profil - TerrePro",
		"Form":  shown,
	}

	user, err := h.api.UpdateProfile(c.Request.Context(), token(c), in)
	if err != nil {
		msg, handled := h.apiFailure(c, err, "Erreur lors de la mise à jour")
		if handled {
			return
		}
		data["Error"] = msg
		data["Errors"] = fieldErrors(err)
		h.render(c, failureStatus(err), "profil.html", data)
		return
	}

	snap, _ := session.Current(c)
	if err := h.sessions.UpdateUser(c.Request.Context(), snap.ID, *user); err != nil {
		logger.Warn("Failed to refresh session user", "session_id", snap.ID, "error", err)
	}

	logger.Info("Profile updated", "user_id", user.ID)
	h.success(c, "Profil mis à jour avec succès !", "/profil")
}
