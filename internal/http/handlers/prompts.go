package handlers

import (
	"errors"
	"net/http"

	"veogallery/internal/domain"
)

type enhanceRequest struct {
	Prompt string `json:"prompt"`
}

func (a *App) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.Prompts.Enhance(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		a.errorDetails(w, http.StatusInternalServerError, "Failed to enhance prompt with AI", err.Error())
		return
	}
	a.json(w, http.StatusOK, res)
}
