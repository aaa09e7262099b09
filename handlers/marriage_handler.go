package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/services"
)

type MarriageHandler struct {
	marriageService *services.MarriageService
}

func NewMarriageHandler(marriageService *services.MarriageService) *MarriageHandler {
	return &MarriageHandler{
		marriageService: marriageService,
	}
}

func (h *MarriageHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body struct {
		ProposerID string `json:"proposerId"`
		ProposedID string `json:"proposedId"`
		GuildID    string `json:"guildId"`
		ChannelID  string `json:"channelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProposerID == "" || body.ProposedID == "" || body.GuildID == "" {
		respondWithError(w, http.StatusBadRequest, "proposerId, proposedId and guildId are required")
		return
	}

	p, err := h.marriageService.CreateProposal(ctx, body.ProposerID, body.ProposedID, body.GuildID, body.ChannelID)
	if err != nil {
		switch {
		case errors.Is(err, marriage.ErrProposalRateLimit):
			respondWithError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, marriage.ErrSelfProposal),
			errors.Is(err, marriage.ErrAlreadyMarried),
			errors.Is(err, marriage.ErrPartnerMarried),
			errors.Is(err, marriage.ErrProposalExists):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *MarriageHandler) RespondToProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	proposalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	var body struct {
		ResponderID string `json:"responderId"`
		Accept      bool   `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ResponderID == "" {
		respondWithError(w, http.StatusBadRequest, "responderId is required")
		return
	}

	m, err := h.marriageService.RespondToProposal(ctx, proposalID, body.ResponderID, body.Accept)
	if err != nil {
		switch {
		case errors.Is(err, marriage.ErrProposalNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, marriage.ErrProposalExpired), errors.Is(err, marriage.ErrAlreadyMarried):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if m == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "declined"})
		return
	}
	respondWithJSON(w, http.StatusCreated, m)
}

func (h *MarriageHandler) GetMarriage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, guildID := r.URL.Query().Get("userId"), r.URL.Query().Get("guildId")
	if userID == "" || guildID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'userId' and 'guildId' are required")
		return
	}

	m, err := h.marriageService.GetByUser(ctx, userID, guildID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		respondWithError(w, http.StatusNotFound, "You are not married")
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

func (h *MarriageHandler) Divorce(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body struct {
		UserID  string `json:"userId"`
		GuildID string `json:"guildId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" || body.GuildID == "" {
		respondWithError(w, http.StatusBadRequest, "userId and guildId are required")
		return
	}

	if err := h.marriageService.Divorce(ctx, body.UserID, body.GuildID); err != nil {
		if errors.Is(err, marriage.ErrNotMarried) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Marriage dissolved"})
}
