package handler

import (
	"encoding/json"
	"net/http"

	"impostorhunt/internal/model"
	"impostorhunt/internal/service"
	"impostorhunt/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// GameHandler handles game lifecycle endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Language  string        `json:"language"`
	AICount   int           `json:"aiCount"`
	Privacy   model.Privacy `json:"privacy"`
	AIModelID string        `json:"aiModelId"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.gameSvc.Create(r.Context(), playerID, model.GameSettings{
		Language:  req.Language,
		AICount:   req.AICount,
		Privacy:   req.Privacy,
		AIModelID: req.AIModelID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

// Get handles GET /v1/games/{gameId}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	game, err := h.gameSvc.Game(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.ListPublicGames(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// Join handles POST /v1/games/{gameId}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.Join(r.Context(), gameID, playerID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// Start handles POST /v1/games/{gameId}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.Start(r.Context(), gameID, playerID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

// SubmitAnswer handles POST /v1/games/{gameId}/submit-answer
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "answer text is required")
		return
	}

	if err := h.gameSvc.SubmitAnswer(r.Context(), gameID, playerID, req.Text); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// VoteRequest is the request body for casting a vote
type VoteRequest struct {
	TargetID string `json:"targetId"`
}

// Vote handles POST /v1/games/{gameId}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	playerID := middleware.GetPlayerID(r.Context())

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "targetId is required")
		return
	}

	if err := h.gameSvc.SubmitVote(r.Context(), gameID, playerID, req.TargetID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

// TallyAnswers handles POST /v1/games/{gameId}/tally-answers
func (h *GameHandler) TallyAnswers(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.TallyAnswers(r.Context(), gameID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "tallied"})
}

// TallyVotes handles POST /v1/games/{gameId}/tally-votes
func (h *GameHandler) TallyVotes(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.TallyVotes(r.Context(), gameID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "tallied"})
}

// Models handles GET /v1/models
func (h *GameHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": model.Models()})
}
