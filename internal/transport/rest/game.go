package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/service/game"
)

// gameService defines the minimal interface needed by GameHandler.
type gameService interface {
	GenerateTargetWord(ctx context.Context, in game.TargetInput) (string, error)
	GenerateForbiddenList(ctx context.Context, in game.ForbiddenInput) ([]string, error)
	GenerateWordPair(ctx context.Context) domain.WordPair
	CheckDescription(ctx context.Context, in game.CheckDescriptionInput) (domain.Verdict, error)
	CheckGuess(ctx context.Context, in game.CheckGuessInput) (bool, error)
}

// GameHandler serves the endpoints a game server calls during a round.
type GameHandler struct {
	svc gameService
	log *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(svc gameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{svc: svc, log: logger.With("handler", "game")}
}

// Register mounts the game endpoints on mux.
func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/words/target", h.TargetWord)
	mux.HandleFunc("POST /api/v1/words/forbidden", h.ForbiddenList)
	mux.HandleFunc("POST /api/v1/words/pair", h.WordPair)
	mux.HandleFunc("POST /api/v1/descriptions/check", h.CheckDescription)
	mux.HandleFunc("POST /api/v1/guesses/check", h.CheckGuess)
}

type targetRequest struct {
	Exclude []string `json:"exclude"`
}

type targetResponse struct {
	Word string `json:"word"`
}

type forbiddenRequest struct {
	Word string `json:"word"`
	OutK *int   `json:"out_k"`
}

type forbiddenResponse struct {
	Word      string   `json:"word"`
	Forbidden []string `json:"forbidden"`
}

type checkDescriptionRequest struct {
	Word        string   `json:"word"`
	Description string   `json:"description"`
	Forbidden   []string `json:"forbidden"`
	Mode        string   `json:"mode"`
}

type checkGuessRequest struct {
	Word  string `json:"word"`
	Guess string `json:"guess"`
}

type checkGuessResponse struct {
	Correct bool `json:"correct"`
}

// TargetWord handles POST /api/v1/words/target.
func (h *GameHandler) TargetWord(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	word, err := h.svc.GenerateTargetWord(r.Context(), game.TargetInput{Exclude: req.Exclude})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, targetResponse{Word: word})
}

// ForbiddenList handles POST /api/v1/words/forbidden. A missing out_k uses
// the configured default.
func (h *GameHandler) ForbiddenList(w http.ResponseWriter, r *http.Request) {
	var req forbiddenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outK := -1
	if req.OutK != nil {
		outK = max(*req.OutK, 0)
	}

	list, err := h.svc.GenerateForbiddenList(r.Context(), game.ForbiddenInput{Word: req.Word, OutK: outK})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, forbiddenResponse{Word: domain.NormalizeText(req.Word), Forbidden: list})
}

// WordPair handles POST /api/v1/words/pair. It never fails.
func (h *GameHandler) WordPair(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GenerateWordPair(r.Context()))
}

// CheckDescription handles POST /api/v1/descriptions/check.
func (h *GameHandler) CheckDescription(w http.ResponseWriter, r *http.Request) {
	var req checkDescriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	verdict, err := h.svc.CheckDescription(r.Context(), game.CheckDescriptionInput{
		Word:        req.Word,
		Description: req.Description,
		Forbidden:   req.Forbidden,
		Mode:        req.Mode,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// CheckGuess handles POST /api/v1/guesses/check.
func (h *GameHandler) CheckGuess(w http.ResponseWriter, r *http.Request) {
	var req checkGuessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	correct, err := h.svc.CheckGuess(r.Context(), game.CheckGuessInput{Word: req.Word, Guess: req.Guess})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkGuessResponse{Correct: correct})
}
