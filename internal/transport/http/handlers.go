package http

import (
	"context"
	"fmt"
	"net/http"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type joinRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type joinResponse struct {
	Player domain.Player `json:"player"`
	Token  string        `json:"token"`
}

type sessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type startRequest struct {
	QuestionID string `json:"questionId"`
}

type answerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Option     string `json:"option" validate:"required,oneof=A B C D"`
}

// answerResult acknowledges a submission. Correctness is not included; it is
// published with the player view once the question is revealed.
type answerResult struct {
	QuestionID     string        `json:"questionId"`
	SelectedAnswer domain.Choice `json:"selectedAnswer"`
	Changed        bool          `json:"changed"`
}

func submitAnswer(ctx context.Context, ledger *app.AnswerLedger, v *validator.Validate, m *Metrics, roomID, playerID string, req answerRequest) (answerResult, error) {
	if err := v.Struct(req); err != nil {
		m.recordAnswer("rejected")
		return answerResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidChoice, err)
	}
	change, err := ledger.SubmitOrUpdateAnswer(ctx, roomID, playerID, req.QuestionID, domain.Choice(req.Option))
	if err != nil {
		m.recordAnswer("rejected")
		return answerResult{}, err
	}
	outcome := "created"
	if change.Previous != nil {
		outcome = "changed"
	}
	m.recordAnswer(outcome)
	return answerResult{
		QuestionID:     change.Current.QuestionID,
		SelectedAnswer: change.Current.SelectedAnswer,
		Changed:        change.Previous != nil,
	}, nil
}

func (a *API) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.svc.Questions.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !a.isAdmin(bearerToken(r)) {
		for i := range questions {
			questions[i] = questions[i].Redacted()
		}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) createQuestion(w http.ResponseWriter, r *http.Request) {
	var in app.QuestionInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	q, err := a.svc.Questions.Create(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (a *API) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var in app.QuestionInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	q, err := a.svc.Questions.Update(r.Context(), chi.URLParam(r, "questionID"), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Questions.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ensureRoom(w http.ResponseWriter, r *http.Request) {
	room, err := a.svc.Rooms.EnsureRoom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (a *API) getRoom(w http.ResponseWriter, r *http.Request) {
	view, err := a.svc.Views.Room(r.Context(), chi.URLParam(r, "roomID"), !a.isAdmin(bearerToken(r)))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) startQuestion(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
	}
	a.roomTransition(w, r, func(ctx context.Context, roomID string) (domain.Room, error) {
		return a.svc.Rooms.StartQuestion(ctx, roomID, req.QuestionID)
	})
}

func (a *API) revealAnswer(w http.ResponseWriter, r *http.Request) {
	a.roomTransition(w, r, a.svc.Rooms.RevealAnswer)
}

func (a *API) nextQuestion(w http.ResponseWriter, r *http.Request) {
	a.roomTransition(w, r, a.svc.Rooms.NextQuestion)
}

func (a *API) revealRank(w http.ResponseWriter, r *http.Request) {
	a.roomTransition(w, r, a.svc.Rooms.RevealRank)
}

func (a *API) resetRoom(w http.ResponseWriter, r *http.Request) {
	a.roomTransition(w, r, a.svc.Rooms.Reset)
}

func (a *API) roomTransition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (domain.Room, error)) {
	roomID := chi.URLParam(r, "roomID")
	room, err := fn(r.Context(), roomID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info("room transition", "room", roomID, "path", r.URL.Path, "status", room.Status, "revealedRank", room.RevealedRank)
	writeJSON(w, http.StatusOK, room)
}

func (a *API) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := a.svc.Views.Players(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (a *API) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	player, session, err := a.svc.Players.Join(r.Context(), chi.URLParam(r, "roomID"), req.Name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinResponse{Player: player, Token: session.Token})
}

func (a *API) restoreSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, r, domain.ErrSessionNotFound)
		return
	}
	player, err := a.svc.Players.Restore(r.Context(), chi.URLParam(r, "roomID"), req.Token)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{Player: player, Token: req.Token})
}

func (a *API) playerView(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	player, err := a.svc.Players.Restore(r.Context(), roomID, r.Header.Get(playerTokenHeader))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	view, err := a.svc.Views.Player(r.Context(), roomID, player.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) submitAnswer(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	player, err := a.svc.Players.Restore(r.Context(), roomID, r.Header.Get(playerTokenHeader))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := submitAnswer(r.Context(), a.svc.Ledger, a.validate, a.metrics, roomID, player.ID, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) answerCount(w http.ResponseWriter, r *http.Request) {
	room, err := a.svc.Rooms.Get(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	questionID := ""
	if room.CurrentQuestionID != nil {
		questionID = *room.CurrentQuestionID
	}
	stats, err := a.svc.Views.Answers(r.Context(), questionID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) standings(w http.ResponseWriter, r *http.Request) {
	standings, err := a.svc.Views.Standings(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
