package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/abhisek/quiztutor/internal/auth"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/store"
	"github.com/abhisek/quiztutor/internal/tutor"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	_, err := s.accounts.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeMessage(w, "registration successful")
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, "register", err)
	}
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeData(w, sess)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.internalError(w, "login", err)
	}
}

func (s *server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.tutor.Topics(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		writeError(w, http.StatusBadGateway, tutor.ErrTopicGeneration.Error())
		return
	}
	writeData(w, topics)
}

func (s *server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, ok := parseUserID(w, q.Get("user_id"))
	if !ok {
		return
	}

	req := tutor.FetchRequest{
		UserID:  userID,
		Subject: q.Get("subject"),
		Topic:   q.Get("topic"),
	}
	if v := q.Get("initial_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "initial_score must be an integer")
			return
		}
		req.InitialScore = &n
	}

	resp, err := s.tutor.Fetch(r.Context(), req)
	switch {
	case err == nil:
		writeData(w, resp)
	case errors.Is(err, tutor.ErrQuestionGeneration):
		writeError(w, http.StatusBadGateway, tutor.ErrQuestionGeneration.Error())
	default:
		s.internalError(w, "fetch question", err)
	}
}

type submitResponse struct {
	Status string `json:"status"`
	*tutor.SubmitResponse
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req tutor.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	resp, err := s.tutor.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, submitResponse{Status: statusSuccess, SubmitResponse: resp})
	case errors.Is(err, session.ErrNoPendingQuestion):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, "submit", err)
	}
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}

	stats, err := s.tutor.Stats(r.Context(), userID)
	switch {
	case err == nil:
		writeData(w, stats)
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.internalError(w, "stats", err)
	}
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.tutor.Dashboard(r.Context())
	if err != nil {
		s.internalError(w, "dashboard", err)
		return
	}
	writeData(w, rows)
}

func (s *server) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("api: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error, please retry")
}

func parseUserID(w http.ResponseWriter, v string) (int64, bool) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "user_id must be a positive integer")
		return 0, false
	}
	return id, true
}
