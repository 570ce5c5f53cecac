package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/portal-planner/internal/logging"
	"github.com/jonathan/portal-planner/internal/pipeline"
	"github.com/jonathan/portal-planner/internal/portal"
	"github.com/jonathan/portal-planner/internal/types"
)

// LoginRequest represents the request body for POST /login. Form posts may use
// user_name, the field name the portal itself uses.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response for POST /login
type LoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Result  *types.Result `json:"result,omitempty"`
}

// RootResponse represents the response for GET /
type RootResponse struct {
	Client  []string `json:"client"`
	Message string   `json:"message"`
}

// handleRoot reports which clients the server accepts
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	clients := s.cfg.ClientURLs
	if clients == nil {
		clients = []string{}
	}
	s.jsonResponse(w, http.StatusOK, RootResponse{Client: clients, Message: "Server is running"})
}

// handleLogin runs one aggregation and returns the whole result
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLogin(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), ClientMessage(err))
		return
	}

	result, err := s.aggregate(r.Context(), portal.Credentials(req), nil)
	if err != nil {
		s.logFailure(req.Username, err)
		s.errorResponse(w, HTTPStatus(err), ClientMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, LoginResponse{Success: true, Message: "Success", Result: result})
}

// handleLoginStream runs one aggregation and reports progress over SSE
func (s *Server) handleLoginStream(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	query := r.URL.Query()
	req, err := s.validateLogin(LoginRequest{
		Username: query.Get("username"),
		Password: query.Get("password"),
	})
	if err != nil {
		sse.WriteError(ClientMessage(err))
		return
	}

	onProgress := func(ev pipeline.ProgressEvent) {
		sse.WriteProgress(ev.Step, ev.Message)
	}
	result, err := s.aggregate(r.Context(), portal.Credentials(req), onProgress)
	if err != nil {
		s.logFailure(req.Username, err)
		sse.WriteError(ClientMessage(err))
		return
	}
	sse.WriteComplete(result)
}

// decodeLogin reads credentials from a JSON or form body
func (s *Server) decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, &ErrValidation{Field: "body", Message: "Invalid request body"}
		}
		return s.validateLogin(req)
	}

	if err := r.ParseForm(); err != nil {
		return req, &ErrValidation{Field: "body", Message: "Invalid request body"}
	}
	req.Username = r.PostForm.Get("username")
	if req.Username == "" {
		req.Username = r.PostForm.Get("user_name")
	}
	req.Password = r.PostForm.Get("password")
	return s.validateLogin(req)
}

func (s *Server) validateLogin(req LoginRequest) (LoginRequest, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return req, &ErrValidation{
				Field:   strings.ToLower(fieldErrs[0].Field()),
				Message: "Username and password are required",
			}
		}
		return req, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return req, nil
}

func (s *Server) logFailure(username string, err error) {
	s.logger.Warn("aggregation failed",
		zap.String("user", logging.Redact(username)),
		zap.Int("status", HTTPStatus(err)),
		zap.Error(err),
	)
}

// errorResponse writes an error response in the same shape as a login response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, LoginResponse{Success: false, Message: message})
}
