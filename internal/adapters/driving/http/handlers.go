package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/swaggo/swag"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// maxChatBodyBytes bounds the request body of POST /chat
const maxChatBodyBytes = 64 << 10

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// RootResponse describes the API
// @Description API description
type RootResponse struct {
	Title       string `json:"title" example:"MOODLE RAG CHAT API"`
	Description string `json:"description" example:"API for the MOODLE RAG CHAT project"`
	DocsURL     string `json:"docs_url" example:"/docs"`
}

// handleRoot godoc
// @Summary      API information
// @Description  Returns the API title, description and documentation URL
// @Tags         Health
// @Produce      json
// @Success      200  {object}  RootResponse
// @Router       / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Title:       "MOODLE RAG CHAT API",
		Description: "API for the MOODLE RAG CHAT project",
		DocsURL:     "/docs",
	})
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns ok while the process is up. Does not touch the index or the models.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns ready once a vector index is loaded
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  StatusResponse  "Index not loaded yet"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.indexService.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Chat endpoint

// handleChat godoc
// @Summary      Ask a question
// @Description  Classifies the query, retrieves the five most similar Moodle documents and answers from them
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ChatRequest  true  "Chat query"
// @Success      200      {object}  domain.ChatResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body or empty message"
// @Failure      500      {object}  ErrorResponse  "Classification, retrieval or generation failed"
// @Failure      503      {object}  ErrorResponse  "Index not loaded yet"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.chatService.Respond(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrIndexNotReady):
			writeError(w, http.StatusServiceUnavailable, "index not loaded yet")
		default:
			s.logger.Error("chat request failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Index endpoints

// handleIndexStatus godoc
// @Summary      Index status
// @Description  Returns the most recent index run
// @Tags         Index
// @Produce      json
// @Success      200  {object}  domain.IndexRun
// @Failure      404  {object}  ErrorResponse  "No index run yet"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /index/status [get]
func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	run, err := s.indexService.Status(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no index run yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get index status")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleIndexHistory godoc
// @Summary      Index history
// @Description  Returns recent index runs, newest first
// @Tags         Index
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of runs (default 20, max 100)"
// @Success      200    {array}   domain.IndexRun
// @Failure      400    {object}  ErrorResponse  "Invalid limit"
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /index/history [get]
func (s *Server) handleIndexHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.indexService.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list index runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// Documentation endpoints

const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>MOODLE RAG CHAT API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>window.ui = SwaggerUIBundle({url: "/docs/doc.json", dom_id: "#swagger-ui"});</script>
</body>
</html>`

func (s *Server) handleDocsUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docsPage))
}

func (s *Server) handleDocsJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
