package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jusconsultus/lexsearch/internal/deepsearch"
	"github.com/jusconsultus/lexsearch/internal/userdocs"
	"github.com/jusconsultus/lexsearch/provider"
)

type Handler struct {
	Engine   *deepsearch.Engine
	UserDocs *userdocs.Index
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/search", h.search)
	g.POST("/answer", h.answer)
	g.POST("/documents", h.uploadDocuments)
}

type searchRequest struct {
	Query         string   `json:"query"`
	SourceFilters []string `json:"source_filters,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

func (h *Handler) search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	result, err := h.Engine.Search(c.Request().Context(), req.Query, req.SourceFilters, req.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

type answerRequest struct {
	Query           string             `json:"query"`
	Mode            string             `json:"mode,omitempty"`
	ChatMode        string             `json:"chat_mode,omitempty"`
	SourceFilters   []string           `json:"source_filters,omitempty"`
	IncludeUserDocs bool               `json:"include_user_docs,omitempty"`
	MaxSources      int                `json:"max_sources,omitempty"`
	History         []provider.Message `json:"history,omitempty"`
	DeepThink       bool               `json:"deep_think,omitempty"`
}

func (h *Handler) answer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	answer, err := h.Engine.DeepAnswer(c.Request().Context(), req.Query, deepsearch.Options{
		Mode:            req.Mode,
		ChatMode:        req.ChatMode,
		SourceFilters:   req.SourceFilters,
		IncludeUserDocs: req.IncludeUserDocs,
		MaxSources:      req.MaxSources,
		History:         req.History,
		DeepThink:       req.DeepThink,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, answer)
}

type uploadRequest struct {
	Documents []struct {
		Name string `json:"name"`
		Text string `json:"text,omitempty"`
		HTML string `json:"html,omitempty"`
	} `json:"documents"`
}

func (h *Handler) uploadDocuments(c echo.Context) error {
	if h.UserDocs == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "user documents disabled")
	}
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Documents) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no documents provided")
	}
	indexed := 0
	for _, d := range req.Documents {
		n, err := h.UserDocs.Add(userdocs.DocInput{Name: d.Name, Text: d.Text, HTML: d.HTML})
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		indexed += n
	}
	return c.JSON(http.StatusOK, map[string]int{"chunks_indexed": indexed, "total_chunks": h.UserDocs.Len()})
}
