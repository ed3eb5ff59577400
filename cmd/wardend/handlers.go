package main

import (
	"context"
	"net/http"

	warden "github.com/kingdom-collective/warden"
	"github.com/kingdom-collective/warden/modstore"

	"github.com/labstack/echo/v4"
)

type userRequest struct {
	UserID string `json:"userId"`
}

type contentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type shadowbanRequest struct {
	UserID   string `json:"userId"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

type appealRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

type processAppealRequest struct {
	Approved          bool   `json:"approved"`
	ModeratorResponse string `json:"moderatorResponse"`
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/_health", s.handleHealth)

	e.POST("/checks/dm", s.handleCheckDM)
	e.POST("/checks/post", s.handleCheckPost)
	e.POST("/consume/dm", s.handleConsumeDM)
	e.POST("/consume/post", s.handleConsumePost)
	e.POST("/records/dm", s.handleRecord(s.engine.RecordDM, "dm"))
	e.POST("/records/post", s.handleRecord(s.engine.RecordPost, "post"))
	e.POST("/records/comment", s.handleRecord(s.engine.RecordComment, "comment"))
	e.POST("/records/like", s.handleRecord(s.engine.RecordLike, "like"))

	e.POST("/spam/check", s.handleSpamCheck)
	e.POST("/spam/flagged", s.handleSpamFlagged)

	e.POST("/admin/shadowban", s.handleShadowban)
	e.GET("/admin/shadowban/:userId", s.handleShadowbanStatus)
	e.POST("/appeals", s.handleSubmitAppeal)
	e.POST("/appeals/:id/process", s.handleProcessAppeal)
	e.GET("/admin/users/:userId/stats", s.handleUserStats)
	e.GET("/admin/config", s.handleGetConfig)
	e.PATCH("/admin/config", s.handleUpdateConfig)
	e.POST("/admin/cleanup", s.handleCleanup)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func bindUser(c echo.Context) (userRequest, error) {
	var body userRequest
	if err := c.Bind(&body); err != nil {
		return body, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return body, nil
}

func (s *Server) admissionResponse(c echo.Context, category string, res warden.AdmissionResult, err error) error {
	if err != nil {
		return err
	}
	if res.Allowed {
		admissionsAllowed.WithLabelValues(category).Inc()
	} else {
		admissionsDenied.WithLabelValues(category).Inc()
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleCheckDM(c echo.Context) error {
	body, err := bindUser(c)
	if err != nil {
		return err
	}
	res, err := s.engine.CanSendDM(c.Request().Context(), body.UserID)
	return s.admissionResponse(c, "dm", res, err)
}

func (s *Server) handleCheckPost(c echo.Context) error {
	body, err := bindUser(c)
	if err != nil {
		return err
	}
	res, err := s.engine.CanCreatePost(c.Request().Context(), body.UserID)
	return s.admissionResponse(c, "post", res, err)
}

func (s *Server) handleConsumeDM(c echo.Context) error {
	body, err := bindUser(c)
	if err != nil {
		return err
	}
	res, err := s.engine.TryConsumeDM(c.Request().Context(), body.UserID)
	return s.admissionResponse(c, "dm", res, err)
}

func (s *Server) handleConsumePost(c echo.Context) error {
	body, err := bindUser(c)
	if err != nil {
		return err
	}
	res, err := s.engine.TryConsumePost(c.Request().Context(), body.UserID)
	return s.admissionResponse(c, "post", res, err)
}

func (s *Server) handleRecord(record func(ctx context.Context, userID string) error, category string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := bindUser(c)
		if err != nil {
			return err
		}
		if err := record(c.Request().Context(), body.UserID); err != nil {
			return err
		}
		actionsRecorded.WithLabelValues(category).Inc()
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Server) handleSpamCheck(c echo.Context) error {
	var body contentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	dec, err := s.engine.CheckContentForSpam(c.Request().Context(), body.Content, body.UserID)
	if err != nil {
		return err
	}
	spamChecks.Inc()
	if dec.IsSpam {
		spamFlagged.Inc()
	}
	return c.JSON(http.StatusOK, dec)
}

func (s *Server) handleSpamFlagged(c echo.Context) error {
	var body contentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.engine.RecordFlaggedContent(c.Request().Context(), body.UserID, body.Content); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleShadowban(c echo.Context) error {
	var body shadowbanRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	err := s.engine.ApplyShadowban(c.Request().Context(), body.UserID, body.Reason, modstore.ShadowbanStatus(body.Severity))
	if err != nil {
		return err
	}
	shadowbansApplied.Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleShadowbanStatus(c echo.Context) error {
	state, err := s.engine.IsShadowbanned(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) handleSubmitAppeal(c echo.Context) error {
	var body appealRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := s.engine.SubmitAppeal(c.Request().Context(), body.UserID, body.Reason)
	if err != nil {
		return err
	}
	appealsSubmitted.Inc()
	return c.JSON(http.StatusOK, map[string]string{"appealId": id})
}

func (s *Server) handleProcessAppeal(c echo.Context) error {
	var body processAppealRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	found, err := s.engine.ProcessAppeal(c.Request().Context(), c.Param("id"), body.Approved, body.ModeratorResponse)
	if err != nil {
		return err
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "appeal not found")
	}
	appealsProcessed.Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUserStats(c echo.Context) error {
	stats, err := s.engine.GetUserStats(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.GetConfig())
}

func (s *Server) handleUpdateConfig(c echo.Context) error {
	var patch warden.ConfigPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, s.engine.UpdateConfig(patch))
}

func (s *Server) handleCleanup(c echo.Context) error {
	removed, err := s.engine.CleanupOldData(c.Request().Context())
	if err != nil {
		return err
	}
	cleanupRuns.Inc()
	cleanupBucketsRemoved.Add(float64(removed))
	return c.JSON(http.StatusOK, map[string]int{"removedBuckets": removed})
}
