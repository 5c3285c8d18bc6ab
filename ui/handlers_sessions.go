package ui

import (
	"net/http"

	"gopetro/domain/sample"
	"gopetro/domain/view"
	"gopetro/internal/errors"
	viewctl "gopetro/internal/view"
	"gopetro/ui/middleware"

	"github.com/gin-gonic/gin"
)

type axisRequest struct {
	Axis     string `json:"axis"`
	Variable string `json:"variable"`
}

type selectionRequest struct {
	X string `json:"x"`
	Y string `json:"y"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess, rd, err := s.sessions.Create()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"render":     rd,
	})
}

func (s *Server) handleRender(c *gin.Context) {
	rd, err := middleware.CurrentSession(c).Controller.Current()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (s *Server) handleAxis(c *gin.Context) {
	var req axisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, errors.InvalidInput("body must be {\"axis\", \"variable\"}"))
		return
	}
	axis, err := view.ParseAxis(req.Axis)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	rd, err := middleware.CurrentSession(c).Controller.OnAxisChanged(axis, req.Variable)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (s *Server) handleSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, errors.InvalidInput("body must be {\"x\", \"y\"}"))
		return
	}

	sel := view.AxisSelection{X: sample.Variable(req.X), Y: sample.Variable(req.Y)}
	rd, err := middleware.CurrentSession(c).Controller.SetSelection(sel)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (s *Server) handleStats(c *gin.Context) {
	rd, err := middleware.CurrentSession(c).Controller.Current()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	resp := gin.H{
		"x_axis":          rd.XAxis,
		"y_axis":          rd.YAxis,
		"dataset_version": rd.DatasetVersion,
		"relationship":    nil,
	}
	if rel, ok := viewctl.AxisStats(rd); ok {
		resp["relationship"] = rel
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEvents(c *gin.Context) {
	s.hub.HandleSSE(c, middleware.CurrentSession(c).ID)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(middleware.CurrentSession(c).ID); err != nil {
		middleware.RespondError(c, errors.NotFound("session"))
		return
	}
	c.Status(http.StatusNoContent)
}
