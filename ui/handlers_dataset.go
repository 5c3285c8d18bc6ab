package ui

import (
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"gopetro/domain/categorizer"
	"gopetro/domain/sample"
	"gopetro/domain/view"
	"gopetro/internal/dataset"
	"gopetro/internal/errors"
	"gopetro/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func (s *Server) current() (*dataset.Dataset, error) {
	ds := s.store.Current()
	if ds == nil {
		return nil, errors.DatasetUnavailable("no dataset loaded", nil)
	}
	return ds, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", gin.H{
		"Variables": sample.Variables(),
		"Default":   view.DefaultSelection(),
	})
}

func (s *Server) handleVariables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"variables": sample.Variables(),
		"default":   view.DefaultSelection(),
	})
}

func (s *Server) handleDataset(c *gin.Context) {
	ds, err := s.current()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dataset.Summarize(ds))
}

func (s *Server) handleRefresh(c *gin.Context) {
	before := s.store.Current()
	ds, err := s.store.Refresh(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":  ds.Version(),
		"source":   ds.Source(),
		"samples":  ds.Len(),
		"excluded": ds.ExcludedIDs(),
		"changed":  before != ds,
	})
}

// queryMeasurement parses one query parameter; absent or malformed is NaN
func queryMeasurement(c *gin.Context, name string) float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (s *Server) handleCategorize(c *gin.Context) {
	m := sample.Measurements{
		CV:  queryMeasurement(c, "cv"),
		HI:  queryMeasurement(c, "hi"),
		RQI: queryMeasurement(c, "rqi"),
		FZI: queryMeasurement(c, "fzi"),
	}
	match, err := categorizer.Explain(m)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"measurements": m,
		"category":     match.Category,
		"rule":         match.Rule,
		"rule_index":   match.RuleIndex,
		"condition":    match.Condition,
	})
}

// renderMarkdown converts md to HTML with tables enabled
func renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, r)
}

func (s *Server) handleReport(c *gin.Context) {
	ds, err := s.current()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	body := renderMarkdown(dataset.Summarize(ds).Markdown())
	s.renderTemplate(c, "report.html", gin.H{
		"Body": template.HTML(body),
	})
}
