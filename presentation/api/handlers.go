package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"seleniumacros/application/iim"
	"seleniumacros/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type InitRequest struct {
	Command string `json:"command" binding:"required"`
}

// PlayRequest names a macro file or carries the macro text inline
type PlayRequest struct {
	Macro          string `json:"macro"`
	Script         string `json:"script"`
	TimeoutSeconds int    `json:"timeout_seconds" binding:"min=0"`
}

type VariablesRequest struct {
	Variables map[string]string `json:"variables" binding:"required"`
}

type DisplayRequest struct {
	Message string `json:"message"`
}

type ReturnCodeResponse struct {
	ReturnCode int `json:"return_code"`
}

type PlayResponse struct {
	ReturnCode int                 `json:"return_code"`
	Report     *entities.RunReport `json:"report,omitempty"`
}

type handlers struct {
	iim    *iim.Interface
	logger *logrus.Logger
}

func (h *handlers) health(c *gin.Context) {
	success(c, gin.H{"status": "healthy"})
}

func (h *handlers) init(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.iim.Init(req.Command); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, ReturnCodeResponse{ReturnCode: entities.ReturnOK})
}

func (h *handlers) play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if (req.Macro == "") == (req.Script == "") {
		badRequest(c, "exactly one of macro or script is required")
		return
	}

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	// client disconnects do not abort a running macro
	ctx := context.WithoutCancel(c.Request.Context())

	var code int
	if req.Macro != "" {
		code = h.iim.Play(ctx, req.Macro, timeout)
	} else {
		code = h.iim.PlayReader(ctx, "inline", strings.NewReader(req.Script), timeout)
	}

	resp := PlayResponse{ReturnCode: code}
	if report, ok := h.iim.LastReport(); ok {
		resp.Report = &report
	}
	success(c, resp)
}

func (h *handlers) setVariables(c *gin.Context) {
	var req VariablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	for name, value := range req.Variables {
		h.iim.Set(name, value)
	}
	success(c, ReturnCodeResponse{ReturnCode: entities.ReturnOK})
}

func (h *handlers) display(c *gin.Context) {
	var req DisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, ReturnCodeResponse{ReturnCode: h.iim.Display(req.Message)})
}

func (h *handlers) exit(c *gin.Context) {
	success(c, ReturnCodeResponse{ReturnCode: h.iim.Exit()})
}

func (h *handlers) lastError(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	msg, found := h.iim.GetLastError(index)
	if !found {
		notFound(c, "no error at index "+strconv.Itoa(index))
		return
	}
	success(c, gin.H{"index": index, "message": msg})
}

func (h *handlers) lastExtract(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	value, found := h.iim.GetLastExtract(index)
	if !found {
		notFound(c, "no extract at index "+strconv.Itoa(index))
		return
	}
	success(c, gin.H{"index": index, "value": value})
}

func (h *handlers) lastReport(c *gin.Context) {
	report, ok := h.iim.LastReport()
	if !ok {
		notFound(c, "no macro played yet")
		return
	}
	success(c, report)
}

// indexParam reads ?index=, defaulting to the last entry
func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.DefaultQuery("index", "-1"))
	if err != nil {
		badRequest(c, "index must be an integer")
		return 0, false
	}
	return index, true
}
