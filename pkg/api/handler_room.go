package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eroom-dev/eroom/pkg/models"
)

// Korean client-contract strings for the submission flow.
const (
	statusWaiting    = "대기중"
	msgRoomAccepted  = "방 생성 요청이 접수되었습니다"
	msgUnknownJob    = "해당 작업을 찾을 수 없습니다"
	msgSubmitFailure = "요청을 대기열에 추가하지 못했습니다"
)

// createRoomHandler handles POST /room/create. Only body parse failures
// and a blank uuid produce a 400 here; full request validation happens in
// the pipeline, whose failure document needs the user id.
func (s *Server) createRoomHandler(c *gin.Context) {
	var req models.CreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uuid is required"})
		return
	}

	ruid, err := s.manager.Submit(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Could not enqueue job", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSubmitFailure})
		return
	}

	c.JSON(http.StatusAccepted, CreateRoomResponse{
		RUID:    ruid,
		Status:  statusWaiting,
		Message: msgRoomAccepted,
	})
}

// roomResultHandler handles GET /room/result?ruid=<id>. A terminal result
// is served exactly once: the store removes the entry in the same critical
// section that reads it, so the next poll is a 404.
func (s *Server) roomResultHandler(c *gin.Context) {
	ruid := c.Query("ruid")
	if ruid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ruid query parameter is required"})
		return
	}

	snap, ok := s.store.Collect(ruid)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgUnknownJob})
		return
	}

	if !snap.Status.Terminal() {
		c.JSON(http.StatusOK, JobStatusResponse{RUID: ruid, Status: string(snap.Status)})
		return
	}

	slog.Info("Result delivered", "job_id", ruid, "success", snap.Result.Success)
	c.JSON(http.StatusOK, snap.Result)
}
