package taskapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
	"github.com/saurav-22/task-management-app-backend/internal/storage"
)

const (
	createTaskMaxSize    = 64 * 1024 // 64 KiB
	idempotencyKeyHeader = "Idempotency-Key"
	rollbackTimeout      = 5 * time.Second
)

type errorResponse struct {
	Error string `json:"error"`
}

type createTaskRequest struct {
	Title         string `json:"title"`
	BoardID       int64  `json:"boardId"`
	AssigneeEmail string `json:"assigneeEmail"`
}

type taskResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	BoardID       int64  `json:"boardId"`
	AssigneeEmail string `json:"assigneeEmail,omitempty"`
}

// Register wires up the task service routes on the provided Echo instance.
// deduper may be nil, in which case idempotency keys are not enforced.
func Register(e *echo.Echo, store Storage, auth Authenticator, resolver Resolver, deduper Deduper, logger *log.Logger) {
	e.POST("/api/tasks", postTask(store, auth, resolver, deduper, logger))
	e.GET("/api/tasks", getTasks(store, auth, logger))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// postTask sequences the task-creation workflow: authenticate, confirm the
// caller owns the target board, resolve the optional assignee through the
// user service, then write the task. The side-effect-free checks all run
// before the single insert, so no failure path needs compensation beyond
// releasing the idempotency key.
func postTask(store Storage, auth Authenticator, resolver Resolver, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newCreateRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(authHeader)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return err
		}

		var req createTaskRequest
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, createTaskMaxSize))
		dec.DisallowUnknownFields()
		if decodeErr := dec.Decode(&req); decodeErr != nil {
			metrics.SetErrorStage("invalid_body")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
			return err
		}
		if req.Title == "" || req.BoardID <= 0 {
			metrics.SetErrorStage("invalid_body")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "missing title or board id"})
			return err
		}
		metrics.SetAssigneeRequested(req.AssigneeEmail != "")

		// The key is recorded before any check so two racing requests with
		// the same key cannot both reach the insert. Every failure after
		// this point releases it so the caller may retry.
		keyRecorded := false
		idemKey := c.Request().Header.Get(idempotencyKeyHeader)
		if deduper != nil {
			if idemKey == "" {
				idemKey = uuid.NewString()
			}
			added, dedupeErr := deduper.Add(ctx, userID, idemKey)
			switch {
			case dedupeErr != nil:
				logger.WithFields(log.Fields{"route": "/api/tasks", "error": dedupeErr.Error()}).Warn("deduper unavailable; proceeding without idempotency")
			case !added:
				metrics.SetErrorStage("duplicate")
				err = c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
				return err
			default:
				keyRecorded = true
			}
			c.Response().Header().Set(idempotencyKeyHeader, idemKey)
		}
		releaseKey := func() {
			if !keyRecorded {
				return
			}
			rbCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
			defer cancel()
			if rerr := deduper.Remove(rbCtx, userID, idemKey); rerr != nil {
				logger.WithFields(log.Fields{"route": "/api/tasks", "error": rerr.Error()}).Warn("failed to release idempotency key")
			}
		}

		boardStart := time.Now()
		_, boardErr := store.OwnedBoard(ctx, req.BoardID, userID)
		metrics.ObserveOwnership(time.Since(boardStart))
		if errors.Is(boardErr, storage.ErrNotFound) {
			// Missing and foreign boards are indistinguishable here.
			metrics.SetErrorStage("ownership")
			releaseKey()
			err = c.JSON(http.StatusForbidden, errorResponse{Error: "unauthorized board"})
			return err
		}
		if boardErr != nil {
			metrics.SetErrorStage("storage")
			logger.WithFields(log.Fields{"route": "/api/tasks", "error": boardErr.Error()}).Error("ownership check")
			releaseKey()
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create task"})
			return err
		}

		var assigneeID *int64
		if req.AssigneeEmail != "" {
			resolveStart := time.Now()
			resolved, resolveErr := resolver.ResolveByEmail(ctx, req.AssigneeEmail, authHeader)
			metrics.ObserveResolve(time.Since(resolveStart))
			if resolveErr != nil {
				metrics.SetErrorStage("resolve")
				logger.WithFields(log.Fields{"route": "/api/tasks", "error": resolveErr.Error()}).Error("resolve assignee")
				releaseKey()
				err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create task"})
				return err
			}
			assigneeID = &resolved
		}

		insertStart := time.Now()
		taskID, insertErr := store.InsertTask(ctx, req.Title, req.BoardID, assigneeID)
		metrics.ObserveInsert(time.Since(insertStart))
		if insertErr != nil {
			metrics.SetErrorStage("storage")
			logger.WithFields(log.Fields{"route": "/api/tasks", "error": insertErr.Error()}).Error("insert task")
			releaseKey()
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create task"})
			return err
		}

		err = c.JSON(http.StatusOK, taskResponse{
			ID:            taskID,
			Title:         req.Title,
			BoardID:       req.BoardID,
			AssigneeEmail: req.AssigneeEmail,
		})
		return err
	}
}

func getTasks(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}

		boardParam := c.QueryParam("boardId")
		if boardParam == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing board id"})
		}
		boardID, err := strconv.ParseInt(boardParam, 10, 64)
		if err != nil || boardID <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid board id"})
		}

		tasks, err := store.TasksByBoard(c.Request().Context(), boardID)
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/tasks", "error": err.Error()}).Error("fetch tasks")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to fetch tasks"})
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return c.JSON(http.StatusOK, tasks)
	}
}
