package boardapi

import (
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

const createBoardMaxSize = 64 * 1024 // 64 KiB

// Storage abstracts board persistence for handlers.
type Storage interface {
	InsertBoard(ctx context.Context, title string, ownerID int64) (domain.Board, error)
	BoardsByOwner(ctx context.Context, ownerID int64) ([]domain.Board, error)
}

// Authenticator is implemented by types able to extract user ids from
// Authorization headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (int64, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type createBoardRequest struct {
	Title string `json:"title"`
}

// Register wires up the board service routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, logger *log.Logger) {
	e.POST("/api/boards", postBoard(store, auth, logger))
	e.GET("/api/boards", getBoards(store, auth, logger))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func postBoard(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Ownership comes from the verified token, never from the body.
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}

		var req createBoardRequest
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, createBoardMaxSize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if req.Title == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing title"})
		}

		board, err := store.InsertBoard(c.Request().Context(), req.Title, userID)
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/boards", "error": err.Error()}).Error("insert board")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create board"})
		}
		return c.JSON(http.StatusOK, board)
	}
}

func getBoards(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}

		boards, err := store.BoardsByOwner(c.Request().Context(), userID)
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/boards", "error": err.Error()}).Error("fetch boards")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to fetch boards"})
		}
		return c.JSON(http.StatusOK, boards)
	}
}
