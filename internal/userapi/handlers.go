package userapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/saurav-22/task-management-app-backend/internal/storage"
)

const registerMaxSize = 64 * 1024 // 64 KiB

// Register wires up the user service routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, issuer TokenIssuer, tokenTTL time.Duration, logger *log.Logger) {
	e.POST("/api/users/register", registerUser(store, logger))
	e.POST("/api/users/login", login(store, issuer, tokenTTL, logger))
	e.GET("/api/users/by-email", userByEmail(store, auth, logger))
	e.GET("/health", health())
}

type errorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registeredResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type userIDResponse struct {
	ID int64 `json:"id"`
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func registerUser(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, registerMaxSize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if req.Email == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing email"})
		}

		hash, err := hashPassword(req.Password)
		if errors.Is(err, errPasswordTooShort) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "password too short"})
		}
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/users/register", "error": err.Error()}).Error("hash password")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to register"})
		}

		id, err := store.InsertUser(c.Request().Context(), req.Email, hash)
		if errors.Is(err, storage.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
		}
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/users/register", "error": err.Error()}).Error("insert user")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to register"})
		}
		return c.JSON(http.StatusOK, registeredResponse{ID: id, Email: req.Email})
	}
}

func login(store Storage, issuer TokenIssuer, tokenTTL time.Duration, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, registerMaxSize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		// Unknown email and wrong password produce identical responses.
		id, hash, err := store.CredentialsByEmail(c.Request().Context(), req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/users/login", "error": err.Error()}).Error("fetch credentials")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to login"})
		}
		if err := verifyPassword(hash, req.Password); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}

		token, err := issuer.IssueToken(id, tokenTTL)
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/users/login", "error": err.Error()}).Error("issue token")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to login"})
		}
		return c.JSON(http.StatusOK, loginResponse{Token: token})
	}
}

func userByEmail(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}
		email := c.QueryParam("email")
		if email == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing email"})
		}

		u, err := store.UserByEmail(c.Request().Context(), email)
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		if err != nil {
			logger.WithFields(log.Fields{"route": "/api/users/by-email", "error": err.Error()}).Error("fetch user")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to fetch user"})
		}
		return c.JSON(http.StatusOK, userIDResponse{ID: u.ID})
	}
}
