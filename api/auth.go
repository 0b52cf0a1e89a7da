package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/admin"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/internal/auth"
	"github.com/semanticallynull/bikely-backend/internal/middleware"
	"github.com/semanticallynull/bikely-backend/notification"
	"github.com/semanticallynull/bikely-backend/user"
)

var (
	errInvalidCredentials = apperr.NewUnauthorized("INVALID_CREDENTIALS", "Invalid credentials")
	errUserExists         = apperr.NewConflict("USER_EXISTS", "Username or email already exists")
	errPasswordTooShort   = apperr.NewValidation("PASSWORD_TOO_SHORT", "Password must be at least 6 characters")
)

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type userTokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (a *API) registerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	for _, f := range []string{req.Username, req.Password, req.Email, req.FirstName, req.LastName, req.Phone} {
		if strings.TrimSpace(f) == "" {
			fail(c, errMissingFields)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		fail(c, errPasswordTooShort)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	u := user.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
	}
	if err := a.Users.CreateUser(c, &u); err != nil {
		if errors.Is(err, user.ErrExists) {
			fail(c, errUserExists)
			return
		}
		fail(c, err)
		return
	}

	err = a.Notifications.Create(c, &notification.Notification{
		UserID:  u.ID,
		Title:   "Welcome to Bikely",
		Message: "Thanks for signing up. Enjoy the ride!",
		Type:    notification.Info,
	})
	if err != nil {
		logger.ErrorContext(c, "failed to create welcome notification", "error", err)
	}

	token, err := a.userToken(&u)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, userTokenResponse{Token: token, User: toUserResponse(&u)})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	if req.Username == "" || req.Password == "" {
		fail(c, errMissingFields)
		return
	}

	u, err := a.Users.GetUserByUsername(c, req.Username)
	if errors.Is(err, user.ErrNotFound) {
		fail(c, errInvalidCredentials)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		fail(c, errInvalidCredentials)
		return
	}

	token, err := a.userToken(u)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userTokenResponse{Token: token, User: toUserResponse(u)})
}

func (a *API) userToken(u *user.User) (string, error) {
	return a.Issuer.Issue(u.ID.String(), auth.Claims{
		Role:     auth.RoleUser,
		Username: u.Username,
		Email:    u.Email,
	}, a.UserTokenTTL)
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminTokenResponse struct {
	Token string        `json:"token"`
	Admin adminResponse `json:"admin"`
}

func (a *API) adminLoginHandler(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, errMissingFields)
		return
	}

	ad, err := a.Admins.GetAdminByEmail(c, req.Email)
	if errors.Is(err, admin.ErrNotFound) {
		fail(c, errInvalidCredentials)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if !auth.VerifyPassword(ad.PasswordHash, req.Password) {
		fail(c, errInvalidCredentials)
		return
	}

	token, err := a.Issuer.Issue(ad.ID.String(), auth.Claims{
		Role:  auth.RoleAdmin,
		Email: ad.Email,
		Name:  ad.Name,
	}, a.AdminTokenTTL)
	if err != nil {
		fail(c, fmt.Errorf("sign admin token: %w", err))
		return
	}

	c.JSON(http.StatusOK, adminTokenResponse{Token: token, Admin: toAdminResponse(ad)})
}
