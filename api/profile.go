package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/user"
)

var (
	errUserNotFound = apperr.NewNotFound("USER_NOT_FOUND", "User not found")
	errEmailExists  = apperr.NewConflict("EMAIL_EXISTS", "Email already exists")
)

func (a *API) profileHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	u, err := a.Users.GetUser(c, userID)
	if errors.Is(err, user.ErrNotFound) {
		fail(c, errUserNotFound)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (a *API) updateProfileHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}

	u, err := a.Users.UpdateProfile(c, userID, user.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	switch {
	case errors.Is(err, user.ErrNotFound):
		fail(c, errUserNotFound)
		return
	case errors.Is(err, user.ErrExists):
		fail(c, errEmailExists)
		return
	case err != nil:
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}
