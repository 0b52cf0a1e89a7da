package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/notification"
)

var errNotificationNotFound = apperr.NewNotFound("NOTIFICATION_NOT_FOUND", "Notification not found")

func (a *API) notificationsHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	ns, err := a.Notifications.GetByUser(c, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ns)
}

func (a *API) unreadCountHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	n, err := a.Notifications.UnreadCount(c, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (a *API) readNotificationHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, errNotificationNotFound)
	if !ok {
		return
	}

	n, err := a.Notifications.MarkRead(c, id, userID)
	if errors.Is(err, notification.ErrNotFound) {
		fail(c, errNotificationNotFound)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

func (a *API) readAllHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	if err := a.Notifications.MarkAllRead(c, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
