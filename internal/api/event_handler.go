package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colibie/events-app-api/internal/repository/query"
	"github.com/colibie/events-app-api/internal/service"
)

type eventHandler struct {
	svc *service.EventService
}

func (h *eventHandler) get(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query())
	respond(c, h.svc.Get(c.Request.Context(), callerFrom(c), c.Param("id"), q))
}

func (h *eventHandler) list(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query())
	respond(c, h.svc.List(c.Request.Context(), callerFrom(c), q))
}

func (h *eventHandler) lookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email query parameter is required"})
		return
	}
	respond(c, h.svc.FindByEmail(c.Request.Context(), callerFrom(c), email))
}

func (h *eventHandler) create(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	respond(c, h.svc.Create(c.Request.Context(), callerFrom(c), body))
}

func (h *eventHandler) update(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	respond(c, h.svc.Update(c.Request.Context(), callerFrom(c), c.Param("id"), body))
}

func (h *eventHandler) delete(c *gin.Context) {
	respond(c, h.svc.Delete(c.Request.Context(), callerFrom(c), c.Param("id")))
}
