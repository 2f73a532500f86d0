package api

import (
	"github.com/gin-gonic/gin"

	"github.com/colibie/events-app-api/internal/repository/query"
	"github.com/colibie/events-app-api/internal/service"
)

type userHandler struct {
	svc *service.UserService
}

func (h *userHandler) get(c *gin.Context) {
	respond(c, h.svc.Get(c.Request.Context(), callerFrom(c), c.Param("id")))
}

func (h *userHandler) list(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query())
	respond(c, h.svc.List(c.Request.Context(), callerFrom(c), q))
}

func (h *userHandler) create(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	respond(c, h.svc.Create(c.Request.Context(), callerFrom(c), body))
}

func (h *userHandler) update(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	respond(c, h.svc.Update(c.Request.Context(), callerFrom(c), c.Param("id"), body))
}

func (h *userHandler) delete(c *gin.Context) {
	respond(c, h.svc.Delete(c.Request.Context(), callerFrom(c), c.Param("id")))
}
