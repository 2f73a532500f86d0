package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colibie/events-app-api/internal/service"
)

// respond maps a service outcome to an HTTP response. Forbidden and
// not-found never carry payloads beyond their message.
func respond[T any](c *gin.Context, out service.Outcome[T]) {
	switch out.Status {
	case service.StatusOKAny, service.StatusOKOwn:
		if out.Page != nil {
			c.JSON(http.StatusOK, out.Page)
			return
		}
		c.JSON(http.StatusOK, out.Record)
	case service.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": out.Message})
	case service.StatusForbidden:
		c.JSON(http.StatusForbidden, gin.H{"message": out.Message})
	case service.StatusClientError:
		c.JSON(http.StatusBadRequest, gin.H{"message": out.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": out.Message})
	}
}

func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return nil, false
	}
	return body, true
}
