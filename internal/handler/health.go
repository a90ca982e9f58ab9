// Package handler contains the HTTP handlers for the ticketing
// service: health, auth, the public event catalog, the conversational
// booking endpoints, and the admin event CRUD.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
