package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// parseID extracts a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
