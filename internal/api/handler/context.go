package handler

import "github.com/labstack/echo/v4"

// requestBaseURL is scheme://host plus the path base the service is mounted
// under, used to build public image URLs.
func requestBaseURL(c echo.Context, pathBase string) string {
	return c.Scheme() + "://" + c.Request().Host + pathBase
}
