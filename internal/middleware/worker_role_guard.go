package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがWORKERかどうかを確認します。
//ADMINも配送操作を行えるので通します。

func WorkerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if role != "WORKER" && role != "ADMIN" {
				return c.JSON(http.StatusForbidden, errorJSON("worker only"))
			}

			return next(c)
		}
	}
}
