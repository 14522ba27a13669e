package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/service/rolegate"
)

// UserResolver リクエストから認証済みユーザーを取り出す関数
//
// 認証機構はホスト側の責務なので、ここでは解決方法を固定しません。
// 未認証の場合はnilを返してください。
type UserResolver func(c echo.Context) *model.UserInfo

// RequestInfoOf リクエストからエンジンに渡す情報を組み立てます
func RequestInfoOf(c echo.Context, resolver UserResolver) *rolegate.RequestInfo {
	req := &rolegate.RequestInfo{
		Referrer: c.Request().Referer(),
	}
	if resolver != nil {
		req.User = resolver(c)
	}
	return req
}

// PageGatekeeper ページルールに基づいてアクセスを制御するミドルウェアを返します
//
// 拒否または転送と判定された場合、転送先へリダイレクトします。
// 転送先が指定されていない場合はリファラへ、リファラも無い場合は
// ルートへリダイレクトします。
func PageGatekeeper(engine *rolegate.Engine, resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := RequestInfoOf(c, resolver)
			segments := strings.Split(strings.Trim(c.Request().URL.Path, "/"), "/")

			decision := engine.AuthorizePage(req, segments)
			if decision.Allowed() {
				return next(c)
			}

			target := decision.Forward
			if target == "" {
				target = req.Referrer
			}
			if target == "" {
				target = "/"
			}
			return c.Redirect(http.StatusFound, target)
		}
	}
}

// ActionGatekeeper アクションルールに基づいて実行を制御するミドルウェアを返します
//
// ルートパラメータ:actionをアクション名として判定します。
func ActionGatekeeper(engine *rolegate.Engine, resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action := c.Param("action")
			req := RequestInfoOf(c, resolver)

			if !engine.AuthorizeAction(req, action) {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("you are not permitted to perform '%s'", action))
			}
			return next(c)
		}
	}
}
