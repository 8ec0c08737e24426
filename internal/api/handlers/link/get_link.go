package link

import (
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func GetLinkRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/link/:id", getLinkHandler(s))
}

// 浏览器连接器通过该端点建立长连接，响应沿原链接推回。
// 连接保持到对端关闭，入站消息只消费 ping。
func getLinkHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		linkID := c.Param("id")

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Warn().Err(err).Str("link_id", linkID).Msg("Failed to upgrade link connection")
			return err
		}

		s.Link.Attach(linkID, conn)
		defer func() {
			s.Link.Detach(linkID, conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return nil
			}
		}
	}
}
