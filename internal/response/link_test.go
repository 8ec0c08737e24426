package response

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

func attachedLink(t *testing.T, linkID string) (*WebsocketLink, *websocket.Conn, func()) {
	link := NewWebsocketLink()
	attached := make(chan struct{})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		link.Attach(linkID, conn)
		close(attached)
	}))

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	<-attached

	return link, client, func() {
		client.Close()
		srv.Close()
	}
}

func TestWebsocketLinkSendDeliversResponse(t *testing.T) {
	link, client, cleanup := attachedLink(t, "link-1")
	defer cleanup()

	resp := interaction.NewFailureResponse("interaction-1", interaction.DappErrorRejectedByUser, "user declined")
	require.NoError(t, link.Send(context.Background(), "link-1", resp))

	var got interaction.Response
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, "interaction-1", got.InteractionID)
	assert.Equal(t, interaction.DappErrorRejectedByUser, got.Error)
}

func TestWebsocketLinkConcurrentSends(t *testing.T) {
	link, client, cleanup := attachedLink(t, "link-1")
	defer cleanup()

	// 1. 多个响应并发写入同一条链接，写入串行化后全部成功
	const senders = 8
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := interaction.NewFailureResponse(fmt.Sprintf("interaction-%d", n),
				interaction.DappErrorRejectedByUser, "user declined")
			errs <- link.Send(context.Background(), "link-1", resp)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 2. 客户端完整收到全部响应，一个不丢
	seen := make(map[string]bool)
	for i := 0; i < senders; i++ {
		var got interaction.Response
		require.NoError(t, client.ReadJSON(&got))
		seen[got.InteractionID] = true
	}
	assert.Len(t, seen, senders)
}

func TestWebsocketLinkUnknownLink(t *testing.T) {
	link := NewWebsocketLink()

	err := link.Send(context.Background(), "link-missing",
		interaction.NewFailureResponse("interaction-1", interaction.DappErrorRejectedByUser, "user declined"))
	require.Error(t, err)

	var transportErr *interaction.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, interaction.TransportChannelUnavailable, transportErr.Kind)
}
