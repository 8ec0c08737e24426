package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the wallet-connect service")
	wsURL    = flag.String("ws-url", "ws://localhost:8080", "WebSocket URL of the wallet-connect service")
	linkID   = flag.String("link-id", "dev-link", "Connector link ID to attach")
	dappAddr = flag.String("dapp", "account_tdx_2_12x4zx09f8962a9wesfqvxaue0qn6m39r3cpysrjd6dtqppzhrkjrsr", "dApp definition address")
	origin   = flag.String("origin", "https://sandbox.example.com", "Request origin")
	token    = flag.String("token", "", "Bearer token for the API")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
)

// 开发用链接客户端：模拟浏览器连接器，挂上链接通道、
// 提交一个登录请求并等待响应从链接推回。
func main() {
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Received interrupt signal, shutting down...")
		cancel()
	}()

	client := NewLinkClient(*baseURL, *wsURL, *linkID, *token)

	if err := client.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach link")
	}
	defer client.Close()

	resp, err := client.SendLoginRequest(ctx, *dappAddr, *origin)
	if err != nil {
		log.Fatal().Err(err).Msg("Login request failed")
	}

	log.Info().
		Str("interaction_id", resp.InteractionID).
		Str("discriminator", string(resp.Discriminator)).
		Msg("Received response on link channel")
}
