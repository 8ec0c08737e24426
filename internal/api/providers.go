package api

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/kashguard/go-wallet-connect/internal/config"
	"github.com/kashguard/go-wallet-connect/internal/gateway"
	"github.com/kashguard/go-wallet-connect/internal/notary"
	"github.com/kashguard/go-wallet-connect/internal/pipeline"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/silent"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewDB(cfg config.Server) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	return db, nil
}

func NewRedisClient(cfg config.Server) (*redis.Client, error) {
	if cfg.Redis.Endpoint == "" {
		return nil, errors.New("redis endpoint is not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Endpoint,
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return client, nil
}

func NewGatewayClient(cfg config.Server) gateway.StateClient {
	return gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.RequestTimeout)
}

func NewWellKnownFetcher() gateway.WellKnownFetcher {
	return gateway.NewWellKnownClient()
}

func NewRelationshipStore(db *sql.DB) relationship.Store {
	return relationship.NewPostgresStore(db)
}

func NewProfile() *wallet.InMemoryProfile {
	return wallet.NewInMemoryProfile()
}

func NewResolver(profile *wallet.InMemoryProfile) *wallet.Resolver {
	return wallet.NewResolver(profile)
}

func NewDeviceKeyStore(profile *wallet.InMemoryProfile) *wallet.DeviceKeyStore {
	return wallet.NewDeviceKeyStore(profile)
}

func NewWebsocketLink() *response.WebsocketLink {
	return response.NewWebsocketLink()
}

func NewRedisBridge(client *redis.Client) *response.RedisBridge {
	return response.NewRedisBridge(client)
}

func NewDispatcher(link *response.WebsocketLink, bridge *response.RedisBridge) *response.Dispatcher {
	return response.NewDispatcher(link, bridge)
}

func NewBuilder(keys *wallet.DeviceKeyStore) *response.Builder {
	return response.NewBuilder(keys)
}

func NewVerifier(cfg config.Server, state gateway.StateClient, wellKnown gateway.WellKnownFetcher, builder *response.Builder, dispatcher *response.Dispatcher) *verify.Verifier {
	return verify.NewVerifier(state, wellKnown, builder, dispatcher, cfg.Wallet.NetworkID, cfg.Wallet.DeveloperMode)
}

func NewSilentEngine(store relationship.Store, resolver *wallet.Resolver, profile *wallet.InMemoryProfile, builder *response.Builder, dispatcher *response.Dispatcher, clock time2.Clock) *silent.Engine {
	return silent.NewEngine(store, resolver, profile, builder, dispatcher, clock)
}

func NewNotaryPipeline(state gateway.StateClient, keys *wallet.DeviceKeyStore) *notary.Pipeline {
	return notary.NewPipeline(state, keys)
}

func NewManifestAnalyzer() pipeline.ManifestAnalyzer {
	return notary.NewStaticAnalyzer()
}

func NewPipelineHandler(
	verifier *verify.Verifier,
	silentEngine *silent.Engine,
	notaryPipeline *notary.Pipeline,
	analyzer pipeline.ManifestAnalyzer,
	resolver *wallet.Resolver,
	builder *response.Builder,
	dispatcher *response.Dispatcher,
) *pipeline.Handler {
	return pipeline.NewHandler(verifier, silentEngine, notaryPipeline, analyzer, resolver, builder, dispatcher)
}

func NewResponder(store relationship.Store, builder *response.Builder, dispatcher *response.Dispatcher, clock time2.Clock) *pipeline.Responder {
	return pipeline.NewResponder(store, builder, dispatcher, clock)
}

// newServerWithComponents 聚合全部组件为 Server
func newServerWithComponents(
	cfg config.Server,
	db *sql.DB,
	redisClient *redis.Client,
	clock time2.Clock,
	state gateway.StateClient,
	store relationship.Store,
	profile *wallet.InMemoryProfile,
	keys *wallet.DeviceKeyStore,
	link *response.WebsocketLink,
	handler *pipeline.Handler,
	responder *pipeline.Responder,
) (*Server, error) {
	s := &Server{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Clock:     clock,
		Gateway:   state,
		Store:     store,
		Profile:   profile,
		Keys:      keys,
		Link:      link,
		Handler:   handler,
		Responder: responder,
	}
	return s, nil
}
