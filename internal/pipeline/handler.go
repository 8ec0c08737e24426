package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/metrics"
	"github.com/kashguard/go-wallet-connect/internal/notary"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/silent"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// Status 处理一个请求的终态
type Status string

const (
	// StatusResponded 响应已派发，请求处理完毕
	StatusResponded Status = "responded"
	// StatusNeedsInteraction 静默流程无法应答，请求等待用户交互
	StatusNeedsInteraction Status = "needsInteraction"
)

// Outcome 请求处理结果
type Outcome struct {
	Status   Status
	Ack      *response.Ack
	Verified *verify.VerifiedRequest
	// 仅交易请求成功时：公证结果交由调用方提交
	Notarized *notary.Result
}

// ManifestAnalyzer 静态分析 manifest，给出必须签名的实体地址
type ManifestAnalyzer interface {
	RequiredSigners(ctx context.Context, manifest string) (accountAddresses, identityAddresses []string, err error)
}

// Handler 请求处理管线：校验 → 静默授权或公证 → 派发。
// 每个通过校验的请求恰好得到一个响应，
// 无法静默处理的请求以 StatusNeedsInteraction 交还调用方。
type Handler struct {
	verifier   *verify.Verifier
	silent     *silent.Engine
	notary     *notary.Pipeline
	analyzer   ManifestAnalyzer
	resolver   *wallet.Resolver
	builder    *response.Builder
	dispatcher *response.Dispatcher
}

// NewHandler 创建请求处理管线
func NewHandler(
	verifier *verify.Verifier,
	silentEngine *silent.Engine,
	notaryPipeline *notary.Pipeline,
	analyzer ManifestAnalyzer,
	resolver *wallet.Resolver,
	builder *response.Builder,
	dispatcher *response.Dispatcher,
) *Handler {
	return &Handler{
		verifier:   verifier,
		silent:     silentEngine,
		notary:     notaryPipeline,
		analyzer:   analyzer,
		resolver:   resolver,
		builder:    builder,
		dispatcher: dispatcher,
	}
}

// Handle 处理一个到达的请求
func (h *Handler) Handle(ctx context.Context, req *interaction.Request) (*Outcome, error) {
	verified, err := h.verifier.Verify(ctx, req)
	if err != nil {
		// 校验器已派发失败响应
		return nil, err
	}

	switch req.Kind {
	case interaction.KindTransaction:
		return h.handleTransaction(ctx, verified)
	case interaction.KindAuthorized:
		return h.handleAuthorized(ctx, verified)
	default:
		// 未授权请求全部包含一次性子请求，总是需要用户交互
		return &Outcome{Status: StatusNeedsInteraction, Verified: verified}, nil
	}
}

// handleAuthorized 已授权请求先走静默流程，不可静默时交还调用方
func (h *Handler) handleAuthorized(ctx context.Context, verified *verify.VerifiedRequest) (*Outcome, error) {
	req := verified.Request

	// 移动端远程会话每次都要求用户确认
	if req.IsMobileConnect() {
		return &Outcome{Status: StatusNeedsInteraction, Verified: verified}, nil
	}

	ack, err := h.silent.Authorize(ctx, verified)
	if err != nil {
		if err == interaction.ErrNotPossibleAutomatically {
			return &Outcome{Status: StatusNeedsInteraction, Verified: verified}, nil
		}
		if err == interaction.ErrInvalidPersona {
			// 静默引擎已派发失败响应
			return nil, err
		}
		return nil, h.failAndDispatch(ctx, req, err)
	}
	return &Outcome{Status: StatusResponded, Ack: ack, Verified: verified}, nil
}

// handleTransaction 交易请求走公证管线，成功后回执 intent hash
func (h *Handler) handleTransaction(ctx context.Context, verified *verify.VerifiedRequest) (*Outcome, error) {
	req := verified.Request
	item := req.Transaction
	if item == nil {
		return nil, h.failAndDispatch(ctx, req, &interaction.VerificationError{
			Kind:   interaction.VerificationInvalidRequest,
			Detail: "transaction request has no transaction item",
		})
	}

	accountAddresses, identityAddresses, err := h.analyzer.RequiredSigners(ctx, item.Manifest)
	if err != nil {
		metrics.TransactionsNotarized.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, h.failAndDispatch(ctx, req, &interaction.PrepareTransactionError{
			Kind:  interaction.PrepareBuildTransactionHeader,
			Cause: err,
		})
	}
	signers, err := h.resolver.RequiredSigners(ctx, accountAddresses, identityAddresses)
	if err != nil {
		metrics.TransactionsNotarized.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, h.failAndDispatch(ctx, req, &interaction.PrepareTransactionError{
			Kind:  interaction.PrepareSignCompiledTransactionIntent,
			Cause: err,
		})
	}
	signerAddresses := make([]string, 0, len(signers))
	for _, signer := range signers {
		signerAddresses = append(signerAddresses, signer.Address)
	}

	result, err := h.notary.Notarize(ctx, notary.NotarizeRequest{
		NetworkID:     req.Metadata.NetworkID,
		Manifest:      item.Manifest,
		Blobs:         item.Blobs,
		Message:       item.Message,
		TipPercentage: item.TipPercentage,
		Signers:       signerAddresses,
	})
	if err != nil {
		metrics.TransactionsNotarized.WithLabelValues(metrics.OutcomeFailure).Inc()
		// 取消不派发失败响应，调用方决定是否重试
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, h.failAndDispatch(ctx, req, err)
	}
	metrics.TransactionsNotarized.WithLabelValues(metrics.OutcomeSuccess).Inc()

	resp := h.builder.BuildTransactionSuccess(req, result.IntentHash)
	ack, err := h.dispatcher.Dispatch(ctx, req.Channel, resp)
	if err != nil {
		return nil, err
	}
	return &Outcome{Status: StatusResponded, Ack: ack, Verified: verified, Notarized: result}, nil
}

// failAndDispatch 把错误映射为 dApp 错误码并派发失败响应，返回原错误
func (h *Handler) failAndDispatch(ctx context.Context, req *interaction.Request, cause error) error {
	errorType := interaction.ErrorTypeOf(cause)
	resp := h.builder.BuildFailure(req, errorType, cause.Error())
	if _, err := h.dispatcher.Dispatch(ctx, req.Channel, resp); err != nil {
		log.Error().Err(err).
			Str("interaction_id", req.InteractionID).
			Msg("Failed to dispatch pipeline failure")
	}
	return cause
}
