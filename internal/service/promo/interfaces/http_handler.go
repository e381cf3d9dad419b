package interfaces

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"promos/internal/service/promo/application"
	"promos/internal/service/promo/domain"
)

// PromoHandler 封装了 promo 服务面向参与者的 HTTP 处理器
type PromoHandler struct {
	service *application.PromoService
}

// NewPromoHandler 创建一个新的 HTTP 处理器实例
func NewPromoHandler(service *application.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromoHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/list_promos", h.handleListPromos)
	mux.HandleFunc("/channel_promos", h.handleChannelPromos)
	mux.HandleFunc("/promo_detail", h.handlePromoDetail)
	mux.HandleFunc("/submit_answer", h.handleSubmitAnswer)
}

func (h *PromoHandler) handleListPromos(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	now := time.Now()

	var (
		promos []application.PromoSummary
		err    error
	)
	// ?closed=true 切换到结果页列表
	if r.URL.Query().Get("closed") == "true" {
		promos, err = h.service.ListClosedPromos(ctx, now)
	} else {
		promos, err = h.service.ListOpenedPromos(ctx, now)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"promos": promos})
}

func (h *PromoHandler) handleChannelPromos(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		http.Error(w, "channel is required", http.StatusBadRequest)
		return
	}

	promos, err := h.service.ListPromosByChannel(ctx, channel, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"channel": channel, "promos": promos})
}

func (h *PromoHandler) handlePromoDetail(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}
	participantID := r.URL.Query().Get("participant_id")
	// 预览模式由上游网关鉴权后通过请求头声明（管理员预览未发布活动）
	preview := r.Header.Get("X-Staff-Preview") == "true"

	detail, err := h.service.GetPromoDetail(ctx, slug, participantID, time.Now(), preview)
	if err != nil {
		writeError(w, err)
		return
	}

	// 附上模板回退搜索的候选列表，渲染服务按序取第一个存在的模板
	detail.Templates = TemplateCandidates(detail.ChannelSlug, detail.Slug, detail.IsOpen)

	writeJSON(w, http.StatusOK, detail)
}

func (h *PromoHandler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req application.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PromoSlug == "" || req.Participant.ID == "" {
		http.Error(w, "promo_slug and participant.id are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitAnswer(ctx, &req, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// writeError 根据领域错误类型返回不同的 HTTP 状态码
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrPromoNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyEntered):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrPromoClosed),
		errors.Is(err, domain.ErrRulesNotAccepted),
		errors.Is(err, domain.ErrNotEligible):
		statusCode = http.StatusForbidden // 请求有效，但服务器拒绝执行
	case errors.Is(err, domain.ErrIncompleteEntry):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrConfiguration):
		statusCode = http.StatusUnprocessableEntity
	default:
		statusCode = http.StatusInternalServerError // 其他未知错误
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
