package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"promos/internal/service/promo/application"
)

// AdminHandler 封装了管理端的 HTTP 处理器。
// 鉴权由上游网关完成，这里假定请求已经具备管理员身份。
type AdminHandler struct {
	service *application.AdminService
}

// NewAdminHandler 创建一个新的管理端处理器实例
func NewAdminHandler(service *application.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有管理端路由
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/create_promo", h.handleCreatePromo)
	mux.HandleFunc("/admin/update_promo", h.handleUpdatePromo)
	mux.HandleFunc("/admin/list_promos", h.handleListPromos)
	mux.HandleFunc("/admin/get_promo", h.handleGetPromo)
	mux.HandleFunc("/admin/list_answers", h.handleListAnswers)
	mux.HandleFunc("/admin/publish_answer", h.handlePublishAnswer)
	mux.HandleFunc("/admin/mark_winner", h.handleMarkWinner)
}

func (h *AdminHandler) handleCreatePromo(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in application.PromoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.CreatePromo(ctx, &in, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *AdminHandler) handleUpdatePromo(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	var in application.PromoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.UpdatePromo(ctx, slug, &in, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AdminHandler) handleListPromos(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	views, err := h.service.ListPromos(ctx, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promos": views})
}

func (h *AdminHandler) handleGetPromo(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	view, err := h.service.GetPromo(ctx, slug, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AdminHandler) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	req := &application.ListAnswersRequest{PromoSlug: slug}
	if v := r.URL.Query().Get("published"); v != "" {
		b := v == "true"
		req.Published = &b
	}
	if v := r.URL.Query().Get("is_winner"); v != "" {
		b := v == "true"
		req.IsWinner = &b
	}

	views, err := h.service.ListAnswers(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": views})
}

func (h *AdminHandler) handlePublishAnswer(w http.ResponseWriter, r *http.Request) {
	h.handleAnswerFlag(w, r, func(req *http.Request, id int64, value bool) error {
		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		return h.service.SetAnswerPublished(ctx, id, value)
	})
}

func (h *AdminHandler) handleMarkWinner(w http.ResponseWriter, r *http.Request) {
	h.handleAnswerFlag(w, r, func(req *http.Request, id int64, value bool) error {
		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		return h.service.SetAnswerWinner(ctx, id, value)
	})
}

// handleAnswerFlag 是 publish/winner 两个开关接口的公共骨架
func (h *AdminHandler) handleAnswerFlag(w http.ResponseWriter, r *http.Request, apply func(*http.Request, int64, bool) error) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	value := r.URL.Query().Get("value") != "false" // 缺省为 true

	if err := apply(r, id, value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
