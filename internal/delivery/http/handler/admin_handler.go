package handler

import (
	"net/http"

	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"
)

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
	}
}

// GetOverview returns directory and request counts
// @Summary Admin dashboard counts
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Router /admin/overview [get]
func (h *AdminHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.adminUsecase.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, overview)
}
