package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/shared/apperr"
	"paylink.dev/app/internal/storage"
)

type BrandsHandler struct {
	Brands *brands.Service
}

func NewBrandsHandler(svc *brands.Service) *BrandsHandler {
	return &BrandsHandler{Brands: svc}
}

type brandRequest struct {
	Name        string `json:"name" binding:"required,max=191"`
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`
	Email       string `json:"email" binding:"omitempty,email"`
}

func (r brandRequest) input() brands.Input {
	return brands.Input{Name: r.Name, LogoURL: r.LogoURL, Description: r.Description, Email: r.Email}
}

func brandErr(err error) error {
	switch {
	case errors.Is(err, brands.ErrBrandNotFound):
		return apperr.NotFoundErr("Brand not found.")
	case errors.Is(err, brands.ErrNameRequired):
		return apperr.InvalidErr("Brand name is required.", map[string]string{"name": "required"})
	case errors.Is(err, brands.ErrLogoTooLarge):
		return apperr.InvalidErr("File too large. Maximum size is 2MB.", map[string]string{"logo": "too large"})
	case errors.Is(err, storage.ErrUnsupportedType):
		return apperr.InvalidErr("Only image files are allowed (png, jpg, jpeg, svg, gif).", map[string]string{"logo": "unsupported type"})
	default:
		return apperr.Wrap(err)
	}
}

// GET /api/brands
func (h *BrandsHandler) List(c *gin.Context) {
	items, err := h.Brands.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, brandErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": items})
}

// GET /api/brands/:id
func (h *BrandsHandler) Get(c *gin.Context) {
	b, err := h.Brands.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, brandErr(err))
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/brands
func (h *BrandsHandler) Create(c *gin.Context) {
	var in brandRequest
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.Brands.Create(c.Request.Context(), in.input())
	if err != nil {
		middleware.Fail(c, brandErr(err))
		return
	}
	c.JSON(http.StatusCreated, b)
}

// PUT /api/brands/:id
func (h *BrandsHandler) Update(c *gin.Context) {
	var in brandRequest
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.Brands.Update(c.Request.Context(), c.Param("id"), in.input())
	if err != nil {
		middleware.Fail(c, brandErr(err))
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/brands/upload-logo (multipart: logo, brandName)
func (h *BrandsHandler) UploadLogo(c *gin.Context) {
	fh, err := c.FormFile("logo")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("No file uploaded.", map[string]string{"logo": "required"}))
		return
	}
	if fh.Size > brands.MaxLogoSize {
		middleware.Fail(c, brandErr(brands.ErrLogoTooLarge))
		return
	}

	f, err := fh.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer f.Close()

	res, err := h.Brands.UploadLogo(c.Request.Context(), brands.LogoUpload{
		BrandName:    c.PostForm("brandName"),
		OriginalName: fh.Filename,
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		middleware.Fail(c, brandErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
