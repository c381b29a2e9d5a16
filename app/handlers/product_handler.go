package handlers

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/unrolled/render"
)

const defaultPageSize = 12

type ProductHandler struct {
	render    *render.Render
	validator *validator.Validate
	products  ProductReader
	reviews   ReviewStore
}

func NewProductHandler(render *render.Render, validator *validator.Validate, products ProductReader, reviews ReviewStore) *ProductHandler {
	return &ProductHandler{render: render, validator: validator, products: products, reviews: reviews}
}

func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.products.List(r.Context(),
		q.Get("category"),
		helpers.QueryBool(r, "featured"),
		q.Get("q"),
		helpers.QueryInt(r, "page", 1),
		helpers.QueryInt(r, "limit", defaultPageSize),
	)
	if err != nil {
		helpers.WriteError(h.render, w, "ProductHandler.Products", err)
		return
	}
	h.render.JSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "ProductHandler.Product", err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "ProductHandler.Reviews", err)
		return
	}
	h.render.JSON(w, http.StatusOK, reviews)
}

func (h *ProductHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := helpers.CustomerFromContext(r.Context())
	if !ok {
		helpers.JSONError(h.render, w, http.StatusUnauthorized, "sign in to leave a review")
		return
	}

	var in services.ReviewInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.WriteError(h.render, w, "ProductHandler.CreateReview", err)
		return
	}
	if in.UserID == "" {
		in.UserID = userID
	}
	if in.UserID != userID {
		log.Printf("WARNING: ProductHandler.CreateReview: token user %s posted as %s", userID, in.UserID)
		helpers.JSONError(h.render, w, http.StatusForbidden, "you can only review as yourself")
		return
	}
	if err := h.validator.Struct(&in); err != nil {
		helpers.WriteValidation(h.render, w, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, w, "ProductHandler.CreateReview", err)
		return
	}
	h.render.JSON(w, http.StatusCreated, review)
}
