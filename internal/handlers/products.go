package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"repairhub/internal/apperr"
	"repairhub/internal/models"
	"repairhub/internal/store"
	"repairhub/internal/validation"
)

var (
	errProductNotFound = apperr.NotFound("Product not found with given Id")
	errInvalidProduct  = apperr.BadRequest("Invalid product")
	errInvalidBrand    = apperr.BadRequest("Invalid Brand")
)

const productsFetched = "Data fetch successfully"

// CreateProduct adds a product with its first brand.
func CreateProduct(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products"

		var req validation.ProductRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product := models.Product{
			Name:     req.Name,
			IconName: req.IconName,
			Brands: []models.Brand{{
				ID:        primitive.NewObjectID(),
				BrandName: req.BrandName,
				Models:    []models.Model{},
			}},
		}
		if err := products.Create(ctx, &product); err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Product is added successfully", product)
	}
}

func AddBrand(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /products/addBrands/:id"

		var req validation.BrandRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id, ok := objectIDParam(c, route, "id", errInvalidProduct)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		brand := models.Brand{ID: primitive.NewObjectID(), BrandName: req.BrandName}
		product, err := products.AddBrand(ctx, id, brand)
		if err != nil {
			respondError(c, route, notFoundOr(err, errInvalidProduct))
			return
		}
		respondSuccess(c, "Brand is added successfully", product)
	}
}

// AddModel appends a model to one brand and returns that brand.
func AddModel(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /products/addModels/:id/:brandId"

		var req validation.ModelRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id, ok := objectIDParam(c, route, "id", errInvalidProduct)
		if !ok {
			return
		}
		brandID, ok := objectIDParam(c, route, "brandId", errInvalidBrand)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		current, err := products.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errInvalidProduct))
			return
		}
		if _, ok := current.FindBrand(brandID.Hex()); !ok {
			respondError(c, route, errInvalidBrand)
			return
		}

		model := models.Model{ID: primitive.NewObjectID(), ModelName: req.ModelName}
		updated, err := products.AddModel(ctx, id, brandID, model)
		if err != nil {
			respondError(c, route, notFoundOr(err, errInvalidBrand))
			return
		}
		brand, _ := updated.FindBrand(brandID.Hex())
		respondSuccess(c, "Model is added successfully", brand)
	}
}

func ListProducts(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := products.List(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, productsFetched, list)
	}
}

// ListBrands returns a product's brands without their models.
func ListBrands(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/brands/:id"

		id, ok := objectIDParam(c, route, "id", errProductNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errProductNotFound))
			return
		}

		brands := make([]models.Brand, 0, len(product.Brands))
		for _, b := range product.Brands {
			brands = append(brands, models.Brand{ID: b.ID, BrandName: b.BrandName})
		}
		respondSuccess(c, productsFetched, brands)
	}
}

func ListModels(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/models/:id/:brandId"

		id, ok := objectIDParam(c, route, "id", errProductNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errProductNotFound))
			return
		}
		brand, ok := product.FindBrand(c.Param("brandId"))
		if !ok {
			respondError(c, route, errInvalidBrand)
			return
		}
		modelsList := brand.Models
		if modelsList == nil {
			modelsList = []models.Model{}
		}
		respondSuccess(c, productsFetched, modelsList)
	}
}
