package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repairhub/internal/apperr"
	"repairhub/internal/models"
	"repairhub/internal/store"
	"repairhub/internal/validation"
)

var errAddressNotFound = apperr.NotFound("The address with the given ID was not found")

// GetAddresses lists the children of ?id (the root region by default).
func GetAddresses(addresses store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /address"

		parent := c.DefaultQuery("id", models.DefaultAddressParent)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := addresses.ListChildren(ctx, parent)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Address is fetched successfully", list)
	}
}

func CreateAddress(addresses store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /address"

		var req validation.AddressRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		address := addressFromRequest(req)
		if err := addresses.Create(ctx, &address); err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Address is added successfully", address)
	}
}

func UpdateAddress(addresses store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /address/:id"

		var req validation.AddressRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id, ok := objectIDParam(c, route, "id", errAddressNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		updated, err := addresses.Update(ctx, id, addressFromRequest(req))
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, route, errAddressNotFound)
			return
		}
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Address is updated successfully", updated)
	}
}

func DeleteAddress(addresses store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /address/:id"

		id, ok := objectIDParam(c, route, "id", errAddressNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		deleted, err := addresses.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, route, errAddressNotFound)
			return
		}
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Address is deleted successfully", "data": deleted})
	}
}

func addressFromRequest(req validation.AddressRequest) models.Address {
	return models.Address{
		NodeID:      req.ID,
		Name:        req.Name,
		NameLocal:   req.NameLocal,
		ParentID:    req.ParentID,
		DisplayName: req.DisplayName,
	}
}
