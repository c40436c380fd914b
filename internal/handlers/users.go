package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"repairhub/internal/apperr"
	"repairhub/internal/auth"
	"repairhub/internal/middleware"
	"repairhub/internal/models"
	"repairhub/internal/service"
	"repairhub/internal/store"
	"repairhub/internal/templates"
	"repairhub/internal/validation"
)

var (
	errAlreadyRegistered = apperr.BadRequest("User already registered")
	errUserNotFound      = apperr.NotFound("The user with the given ID was not found")
	errGoogleToken       = apperr.Unauthorized("Unauthorized google auth token")
	errUserAddressGone   = apperr.NotFound("The address with the given ID was not found")
)

func RegisterUser(users store.UserStore, tokens *auth.TokenService, mailer AccountMailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users"

		var req validation.RegisterRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		email := normalizeEmail(req.Email)
		if _, err := users.FindByEmail(ctx, email); err == nil {
			respondError(c, route, errAlreadyRegistered)
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			respondError(c, route, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, route, err)
			return
		}
		user := &models.User{
			Name:          strings.TrimSpace(req.Name),
			Email:         email,
			PasswordHash:  hash,
			ExpoPushToken: req.ExpoPushToken,
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				err = errAlreadyRegistered
			}
			respondError(c, route, err)
			return
		}

		sendVerification(tokens, mailer, user)
		c.JSON(http.StatusOK, gin.H{"success": "Please check your email to verify your account"})
	}
}

// VerifyEmail is the target of the link in the verification email.
func VerifyEmail(users store.UserStore, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/authentication/:token"

		claims, err := tokens.ParseLink(c.Param("token"), auth.PurposeVerify)
		if err != nil {
			respondError(c, route, errInvalidToken)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		id, _ := claims.ObjectID()
		if err := users.SetVerified(ctx, id); err != nil {
			respondError(c, route, notFoundOr(err, errInvalidToken))
			return
		}
		c.HTML(http.StatusOK, templates.EmailVerification, nil)
	}
}

// GoogleLogin trusts the client's Google access token only after Google
// confirms it was issued to one of our client ids for the same email.
func GoogleLogin(users store.UserStore, tokens *auth.TokenService, google auth.GoogleVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/google"

		var req validation.GoogleLoginRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		email := normalizeEmail(req.Email)
		if err := google.Verify(ctx, req.AccessToken, email); err != nil {
			respondError(c, route, errGoogleToken.WithCause(err))
			return
		}

		user, err := users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user = &models.User{
				Name:     strings.TrimSpace(req.Name),
				Email:    email,
				GoogleID: req.GoogleID,
				Verified: true,
			}
			if err := users.Create(ctx, user); err != nil {
				respondError(c, route, err)
				return
			}
		case err != nil:
			respondError(c, route, err)
			return
		case user.GoogleID == "":
			if err := users.SetGoogleID(ctx, user.ID, req.GoogleID); err != nil {
				respondError(c, route, err)
				return
			}
			user.GoogleID = req.GoogleID
		}

		session, err := issueSession(tokens, user)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func currentUser(c *gin.Context, route string, users store.UserStore) (*models.User, bool) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, route, notFoundOr(err, errUserNotFound))
		return nil, false
	}
	return user, true
}

func GetMe(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me"

		user, ok := currentUser(c, route, users)
		if !ok {
			return
		}
		respondSuccess(c, "User is fetched successfully", user)
	}
}

func UpdateMe(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me"

		var req validation.UpdateProfileRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := users.UpdateProfile(ctx, middleware.UserID(c), store.ProfileUpdate{
			Name:     strings.TrimSpace(req.Name),
			Phone:    req.Phone,
			Gender:   req.Gender,
			Birthday: req.Birthday,
		})
		if err != nil {
			respondError(c, route, notFoundOr(err, errUserNotFound))
			return
		}
		respondSuccess(c, "Profile is updated successfully", user)
	}
}

func UpdatePushToken(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /users/me/pushToken"

		var req validation.PushTokenRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := users.SetPushToken(ctx, middleware.UserID(c), req.ExpoPushToken); err != nil {
			respondError(c, route, notFoundOr(err, errUserNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Push token is updated successfully"})
	}
}

/* =========================
   ADDRESS BOOK
========================= */

type addressBook struct {
	Addresses      []models.UserAddress `json:"addresses"`
	DefaultAddress string               `json:"defaultAddress"`
}

func bookOf(user *models.User) addressBook {
	addrs := user.Addresses
	if addrs == nil {
		addrs = []models.UserAddress{}
	}
	return addressBook{Addresses: addrs, DefaultAddress: user.DefaultAddress}
}

func GetMyAddresses(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me/addresses"

		user, ok := currentUser(c, route, users)
		if !ok {
			return
		}
		respondSuccess(c, "Addresses are fetched successfully", bookOf(user))
	}
}

// editAddresses loads the caller, applies edit and saves the address list.
func editAddresses(c *gin.Context, route string, users store.UserStore, message string, edit func(*models.User) error) {
	user, ok := currentUser(c, route, users)
	if !ok {
		return
	}
	if err := edit(user); err != nil {
		respondError(c, route, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := users.SaveAddresses(ctx, user.ID, user.Addresses, user.DefaultAddress); err != nil {
		respondError(c, route, notFoundOr(err, errUserNotFound))
		return
	}
	respondSuccess(c, message, bookOf(user))
}

func userAddressFromRequest(id string, req validation.UserAddressRequest) models.UserAddress {
	return models.UserAddress{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Area:    req.Area,
		City:    req.City,
		Region:  req.Region,
		Office:  req.Office,
	}
}

func AddMyAddress(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/me/addresses"

		var req validation.UserAddressRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		editAddresses(c, route, users, "Address is added successfully", func(u *models.User) error {
			u.AddAddress(userAddressFromRequest(models.NewAddressID(), req), req.IsDefault)
			return nil
		})
	}
}

func UpdateMyAddress(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me/addresses/:addressId"

		var req validation.UserAddressRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id := c.Param("addressId")
		editAddresses(c, route, users, "Address is updated successfully", func(u *models.User) error {
			i := u.FindAddress(id)
			if i < 0 {
				return errUserAddressGone
			}
			u.Addresses[i] = userAddressFromRequest(id, req)
			if req.IsDefault {
				u.DefaultAddress = id
			}
			return nil
		})
	}
}

func DeleteMyAddress(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /users/me/addresses/:addressId"

		id := c.Param("addressId")
		editAddresses(c, route, users, "Address is deleted successfully", func(u *models.User) error {
			if !u.RemoveAddress(id) {
				return errUserAddressGone
			}
			return nil
		})
	}
}

func SetDefaultAddress(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /users/me/defaultAddress/:addressId"

		id := c.Param("addressId")
		editAddresses(c, route, users, "Default address is updated successfully", func(u *models.User) error {
			if u.FindAddress(id) < 0 {
				return errUserAddressGone
			}
			u.DefaultAddress = id
			return nil
		})
	}
}

/* =========================
   INBOX / HISTORY
========================= */

func GetMyNotifications(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me/notifications"

		user, ok := currentUser(c, route, users)
		if !ok {
			return
		}
		notifications := append([]models.Notification{}, user.Notifications...)
		sort.SliceStable(notifications, func(i, j int) bool {
			return notifications[i].Time.After(notifications[j].Time)
		})
		respondSuccess(c, "Notifications are fetched successfully", notifications)
	}
}

func GetMyOrders(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me/orders"

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.ListForUser(ctx, middleware.UserID(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Orders are fetched successfully", list)
	}
}
