package validation

import "time"

/* =========================
   AUTH / USERS
========================= */

type LoginRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"`
}

type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Email         string `json:"email" validate:"required,min=1,max=255,email"`
	Password      string `json:"password" validate:"required,min=5,max=255"`
	ExpoPushToken string `json:"expoPushToken" validate:"omitempty,max=255"`
}

type GoogleLoginRequest struct {
	Email       string `json:"email" validate:"required,min=5,max=255,email"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	GoogleID    string `json:"googleId" validate:"required,min=5,max=255"`
	AccessToken string `json:"accessToken" validate:"required,min=5,max=4096"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,min=5,max=255,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" form:"password" validate:"required,min=5,max=255"`
}

type UpdateProfileRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=255"`
	Phone    string     `json:"phone" validate:"omitempty,max=15"`
	Gender   string     `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Birthday *time.Time `json:"birthday"`
}

type PushTokenRequest struct {
	ExpoPushToken string `json:"expoPushToken" validate:"required,min=1,max=255"`
}

type UserAddressRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Phone     string `json:"phone" validate:"required,min=1,max=255"`
	Address   string `json:"address" validate:"required,min=1,max=255"`
	Area      string `json:"area" validate:"required,min=1,max=255"`
	City      string `json:"city" validate:"required,min=1,max=255"`
	Region    string `json:"region" validate:"required,min=1,max=255"`
	Office    bool   `json:"office"`
	IsDefault bool   `json:"isDefault"`
}

/* =========================
   CATALOG
========================= */

type AddressRequest struct {
	ID          string `json:"id" validate:"required,min=1,max=10"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	NameLocal   string `json:"nameLocal" validate:"required,min=1,max=255"`
	ParentID    string `json:"parentId" validate:"required,min=1,max=10"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=255"`
}

type AgentRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=50"`
	Email          string `json:"email" validate:"omitempty,max=255,email"`
	Phone          string `json:"phone" validate:"required,min=1,max=15"`
	WhatsappNumber string `json:"whatsappNumber" validate:"omitempty,max=15"`
	Region         string `json:"region" validate:"required,min=1,max=255"`
	City           string `json:"city" validate:"required,min=1,max=255"`
	Area           string `json:"area" validate:"required,min=1,max=255"`
	Location       string `json:"location" validate:"required,min=1,max=255"`
}

type TechnicianRequest struct {
	AgentRequest
	AgentID string `json:"agentId" validate:"required,objectid"`
}

type ProductRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	IconName  string `json:"iconName" validate:"required,min=1,max=255"`
	BrandName string `json:"brandName" validate:"required,min=1,max=255"`
}

type BrandRequest struct {
	BrandName string `json:"brandName" validate:"required,min=1,max=255"`
}

type ModelRequest struct {
	ModelName string `json:"modelName" validate:"required,min=1,max=255"`
}

/* =========================
   ORDERS
========================= */

// StatusFields is the status entry every lifecycle request carries.
type StatusFields struct {
	StatusDetails string `json:"statusDetails" validate:"required,min=1,max=255"`
	StatusState   string `json:"statusState" validate:"required,min=1,max=50"`
}

type CreateOrderRequest struct {
	Name         string    `json:"name" validate:"required,min=1,max=50"`
	Phone        string    `json:"phone" validate:"required,min=1,max=15"`
	Address      string    `json:"address" validate:"required,min=1,max=255"`
	ArrivalDate  time.Time `json:"arrivalDate" validate:"required"`
	ArrivalTime  time.Time `json:"arrivalTime" validate:"required"`
	Category     string    `json:"category" validate:"required,min=1,max=50"`
	CategoryType string    `json:"categoryType" validate:"required,min=1,max=50"`
	Brand        string    `json:"brand" validate:"required,min=1,max=50"`
	Model        string    `json:"model" validate:"required,min=1,max=50"`
	Problem      string    `json:"problem" validate:"required,min=1,max=1024"`
	Note         string    `json:"note" validate:"required,min=1,max=255"`
	StatusFields
}

type AcceptOrderRequest struct {
	Problem string `json:"problem" validate:"omitempty,min=1,max=1024"`
	Note    string `json:"note" validate:"omitempty,min=1,max=255"`
	StatusFields
}

type AssignOrderRequest struct {
	TechnicianID string `json:"technicianId" validate:"required,objectid"`
	StatusFields
}

type RepairedOrderRequest struct {
	Amount *float64 `json:"amount" validate:"required,gte=0"`
	StatusFields
}
