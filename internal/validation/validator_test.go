package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() CreateOrderRequest {
	now := time.Now()
	return CreateOrderRequest{
		Name:         "Rahim",
		Phone:        "01700000000",
		Address:      "House 1, Road 2",
		ArrivalDate:  now,
		ArrivalTime:  now,
		Category:     "Fridge",
		CategoryType: "fridge",
		Brand:        "62f32a00657316510269a960",
		Model:        "62f3479a6c264d3b95fcf138",
		Problem:      "Not cooling",
		Note:         "Call before coming",
		StatusFields: StatusFields{StatusDetails: "Your order is placed", StatusState: "Pending"},
	}
}

func TestStructAcceptsValidOrder(t *testing.T) {
	req := validOrder()
	assert.NoError(t, Struct(&req))
}

func TestStructReportsFirstViolation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
		want   string
	}{
		{
			name:   "missing name",
			mutate: func(r *CreateOrderRequest) { r.Name = "" },
			want:   `"name" is required`,
		},
		{
			name:   "phone too long",
			mutate: func(r *CreateOrderRequest) { r.Phone = strings.Repeat("1", 16) },
			want:   `"phone" length must be less than or equal to 15 characters long`,
		},
		{
			name:   "missing arrival date",
			mutate: func(r *CreateOrderRequest) { r.ArrivalDate = time.Time{} },
			want:   `"arrivalDate" is required`,
		},
		{
			name:   "missing status state",
			mutate: func(r *CreateOrderRequest) { r.StatusState = "" },
			want:   `"statusState" is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrder()
			tt.mutate(&req)

			err := Struct(&req)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestLoginBounds(t *testing.T) {
	err := Struct(&LoginRequest{Email: "a@x.com", Password: "1234"})
	require.Error(t, err)
	assert.Equal(t, `"password" length must be at least 5 characters long`, err.Error())

	err = Struct(&LoginRequest{Email: "not-an-email", Password: "12345"})
	require.Error(t, err)
	assert.Equal(t, `"email" must be a valid email`, err.Error())

	assert.NoError(t, Struct(&LoginRequest{Email: "a@x.com", Password: "12345"}))
}

func TestAssignRequiresObjectID(t *testing.T) {
	req := AssignOrderRequest{
		TechnicianID: "abc",
		StatusFields: StatusFields{StatusDetails: "Technician assigned", StatusState: "Assigned"},
	}
	err := Struct(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"technicianId" with value "abc"`)

	req.TechnicianID = "62f32a00657316510269a960"
	assert.NoError(t, Struct(&req))
}

func TestRepairedAmount(t *testing.T) {
	status := StatusFields{StatusDetails: "Repair finished", StatusState: "Repaired"}

	err := Struct(&RepairedOrderRequest{StatusFields: status})
	require.Error(t, err)
	assert.Equal(t, `"amount" is required`, err.Error())

	negative := -1.0
	err = Struct(&RepairedOrderRequest{Amount: &negative, StatusFields: status})
	require.Error(t, err)
	assert.Equal(t, `"amount" must be greater than or equal to 0`, err.Error())

	zero := 0.0
	assert.NoError(t, Struct(&RepairedOrderRequest{Amount: &zero, StatusFields: status}))
}

func TestGenderEnum(t *testing.T) {
	err := Struct(&UpdateProfileRequest{Name: "A", Gender: "Robot"})
	require.Error(t, err)
	assert.Equal(t, `"gender" must be one of [Male, Female, Other]`, err.Error())
}

func TestTechnicianEmbedsAgentFields(t *testing.T) {
	err := Struct(&TechnicianRequest{AgentID: "62f32a00657316510269a960"})
	require.Error(t, err)
	assert.Equal(t, `"name" is required`, err.Error())
}

func TestDescribeDecodeError(t *testing.T) {
	var req RepairedOrderRequest
	err := json.Unmarshal([]byte(`{"amount":"lots"}`), &req)
	require.Error(t, err)
	assert.Equal(t, `"amount" must be a number`, DescribeDecodeError(err))

	err = json.Unmarshal([]byte(`{"amount":`), &req)
	require.Error(t, err)
	assert.Equal(t, "request body is not valid JSON", DescribeDecodeError(err))
}
