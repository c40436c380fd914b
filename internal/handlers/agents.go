package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"repairhub/internal/apperr"
	"repairhub/internal/models"
	"repairhub/internal/store"
	"repairhub/internal/validation"
)

var (
	errAgentNotFound      = apperr.NotFound("The agent with the given ID was not found")
	errTechnicianNotFound = apperr.NotFound("The technician with the given ID was not found")
	errInvalidAgent       = apperr.BadRequest("Invalid agent")
)

func pageQuery(c *gin.Context, defaultSize int64) store.PageQuery {
	pageNumber, pageSize := parsePaginationParams(c, defaultSize)
	return store.PageQuery{
		Search: strings.TrimSpace(c.Query("name")),
		Skip:   skipFor(pageNumber, pageSize),
		Limit:  pageSize,
	}
}

/* =========================
   AGENTS
========================= */

// ListAgents returns every match when pageSize is absent.
func ListAgents(agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /agents"

		ctx, cancel := requestContext(c)
		defer cancel()

		list, count, err := agents.List(ctx, pageQuery(c, 0))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list, "count": count})
	}
}

func GetAgent(agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /agents/:id"

		id, ok := objectIDParam(c, route, "id", errAgentNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		agent, err := agents.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errAgentNotFound))
			return
		}
		respondSuccess(c, "Agent is fetched successfully", agent)
	}
}

func CreateAgent(agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /agents"

		var req validation.AgentRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		agent := agentFromRequest(req)
		if err := agents.Create(ctx, &agent); err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Agent is added successfully", agent)
	}
}

func UpdateAgent(agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /agents/:id"

		var req validation.AgentRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id, ok := objectIDParam(c, route, "id", errAgentNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		agent, err := agents.Update(ctx, id, agentFromRequest(req))
		if err != nil {
			respondError(c, route, notFoundOr(err, errAgentNotFound))
			return
		}
		respondSuccess(c, "Agent is updated successfully", agent)
	}
}

func DeleteAgent(agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /agents/:id"

		id, ok := objectIDParam(c, route, "id", errAgentNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		agent, err := agents.Delete(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errAgentNotFound))
			return
		}
		respondSuccess(c, "Agent is deleted successfully", agent)
	}
}

func agentFromRequest(req validation.AgentRequest) models.Agent {
	return models.Agent{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		WhatsappNumber: req.WhatsappNumber,
		Region:         req.Region,
		City:           req.City,
		Area:           req.Area,
		Location:       req.Location,
	}
}

/* =========================
   TECHNICIANS
========================= */

func ListTechnicians(technicians store.TechnicianStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /technicians"

		ctx, cancel := requestContext(c)
		defer cancel()

		list, count, err := technicians.List(ctx, pageQuery(c, 10))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list, "count": count})
	}
}

func GetTechnician(technicians store.TechnicianStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /technicians/:id"

		id, ok := objectIDParam(c, route, "id", errTechnicianNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		technician, err := technicians.FindByID(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errTechnicianNotFound))
			return
		}
		respondSuccess(c, "Technician is fetched successfully", technician)
	}
}

// CreateTechnician copies the referenced agent's summary onto the technician.
func CreateTechnician(technicians store.TechnicianStore, agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /technicians"

		var req validation.TechnicianRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		technician, err := technicianFromRequest(ctx, agents, req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		if err := technicians.Create(ctx, &technician); err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Technician is added successfully", technician)
	}
}

// UpdateTechnician rewrites the fields and takes a fresh agent snapshot.
func UpdateTechnician(technicians store.TechnicianStore, agents store.AgentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /technicians/:id"

		var req validation.TechnicianRequest
		if !bindAndValidate(c, route, &req) {
			return
		}
		id, ok := objectIDParam(c, route, "id", errTechnicianNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		technician, err := technicianFromRequest(ctx, agents, req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		updated, err := technicians.Update(ctx, id, technician)
		if err != nil {
			respondError(c, route, notFoundOr(err, errTechnicianNotFound))
			return
		}
		respondSuccess(c, "Technician is updated successfully", updated)
	}
}

func DeleteTechnician(technicians store.TechnicianStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /technicians/:id"

		id, ok := objectIDParam(c, route, "id", errTechnicianNotFound)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		technician, err := technicians.Delete(ctx, id)
		if err != nil {
			respondError(c, route, notFoundOr(err, errTechnicianNotFound))
			return
		}
		respondSuccess(c, "Technician is deleted successfully", technician)
	}
}

func technicianFromRequest(ctx context.Context, agents store.AgentStore, req validation.TechnicianRequest) (models.Technician, error) {
	agentID, err := primitive.ObjectIDFromHex(req.AgentID)
	if err != nil {
		return models.Technician{}, errInvalidAgent
	}
	agent, err := agents.FindByID(ctx, agentID)
	if err != nil {
		return models.Technician{}, notFoundOr(err, errInvalidAgent)
	}
	return models.Technician{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		WhatsappNumber: req.WhatsappNumber,
		Region:         req.Region,
		City:           req.City,
		Area:           req.Area,
		Location:       req.Location,
		Agent:          agent.Snapshot(),
	}, nil
}

// notFoundOr maps store.ErrNotFound to appErr and passes other errors through.
func notFoundOr(err error, appErr *apperr.Error) error {
	if errors.Is(err, store.ErrNotFound) {
		return appErr
	}
	return err
}
