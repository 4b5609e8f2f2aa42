package gql

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

type Request struct {
	Query         string                 `json:"query" form:"query"`
	Variables     map[string]interface{} `json:"variables" form:"-"`
	OperationName string                 `json:"operationName" form:"operationName"`
}

type Handler struct {
	schema graphql.Schema
	log    *slog.Logger
}

func NewHandler(schema graphql.Schema, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{schema: schema, log: log}
}

// Serve executes one GraphQL operation. Resolver failures are reported in the
// errors array with a 200, like any GraphQL server; only an unreadable
// request gets a 400.
func (h *Handler) Serve(ctx *gin.Context) {
	var req Request

	switch ctx.Request.Method {
	case http.MethodGet:
		if err := ctx.ShouldBindQuery(&req); err != nil {
			h.badRequest(ctx, "invalid query parameters")
			return
		}
		if raw := ctx.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				h.badRequest(ctx, "variables must be a JSON object")
				return
			}
		}
	default:
		if err := ctx.ShouldBindJSON(&req); err != nil {
			h.badRequest(ctx, "invalid JSON body")
			return
		}
	}

	if req.Query == "" {
		h.badRequest(ctx, "query is required")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx.Request.Context(),
	})

	if result.HasErrors() {
		h.log.DebugContext(ctx.Request.Context(), "graphql errors",
			"operation", req.OperationName,
			"count", len(result.Errors),
		)
	}

	ctx.JSON(http.StatusOK, result)
}

func (h *Handler) badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"errors": []gin.H{{
			"message":    message,
			"extensions": gin.H{"code": "BAD_REQUEST"},
		}},
	})
}
