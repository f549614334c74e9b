package handlers

import (
	"encoding/json"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/valyala/fasthttp"
)

func respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error encoding response"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
