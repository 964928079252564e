package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type verifyAccessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

//	@Summary	Verify an access token
//	@Tags		tokens
//	@Accept		json
//	@Produce	json
//	@Param		request	body	verifyAccessTokenRequest	true	"Access token to verify"
//	@Success	200
//	@Router		/tokens/verify [post]
func (server *Server) verifyAccessToken(c *gin.Context) {
	req := new(verifyAccessTokenRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	claims, err := server.tokenMaker.VerifyToken(req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    claims.Subject,
		"expires_at": claims.ExpiresAt,
	})
}
