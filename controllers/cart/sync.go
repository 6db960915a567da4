package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niloy8/KNEX-Backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SyncCartRequest struct {
	Lines []CartLineInput `json:"lines"`
}

// POST /user/cart/sync
// Merges a guest-side cart into the user's server cart on login. Candidates
// are processed in array order and fail independently; nothing already
// merged is rolled back when a later candidate is rejected.
func SyncCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SyncCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cands := make([]*models.CartLine, 0, len(req.Lines))
		for i := range req.Lines {
			cands = append(cands, req.Lines[i].Candidate())
		}

		result := MergeFromGuest(db, userID, cands)
		if len(result.Failed) > 0 {
			zap.L().Warn("cart sync merged partially",
				zap.String("user_id", userID),
				zap.Int("merged", len(result.Merged)),
				zap.Int("failed", len(result.Failed)))
		}
		c.JSON(http.StatusOK, result)
	}
}
