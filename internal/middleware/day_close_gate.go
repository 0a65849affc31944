package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/apierror"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/gin-gonic/gin"
)

const BranchIDHeader = "X-Branch-ID"

// OpenPeriodFinder reports the open trading period of a branch.
type OpenPeriodFinder interface {
	CurrentOpenPeriod(ctx context.Context, branchID string) (*dto.PeriodResponse, error)
}

// RequireOpenPeriod rejects order submissions for a branch whose day is
// closed. The branch comes from X-Branch-ID or the branch_id of the JSON
// body; the body is restored for the handler.
func RequireOpenPeriod(periods OpenPeriodFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID := c.GetHeader(BranchIDHeader)
		if branchID == "" && c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("unreadable request body"))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			var peek struct {
				BranchID string `json:"branch_id"`
			}
			_ = json.Unmarshal(raw, &peek)
			branchID = peek.BranchID
		}
		if branchID == "" {
			// the handler's validation reports the missing branch
			c.Next()
			return
		}

		if _, err := periods.CurrentOpenPeriod(c.Request.Context(), branchID); err != nil {
			if errors.Is(err, model.ErrNoOpenPeriod) {
				c.AbortWithStatusJSON(http.StatusConflict, apierror.New("day is closed: start a new period before taking orders"))
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
