package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type topicRequest struct {
	Exclude []int `json:"exclude"`
}

// RandomTopic returns a conversation starter not in the excluded indices.
// GET takes exclude as repeated or comma separated query values, POST takes
// a JSON body.
func (h *Handler) RandomTopic(c *gin.Context) {
	var exclude []int
	if c.Request.Method == http.MethodPost {
		var req topicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		exclude = req.Exclude
	} else {
		var err error
		exclude, err = parseIndices(c.QueryArray("exclude"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclude parameter"})
			return
		}
	}

	c.JSON(http.StatusOK, h.Topics.Random(exclude))
}

func parseIndices(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}
