package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"urban-match/internal/storage"
)

type SnapshotResponse struct {
	Key        string `json:"key"`
	Location   string `json:"location"`
	URL        string `json:"url,omitempty"`
	Users      int    `json:"users"`
	ExportedAt string `json:"exported_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func (h *Handler) exportSnapshot(c *gin.Context) {
	info, err := h.snapshots.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, SnapshotResponse{
		Key:        info.Key,
		Location:   info.Location,
		URL:        info.URL,
		Users:      info.Users,
		ExportedAt: info.ExportedAt.Format(time.RFC3339),
	})
}

func (h *Handler) listSnapshots(c *gin.Context) {
	objects, err := h.snapshots.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteSnapshot(c *gin.Context) {
	key := c.Param("key")
	if err := h.snapshots.Delete(c.Request.Context(), key); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": strings.TrimPrefix(key, "/")})
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
