package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/dropgallery/internal/domain"
	"github.com/ericfisherdev/dropgallery/internal/services"
)

// NavFolder is a navigable folder link as rendered in the gallery view
type NavFolder struct {
	Name string
	Href string
}

// GalleryHandler renders the photo gallery for any path not claimed by the
// auth routes
type GalleryHandler struct {
	galleryService *services.GalleryService
	sessionManager *services.SessionManager
	errorRenderer  *ErrorRenderer
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(
	galleryService *services.GalleryService,
	sessionManager *services.SessionManager,
	errorRenderer *ErrorRenderer,
) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		sessionManager: sessionManager,
		errorRenderer:  errorRenderer,
	}
}

// Gallery handles every folder navigation request. Unauthenticated sessions
// are sent to /login; authenticated ones get the folder rendered with
// temporary image links and subfolder navigation.
func (h *GalleryHandler) Gallery(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	session, err := h.sessionManager.Current(c)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}
	if !session.Authenticated() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	path := strings.Trim(c.Request.URL.Path, "/")
	if strings.Contains(path, "..") {
		c.Status(http.StatusNotFound)
		return
	}

	listing, err := h.galleryService.ListGallery(c.Request.Context(), session.AccessToken, path)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	if listing.Empty() {
		c.HTML(http.StatusOK, "empty.html", gin.H{
			"Path": path,
		})
		return
	}

	subFolders := make([]NavFolder, 0, len(listing.SubFolders)+1)
	if path != "" {
		subFolders = append(subFolders, NavFolder{
			Name: "go back",
			Href: "/" + domain.ParentPath(path),
		})
	}
	for _, folder := range listing.SubFolders {
		subFolders = append(subFolders, NavFolder{
			Name: folder.Name,
			Href: "/" + strings.TrimPrefix(folder.Path, "/"),
		})
	}

	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"Path":       path,
		"Images":     listing.Images,
		"SubFolders": subFolders,
		"HasSubs":    len(subFolders) > 0,
	})
}
