package handlers

import (
	"io"

	"toloka2web/apperr"
	"toloka2web/auth"
	"toloka2web/models"
	"toloka2web/service"

	"github.com/gin-gonic/gin"
)

// ListReleases lists all tracked releases
func ListReleases(c *gin.Context) {
	releases, err := service.GlobalServices.Release.List()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, releases)
}

// AddRelease registers a new release from a tracker page URL.
func AddRelease(c *gin.Context) {
	var input models.ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	var userID *uint
	if identity := auth.IdentityFrom(c); identity != nil && identity.UserID != 0 {
		id := identity.UserID
		userID = &id
	}

	release, err := service.GlobalServices.Release.AddByURL(input, userID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, release)
}

// EditRelease overwrites release fields addressed by codename.
func EditRelease(c *gin.Context) {
	var input models.ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	release, err := service.GlobalServices.Release.Edit(input)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, release)
}

// DeleteRelease removes a release by codename.
func DeleteRelease(c *gin.Context) {
	var input models.ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Codename == "" {
		fail(c, apperr.Validation("codename is required"))
		return
	}

	if err := service.GlobalServices.Release.Delete(input.Codename); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Release deleted"})
}

// UpdateReleases runs an update sweep: a body with a codename updates that
// one release, an empty body updates every ongoing release.
func UpdateReleases(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	if len(body) == 0 {
		result, err := service.GlobalServices.Release.UpdateAll()
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, result)
		return
	}

	var input models.ReleaseInput
	if err := bindJSON(body, &input); err != nil || input.Codename == "" {
		fail(c, apperr.Validation("codename is required"))
		return
	}

	result, err := service.GlobalServices.Release.UpdateOne(input.Codename)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// ReleaseTorrents joins all releases to the torrent client's live status.
func ReleaseTorrents(c *gin.Context) {
	joined, err := service.GlobalServices.Release.WithTorrents()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, joined)
}

// ReleaseByHash fetches one release by its torrent hash.
func ReleaseByHash(c *gin.Context) {
	release, err := service.GlobalServices.Release.GetByHash(c.Param("hash"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, release)
}
