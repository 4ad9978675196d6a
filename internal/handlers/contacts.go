package handlers

import (
	"net/http"
	"time"

	"waconsole/internal/cache"
	"waconsole/internal/database"
	"waconsole/internal/gateway"
	"waconsole/internal/models"
	syncsvc "waconsole/internal/sync"

	"github.com/labstack/echo/v4"
)

const proxyCacheTTL = 5 * time.Minute

// ListContactsHandler lists/searches the local contact directory
// @Summary List contacts
// @Description Get a filtered page of the local contact directory
// @Tags contacts
// @Accept json
// @Produce json
// @Param search query string false "Filter on phone, display name or push name"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} models.ContactListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/contacts/db [get]
func ListContactsHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, offset := pagination(c, 50, 200)
		search := c.QueryParam("search")

		contacts, count, err := contactService.ListContacts(c.Request().Context(), search, limit, offset)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ContactListResponse{
			Success: true,
			Data:    contacts,
			Count:   count,
		})
	}
}

// SyncContactsHandler pulls the gateway directory and upserts locally
// @Summary Sync contacts from the gateway
// @Description Pull all contacts from the WhatsApp gateway and upsert them by phone number
// @Tags contacts
// @Accept json
// @Produce json
// @Success 200 {object} models.SyncResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/contacts/sync [post]
func SyncContactsHandler(syncService *syncsvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if syncService == nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Success: false,
				Error:   "WhatsApp gateway not configured",
			})
		}

		result, err := syncService.Sync(c.Request().Context())
		if err != nil {
			// Upstream pull failed before anything was written
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.SyncResponse{
			Success:    true,
			Synced:     result.Synced,
			WithImages: result.WithImages,
			Total:      result.Total,
		})
	}
}

// DeleteContactHandler removes a contact and cascades its CRM profile
// @Summary Delete contact
// @Description Remove a contact; its CRM profile and conversations cascade
// @Tags contacts
// @Accept json
// @Produce json
// @Param phone query string true "Phone number"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contacts/db [delete]
func DeleteContactHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		phone := c.QueryParam("phone")
		if phone == "" {
			return badRequest(c, "phone query parameter is required")
		}

		if err := contactService.DeleteContact(c.Request().Context(), phone); err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.MessageResponse{
			Success: true,
			Message: "Contact deleted",
		})
	}
}

// GetProfileHandler returns the CRM profile for a contact
// @Summary Get CRM profile
// @Tags contacts
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contacts/{phone}/profile [get]
func GetProfileHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, err := contactService.GetProfile(c.Request().Context(), c.Param("phone"))
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ProfileResponse{Success: true, Data: profile})
	}
}

// UpdateProfileHandler applies admin edits to a CRM profile
// @Summary Update CRM profile
// @Tags contacts
// @Accept json
// @Produce json
// @Param phone path string true "Phone number"
// @Param request body models.ProfileUpdate true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contacts/{phone}/profile [put]
func UpdateProfileHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var upd models.ProfileUpdate
		if err := c.Bind(&upd); err != nil {
			return badRequest(c, "invalid request body")
		}

		if upd.LifecycleStage != nil {
			switch *upd.LifecycleStage {
			case models.StageProspect, models.StageLead, models.StageCustomer, models.StageChurned:
			default:
				return badRequest(c, "invalid lifecycle stage")
			}
		}

		profile, err := contactService.UpdateProfile(c.Request().Context(), c.Param("phone"), upd)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ProfileResponse{Success: true, Data: profile})
	}
}

// AddTagHandler appends one tag server-side
// @Summary Add profile tag
// @Tags contacts
// @Accept json
// @Produce json
// @Param phone path string true "Phone number"
// @Param request body object true "Tag payload {tag}"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/contacts/{phone}/tags [post]
func AddTagHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Tag string `json:"tag"`
		}
		if err := c.Bind(&req); err != nil || req.Tag == "" {
			return badRequest(c, "tag is required")
		}

		profile, err := contactService.AddTag(c.Request().Context(), c.Param("phone"), req.Tag)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ProfileResponse{Success: true, Data: profile})
	}
}

// RemoveTagHandler removes one tag server-side
// @Summary Remove profile tag
// @Tags contacts
// @Produce json
// @Param phone path string true "Phone number"
// @Param tag path string true "Tag to remove"
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contacts/{phone}/tags/{tag} [delete]
func RemoveTagHandler(contactService *database.ContactService) echo.HandlerFunc {
	return func(c echo.Context) error {
		tag := c.Param("tag")
		if tag == "" {
			return badRequest(c, "tag is required")
		}

		profile, err := contactService.RemoveTag(c.Request().Context(), c.Param("phone"), tag)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ProfileResponse{Success: true, Data: profile})
	}
}

// ContactInfoHandler proxies a single-contact lookup to the gateway
// @Summary Gateway contact lookup
// @Tags gateway
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} models.GatewayProxyResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/contact-info/{phone} [get]
func ContactInfoHandler(gw *gateway.Client, c2 *cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if gw == nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Success: false,
				Error:   "WhatsApp gateway not configured",
			})
		}

		phone := c.Param("phone")
		cacheKey := "contact_info:" + phone

		if cached, found := c2.Get(cacheKey); found {
			return c.JSON(http.StatusOK, models.GatewayProxyResponse{Success: true, Data: cached})
		}

		info, err := gw.GetContactInfo(phone)
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Error: err.Error()})
		}

		c2.Set(cacheKey, info, proxyCacheTTL)

		return c.JSON(http.StatusOK, models.GatewayProxyResponse{Success: true, Data: info})
	}
}

// ContactPictureHandler proxies a profile-picture lookup to the gateway
// @Summary Gateway profile picture lookup
// @Tags gateway
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} models.GatewayProxyResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/contact-picture/{phone} [get]
func ContactPictureHandler(gw *gateway.Client, c2 *cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if gw == nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Success: false,
				Error:   "WhatsApp gateway not configured",
			})
		}

		phone := c.Param("phone")
		cacheKey := "contact_picture:" + phone

		if cached, found := c2.Get(cacheKey); found {
			return c.JSON(http.StatusOK, models.GatewayProxyResponse{Success: true, Data: cached})
		}

		url, err := gw.GetProfilePicture(phone)
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Error: err.Error()})
		}

		data := map[string]string{"imgUrl": url}
		c2.Set(cacheKey, data, proxyCacheTTL)

		return c.JSON(http.StatusOK, models.GatewayProxyResponse{Success: true, Data: data})
	}
}
