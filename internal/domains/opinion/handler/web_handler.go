package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/service"
	"what-to-watch/internal/web"
)

const (
	csrfCookieName = "csrf_nonce"

	flashDuplicate   = "This opinion has already been submitted!"
	flashFormExpired = "The form has expired, please submit it again"
)

// TokenManager issues and checks form tokens; *csrf.Manager implements it.
type TokenManager interface {
	NewNonce() string
	Generate(nonce string) (string, error)
	Validate(token, nonce string) error
	TTL() time.Duration
}

// opinionPage is the data of opinion.html
type opinionPage struct {
	Opinion *model.Opinion
}

// addOpinionPage is the data of add_opinion.html
type addOpinionPage struct {
	Form      model.OpinionForm
	Errors    map[string]string
	Flashes   []string
	CSRFToken string
}

// =====================================================
// WEB HANDLER
// =====================================================

type WebHandler struct {
	opinionService service.ServiceInterface
	tokens         TokenManager // nil disables form tokens
	secureCookies  bool
}

func NewWebHandler(opinionService service.ServiceInterface, tokens TokenManager, secureCookies bool) *WebHandler {
	return &WebHandler{
		opinionService: opinionService,
		tokens:         tokens,
		secureCookies:  secureCookies,
	}
}

// Home shows a random opinion; an empty store is a server error page.
// GET /
func (h *WebHandler) Home(c *gin.Context) {
	opinion, err := h.opinionService.Random(c.Request.Context())
	if err != nil {
		h.renderServerError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageOpinion, opinionPage{Opinion: opinion})
}

// Detail
// GET /opinions/:id
func (h *WebHandler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	opinion, err := h.opinionService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrOpinionNotFound) {
			h.NotFound(c)
			return
		}
		h.renderServerError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageOpinion, opinionPage{Opinion: opinion})
}

// AddForm renders an empty form
// GET /add
func (h *WebHandler) AddForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, addOpinionPage{})
}

// AddSubmit
// POST /add
func (h *WebHandler) AddSubmit(c *gin.Context) {
	// Step 1: Bind form
	var form model.OpinionForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, addOpinionPage{Flashes: []string{flashFormExpired}})
		return
	}
	form.Normalize()
	page := addOpinionPage{Form: form}

	// Step 2: Form token
	if !h.checkToken(c, form.CSRFToken) {
		page.Flashes = []string{flashFormExpired}
		h.renderForm(c, http.StatusBadRequest, page)
		return
	}

	// Step 3: Validate fields
	if err := model.NewValidationError(form.Validate()); err != nil {
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			h.renderServerError(c, err)
			return
		}
		page.Errors = verr.FieldErrors()
		h.renderForm(c, http.StatusOK, page)
		return
	}

	// Step 4: Duplicate text is not an error, just a message
	existing, err := h.opinionService.GetByText(c.Request.Context(), form.Text)
	if err != nil {
		h.renderServerError(c, err)
		return
	}
	if existing != nil {
		page.Flashes = []string{flashDuplicate}
		h.renderForm(c, http.StatusOK, page)
		return
	}

	// Step 5: Create
	opinion, err := h.opinionService.Create(c.Request.Context(), form.ToCreateRequest(), service.ChannelWeb)
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.Is(err, model.ErrDuplicateText):
			// Lost a race with another submission of the same text
			page.Flashes = []string{flashDuplicate}
			h.renderForm(c, http.StatusOK, page)
		case errors.As(err, &verr):
			page.Errors = verr.FieldErrors()
			h.renderForm(c, http.StatusOK, page)
		default:
			h.renderServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/opinions/%d", opinion.ID))
}

// NotFound renders the 404 page
func (h *WebHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, web.PageNotFound, nil)
	c.Abort()
}

func (h *WebHandler) renderServerError(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Msg("Web request failed")
	c.HTML(http.StatusInternalServerError, web.PageServer, nil)
	c.Abort()
}

// renderForm issues a fresh token for every render of the form.
func (h *WebHandler) renderForm(c *gin.Context, status int, page addOpinionPage) {
	if h.tokens != nil {
		nonce := h.nonce(c)
		token, err := h.tokens.Generate(nonce)
		if err != nil {
			h.renderServerError(c, err)
			return
		}
		page.CSRFToken = token
	}
	page.Form.CSRFToken = ""
	c.HTML(status, web.PageAddOpinion, page)
}

// nonce returns the browser's nonce, setting the cookie when absent.
func (h *WebHandler) nonce(c *gin.Context) string {
	if nonce, err := c.Cookie(csrfCookieName); err == nil && nonce != "" {
		return nonce
	}
	nonce := h.tokens.NewNonce()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(csrfCookieName, nonce, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookies, true)
	return nonce
}

func (h *WebHandler) checkToken(c *gin.Context, token string) bool {
	if h.tokens == nil {
		return true
	}
	nonce, err := c.Cookie(csrfCookieName)
	if err != nil || nonce == "" {
		return false
	}
	if err := h.tokens.Validate(token, nonce); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Msg("Rejected form token")
		return false
	}
	return true
}
